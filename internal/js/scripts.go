package js

import (
	"encoding/json"
	"fmt"

	"github.com/juxbox-org/webtraversallibrary/internal/color"
	"github.com/juxbox-org/webtraversallibrary/internal/geometry"
)

// quote renders a Go string as a JS string literal.
func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func clickElementScript(css string) string {
	return fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el) return {success: false, error: 'element not found'};
		el.scrollIntoView({behavior: 'instant', block: 'center'});
		el.click();
		return {success: true};
	})()`, quote(css))
}

func fillTextScript(css, text string) string {
	return fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el) return {success: false, error: 'element not found'};
		el.value = %s;
		el.dispatchEvent(new Event('input', {bubbles: true}));
		el.dispatchEvent(new Event('change', {bubbles: true}));
		return {success: true};
	})()`, quote(css), quote(text))
}

func deleteElementScript(css string) string {
	return fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el) return {success: false, error: 'element not found'};
		el.remove();
		return {success: true};
	})()`, quote(css))
}

func elementExistsScript(css string) string {
	return fmt.Sprintf(`(() => {
		return {success: true, exists: document.querySelector(%s) !== null};
	})()`, quote(css))
}

const canvasBootstrap = `
	const canvasId = viewport ? 'wtl-canvas-viewport' : 'wtl-canvas-document';
	let canvas = document.getElementById(canvasId);
	if (!canvas) {
		canvas = document.createElement('canvas');
		canvas.id = canvasId;
		canvas.style.pointerEvents = 'none';
		canvas.style.zIndex = '2147483646';
		if (viewport) {
			canvas.style.position = 'fixed';
			canvas.style.top = '0';
			canvas.style.left = '0';
			canvas.width = window.innerWidth;
			canvas.height = window.innerHeight;
		} else {
			canvas.style.position = 'absolute';
			canvas.style.top = '0';
			canvas.style.left = '0';
			canvas.width = document.documentElement.scrollWidth;
			canvas.height = document.documentElement.scrollHeight;
		}
		document.body.appendChild(canvas);
	}
	const ctx = canvas.getContext('2d');
`

func highlightScript(css string, c color.Color, fill, viewport bool) string {
	return fmt.Sprintf(`(() => {
		const viewport = %t;
		const el = document.querySelector(%s);
		if (!el) return {success: false, error: 'element not found'};
		%s
		const rect = el.getBoundingClientRect();
		const offsetX = viewport ? 0 : window.scrollX;
		const offsetY = viewport ? 0 : window.scrollY;
		ctx.strokeStyle = %s;
		ctx.fillStyle = %s;
		ctx.lineWidth = 3;
		if (%t) {
			ctx.fillRect(rect.left + offsetX, rect.top + offsetY, rect.width, rect.height);
		} else {
			ctx.strokeRect(rect.left + offsetX, rect.top + offsetY, rect.width, rect.height);
		}
		return {success: true};
	})()`, viewport, quote(css), canvasBootstrap, quote(c.CSS()), quote(c.CSS()), fill)
}

func annotateScript(at geometry.Point, c color.Color, size int, text string, background color.Color, viewport bool) string {
	return fmt.Sprintf(`(() => {
		const viewport = %t;
		%s
		const x = %f, y = %f;
		ctx.font = '%dpx sans-serif';
		const metrics = ctx.measureText(%s);
		ctx.fillStyle = %s;
		ctx.fillRect(x - 2, y - %d, metrics.width + 4, %d + 4);
		ctx.fillStyle = %s;
		ctx.fillText(%s, x, y);
		return {success: true};
	})()`, viewport, canvasBootstrap, at.X, at.Y, size, quote(text), quote(background.CSS()), size, size, quote(c.CSS()), quote(text))
}

func clearHighlightsScript(viewport bool) string {
	return fmt.Sprintf(`(() => {
		const viewport = %t;
		const canvasId = viewport ? 'wtl-canvas-viewport' : 'wtl-canvas-document';
		const canvas = document.getElementById(canvasId);
		if (canvas) {
			canvas.getContext('2d').clearRect(0, 0, canvas.width, canvas.height);
		}
		return {success: true};
	})()`, viewport)
}
