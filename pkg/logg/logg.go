package logg

// Field keys shared by all structured log statements.
const (
	Layer     = "layer"
	Operation = "operation"
	Action    = "action"
	Selector  = "selector"
	Iframe    = "iframe"
	URL       = "url"
	Window    = "window"
	Tab       = "tab"
	ViewIndex = "view_index"
)
