package action

import (
	"fmt"

	"github.com/juxbox-org/webtraversallibrary/internal/selector"
	"github.com/juxbox-org/webtraversallibrary/internal/snapshot"
	"github.com/juxbox-org/webtraversallibrary/pkg/apperr"
)

// Opt wraps a possibly-unset field value. Set-ness is tracked explicitly
// so that the single-positional-argument rule can tell a deliberate zero
// value from a field never supplied.
type Opt[T any] struct {
	value T
	set   bool
}

// Set returns an Opt holding v.
func Set[T any](v T) Opt[T] {
	return Opt[T]{value: v, set: true}
}

// Get returns the value and whether it was ever set.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.set
}

// Or returns the value, or def when unset.
func (o Opt[T]) Or(def T) T {
	if o.set {
		return o.value
	}

	return def
}

func (o Opt[T]) IsSet() bool {
	return o.set
}

// setArg assigns a specialization value into an Opt field, rejecting
// mistyped values as usage errors.
func setArg[T any](dst *Opt[T], kind Kind, name string, v any) error {
	t, ok := v.(T)
	if !ok {
		return usageErrorf(kind, "field %q of %s: unexpected value type %T", name, kind, v)
	}

	*dst = Set(t)

	return nil
}

func setTarget(dst *Target, kind Kind, v any) error {
	switch x := v.(type) {
	case Target:
		*dst = x
	case selector.Selector:
		*dst = TargetSelector(x)
	case *snapshot.PageElement:
		*dst = TargetElement(x)
	default:
		return usageErrorf(kind, "target of %s: unexpected value type %T", kind, v)
	}

	return nil
}

func usageErrorf(kind Kind, format string, args ...any) error {
	return apperr.Wrap("Specialize", apperr.CodeUsage, fmt.Errorf(format, args...),
		map[string]any{apperr.MetaAction: string(kind)})
}

func unknownField(kind Kind, name string) error {
	return usageErrorf(kind, "%s has no field %q", kind, name)
}

type fieldState struct {
	name string
	set  bool
}

func unsetNames(fields ...fieldState) []string {
	var out []string
	for _, f := range fields {
		if !f.set {
			out = append(out, f.name)
		}
	}

	return out
}
