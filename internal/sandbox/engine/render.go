package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dop251/goja"
)

// maxRenderDepth bounds recursion when rendering nested structures.
const maxRenderDepth = 4

// renderArgs renders diagnostic-call arguments the way a console would:
// each argument rendered individually, joined with single spaces.
func renderArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = renderValue(arg)
	}
	return strings.Join(parts, " ")
}

// renderValue renders a single value for display. Top-level strings are
// rendered bare (console style); strings nested inside objects and arrays
// are quoted.
func renderValue(v goja.Value) string {
	return render(v, 0, nil, false)
}

func render(v goja.Value, depth int, seen []goja.Value, quote bool) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}

	obj, isObj := v.(*goja.Object)
	if !isObj {
		if quote {
			if s, isStr := v.Export().(string); isStr {
				return strconv.Quote(s)
			}
		}
		return v.String()
	}

	if _, isFn := goja.AssertFunction(v); isFn {
		if name := obj.Get("name"); name != nil && !goja.IsUndefined(name) && name.String() != "" {
			return "[Function: " + name.String() + "]"
		}
		return "[Function (anonymous)]"
	}

	// Cycle check before descending into object graphs.
	for _, prior := range seen {
		if prior.StrictEquals(v) {
			return "[Circular]"
		}
	}

	switch obj.ClassName() {
	case "Date", "RegExp", "Error":
		// These have meaningful toString output already.
		return obj.String()
	case "Array":
		if depth >= maxRenderDepth {
			return "[Array]"
		}
		seen = append(seen, v)
		length := int(obj.Get("length").ToInteger())
		items := make([]string, 0, length)
		for i := 0; i < length; i++ {
			items = append(items, render(obj.Get(strconv.Itoa(i)), depth+1, seen, true))
		}
		return "[" + strings.Join(items, ", ") + "]"
	default:
		if depth >= maxRenderDepth {
			return "[Object]"
		}
		seen = append(seen, v)
		keys := obj.Keys()
		pairs := make([]string, 0, len(keys))
		for _, key := range keys {
			pairs = append(pairs, fmt.Sprintf("%s: %s", key, render(obj.Get(key), depth+1, seen, true)))
		}
		return "{" + strings.Join(pairs, ", ") + "}"
	}
}

// Outside RunProgram the interpreter surfaces a throwing getter or toString
// as a panic rather than an error, so any rendering of a VM-derived value
// after the run has settled must go through these guarded variants.
const unrenderable = "[Unrenderable]"

func safeRenderValue(v goja.Value) (rendered string) {
	defer func() {
		if recover() != nil {
			rendered = unrenderable
		}
	}()
	return renderValue(v)
}

func safeErrorText(v goja.Value) (text string) {
	defer func() {
		if recover() != nil {
			text = unrenderable
		}
	}()
	return errorText(v)
}

// errorText extracts the text a thrown value contributes to ThrownErrors.
// Error-like objects contribute their message ("boom" for
// `throw new Error('boom')`); anything else renders like a diagnostic
// argument.
func errorText(v goja.Value) string {
	if v == nil {
		return "undefined"
	}
	if obj, isObj := v.(*goja.Object); isObj {
		if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) {
			if s := msg.String(); s != "" {
				return s
			}
		}
	}
	return renderValue(v)
}
