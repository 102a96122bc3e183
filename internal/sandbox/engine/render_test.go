package engine

import (
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eval(t *testing.T, vm *goja.Runtime, expr string) goja.Value {
	t.Helper()
	v, err := vm.RunString(expr)
	require.NoError(t, err)
	return v
}

func TestRenderValue(t *testing.T) {
	vm := goja.New()

	tests := []struct {
		name string
		expr string
		want string
	}{
		{"number", "42", "42"},
		{"float", "1.5", "1.5"},
		{"top-level string bare", "'hi'", "hi"},
		{"boolean", "true", "true"},
		{"null", "null", "null"},
		{"undefined", "undefined", "undefined"},
		{"array", "[1, 'a', true]", `[1, "a", true]`},
		{"nested array", "[[1], [2, 3]]", "[[1], [2, 3]]"},
		{"object", "({a: 1, b: 'x'})", `{a: 1, b: "x"}`},
		{"empty object", "({})", "{}"},
		{"empty array", "[]", "[]"},
		{"named function", "(function greet(){})", "[Function: greet]"},
		{"anonymous function", "(function(){})", "[Function (anonymous)]"},
		{"error object", "new Error('bad')", "Error: bad"},
		{"regexp", "/a+b/g", "/a+b/g"},
		{"object in array quotes strings", "['x']", `["x"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderValue(eval(t, vm, tt.expr)))
		})
	}
}

func TestRenderDepthLimit(t *testing.T) {
	vm := goja.New()

	deep := eval(t, vm, "({a: {b: {c: {d: {e: 1}}}}})")
	assert.Contains(t, renderValue(deep), "[Object]")

	deepArr := eval(t, vm, "[[[[[1]]]]]")
	assert.Contains(t, renderValue(deepArr), "[Array]")
}

func TestRenderCycle(t *testing.T) {
	vm := goja.New()

	v := eval(t, vm, "(function(){ var o = {name: 'loop'}; o.self = o; return o; })()")
	assert.Equal(t, `{name: "loop", self: [Circular]}`, renderValue(v))

	arr := eval(t, vm, "(function(){ var a = [1]; a.push(a); return a; })()")
	assert.Equal(t, "[1, [Circular]]", renderValue(arr))
}

func TestRenderArgs(t *testing.T) {
	vm := goja.New()

	args := []goja.Value{
		eval(t, vm, "'count:'"),
		eval(t, vm, "3"),
		eval(t, vm, "[1, 2]"),
	}
	assert.Equal(t, "count: 3 [1, 2]", renderArgs(args))
	assert.Equal(t, "", renderArgs(nil))
}

func TestErrorText(t *testing.T) {
	vm := goja.New()

	tests := []struct {
		name string
		expr string
		want string
	}{
		{"error message", "new Error('boom')", "boom"},
		{"type error message", "new TypeError('not a function')", "not a function"},
		{"message-bearing object", "({message: 'custom'})", "custom"},
		{"plain string", "'oops'", "oops"},
		{"number", "42", "42"},
		{"object without message", "({code: 7})", "{code: 7}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorText(eval(t, vm, tt.expr)))
		})
	}

	assert.Equal(t, "undefined", errorText(nil))
}
