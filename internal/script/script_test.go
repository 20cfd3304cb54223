package script

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sip-creator/internal/record"
)

type recordingSink struct {
	lines []string
	depth int
}

func (s *recordingSink) Element(name string, attrs *Map, content Value, body func() error) error {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("  ", s.depth))
	sb.WriteString(name)

	if attrs != nil {
		for _, k := range attrs.Keys() {
			v, _ := attrs.Get(k)
			if v != nil {
				fmt.Fprintf(&sb, "[%s=%s]", k, Text(v))
			}
		}
	}

	if content != nil {
		sb.WriteString("=" + Text(content))
	}

	s.lines = append(s.lines, sb.String())

	s.depth++
	defer func() { s.depth-- }()

	return body()
}

func testInput(t *testing.T) *record.Node {
	t.Helper()

	n, err := record.Parse(strings.NewReader(
		`<input><title lang="en">a</title><title>b</title><kind>photo</kind></input>`))
	require.NoError(t, err)

	return n
}

func run(t *testing.T, src string, b *Binding) (*recordingSink, error) {
	t.Helper()

	p, err := NewCompiler().Compile("test", src)
	require.NoError(t, err)

	sink := &recordingSink{}
	if b == nil {
		b = &Binding{}
	}

	b.Output = sink

	return sink, p.Run(context.Background(), b)
}

func TestRun_Elements(t *testing.T) {
	src := `
# titles keep their language
for _t in input["title"] {
    element "dc:title" attrs {"xml:lang": _t["@lang"]} text upper(_t)
}
element "dc:count" text size(input.title)
element "dc:type" text lookup(_optLookup["types"], input.kind)
element "outer" {
    element "inner" text _id + "/" + _facts["provider"]
}
`
	sink, err := run(t, src, &Binding{
		Input:     testInput(t),
		RecordID:  "r1",
		Facts:     map[string]string{"provider": "museum"},
		OptLookup: map[string]map[string]string{"types": {"photo": "IMAGE"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"dc:title[xml:lang=en]=A",
		"dc:title=B",
		"dc:count=2",
		"dc:type=IMAGE",
		"outer",
		"  inner=r1/museum",
	}, sink.lines)
}

func TestRun_Discard(t *testing.T) {
	_, err := run(t, "if empty(input[\"rights\"]) {\n    discard \"no rights\"\n}", &Binding{Input: testInput(t)})

	var d *DiscardError
	require.ErrorAs(t, err, &d)
	assert.Equal(t, "no rights", d.Reason)
}

func TestRun_MissingProperty(t *testing.T) {
	_, err := run(t, `element "a" text missing`, nil)

	var m *MissingPropertyError
	require.ErrorAs(t, err, &m)
	assert.Equal(t, "missing", m.Name)
	assert.Equal(t, Pos{Line: 1, Column: 18}, m.Pos)

	_, err = run(t, "y = 1", nil)
	require.ErrorAs(t, err, &m)
	assert.Equal(t, "y", m.Name)
}

func TestRun_RuntimeErrorExcerpt(t *testing.T) {
	_, err := run(t, "let a = 1\nlet x = 1 - \"a\"\nlet b = 2", nil)

	var r *RuntimeError
	require.ErrorAs(t, err, &r)
	assert.Equal(t, Pos{Line: 2, Column: 11}, r.Pos)
	assert.Contains(t, r.Message, "cannot subtract")
	assert.Contains(t, r.Excerpt, `>>    2: let x = 1 - "a"`)
	assert.Contains(t, r.Excerpt, "let a = 1")
}

func TestRuntimeError_UnknownPosition(t *testing.T) {
	err := &RuntimeError{Message: "boom"}
	assert.Equal(t, "problem executing mapping: boom", err.Error())
	assert.Empty(t, Excerpt("x", Pos{}))
}

func TestRun_Cancelled(t *testing.T) {
	p, err := NewCompiler().Compile("loop", "for _x in [1, 2] {\n    let y = _x\n}")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = p.Run(ctx, &Binding{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_NoOutput(t *testing.T) {
	p, err := NewCompiler().Compile("x", `element "a"`)
	require.NoError(t, err)

	var r *RuntimeError
	require.ErrorAs(t, p.Run(context.Background(), &Binding{}), &r)
}

func TestCompile_CollectsProblems(t *testing.T) {
	_, err := NewCompiler().Compile("bad", "let a = )\nlet b = 2\nlet c = ]")

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	require.Len(t, ce.Problems, 2)
	assert.Equal(t, Pos{Line: 1, Column: 9}, ce.Problems[0].Pos)
	assert.Equal(t, 3, ce.Problems[1].Pos.Line)
	assert.Contains(t, ce.Error(), "compile bad:")
}

func TestCompile_UnknownFunction(t *testing.T) {
	_, err := NewCompiler().Compile("x", "element \"a\" text foo(1)\nelement \"b\" text upper(1, 2)")

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	require.Len(t, ce.Problems, 2)
	assert.Contains(t, ce.Problems[0].Message, "unknown function foo")
	assert.Contains(t, ce.Problems[1].Message, "upper expects 1 argument")
}

func TestCompile_LexicalErrors(t *testing.T) {
	_, err := NewCompiler().Compile("x", "let a = \"open\nlet b = $")

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.GreaterOrEqual(t, len(ce.Problems), 2)
}

func TestCompiler_Cache(t *testing.T) {
	c := NewCompiler()
	src := `element "a" text 1`

	p1, err := c.Compile("one", src)
	require.NoError(t, err)
	p2, err := c.Compile("two", src)
	require.NoError(t, err)

	assert.Same(t, p1, p2)
	assert.Equal(t, Hash(src), p1.Hash)
	assert.Equal(t, 1, c.Cached())

	c.Reset()
	assert.Equal(t, 1, c.Generation())
	assert.Equal(t, 0, c.Cached())

	p3, err := c.Compile("three", src)
	require.NoError(t, err)
	assert.NotSame(t, p1, p3)

	c.Close()
	_, err = c.Compile("four", src)
	assert.ErrorIs(t, err, ErrCompilerClosed)
}

func TestEval(t *testing.T) {
	c := NewCompiler()

	tests := []struct {
		expr string
		vars map[string]Value
		want Value
	}{
		{`size(value) > 2 && matches(value, "^[a-z]+$")`, map[string]Value{"value": "abc"}, true},
		{`lookup({"photo": "IMAGE"}, value)`, map[string]Value{"value": "photo"}, "IMAGE"},
		{`lookup({"photo": "IMAGE"}, value)`, map[string]Value{"value": "film"}, ""},
		{`langtag("en-us")`, nil, "en-US"},
		{`title("hello world")`, nil, "Hello World"},
		{`lower("ÄB")`, nil, "äb"},
		{`join(split("a,b", ","), "|")`, nil, "a|b"},
		{`[1, 2, 3][1]`, nil, 2.0},
		{`"a" + 1`, nil, "a1"},
		{`nil["x"]["y"]`, nil, nil},
		{`{"k": "v"}.k`, nil, "v"},
		{`when(1 < 2, "yes")`, nil, "yes"},
		{`default("", "fallback")`, nil, "fallback"},
		{`contains(["a", "b"], "b")`, nil, true},
		{`replace(["a-b", "c-d"], "-", "_")`, nil, []Value{"a_b", "c_d"}},
		{`!(1 == 2) || missing`, nil, true},
		{`-size([1]) + 3`, nil, 2.0},
		{`"b" >= "a"`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := c.Eval(tt.expr, tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEval_Errors(t *testing.T) {
	c := NewCompiler()

	_, err := c.Eval(`value +`, nil)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)

	_, err = c.Eval(`1 < "a"`, nil)
	var re *RuntimeError
	require.ErrorAs(t, err, &re)

	_, err = c.Eval(`matches("a", "(")`, nil)
	require.ErrorAs(t, err, &re)
}

func TestIndex_Nodes(t *testing.T) {
	in := testInput(t)

	v, err := index(in, "title")
	require.NoError(t, err)
	require.Len(t, v, 2)

	v, err = index(v, "@lang")
	require.NoError(t, err)
	assert.Equal(t, []Value{"en"}, v)

	v, err = index(in, "@missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = index("text", "x")
	assert.Error(t, err)
}

func TestProgram_ConcurrentRuns(t *testing.T) {
	p, err := NewCompiler().Compile("c", "for _t in input.title {\n    element \"t\" text _t\n}")
	require.NoError(t, err)

	in := testInput(t)

	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			sink := &recordingSink{}
			assert.NoError(t, p.Run(context.Background(), &Binding{Input: in, Output: sink}))
			assert.Equal(t, []string{"t=a", "t=b"}, sink.lines)
		}()
	}

	wg.Wait()
}

func TestQuote_RoundTrip(t *testing.T) {
	c := NewCompiler()
	properties := gopter.NewProperties(nil)

	properties.Property("quoted literal evaluates to the original string", prop.ForAll(
		func(s string) bool {
			v, err := c.Eval(Quote(s), nil)
			return err == nil && v == s
		},
		gen.AnyString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
