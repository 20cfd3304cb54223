package script

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"sip-creator/internal/record"
)

// Builtin is a function callable from programs. MaxArgs < 0 means variadic.
type Builtin struct {
	Name    string
	MinArgs int
	MaxArgs int
	Fn      func(c *Call, args []Value) (Value, error)
}

func (b *Builtin) arity() string {
	switch {
	case b.MaxArgs < 0:
		return fmt.Sprintf("at least %d arguments", b.MinArgs)
	case b.MinArgs == b.MaxArgs && b.MinArgs == 1:
		return "1 argument"
	case b.MinArgs == b.MaxArgs:
		return fmt.Sprintf("%d arguments", b.MinArgs)
	default:
		return fmt.Sprintf("%d to %d arguments", b.MinArgs, b.MaxArgs)
	}
}

// Call gives builtins access to the running binding.
type Call struct {
	Binding *Binding
}

// Registry holds the builtins known to a compiler.
type Registry struct {
	mu sync.RWMutex
	m  map[string]*Builtin
}

// NewRegistry returns a registry with the standard builtins.
func NewRegistry() *Registry {
	r := &Registry{m: make(map[string]*Builtin)}
	for _, b := range standardBuiltins() {
		r.Register(b)
	}

	return r
}

// Register adds or replaces a builtin.
func (r *Registry) Register(b *Builtin) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.m[b.Name] = b
}

// Lookup finds a builtin by name.
func (r *Registry) Lookup(name string) (*Builtin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.m[name]

	return b, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.m))
	for n := range r.m {
		out = append(out, n)
	}

	sort.Strings(out)

	return out
}

// eachText applies f to the text of v, or to every element when v is a list.
// nil stays nil.
func eachText(v Value, f func(string) Value) Value {
	switch x := v.(type) {
	case nil:
		return nil
	case []Value:
		out := make([]Value, 0, len(x))
		for _, e := range Flatten(x) {
			out = append(out, f(Text(e)))
		}

		return out
	default:
		return f(Text(v))
	}
}

func textFn(fn func(string) string) func(*Call, []Value) (Value, error) {
	return func(_ *Call, args []Value) (Value, error) {
		return eachText(args[0], func(s string) Value { return fn(s) }), nil
	}
}

var regexCache sync.Map

func compileRegexp(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	regexCache.Store(pattern, re)

	return re, nil
}

func standardBuiltins() []*Builtin {
	return []*Builtin{
		{Name: "text", MinArgs: 1, MaxArgs: 1, Fn: textFn(func(s string) string { return s })},
		{Name: "trim", MinArgs: 1, MaxArgs: 1, Fn: textFn(strings.TrimSpace)},
		{Name: "upper", MinArgs: 1, MaxArgs: 1, Fn: textFn(func(s string) string {
			return cases.Upper(language.Und).String(s)
		})},
		{Name: "lower", MinArgs: 1, MaxArgs: 1, Fn: textFn(func(s string) string {
			return cases.Lower(language.Und).String(s)
		})},
		{Name: "title", MinArgs: 1, MaxArgs: 1, Fn: textFn(func(s string) string {
			return cases.Title(language.Und).String(s)
		})},
		{Name: "langtag", MinArgs: 1, MaxArgs: 1, Fn: textFn(func(s string) string {
			tag, err := language.Parse(s)
			if err != nil {
				return s
			}

			return tag.String()
		})},
		{Name: "size", MinArgs: 1, MaxArgs: 1, Fn: func(_ *Call, args []Value) (Value, error) {
			switch x := args[0].(type) {
			case nil:
				return 0.0, nil
			case string:
				return float64(utf8.RuneCountInString(x)), nil
			case []Value:
				return float64(len(x)), nil
			case *Map:
				return float64(x.Len()), nil
			default:
				return 1.0, nil
			}
		}},
		{Name: "first", MinArgs: 1, MaxArgs: 1, Fn: func(_ *Call, args []Value) (Value, error) {
			if l, ok := args[0].([]Value); ok {
				if len(l) == 0 {
					return nil, nil
				}

				return l[0], nil
			}

			return args[0], nil
		}},
		{Name: "join", MinArgs: 1, MaxArgs: 2, Fn: func(_ *Call, args []Value) (Value, error) {
			sep := ""
			if len(args) == 2 {
				sep = Text(args[1])
			}

			items := Flatten(args[0])
			parts := make([]string, 0, len(items))

			for _, e := range items {
				parts = append(parts, Text(e))
			}

			return strings.Join(parts, sep), nil
		}},
		{Name: "split", MinArgs: 2, MaxArgs: 2, Fn: func(_ *Call, args []Value) (Value, error) {
			s := Text(args[0])
			if s == "" {
				return []Value{}, nil
			}

			parts := strings.Split(s, Text(args[1]))
			out := make([]Value, len(parts))

			for i, p := range parts {
				out[i] = p
			}

			return out, nil
		}},
		{Name: "replace", MinArgs: 3, MaxArgs: 3, Fn: func(_ *Call, args []Value) (Value, error) {
			old, repl := Text(args[1]), Text(args[2])
			return eachText(args[0], func(s string) Value { return strings.ReplaceAll(s, old, repl) }), nil
		}},
		{Name: "contains", MinArgs: 2, MaxArgs: 2, Fn: func(_ *Call, args []Value) (Value, error) {
			if l, ok := args[0].([]Value); ok {
				for _, e := range l {
					if Equal(e, args[1]) {
						return true, nil
					}
				}

				return false, nil
			}

			return strings.Contains(Text(args[0]), Text(args[1])), nil
		}},
		{Name: "matches", MinArgs: 2, MaxArgs: 2, Fn: func(_ *Call, args []Value) (Value, error) {
			re, err := compileRegexp(Text(args[1]))
			if err != nil {
				return nil, fmt.Errorf("matches: %w", err)
			}

			return re.MatchString(Text(args[0])), nil
		}},
		{Name: "lookup", MinArgs: 2, MaxArgs: 2, Fn: func(_ *Call, args []Value) (Value, error) {
			dict, ok := args[0].(*Map)
			if !ok && args[0] != nil {
				return nil, fmt.Errorf("lookup: expected map, got %s", TypeName(args[0]))
			}

			return eachText(args[1], func(s string) Value {
				if dict == nil {
					return ""
				}

				v, found := dict.Get(s)
				if !found {
					return ""
				}

				return Text(v)
			}), nil
		}},
		{Name: "when", MinArgs: 2, MaxArgs: 2, Fn: func(_ *Call, args []Value) (Value, error) {
			if Truthy(args[0]) {
				return args[1], nil
			}

			return nil, nil
		}},
		{Name: "default", MinArgs: 2, MaxArgs: 2, Fn: func(_ *Call, args []Value) (Value, error) {
			if Truthy(args[0]) {
				return args[0], nil
			}

			return args[1], nil
		}},
		{Name: "empty", MinArgs: 1, MaxArgs: 1, Fn: func(_ *Call, args []Value) (Value, error) {
			if n, ok := args[0].(*record.Node); ok {
				return n.Text == "" && len(n.Children) == 0, nil
			}

			return !Truthy(args[0]), nil
		}},
		{Name: "trace", MinArgs: 1, MaxArgs: -1, Fn: func(c *Call, args []Value) (Value, error) {
			if c.Binding == nil || c.Binding.Trace == nil {
				return nil, nil
			}

			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = Text(a)
			}

			c.Binding.Trace(strings.Join(parts, " "))

			return nil, nil
		}},
	}
}
