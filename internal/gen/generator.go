package gen

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode"

	"sip-creator/internal/config"
	"sip-creator/internal/mapping"
	"sip-creator/internal/recdef"
	"sip-creator/internal/record"
	"sip-creator/internal/script"
)

// ErrMalformedMapping is wrapped by every error about a mapping that cannot
// be turned into code.
var ErrMalformedMapping = errors.New("malformed mapping")

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// Indent is one level of indentation.
	Indent string
	// GenerateComments adds a comment naming each node mapping.
	GenerateComments bool
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Indent:           "    ",
		GenerateComments: true,
	}
}

// ConfigFrom applies the loaded generator settings to the defaults.
func ConfigFrom(c config.GeneratorConfig) GeneratorConfig {
	cfg := DefaultGeneratorConfig()
	cfg.GenerateComments = c.Comments

	return cfg
}

// Generator turns mappings into programs. It keeps no state between calls.
type Generator struct {
	config GeneratorConfig
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	if config.Indent == "" {
		config.Indent = DefaultGeneratorConfig().Indent
	}

	return &Generator{config: config}
}

// EditPath substitutes code for one node mapping while the curator edits it.
// EditedCode replaces the mapping's code; an empty EditedCode reverts to the
// generated default. With GeneratedCodeOnly the program contains only that
// mapping's default code, wrapped in its ancestor elements.
type EditPath struct {
	NodeMapping       *mapping.NodeMapping
	EditedCode        string
	GeneratedCodeOnly bool
}

// Code is a generated program.
type Code struct {
	Source string
	// Hash is the hex SHA-256 of Source.
	Hash string
}

// Generate produces the program for rm over tree. edit may be nil. rm is
// read under its lock, so it may change concurrently.
func (g *Generator) Generate(rm *mapping.RecMapping, tree *recdef.Tree, edit *EditPath, trace bool) (code *Code, err error) {
	if rm == nil || tree == nil {
		return nil, fmt.Errorf("%w: mapping and record definition are required", ErrMalformedMapping)
	}

	rm.View(func() { code, err = g.generate(rm, tree, edit, trace) })

	return code, err
}

func (g *Generator) generate(rm *mapping.RecMapping, tree *recdef.Tree, edit *EditPath, trace bool) (*Code, error) {
	if err := checkWellFormed(rm, tree); err != nil {
		return nil, err
	}

	r := &run{
		config: g.config,
		a:      mapping.Attach(rm, tree),
		trace:  trace,
		w:      &codeWriter{indent: g.config.Indent},
	}

	if edit != nil && edit.NodeMapping != nil {
		id, ok := r.a.NodeOf(edit.NodeMapping)
		if !ok {
			return nil, fmt.Errorf("%w: edited node mapping %s is not part of the mapping",
				ErrMalformedMapping, edit.NodeMapping.Key())
		}

		r.edit = edit

		if edit.GeneratedCodeOnly {
			r.only = make(map[recdef.NodeID]bool)
			for _, anc := range tree.Ancestors(id) {
				r.only[anc] = true
			}

			r.only[id] = true
		}
	}

	if r.only == nil {
		var header bytes.Buffer
		if err := headerTemplate.Execute(&header, newHeaderData(rm, tree.Definition(), trace)); err != nil {
			return nil, fmt.Errorf("rendering header: %w", err)
		}

		r.w.sb.WriteString(header.String())
	}

	r.element(tree.Root(), []variable{{path: inputPath, name: record.InputTag}})

	src := r.w.String()

	return &Code{Source: src, Hash: script.Hash(src)}, nil
}

var inputPath = mapping.MustParsePath("/" + record.InputTag)

func checkWellFormed(rm *mapping.RecMapping, tree *recdef.Tree) error {
	for _, nm := range rm.NodeMappings {
		if strings.TrimSpace(nm.Output) == "" {
			return fmt.Errorf("%w: node mapping without output path", ErrMalformedMapping)
		}

		if _, ok := tree.Lookup(nm.Output); !ok {
			return fmt.Errorf("%w: output path %s is not in the record definition", ErrMalformedMapping, nm.Output)
		}

		if nm.IsConstant() {
			continue
		}

		if nm.Input.IsEmpty() {
			return fmt.Errorf("%w: %s has no input", ErrMalformedMapping, nm.Output)
		}

		for _, in := range nm.Input {
			p, err := mapping.ParsePath(in)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrMalformedMapping, nm.Output, err)
			}

			if !p.HasPrefix(inputPath) {
				return fmt.Errorf("%w: input path %s must start with %s", ErrMalformedMapping, in, inputPath)
			}
		}
	}

	return nil
}

// variable is a name bound to the source elements at path.
type variable struct {
	path mapping.Path
	name string
}

var reservedNames = []string{"_id", "_facts", "_optLookup"}

type run struct {
	config GeneratorConfig
	a      *mapping.Attached
	edit   *EditPath
	trace  bool
	w      *codeWriter
	// only restricts generation to these nodes when previewing one mapping.
	only map[recdef.NodeID]bool
}

func (r *run) wanted(id recdef.NodeID) bool {
	if !r.a.HasMappings(id) {
		return false
	}

	return r.only == nil || r.only[id]
}

// mappings returns the node mappings to generate at id.
func (r *run) mappings(id recdef.NodeID) []*mapping.NodeMapping {
	if r.only == nil {
		return r.a.Mappings(id)
	}

	if nm := r.edit.NodeMapping; r.a.Tree.Node(id).Path == nm.Output {
		return []*mapping.NodeMapping{nm}
	}

	return nil
}

// code returns the curator code that replaces nm's default, or "".
func (r *run) code(nm *mapping.NodeMapping) string {
	if r.edit != nil && r.edit.NodeMapping == nm {
		if r.edit.GeneratedCodeOnly {
			return ""
		}

		return r.edit.EditedCode
	}

	if nm.HasCustomCode() {
		return nm.Code
	}

	return ""
}

func (r *run) element(id recdef.NodeID, vars []variable) {
	if !r.wanted(id) {
		return
	}

	own := r.mappings(id)

	if len(own) == 0 {
		r.emitElement(id, vars, "")
		return
	}

	for _, nm := range own {
		r.mapping(nm, id, vars)
	}
}

func (r *run) mapping(nm *mapping.NodeMapping, id recdef.NodeID, vars []variable) {
	if r.config.GenerateComments {
		r.w.line("# " + nm.Key())
	}

	if nm.IsConstant() {
		r.body(nm, id, vars, script.Quote(nm.Constant))
		return
	}

	opened := 0

	values := make([]string, 0, len(nm.Input))

	for _, in := range nm.Input {
		p := mapping.MustParsePath(in)

		var v variable

		v, vars = r.bind(p, vars, &opened)
		values = append(values, valueOf(v, p))
	}

	r.body(nm, id, vars, r.combine(nm, values))

	for ; opened > 0; opened-- {
		r.w.close()
	}
}

// bind finds or opens the loop variable for the element part of p.
func (r *run) bind(p mapping.Path, vars []variable, opened *int) (variable, []variable) {
	elem := p
	if p.IsAttr() {
		elem = p.Parent()
	}

	base := vars[0]

	for i := len(vars) - 1; i >= 0; i-- {
		if elem.HasPrefix(vars[i].path) {
			base = vars[i]
			break
		}
	}

	rel := elem.Rel(base.path)
	if len(rel) == 0 {
		return base, vars
	}

	v := variable{path: elem, name: uniqueName(rel[len(rel)-1].Local(), vars)}
	r.w.open(fmt.Sprintf("for %s in %s", v.name, base.name+indexChain(rel)))
	*opened++

	return v, append(slices.Clone(vars), v)
}

func (r *run) body(nm *mapping.NodeMapping, id recdef.NodeID, vars []variable, value string) {
	if r.trace {
		r.w.line(fmt.Sprintf("trace(%s)", script.Quote(nm.Key())))
	}

	if code := r.code(nm); code != "" {
		r.w.block(code)
		return
	}

	r.emitElement(id, vars, value)
}

// emitElement writes the element statement for id with its attributes,
// optional text value and the child elements that carry mappings.
func (r *run) emitElement(id recdef.NodeID, vars []variable, value string) {
	node := r.a.Tree.Node(id)
	stmt := "element " + script.Quote(node.Tag)

	if attrs := r.attrs(id, vars); attrs != "" {
		stmt += " attrs " + attrs
	}

	if value != "" {
		stmt += " text " + value
	}

	var children []recdef.NodeID

	for _, c := range r.a.Tree.ElemChildren(id) {
		if r.wanted(c) {
			children = append(children, c)
		}
	}

	if len(children) == 0 {
		r.w.line(stmt)
		return
	}

	r.w.open(stmt)

	for _, c := range children {
		r.element(c, vars)
	}

	r.w.close()
}

// attrs renders the attribute map literal of id, or "" when no attribute
// carries a mapping. Only the first mapping of an attribute is used.
func (r *run) attrs(id recdef.NodeID, vars []variable) string {
	var entries []string

	for _, c := range r.a.Tree.AttrChildren(id) {
		if !r.wanted(c) {
			continue
		}

		list := r.mappings(c)
		if len(list) == 0 {
			continue
		}

		nm := list[0]
		entries = append(entries, script.Quote(r.a.Tree.Node(c).Tag)+": "+r.attrValue(nm, vars))
	}

	if len(entries) == 0 {
		return ""
	}

	return "{" + strings.Join(entries, ", ") + "}"
}

func (r *run) attrValue(nm *mapping.NodeMapping, vars []variable) string {
	if code := r.code(nm); code != "" {
		return "(" + oneLine(code) + ")"
	}

	if nm.IsConstant() {
		return script.Quote(nm.Constant)
	}

	values := make([]string, 0, len(nm.Input))

	for _, in := range nm.Input {
		p := mapping.MustParsePath(in)
		values = append(values, relativeExpr(p, vars))
	}

	return r.combine(nm, values)
}

// combine joins several input values and applies the dictionary.
func (r *run) combine(nm *mapping.NodeMapping, values []string) string {
	value := values[0]
	if len(values) > 1 {
		value = "join([" + strings.Join(values, ", ") + "], \" \")"
	}

	if len(nm.Dictionary) > 0 && !nm.IsConstant() {
		value = "lookup(" + dictLiteral(nm.Dictionary) + ", " + value + ")"
	}

	return value
}

func valueOf(v variable, p mapping.Path) string {
	if p.IsAttr() {
		return v.name + "[" + script.Quote(p.Last().String()) + "]"
	}

	return v.name
}

// relativeExpr indexes p from the deepest variable above it without opening
// a loop.
func relativeExpr(p mapping.Path, vars []variable) string {
	for i := len(vars) - 1; i >= 0; i-- {
		if p.HasPrefix(vars[i].path) {
			return vars[i].name + indexChain(p.Rel(vars[i].path))
		}
	}

	return vars[0].name + indexChain(p.Rel(vars[0].path))
}

func indexChain(segs []mapping.Segment) string {
	var sb strings.Builder

	for _, s := range segs {
		sb.WriteString("[")
		sb.WriteString(script.Quote(s.String()))
		sb.WriteString("]")
	}

	return sb.String()
}

func dictLiteral(dict map[string]string) string {
	keys := make([]string, 0, len(dict))
	for k := range dict {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	entries := make([]string, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, script.Quote(k)+": "+script.Quote(dict[k]))
	}

	return "{" + strings.Join(entries, ", ") + "}"
}

// uniqueName derives a loop variable name from a tag's local part, adding a
// numeric suffix while the name is taken in scope.
func uniqueName(local string, vars []variable) string {
	var sb strings.Builder

	sb.WriteByte('_')

	for _, c := range local {
		if c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c) {
			sb.WriteRune(c)
		} else {
			sb.WriteByte('_')
		}
	}

	base := sb.String()

	taken := func(name string) bool {
		if slices.Contains(reservedNames, name) {
			return true
		}

		return slices.ContainsFunc(vars, func(v variable) bool { return v.name == name })
	}

	name := base
	for n := 2; taken(name); n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}

	return name
}
