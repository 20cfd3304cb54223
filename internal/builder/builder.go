package builder

import (
	"regexp"
	"strings"

	"sip-creator/internal/common"
	"sip-creator/internal/recdef"
	"sip-creator/internal/record"
	"sip-creator/internal/script"
)

const langAttr = "xml:lang"

var langPattern = regexp.MustCompile(
	`^[a-zA-Z]{2,3}(-[a-zA-Z]{4})?(-([a-zA-Z]{2}|[0-9]{3}))?(-([a-zA-Z0-9]{5,8}|[0-9][a-zA-Z0-9]{3}))*$`)

// ValidLang reports whether v looks like a BCP-47 language tag.
func ValidLang(v string) bool {
	return langPattern.MatchString(v)
}

// Builder collects the elements of one program run. It is not safe for
// concurrent use; create one per run.
type Builder struct {
	def   *recdef.Definition
	root  *Element
	stack []*Element
	used  map[string]string
}

var _ script.Sink = (*Builder)(nil)

// New creates a builder resolving names against def.
func New(def *recdef.Definition) *Builder {
	return &Builder{def: def, used: make(map[string]string)}
}

// Element implements script.Sink. Lists among the attribute values and the
// content expand the element: as many elements are created as the longest
// list has values, and the i-th element takes the i-th value of each list,
// falling back to its first value. body runs inside every created element.
func (b *Builder) Element(tag string, attrs *script.Map, content script.Value, body func() error) error {
	name, err := b.resolve(tag, false)
	if err != nil {
		return err
	}

	count := 1
	if l, ok := content.([]script.Value); ok {
		count = max(count, len(script.Flatten(l)))
	}

	var attrNames []record.QName

	if attrs != nil {
		for _, k := range attrs.Keys() {
			an, err := b.resolve(k, true)
			if err != nil {
				return err
			}

			attrNames = append(attrNames, an)

			v, _ := attrs.Get(k)
			if l, ok := v.([]script.Value); ok {
				count = max(count, len(script.Flatten(l)))
			}
		}
	}

	for i := 0; i < count; i++ {
		el := &Element{Name: name, Tag: tag}

		if attrs != nil {
			for j, k := range attrs.Keys() {
				v, _ := attrs.Get(k)

				val := valueAt(v, i)
				if val == nil {
					continue
				}

				el.Attrs = append(el.Attrs, Attr{Name: attrNames[j], Tag: k, Value: script.Text(val)})
			}
		}

		if val := valueAt(content, i); val != nil {
			el.Children = append(el.Children, splitCData(script.Text(val))...)
		}

		if err := b.open(el); err != nil {
			return err
		}

		err := body()

		b.close()

		if err != nil {
			return err
		}

		if err := checkLang(el); err != nil {
			return err
		}
	}

	return nil
}

func valueAt(v script.Value, i int) script.Value {
	if l, ok := v.([]script.Value); ok {
		return common.At(script.Flatten(l), i)
	}

	return v
}

func checkLang(el *Element) error {
	lang, ok := el.Attr(langAttr)
	if !ok {
		return nil
	}

	if !ValidLang(lang) {
		return &LangError{Element: el.Tag, Value: lang, Reason: LangInvalidFormat}
	}

	if el.Text() == "" && len(el.Elements()) == 0 {
		return &LangError{Element: el.Tag, Value: lang, Reason: LangEmptyContent}
	}

	return nil
}

func (b *Builder) open(el *Element) error {
	if len(b.stack) == 0 {
		if b.root != nil {
			return ErrMultipleRoots
		}

		b.root = el
	} else {
		parent := b.stack[len(b.stack)-1]
		parent.Children = append(parent.Children, el)
	}

	b.stack = append(b.stack, el)

	return nil
}

func (b *Builder) close() {
	b.stack = b.stack[:len(b.stack)-1]
}

// resolve turns a prefixed tag into a qualified name. Unqualified names keep
// only their local part.
func (b *Builder) resolve(tag string, attr bool) (record.QName, error) {
	prefix, local, ok := strings.Cut(tag, ":")
	if !ok {
		return record.QName{Local: tag}, nil
	}

	var uri string

	if prefix == "xml" {
		uri = record.XMLNamespace
	} else {
		if b.def != nil {
			uri, ok = b.def.Namespace(prefix)
		}

		if b.def == nil || !ok {
			return record.QName{}, &UnknownPrefixError{Prefix: prefix, Name: tag}
		}
	}

	qualified := b.def == nil || b.def.ElementQualified(prefix)
	if attr {
		qualified = b.def == nil || b.def.AttributeQualified(prefix)
	}

	if !qualified {
		return record.QName{Local: local}, nil
	}

	if prefix != "xml" {
		b.used[prefix] = uri
	}

	return record.QName{Space: uri, Local: local, Prefix: prefix}, nil
}

// Finish strips empty nodes and returns the document. Root is nil when
// nothing remains.
func (b *Builder) Finish() *Document {
	doc := &Document{Namespaces: b.used}

	if b.root != nil && !strip(b.root) {
		doc.Root = b.root
	}

	return doc
}

const (
	cdataOpen  = "<![CDATA["
	cdataClose = "]]>"
)

// splitCData turns text with embedded CDATA markers into alternating Text
// and CData nodes.
func splitCData(s string) []Node {
	var out []Node

	for {
		start := strings.Index(s, cdataOpen)
		if start < 0 {
			break
		}

		end := strings.Index(s[start+len(cdataOpen):], cdataClose)
		if end < 0 {
			break
		}

		if start > 0 {
			out = append(out, &Text{Value: s[:start]})
		}

		body := s[start+len(cdataOpen) : start+len(cdataOpen)+end]
		out = append(out, &CData{Value: body})
		s = s[start+len(cdataOpen)+end+len(cdataClose):]
	}

	if s != "" {
		out = append(out, &Text{Value: s})
	}

	return out
}
