package record

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// XMLNamespace is the namespace bound to the reserved "xml" prefix.
const XMLNamespace = "http://www.w3.org/XML/1998/namespace"

// ErrMalformed reports tags that do not nest.
var ErrMalformed = errors.New("malformed xml")

// scanner walks raw XML tokens, keeping its own namespace scopes so that
// prefixes survive next to the resolved URIs.
type scanner struct {
	dec   *xml.Decoder
	ns    []map[string]string
	open  []xml.Name
	path  []string
	stack []*Node
	text  []*strings.Builder
}

func newScanner(r io.Reader) *scanner {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	return &scanner{dec: dec}
}

func (s *scanner) pushScope(se xml.StartElement) {
	scope := map[string]string{}

	for _, a := range se.Attr {
		switch {
		case a.Name.Space == "xmlns":
			scope[a.Name.Local] = a.Value
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			scope[""] = a.Value
		}
	}

	s.ns = append(s.ns, scope)
}

func (s *scanner) popScope() {
	s.ns = s.ns[:len(s.ns)-1]
}

// enter opens se. RawToken does not pair tags, so the names are kept here.
func (s *scanner) enter(se xml.StartElement) {
	s.pushScope(se)
	s.open = append(s.open, se.Name)
}

// leave closes the innermost element, which must be the one ee names.
func (s *scanner) leave(ee xml.EndElement) error {
	if len(s.open) == 0 {
		return fmt.Errorf("%w: unexpected end element %s", ErrMalformed, xmlTag(ee.Name))
	}

	last := len(s.open) - 1
	if s.open[last] != ee.Name {
		return fmt.Errorf("%w: element %s closed by %s", ErrMalformed, xmlTag(s.open[last]), xmlTag(ee.Name))
	}

	s.open = s.open[:last]
	s.popScope()

	return nil
}

func (s *scanner) resolve(prefix string, isAttr bool) string {
	if prefix == "xml" {
		return XMLNamespace
	}

	// unprefixed attributes are never in a namespace
	if prefix == "" && isAttr {
		return ""
	}

	for i := len(s.ns) - 1; i >= 0; i-- {
		if uri, ok := s.ns[i][prefix]; ok {
			return uri
		}
	}

	return ""
}

func (s *scanner) qname(n xml.Name, isAttr bool) QName {
	return QName{Space: s.resolve(n.Space, isAttr), Local: n.Local, Prefix: n.Space}
}

func (s *scanner) newNode(se xml.StartElement) *Node {
	node := &Node{Name: s.qname(se.Name, false)}

	for _, a := range se.Attr {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}

		node.Attrs = append(node.Attrs, Attr{Name: s.qname(a.Name, true), Value: a.Value})
	}

	return node
}

func (s *scanner) push(node *Node) {
	if len(s.stack) > 0 {
		s.stack[len(s.stack)-1].Append(node)
	}

	s.stack = append(s.stack, node)
	s.text = append(s.text, &strings.Builder{})
}

func (s *scanner) pop() *Node {
	last := len(s.stack) - 1
	node := s.stack[last]
	node.Text = strings.TrimSpace(s.text[last].String())
	s.stack = s.stack[:last]
	s.text = s.text[:last]

	return node
}

func (s *scanner) currentPath() string {
	return "/" + strings.Join(s.path, "/")
}

// Parse reads one XML document and returns its root element.
func Parse(r io.Reader) (*Node, error) {
	s := newScanner(r)

	for {
		tok, err := s.dec.RawToken()
		if errors.Is(err, io.EOF) {
			if len(s.open) > 0 {
				return nil, fmt.Errorf("parsing record: %w: element %s is not closed", ErrMalformed, xmlTag(s.open[len(s.open)-1]))
			}

			return nil, errors.New("parsing record: no root element")
		}

		if err != nil {
			return nil, fmt.Errorf("parsing record: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			s.enter(t)
			s.push(s.newNode(t))
		case xml.EndElement:
			if err := s.leave(t); err != nil {
				return nil, fmt.Errorf("parsing record: %w", err)
			}

			node := s.pop()

			if len(s.stack) == 0 {
				return node, nil
			}
		case xml.CharData:
			if len(s.text) > 0 {
				s.text[len(s.text)-1].Write(t)
			}
		}
	}
}

// ReaderConfig tells a Reader where records start and how they are identified.
type ReaderConfig struct {
	// RecordRoot is the absolute path of the element that delimits one record,
	// e.g. "/OAI-PMH/ListRecords/record".
	RecordRoot string
	// UniqueID is a path into the record (starting with "/input") whose first
	// value becomes Record.ID. When empty the record number is used.
	UniqueID string
}

// Reader streams records out of a large XML document.
type Reader struct {
	cfg   ReaderConfig
	s     *scanner
	count int
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader, cfg ReaderConfig) *Reader {
	return &Reader{cfg: cfg, s: newScanner(r)}
}

// Next returns the next record, or io.EOF when the stream is exhausted.
func (rd *Reader) Next() (*Record, error) {
	s := rd.s

	for {
		tok, err := s.dec.RawToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(s.open) > 0 {
					return nil, fmt.Errorf("reading record %d: %w: element %s is not closed",
						rd.count+1, ErrMalformed, xmlTag(s.open[len(s.open)-1]))
				}

				return nil, io.EOF
			}

			return nil, fmt.Errorf("reading record %d: %w", rd.count+1, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			s.enter(t)
			s.path = append(s.path, xmlTag(t.Name))

			switch {
			case len(s.stack) > 0:
				s.push(s.newNode(t))
			case s.currentPath() == rd.cfg.RecordRoot:
				node := s.newNode(t)
				node.Name = QName{Local: InputTag}
				s.push(node)
			}
		case xml.EndElement:
			if err := s.leave(t); err != nil {
				return nil, fmt.Errorf("reading record %d: %w", rd.count+1, err)
			}

			var done *Node
			if len(s.stack) > 0 {
				node := s.pop()
				if len(s.stack) == 0 {
					done = node
				}
			}

			s.path = s.path[:len(s.path)-1]

			if done != nil {
				rd.count++

				return rd.record(done), nil
			}
		case xml.CharData:
			if len(s.text) > 0 {
				s.text[len(s.text)-1].Write(t)
			}
		}
	}
}

func (rd *Reader) record(root *Node) *Record {
	rec := &Record{Number: rd.count, Root: root, ID: strconv.Itoa(rd.count)}

	if rd.cfg.UniqueID != "" {
		if ids := root.Values(rd.cfg.UniqueID); len(ids) > 0 && ids[0] != "" {
			rec.ID = ids[0]
		}
	}

	return rec
}

func xmlTag(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}

	return n.Space + ":" + n.Local
}
