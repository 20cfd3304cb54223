package builder

import (
	"encoding/xml"
	"sort"
	"strings"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// Serialize renders doc as indented XML. Namespace declarations for every
// prefix in use go on the root element. An empty document renders as the
// XML declaration alone.
func Serialize(doc *Document) string {
	var sb strings.Builder

	sb.WriteString(xmlHeader)

	if doc == nil || doc.Root == nil {
		return sb.String()
	}

	prefixes := make([]string, 0, len(doc.Namespaces))
	for p := range doc.Namespaces {
		prefixes = append(prefixes, p)
	}

	sort.Strings(prefixes)

	decls := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		decls = append(decls, "xmlns:"+p+`="`+escape(doc.Namespaces[p])+`"`)
	}

	writeElement(&sb, doc.Root, 0, decls)
	sb.WriteString("\n")

	return sb.String()
}

func writeElement(sb *strings.Builder, e *Element, depth int, decls []string) {
	indent := strings.Repeat("  ", depth)
	name := e.Name.String()

	sb.WriteString(indent)
	sb.WriteString("<")
	sb.WriteString(name)

	for _, d := range decls {
		sb.WriteString(" ")
		sb.WriteString(d)
	}

	for _, a := range e.Attrs {
		sb.WriteString(" ")
		sb.WriteString(a.Name.String())
		sb.WriteString(`="`)
		sb.WriteString(escape(a.Value))
		sb.WriteString(`"`)
	}

	if len(e.Children) == 0 {
		sb.WriteString("/>")
		return
	}

	sb.WriteString(">")

	elements := e.Elements()
	if len(elements) == 0 {
		writeContent(sb, e.Children)
	} else {
		for _, c := range e.Children {
			sb.WriteString("\n")

			switch c := c.(type) {
			case *Element:
				writeElement(sb, c, depth+1, nil)
			default:
				sb.WriteString(indent + "  ")
				writeContent(sb, []Node{c})
			}
		}

		sb.WriteString("\n")
		sb.WriteString(indent)
	}

	sb.WriteString("</")
	sb.WriteString(name)
	sb.WriteString(">")
}

func writeContent(sb *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Text:
			sb.WriteString(escape(n.Value))
		case *CData:
			// "]]>" cannot appear inside a section; split it across two
			sb.WriteString(cdataOpen)
			sb.WriteString(strings.ReplaceAll(n.Value, cdataClose, "]]]]><![CDATA[>"))
			sb.WriteString(cdataClose)
		}
	}
}

func escape(s string) string {
	var sb strings.Builder

	_ = xml.EscapeText(&sb, []byte(s))

	return sb.String()
}
