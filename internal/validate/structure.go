package validate

import (
	"fmt"
	"strings"

	"sip-creator/internal/builder"
	"sip-creator/internal/diagnostic"
	"sip-creator/internal/recdef"
)

// Structure checks the required and singular rules of the definition
// against doc. Elements unknown to the definition are left to the schema
// stage.
func Structure(tree *recdef.Tree, doc *builder.Document) diagnostic.Diagnostics {
	var diags diagnostic.Diagnostics

	root := tree.Node(tree.Root())

	if doc.Root == nil {
		diags.AddError(CodeRequiredMissing, fmt.Sprintf("the record must have a %s root element", root.Tag), "", root.Path)
		return diags
	}

	doc.Root.Walk(func(path string, el *builder.Element) {
		id, ok := tree.Lookup(path)
		if !ok {
			return
		}

		for _, aid := range tree.AttrChildren(id) {
			a := tree.Node(aid)
			if _, has := el.Attr(a.Tag); a.Required && !has {
				diags.AddError(CodeRequiredMissing, fmt.Sprintf("%s must have attribute %s", el.Tag, a.Tag), "", path)
			}
		}

		counts := make(map[string]int)
		for _, c := range el.Elements() {
			counts[c.Tag]++
		}

		for _, cid := range tree.ElemChildren(id) {
			c := tree.Node(cid)
			n := counts[c.Tag]

			switch {
			case c.Required && n == 0:
				diags.AddError(CodeRequiredMissing, fmt.Sprintf("%s must contain %s", el.Tag, c.Tag), "", path)
			case c.Singular && n > 1:
				diags.AddError(CodeTooMany,
					fmt.Sprintf("%s may contain at most one %s, found %d", el.Tag, c.Tag, n), "", path)
			}
		}
	})

	return diags
}

// values returns the text of every element at path, or every value of the
// attribute when the last step of path is an attribute.
func values(doc *builder.Document, path string) []string {
	if doc.Root == nil {
		return nil
	}

	elemPath, attr, isAttr := strings.Cut(path, "/@")

	var out []string

	doc.Root.Walk(func(p string, el *builder.Element) {
		if p != elemPath {
			return
		}

		if !isAttr {
			out = append(out, el.Text())
			return
		}

		if v, ok := el.Attr(attr); ok {
			out = append(out, v)
		}
	})

	return out
}
