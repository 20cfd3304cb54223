package validate

import (
	"fmt"
	"net/url"

	"sip-creator/internal/builder"
	"sip-creator/internal/diagnostic"
	"sip-creator/internal/recdef"
)

// URIs checks every value of a node flagged as URI in the definition.
func URIs(tree *recdef.Tree, doc *builder.Document) diagnostic.Diagnostics {
	var diags diagnostic.Diagnostics

	tree.Walk(func(n *recdef.Node) {
		if !n.URI {
			return
		}

		for _, v := range values(doc, n.Path) {
			if v == "" {
				continue
			}

			if err := checkURI(v); err != nil {
				diags.AddError(CodeInvalidURI, err.Error(), "", n.Path)
			}
		}
	})

	return diags
}

func checkURI(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("%q is not a valid URI: %w", s, err)
	}

	if !u.IsAbs() || (u.Host == "" && u.Opaque == "" && u.Path == "") {
		return fmt.Errorf("%q is not an absolute URI", s)
	}

	return nil
}
