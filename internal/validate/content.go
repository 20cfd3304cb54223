package validate

import (
	"fmt"

	"sip-creator/internal/builder"
	"sip-creator/internal/diagnostic"
	"sip-creator/internal/recdef"
	"sip-creator/internal/script"
)

// Assertions evaluates the content rules of a definition. Conditions are
// compiled once and shared by every record.
type Assertions struct {
	rules []rule
}

type rule struct {
	path string
	expr *script.Expr
}

// NewAssertions compiles every assertion of def. A condition that does not
// compile is an error: the definition itself is broken.
func NewAssertions(compiler *script.Compiler, def *recdef.Definition) (*Assertions, error) {
	a := &Assertions{}

	for _, as := range def.Assertions {
		expr, err := compiler.CompileExpr(as.Condition)
		if err != nil {
			return nil, fmt.Errorf("assertion on %s: %w", as.Path, err)
		}

		a.rules = append(a.rules, rule{path: as.Path, expr: expr})
	}

	return a, nil
}

// Len is the number of rules.
func (a *Assertions) Len() int {
	return len(a.rules)
}

// Check runs every rule against each value found at its path. A rule that
// yields a non-empty string reports it as the violation.
func (a *Assertions) Check(doc *builder.Document) diagnostic.Diagnostics {
	var diags diagnostic.Diagnostics

	for _, r := range a.rules {
		for _, v := range values(doc, r.path) {
			res, err := r.expr.Eval(map[string]script.Value{"value": v})
			if err != nil {
				diags.AddError(CodeAssertion, fmt.Sprintf("assertion failed to run: %v", err), "", r.path)
				continue
			}

			if msg, ok := res.(string); ok && msg != "" {
				diags.AddError(CodeAssertion, msg, "", r.path)
			}
		}
	}

	return diags
}
