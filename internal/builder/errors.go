package builder

import (
	"errors"
	"fmt"
)

// ErrMultipleRoots is returned when a program emits a second top-level
// element.
var ErrMultipleRoots = errors.New("output already has a root element")

// UnknownPrefixError reports a name whose prefix the definition does not
// declare.
type UnknownPrefixError struct {
	Prefix string
	Name   string
}

func (e *UnknownPrefixError) Error() string {
	return fmt.Sprintf("no namespace declared for prefix %q in %q", e.Prefix, e.Name)
}

// LangReason classifies an xml:lang violation.
type LangReason string

const (
	// LangEmptyContent: the element carries a language but no content.
	LangEmptyContent LangReason = "EMPTY_CONTENT"
	// LangInvalidFormat: the value is empty or not a language tag.
	LangInvalidFormat LangReason = "INVALID_FORMAT"
)

// LangError is an xml:lang violation on one element.
type LangError struct {
	Element string
	Value   string
	Reason  LangReason
}

func (e *LangError) Error() string {
	switch e.Reason {
	case LangEmptyContent:
		return fmt.Sprintf("element %s has xml:lang=%q but no content", e.Element, e.Value)
	default:
		return fmt.Sprintf("element %s has invalid xml:lang=%q", e.Element, e.Value)
	}
}
