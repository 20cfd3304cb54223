// Package diagnostic collects coded errors, warnings and notes produced while
// checking a mapping configuration, so that every problem is reported at once
// instead of failing on the first.
package diagnostic
