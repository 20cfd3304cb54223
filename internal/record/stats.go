package record

import (
	"sort"
)

// Stats records which paths occur in a set of records and how often.
// It is not safe for concurrent use.
type Stats struct {
	counts  map[string]int
	records int
}

// NewStats creates empty statistics.
func NewStats() *Stats {
	return &Stats{counts: make(map[string]int)}
}

// Add accumulates every element and attribute path of rec.
func (s *Stats) Add(rec *Record) {
	if rec == nil || rec.Root == nil || rec.IsPoison() {
		return
	}

	s.records++

	rec.Root.Walk(func(n *Node) {
		p := n.Path()
		s.counts[p]++

		for _, a := range n.Attrs {
			s.counts[p+"/@"+a.Name.String()]++
		}
	})
}

// Records returns the number of records added.
func (s *Stats) Records() int {
	return s.records
}

// Contains reports whether path was seen at least once.
func (s *Stats) Contains(path string) bool {
	return s.counts[path] > 0
}

// Count returns how many times path was seen.
func (s *Stats) Count(path string) int {
	return s.counts[path]
}

// Paths returns all seen paths sorted.
func (s *Stats) Paths() []string {
	out := make([]string, 0, len(s.counts))
	for p := range s.counts {
		out = append(out, p)
	}

	sort.Strings(out)

	return out
}
