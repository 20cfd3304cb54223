package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knakk/rdf"
)

// ErrNoTriples is reported when a record reads as RDF/XML but says nothing.
var ErrNoTriples = errors.New("record produced no RDF triples")

// ParseRDFFormat maps a configured format name to an rdf output format.
func ParseRDFFormat(name string) (rdf.Format, error) {
	switch strings.ToLower(name) {
	case "", "turtle", "ttl":
		return rdf.Turtle, nil
	case "ntriples", "nt", "n-triples":
		return rdf.NTriples, nil
	default:
		return 0, fmt.Errorf("unsupported RDF output format %q", name)
	}
}

// RDFConverter reads a serialized record as RDF/XML and writes its triples
// in Format.
type RDFConverter struct {
	Format rdf.Format
}

// Convert returns the re-encoded triples.
func (c *RDFConverter) Convert(xml string) (string, error) {
	triples, err := rdf.NewTripleDecoder(strings.NewReader(xml), rdf.RDFXML).DecodeAll()
	if err != nil {
		return "", fmt.Errorf("reading record as RDF/XML: %w", err)
	}

	if len(triples) == 0 {
		return "", ErrNoTriples
	}

	var sb strings.Builder

	enc := rdf.NewTripleEncoder(&sb, c.Format)
	if err := enc.EncodeAll(triples); err != nil {
		return "", fmt.Errorf("writing RDF: %w", err)
	}

	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("writing RDF: %w", err)
	}

	return sb.String(), nil
}
