package semlog

import (
	"bytes"
	"fmt"
	"strings"
)

// Format specifies the serialization of fact groups.
type Format string

const (
	// FormatTurtle produces prefixed Turtle, one statement per line.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples with full IRIs.
	FormatNTriples Format = "ntriples"
)

// ValidFormats lists the supported encodings.
var ValidFormats = []Format{FormatTurtle, FormatNTriples}

// ParseFormat validates a format name. The empty string means FormatTurtle.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatTurtle, nil
	}
	for _, f := range ValidFormats {
		if Format(s) == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

// Encode serializes one fact group as a self-contained document.
func Encode(format Format, g FactGroup) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatTurtle:
		writeTurtle(&buf, g)
	case FormatNTriples:
		writeNTriples(&buf, g)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	return buf.Bytes(), nil
}

// writeTurtle writes a group with its own prefix block. Repeated @prefix
// declarations with identical IRIs are legal, so concatenated groups remain
// a valid Turtle document.
func writeTurtle(buf *bytes.Buffer, g FactGroup) {
	fmt.Fprintf(buf, "# coordinate %d valence %s\n", g.CoordinateID, g.Valence)
	for _, p := range turtlePrefixes {
		fmt.Fprintf(buf, "@prefix %s: <%s> .\n", p.name, p.iri)
	}
	buf.WriteString("\n")

	for _, t := range g.Triples {
		fmt.Fprintf(buf, "%s %s %s .\n",
			turtleTerm(t.Subject),
			turtlePredicate(t.Predicate),
			turtleTerm(t.Object),
		)
	}
	buf.WriteString("\n")
}

// writeNTriples writes a group as N-Triples.
func writeNTriples(buf *bytes.Buffer, g FactGroup) {
	fmt.Fprintf(buf, "# coordinate %d valence %s\n", g.CoordinateID, g.Valence)
	for _, t := range g.Triples {
		fmt.Fprintf(buf, "%s %s %s .\n",
			ntriplesTerm(t.Subject),
			ntriplesTerm(t.Predicate),
			ntriplesTerm(t.Object),
		)
	}
}

func turtlePredicate(t Term) string {
	if t.IRI == RDFType {
		return "a"
	}
	return turtleTerm(t)
}

// turtleTerm abbreviates IRIs under a declared prefix.
func turtleTerm(t Term) string {
	if t.IsLiteral() {
		return fmt.Sprintf("\"%s\"^^%s", escapeString(t.Literal), compactIRI(t.Datatype))
	}
	return compactIRI(t.IRI)
}

func compactIRI(iri string) string {
	for _, p := range turtlePrefixes {
		local, ok := strings.CutPrefix(iri, p.iri)
		if ok && isPrefixedLocalName(local) {
			return p.name + ":" + local
		}
	}
	return "<" + iri + ">"
}

// isPrefixedLocalName accepts the conservative subset of PN_LOCAL used by
// the vocabulary (letters, digits, underscore).
func isPrefixedLocalName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

func ntriplesTerm(t Term) string {
	if t.IsLiteral() {
		return fmt.Sprintf("\"%s\"^^<%s>", escapeString(t.Literal), t.Datatype)
	}
	return "<" + t.IRI + ">"
}

// escapeString escapes special characters in literals for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
