package semlog

import (
	"math"
	"strconv"
	"strings"

	"github.com/roach88/affectgrid/internal/grid"
)

// Term is an RDF node: an IRI, or a literal with a datatype.
type Term struct {
	IRI      string
	Literal  string
	Datatype string
}

// IRITerm returns an IRI node.
func IRITerm(iri string) Term {
	return Term{IRI: iri}
}

// DoubleTerm returns an xsd:double literal.
func DoubleTerm(v float64) Term {
	return Term{Literal: formatDouble(v), Datatype: XSDDouble}
}

// IsLiteral reports whether t is a literal node.
func (t Term) IsLiteral() bool {
	return t.IRI == ""
}

// Triple is a single subject-predicate-object fact.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// FactGroup is the unit appended to the log for one accepted coordinate.
// Its triples land in the file together or not at all.
type FactGroup struct {
	CoordinateID int64
	Valence      grid.Valence
	Y            float64
	Triples      []Triple
}

// NewFactGroup builds the three facts recorded for a classified coordinate.
func NewFactGroup(coordinateID int64, v grid.Valence, y float64) FactGroup {
	label := IRITerm(LabelIRI(v))
	return FactGroup{
		CoordinateID: coordinateID,
		Valence:      v,
		Y:            y,
		Triples: []Triple{
			{Subject: label, Predicate: IRITerm(RDFType), Object: IRITerm(Valence)},
			{Subject: IRITerm(Valence), Predicate: IRITerm(RDFSSubClassOf), Object: IRITerm(ProcessProfile)},
			{Subject: label, Predicate: IRITerm(HasYValue), Object: DoubleTerm(y)},
		},
	}
}

// formatDouble renders v in the xsd:double lexical space, keeping a
// fractional part for whole numbers so 7 reads as "7.0".
func formatDouble(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "INF"
	case math.IsInf(v, -1):
		return "-INF"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
