package semlog

import "github.com/roach88/affectgrid/internal/grid"

// Namespace IRIs used by the fact groups.
const (
	NamespaceOBO  = "http://purl.obolibrary.org/obo/"
	NamespaceRDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NamespaceRDFS = "http://www.w3.org/2000/01/rdf-schema#"
	NamespaceXSD  = "http://www.w3.org/2001/XMLSchema#"
)

// Terms from the Mental Functioning Ontology (MFOEM) and BFO.
const (
	NegativeValence = NamespaceOBO + "MFOEM_000208"
	PositiveValence = NamespaceOBO + "MFOEM_000207"
	Valence         = NamespaceOBO + "MFOEM_000194"
	ProcessProfile  = NamespaceOBO + "BFO_0000144"

	// HasYValue attaches the arousal (y) value to a valence label.
	HasYValue = NamespaceOBO + "y"
)

// Standard predicates and datatypes.
const (
	RDFType        = NamespaceRDF + "type"
	RDFSSubClassOf = NamespaceRDFS + "subClassOf"
	XSDDouble      = NamespaceXSD + "double"
)

// prefix is a Turtle namespace declaration.
type prefix struct {
	name string
	iri  string
}

// turtlePrefixes are declared at the top of every Turtle group, in this order.
var turtlePrefixes = []prefix{
	{"obo", NamespaceOBO},
	{"rdf", NamespaceRDF},
	{"rdfs", NamespaceRDFS},
	{"xsd", NamespaceXSD},
}

// LabelIRI returns the ontology term for a valence label.
func LabelIRI(v grid.Valence) string {
	if v == grid.ValenceNegative {
		return NegativeValence
	}
	return PositiveValence
}
