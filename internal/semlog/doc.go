// Package semlog provides the append-only semantic log: a durable text file
// of RDF facts derived from accepted grid coordinates.
//
// Each accepted coordinate produces one fact group of three triples:
//
//	<label> a obo:MFOEM_000194                      (label is-a Valence)
//	obo:MFOEM_000194 rdfs:subClassOf obo:BFO_0000144  (Valence is-subclass-of ProcessProfile)
//	<label> obo:y "<y>"^^xsd:double                 (label has-y-value y)
//
// where <label> is obo:MFOEM_000208 (negative valence) or obo:MFOEM_000207
// (positive valence).
//
// Groups are self-contained documents (Turtle or N-Triples) so the file
// stays parseable however many process runs have appended to it. The file
// is opened in append mode and is never truncated or rewritten.
package semlog
