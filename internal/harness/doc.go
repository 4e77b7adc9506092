// Package harness runs YAML scenarios against a real in-process affect grid.
//
// Each scenario gets a fresh SQLite file and semantic log in a temporary
// directory, a running pipeline and the HTTP handler of the server. Flow
// steps are sent through the handler exactly as a browser would send them.
//
// # Scenario Format
//
//	name: round_trip_negative
//	description: "A click left of the midline is stored and logged as Negative"
//	session: scenario-session       # cookie value, optional
//	range_policy: accept            # accept | reject | clamp, optional
//	semlog_format: turtle           # turtle | ntriples, optional
//	disable_semlog: false           # run without the semantic log
//	setup:                          # rows inserted before the flow
//	  - { x: 4.0, y: 4.0 }
//	flow:
//	  - body: '{"x": 2.0, "y": 7.0}'
//	    expect:
//	      status: 204
//	      valence: Negative
//	  - method: GET
//	    path: /
//	    expect: { status: 200 }
//	assertions:
//	  - type: row_count
//	    count: 1
//	  - type: fact_count
//	    count: 1
//	  - type: coordinate
//	    id: 1
//	    x: 2.0
//	    y: 7.0
//	  - type: fact
//	    id: 1
//	    valence: Negative
//	    y: 7.0
//	  - type: log_contains
//	    text: 'obo:y "7.0"^^xsd:double'
//
// # Assertion Types
//
//   - row_count: number of rows in the coordinates table
//   - fact_count: number of fact groups in the semantic log
//   - coordinate: the row with the given id has the given x and y
//   - fact: the fact group of the given coordinate id has the given valence
//     and y value
//   - log_contains: the raw semantic log contains text
//
// # Deterministic Output
//
// A fresh database assigns ids from 1 and the session cookie comes from a
// fixed generator, so the semantic log of a scenario is byte-identical
// across runs and can be compared against a golden file.
package harness
