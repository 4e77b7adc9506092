// Package pipeline implements coordinate ingestion: decode, validate,
// persist, classify and record semantic facts.
//
// ARCHITECTURE:
//
// Single-Writer Loop:
// HTTP handlers never touch the durable stores. They decode the request
// body, apply the range policy and hand the point to Submit, which enqueues
// it and suspends until the Run loop replies (or the caller's context ends).
// Run processes one submission at a time, so the coordinate store and the
// semantic log see requests in the same order and a slow write never
// blocks an HTTP goroutine on I/O.
//
// Processing Steps (always in this order):
//  1. Insert (x, y) into the coordinate store, receiving an id
//  2. Classify x into a valence
//  3. Append the fact group to the semantic log (when configured)
//
// FAILURE MODEL:
//
//   - MALFORMED_INPUT / OUT_OF_RANGE: rejected before enqueueing, nothing stored
//   - STORAGE_UNAVAILABLE: step 1 failed, nothing appended
//   - LOG_APPEND_FAILURE: step 3 failed after step 1 committed. The
//     coordinate stays stored without facts; the gap is logged with the
//     coordinate id and is not rolled back.
//
// Once a submission is dequeued its steps run to completion even if the
// submitting request goes away, so a cancelled request can never leave a
// stored coordinate without an attempted fact append.
package pipeline
