// Package grid provides the domain types of the affect grid.
//
// This package contains types and pure functions only. All other internal
// packages import grid; grid imports nothing internal.
//
// Key design constraints:
//   - The declared coordinate domain is the closed rectangle [0,9]x[0,9]
//   - Valence is derived from X alone and is never stored independently
//   - Coordinates are append-only: IDs are assigned by the store and never reused
package grid
