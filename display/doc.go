// Package display converts a docking RelativeState into screen-space
// placements, color classifications and fixed-width metric strings.
//
// All placements are in abstract pixels with the origin at the centre of the
// viewport. The X axis grows to the right; the Y axis follows the host's
// screen convention and grows downward, so physical "up" errors are emitted
// with a negated Y. Every function is total: non-finite and out-of-range
// inputs are clamped rather than reported.
package display
