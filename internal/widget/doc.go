// Package widget contains the refresh routines that render data point values
// into dashboard elements.
//
// Each routine takes the changed identifier, finds the elements bound to it
// through one binding attribute family and rewrites their visible properties
// from the Value Store. Routines never fail: unknown identifiers render as
// neutral defaults (0, false, "") and malformed structured values are logged
// and rendered empty.
package widget
