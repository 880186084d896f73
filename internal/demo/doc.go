// Package demo synthesises plausible data-point values when no live backend is
// present.
//
// The generator is keyed by ValueKind: a percentage produces an integer between
// 0 and 100, a Kelvin kind a colour temperature between 2000 and 6500, a boolean
// kind is true roughly one time in ten (alarms are rare), and so on. Every
// generated state is stamped with the generator's clock.
//
// Calendar kinds are the one exception to statelessness: the first calendar
// request returns a fixed fixture covering an event that just ended, one ending
// soon, one starting soon and one later today. Later requests are randomised.
package demo
