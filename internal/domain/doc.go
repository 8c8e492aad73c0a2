// Package domain models the village weather simulation.
//
// # Villages and Periods
//
// Weather is simulated independently for a small fixed set of villages
// (Rudania, Inariko, Vhintl). Each village gets exactly one [WeatherReading]
// per "period": a fixed 24-hour window that cuts over at a fixed hour in a
// fixed reference timezone (08:00 America/New_York by default), not at
// calendar midnight. Period bounds are computed from reference-local wall
// time via [PeriodAt], so the cutover instant tracks daylight-saving offset
// changes instead of drifting by an hour twice a year. The next period is
// always derived from the current one ([NextPeriodAt] = current + 24h) so
// the two can never disagree about where a boundary falls.
//
// # Seasons and Candidate Tables
//
// Each period's season is derived from the period start's calendar date in
// the reference timezone (Mar-May spring, Jun-Aug summer, Sep-Nov autumn,
// Dec-Feb winter) and frozen on the record at generation time. A [Catalog]
// maps village and season to candidate lists for the four attribute axes:
// temperature, wind, precipitation, and special conditions. Candidates carry
// selection weights and optional threshold conditions against axes chosen
// earlier in the roll (e.g. snow requires freezing temperatures, a blizzard
// additionally requires strong wind). The catalog is static configuration;
// cmd/validate checks its integrity.
//
// # Generation
//
// [Generate] rolls the axes in order temperature → wind → precipitation →
// special, because later axes are filtered by earlier choices. Each axis is
// a weighted random draw; the probability share the winning candidate held
// within the sampled set is recorded on the reading for audit. The special
// axis is gated by a bernoulli draw first — most periods have no special.
// Filtering that would eliminate every candidate degrades to the unfiltered
// season list; physical consistency is best-effort, not a hard contract.
//
// # Smoothing
//
// [SmoothTemperatures] and [SmoothWinds] narrow candidate sets using the
// most recent stored readings so values drift rather than jump: temperature
// stays within ±20°F of the previous reading (pinned exactly when the two
// previous readings both carried a special condition), wind moves at most
// one step along the season's ordered intensity list.
//
// # Guaranteed Specials
//
// A special condition whose probability is the "guaranteed" sentinel was
// injected by the scheduler rather than rolled. Guaranteed specials outrank
// rolled ones but never overwrite another guaranteed special; that conflict
// is enforced at the store boundary.
package domain
