// Package selection turns a ranked shortlist into accepted candidates.
//
// An Engine accepts candidates automatically above a score threshold,
// interactively through a Prompter, or both: auto-acceptance fills slots
// first and the prompter is only consulted for what remains. Picks then
// pass through an optional diversity filter.
//
// A user quit is not an error. Select reports it as a selection of kind
// core.KindTerminated and the caller stops processing further queries.
//
// ParsePicks, ParseChoice and Diversify are pure functions and can be used
// on their own.
package selection
