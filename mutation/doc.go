// Package mutation applies accepted matches to the external note store:
// moving the notes' cards to a target deck and optionally labeling them.
package mutation
