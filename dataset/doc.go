// Package dataset reads objectives and candidate pools from files and writes
// the flat decision log.
package dataset
