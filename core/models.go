package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"slices"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

type ID uint64

// Vector is a unit-length embedding as stored in the vector cache.
type Vector []float32

func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Field is one named text field of a candidate note.
type Field struct {
	Name  string
	Value string
}

// Candidate is a note eligible to be matched against a query.
// Candidates are immutable once built by NewCandidate.
type Candidate struct {
	ID       int64
	Category string   // note type, e.g. "Cloze" or "Basic"
	Labels   []string // deduplicated and sorted
	Fields   []Field  // in note field order
	Text     string   // concatenated fields and labels used for scoring
}

// NewCandidate builds a Candidate and derives its scoring text.
func NewCandidate(id int64, category string, labels []string, fields []Field) Candidate {
	c := Candidate{
		ID:       id,
		Category: category,
		Labels:   dedupeLabels(labels),
		Fields:   slices.Clone(fields),
	}
	c.Text = candidateText(c.Fields, c.Labels)
	return c
}

func dedupeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func candidateText(fields []Field, labels []string) string {
	pieces := make([]string, 0, len(fields))
	for _, f := range fields {
		pieces = append(pieces, f.Name+": "+f.Value)
	}
	return strings.TrimSpace(strings.Join(pieces, " ") + " " + strings.Join(labels, " "))
}

// Field returns the value of the named field and whether it exists.
func (c *Candidate) Field(name string) (string, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// previewFields are checked in order when building a preview snippet.
var previewFields = []string{"Front", "Text", "Back"}

// Preview returns a short single-line snippet of the candidate, preferring the
// Front, Text and Back fields. Snippets longer than maxLen are cut and
// suffixed with " ...".
func (c *Candidate) Preview(maxLen int) string {
	snippet := ""
	for _, name := range previewFields {
		if v, ok := c.Field(name); ok && strings.TrimSpace(v) != "" {
			snippet = strings.ReplaceAll(strings.TrimSpace(v), "\n", " ")
			break
		}
	}
	if snippet == "" {
		parts := make([]string, 0, len(c.Fields))
		for _, f := range c.Fields {
			if f.Value != "" {
				parts = append(parts, f.Name+": "+f.Value)
			}
		}
		snippet = strings.Join(parts, " ")
	}
	if maxLen > 0 {
		runes := []rune(snippet)
		if len(runes) > maxLen {
			return string(runes[:maxLen]) + " ..."
		}
	}
	return snippet
}

// Hit is one nearest-neighbor result from the embedding index.
// Index points into the candidate slice the index was fit on.
type Hit struct {
	Index int
	Score float64
}

// ScoredCandidate is a candidate ranked against one query.
type ScoredCandidate struct {
	Candidate Candidate
	Position  int // index into the candidate pool
	Combined  float64
	Lexical   float64
	Semantic  float64
}

// Kind tags how a query was resolved.
type Kind int

const (
	KindPending Kind = iota
	KindAuto
	KindInteractive
	KindSkipped
	KindTerminated
)

func (k Kind) String() string {
	switch k {
	case KindAuto:
		return "auto"
	case KindInteractive:
		return "interactive"
	case KindSkipped:
		return "skipped"
	case KindTerminated:
		return "terminated"
	default:
		return "pending"
	}
}

// Pick is one accepted candidate together with its shortlist rank (0-based)
// and the path that accepted it.
type Pick struct {
	Rank      int
	Candidate ScoredCandidate
	Source    Kind
}

// Selection is the outcome for one query.
type Selection struct {
	Query string
	Kind  Kind
	Picks []Pick
}

// IDs returns the accepted candidate IDs in pick order.
func (s *Selection) IDs() []int64 {
	ids := make([]int64, len(s.Picks))
	for i, p := range s.Picks {
		ids[i] = p.Candidate.Candidate.ID
	}
	return ids
}

// MutationRequest asks the note store to move and optionally label notes.
type MutationRequest struct {
	IDs    []int64
	Target string
	Label  string
	DryRun bool
}

// NewMutationRequest deduplicates and sorts ids.
func NewMutationRequest(ids []int64, target, label string, dryRun bool) MutationRequest {
	unique := slices.Clone(ids)
	slices.Sort(unique)
	return MutationRequest{
		IDs:    slices.Compact(unique),
		Target: target,
		Label:  label,
		DryRun: dryRun,
	}
}

// MutationResult reports what a MutationRequest did, or would do in dry-run.
type MutationResult struct {
	Moved   int  `json:"moved"`
	Labeled int  `json:"labeled"`
	DryRun  bool `json:"dry_run"`
}

const (
	DecisionAccepted = "accepted"
	DecisionSkipped  = "skipped"
)

// DecisionRow is one flat audit row: one per accepted candidate, one per
// skipped query.
type DecisionRow struct {
	SessionID   string
	Seq         uint64
	Query       string
	Decision    string
	Source      string
	CandidateID int64
	Combined    float64
	Lexical     float64
	Semantic    float64
	Reason      string
	CreatedAt   time.Time
}

// SessionSummary aggregates the decision rows recorded for one session.
type SessionSummary struct {
	ID        string
	Accepted  int
	Skipped   int
	StartedAt time.Time
}
