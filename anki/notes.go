package anki

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/poiesic/lomatch/core"
)

// notesInfoBatch keeps notesInfo payloads small.
const notesInfoBatch = 500

// NoteField is one field of a note as AnkiConnect reports it.
type NoteField struct {
	Value string `json:"value"`
	Order int    `json:"order"`
}

// Note is the subset of notesInfo output the matcher needs.
type Note struct {
	NoteID    int64                `json:"noteId"`
	ModelName string               `json:"modelName"`
	Tags      []string             `json:"tags"`
	Fields    map[string]NoteField `json:"fields"`
}

// Candidate converts the note, ordering its fields by their note type order.
func (n Note) Candidate() core.Candidate {
	names := make([]string, 0, len(n.Fields))
	for name := range n.Fields {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(n.Fields[a].Order, n.Fields[b].Order); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	fields := make([]core.Field, len(names))
	for i, name := range names {
		fields[i] = core.Field{Name: name, Value: n.Fields[name].Value}
	}
	return core.NewCandidate(n.NoteID, n.ModelName, n.Tags, fields)
}

// PoolQuery selects the notes that make up a candidate pool.
type PoolQuery struct {
	Decks []string // deck roots; subdecks are included
	Extra string   // additional browser query ANDed with the decks
	Limit int      // cap on notes fetched; 0 means no cap
}

// BuildDeckQuery builds a browser query matching any of decks and their
// subdecks, followed by extra.
func BuildDeckQuery(decks []string, extra string) string {
	terms := make([]string, 0, len(decks))
	for _, d := range decks {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		terms = append(terms, `deck:"`+strings.ReplaceAll(d, `"`, `\"`)+`*"`)
	}
	q := "(" + strings.Join(terms, " OR ") + ") " + strings.TrimSpace(extra)
	return strings.TrimSpace(q)
}

// FindNotes returns the IDs of notes matching query.
func (c *Client) FindNotes(ctx context.Context, query string) ([]int64, error) {
	var ids []int64
	if err := c.invoke(ctx, "findNotes", map[string]any{"query": query}, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// NotesInfo fetches notes in batches.
func (c *Client) NotesInfo(ctx context.Context, ids []int64) ([]Note, error) {
	out := make([]Note, 0, len(ids))
	for start := 0; start < len(ids); start += notesInfoBatch {
		end := min(start+notesInfoBatch, len(ids))
		var batch []Note
		if err := c.invoke(ctx, "notesInfo", map[string]any{"notes": ids[start:end]}, &batch); err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

// FetchCandidates builds the candidate pool described by q. Notes that
// AnkiConnect returns without an ID are dropped.
func (c *Client) FetchCandidates(ctx context.Context, q PoolQuery) ([]core.Candidate, error) {
	if !slices.ContainsFunc(q.Decks, func(d string) bool { return strings.TrimSpace(d) != "" }) {
		return nil, ErrNoDecks
	}
	query := BuildDeckQuery(q.Decks, q.Extra)

	ids, err := c.FindNotes(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("finding notes: %w", err)
	}
	if q.Limit > 0 && len(ids) > q.Limit {
		ids = ids[:q.Limit]
	}
	c.logger.Info("found notes", "count", len(ids), "query", query)

	notes, err := c.NotesInfo(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading notes: %w", err)
	}

	pool := make([]core.Candidate, 0, len(notes))
	for _, n := range notes {
		if n.NoteID == 0 {
			continue
		}
		pool = append(pool, n.Candidate())
	}
	return pool, nil
}

// FindCards returns the card IDs of the given notes.
func (c *Client) FindCards(ctx context.Context, noteIDs []int64) ([]int64, error) {
	if len(noteIDs) == 0 {
		return nil, nil
	}
	ids := make([]string, len(noteIDs))
	for i, id := range noteIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	var cards []int64
	if err := c.invoke(ctx, "findCards", map[string]any{"query": "nid:" + strings.Join(ids, ",")}, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// MoveCards moves cards into deck, creating it if needed.
func (c *Client) MoveCards(ctx context.Context, cardIDs []int64, deck string) error {
	if len(cardIDs) == 0 {
		return nil
	}
	return c.invoke(ctx, "changeDeck", map[string]any{"cards": cardIDs, "deck": deck}, nil)
}

// AddLabel adds a tag to notes.
func (c *Client) AddLabel(ctx context.Context, noteIDs []int64, label string) error {
	if len(noteIDs) == 0 || label == "" {
		return nil
	}
	return c.invoke(ctx, "addTags", map[string]any{"notes": noteIDs, "tags": label}, nil)
}

// SetSuspended suspends or unsuspends cards.
func (c *Client) SetSuspended(ctx context.Context, cardIDs []int64, suspended bool) error {
	if len(cardIDs) == 0 {
		return nil
	}
	action := "unsuspend"
	if suspended {
		action = "suspend"
	}
	return c.invoke(ctx, action, map[string]any{"cards": cardIDs}, nil)
}
