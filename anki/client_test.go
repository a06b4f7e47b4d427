package anki

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/lomatch/core"
	"github.com/poiesic/lomatch/mutation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ mutation.Sink = (*Client)(nil)

type call struct {
	Action  string         `json:"action"`
	Version int            `json:"version"`
	Params  map[string]any `json:"params"`
}

// fakeAnki answers AnkiConnect actions from a handler map and records calls.
type fakeAnki struct {
	mu       sync.Mutex
	calls    []call
	handlers map[string]func(params map[string]any) (any, string)
}

func (f *fakeAnki) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var c call
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()

	h, ok := f.handlers[c.Action]
	if !ok {
		_ = json.NewEncoder(w).Encode(map[string]any{"result": nil, "error": "unsupported action"})
		return
	}
	result, errMsg := h(c.Params)
	var errField any
	if errMsg != "" {
		errField = errMsg
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"result": result, "error": errField})
}

func (f *fakeAnki) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Action
	}
	return out
}

func (f *fakeAnki) version(i int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i].Version
}

func (f *fakeAnki) params(i int) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i].Params
}

func newFake(t *testing.T, handlers map[string]func(map[string]any) (any, string)) (*fakeAnki, *Client) {
	t.Helper()
	fake := &fakeAnki{handlers: handlers}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	return fake, c
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient("", WithTimeout(5*time.Second), WithLogger(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultURL, c.URL())
	assert.Equal(t, 5*time.Second, c.http.Timeout)
}

func TestInvoke_Envelope(t *testing.T) {
	fake, c := newFake(t, map[string]func(map[string]any) (any, string){
		"findNotes": func(p map[string]any) (any, string) {
			return []int64{1, 2}, ""
		},
		"addTags": func(p map[string]any) (any, string) {
			return nil, "collection is not available"
		},
	})
	ctx := context.Background()

	ids, err := c.FindNotes(ctx, "deck:x")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
	assert.Equal(t, 6, fake.version(0))
	assert.Equal(t, "deck:x", fake.params(0)["query"])

	err = c.AddLabel(ctx, []int64{1}, "tag")
	assert.ErrorIs(t, err, ErrActionFailed)
	assert.Contains(t, err.Error(), "collection is not available")

	err = c.MoveCards(ctx, []int64{1}, "Deck")
	assert.ErrorIs(t, err, ErrActionFailed)
}

func TestInvoke_TransportErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("http status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()
		c, err := NewClient(srv.URL)
		require.NoError(t, err)

		_, err = c.FindNotes(ctx, "q")
		assert.ErrorIs(t, err, ErrRequestFailed)
	})

	t.Run("not json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>nope</html>"))
		}))
		defer srv.Close()
		c, err := NewClient(srv.URL)
		require.NoError(t, err)

		_, err = c.FindNotes(ctx, "q")
		assert.ErrorIs(t, err, ErrInvalidResponse)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		c, err := NewClient(url)
		require.NoError(t, err)

		_, err = c.FindNotes(ctx, "q")
		assert.ErrorIs(t, err, ErrRequestFailed)
	})
}

func TestBuildDeckQuery(t *testing.T) {
	assert.Equal(t, `(deck:"AnKing Step Deck*" OR deck:"USUHS v2.2*")`,
		BuildDeckQuery([]string{"AnKing Step Deck", "USUHS v2.2"}, ""))
	assert.Equal(t, `(deck:"A*") is:suspended`, BuildDeckQuery([]string{"A", " "}, " is:suspended "))
	assert.Equal(t, `(deck:"say \"hi\"*")`, BuildDeckQuery([]string{`say "hi"`}, ""))
}

func TestNoteCandidate_FieldOrder(t *testing.T) {
	n := Note{
		NoteID:    7,
		ModelName: "Basic",
		Tags:      []string{"b", "a", "a"},
		Fields: map[string]NoteField{
			"Back":  {Value: "answer", Order: 1},
			"Front": {Value: "question", Order: 0},
			"Extra": {Value: "", Order: 2},
		},
	}
	c := n.Candidate()
	assert.Equal(t, int64(7), c.ID)
	assert.Equal(t, "Basic", c.Category)
	assert.Equal(t, []string{"a", "b"}, c.Labels)
	require.Len(t, c.Fields, 3)
	assert.Equal(t, "Front", c.Fields[0].Name)
	assert.Equal(t, "Back", c.Fields[1].Name)
	assert.Equal(t, "Extra", c.Fields[2].Name)
	assert.Equal(t, "Front: question Back: answer Extra:  a b", c.Text)
}

func TestFetchCandidates(t *testing.T) {
	var (
		mu      sync.Mutex
		batches []int
	)
	fake, c := newFake(t, map[string]func(map[string]any) (any, string){
		"findNotes": func(p map[string]any) (any, string) {
			ids := make([]int64, 1200)
			for i := range ids {
				ids[i] = int64(i + 1)
			}
			return ids, ""
		},
		"notesInfo": func(p map[string]any) (any, string) {
			ids := p["notes"].([]any)
			mu.Lock()
			batches = append(batches, len(ids))
			mu.Unlock()
			notes := make([]map[string]any, len(ids))
			for i, id := range ids {
				notes[i] = map[string]any{
					"noteId":    id,
					"modelName": "Basic",
					"tags":      []string{"cardio"},
					"fields":    map[string]any{"Front": map[string]any{"value": "card", "order": 0}},
				}
			}
			return notes, ""
		},
	})

	t.Run("batched", func(t *testing.T) {
		mu.Lock()
		batches = nil
		mu.Unlock()
		pool, err := c.FetchCandidates(context.Background(), PoolQuery{Decks: []string{"Deck"}})
		require.NoError(t, err)
		assert.Len(t, pool, 1200)
		mu.Lock()
		assert.Equal(t, []int{500, 500, 200}, batches)
		mu.Unlock()
		assert.Equal(t, int64(1), pool[0].ID)
		assert.Equal(t, `(deck:"Deck*")`, fake.params(0)["query"])
	})

	t.Run("limit", func(t *testing.T) {
		mu.Lock()
		batches = nil
		mu.Unlock()
		pool, err := c.FetchCandidates(context.Background(), PoolQuery{Decks: []string{"Deck"}, Extra: "is:new", Limit: 20})
		require.NoError(t, err)
		assert.Len(t, pool, 20)
		mu.Lock()
		assert.Equal(t, []int{20}, batches)
		mu.Unlock()
	})

	t.Run("no decks", func(t *testing.T) {
		_, err := c.FetchCandidates(context.Background(), PoolQuery{Decks: []string{" "}})
		assert.ErrorIs(t, err, ErrNoDecks)
	})
}

func TestSinkActions(t *testing.T) {
	fake, c := newFake(t, map[string]func(map[string]any) (any, string){
		"findCards":  func(p map[string]any) (any, string) { return []int64{11, 12, 21}, "" },
		"changeDeck": func(p map[string]any) (any, string) { return nil, "" },
		"addTags":    func(p map[string]any) (any, string) { return nil, "" },
		"unsuspend":  func(p map[string]any) (any, string) { return true, "" },
		"suspend":    func(p map[string]any) (any, string) { return true, "" },
	})
	ctx := context.Background()

	cards, err := c.FindCards(ctx, []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 12, 21}, cards)
	assert.Equal(t, "nid:1,2", fake.params(0)["query"])

	require.NoError(t, c.MoveCards(ctx, cards, "Lecture 07"))
	assert.Equal(t, "Lecture 07", fake.params(1)["deck"])
	assert.Len(t, fake.params(1)["cards"], 3)

	require.NoError(t, c.AddLabel(ctx, []int64{1, 2}, "LO::Endo07"))
	assert.Equal(t, "LO::Endo07", fake.params(2)["tags"])

	require.NoError(t, c.SetSuspended(ctx, cards, false))
	require.NoError(t, c.SetSuspended(ctx, cards, true))

	// Empty inputs never reach the server.
	_, err = c.FindCards(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, c.MoveCards(ctx, nil, "x"))
	require.NoError(t, c.AddLabel(ctx, []int64{1}, ""))
	require.NoError(t, c.SetSuspended(ctx, nil, true))

	assert.Equal(t, []string{"findCards", "changeDeck", "addTags", "unsuspend", "suspend"}, fake.actions())
}

func TestMutationApplierOverClient(t *testing.T) {
	fake, c := newFake(t, map[string]func(map[string]any) (any, string){
		"findCards":  func(p map[string]any) (any, string) { return []int64{100}, "" },
		"changeDeck": func(p map[string]any) (any, string) { return nil, "deck is read-only" },
	})
	a, err := mutation.NewApplier(c)
	require.NoError(t, err)

	_, err = a.Apply(context.Background(), coreRequest(5))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrActionFailed)
	assert.Equal(t, []string{"findCards", "changeDeck"}, fake.actions())
}

func coreRequest(ids ...int64) core.MutationRequest {
	return core.MutationRequest{IDs: ids, Target: "T"}
}
