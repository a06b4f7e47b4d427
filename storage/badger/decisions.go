// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lomatch/core"
	"github.com/poiesic/lomatch/storage"
)

// DecisionRepository implements storage.DecisionRepository for BadgerDB.
type DecisionRepository struct {
	backend *Backend
	seq     *badger.Sequence
}

var _ storage.DecisionRepository = (*DecisionRepository)(nil)

// NewDecisionRepository creates a new DecisionRepository.
func NewDecisionRepository(backend *Backend) (storage.DecisionRepository, error) {
	seq, err := backend.GetSequence(decisionIDSeq)
	if err != nil {
		return nil, err
	}
	return &DecisionRepository{
		backend: backend,
		seq:     seq,
	}, nil
}

// Close releases the sequence.
func (r *DecisionRepository) Close() error {
	return r.seq.Release()
}

// AppendDecisions stores rows, assigning each a sequence number.
func (r *DecisionRepository) AppendDecisions(ctx context.Context, rows ...*core.DecisionRow) ([]*core.DecisionRow, error) {
	for _, row := range rows {
		if strings.TrimSpace(row.SessionID) == "" {
			return nil, storage.ErrInvalidQuery
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, row := range rows {
			next, err := r.seq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if next == 0 {
				next, err = r.seq.Next()
				if err != nil {
					return err
				}
			}
			row.Seq = next
			if row.CreatedAt.IsZero() {
				row.CreatedAt = time.Now().UTC()
			}
			if err := tx.Set(makeDecisionKey(row.SessionID, row.Seq), storage.MarshalDecisionRow(row)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetSessionDecisions returns a session's rows in append order.
func (r *DecisionRepository) GetSessionDecisions(ctx context.Context, sessionID string) ([]*core.DecisionRow, error) {
	rows := []*core.DecisionRow{}
	err := r.scan(ctx, makeSessionPrefix(sessionID), func(row *core.DecisionRow) {
		rows = append(rows, row)
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListSessions aggregates every stored row by session.
func (r *DecisionRepository) ListSessions(ctx context.Context) ([]core.SessionSummary, error) {
	bySession := map[string]*core.SessionSummary{}
	err := r.scan(ctx, []byte(decisionPrefix), func(row *core.DecisionRow) {
		s, ok := bySession[row.SessionID]
		if !ok {
			s = &core.SessionSummary{ID: row.SessionID, StartedAt: row.CreatedAt}
			bySession[row.SessionID] = s
		}
		if row.CreatedAt.Before(s.StartedAt) {
			s.StartedAt = row.CreatedAt
		}
		switch row.Decision {
		case core.DecisionAccepted:
			s.Accepted++
		case core.DecisionSkipped:
			s.Skipped++
		}
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]core.SessionSummary, 0, len(bySession))
	for _, s := range bySession {
		summaries = append(summaries, *s)
	}
	slices.SortFunc(summaries, func(a, b core.SessionSummary) int {
		if c := a.StartedAt.Compare(b.StartedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return summaries, nil
}

// DeleteSession removes every row recorded for sessionID.
func (r *DecisionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	prefix := makeSessionPrefix(sessionID)
	var keys [][]byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	}, false)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return storage.ErrNotFound
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

func (r *DecisionRepository) scan(ctx context.Context, prefix []byte, fn func(*core.DecisionRow)) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()
			if !bytes.HasPrefix(item.Key(), prefix) {
				continue
			}
			err := item.Value(func(val []byte) error {
				row, err := storage.UnmarshalDecisionRow(val)
				if err != nil {
					return err
				}
				fn(row)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
}
