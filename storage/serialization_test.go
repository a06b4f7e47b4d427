package storage

import (
	"testing"
	"time"

	"github.com/mus-format/mus-go"
	"github.com/poiesic/lomatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("all-minilm|heart failure")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshal_EmptyData(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)

	_, err = UnmarshalVector([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)

	_, err = UnmarshalDecisionRow([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalVector(t *testing.T) {
	t.Run("values survive", func(t *testing.T) {
		vec := []float32{0.25, -0.5, 1, 0}
		decoded, err := UnmarshalVector(MarshalVector(vec))
		require.NoError(t, err)
		assert.Equal(t, vec, decoded)
	})

	t.Run("empty vector", func(t *testing.T) {
		decoded, err := UnmarshalVector(MarshalVector(nil))
		require.NoError(t, err)
		assert.Empty(t, decoded)
	})

	t.Run("truncated payload", func(t *testing.T) {
		data := MarshalVector([]float32{1, 2, 3})
		_, err := UnmarshalVector(data[:len(data)-2])
		assert.ErrorIs(t, err, ErrSerializationFailed)
		assert.ErrorIs(t, err, ErrTruncatedData)
		assert.ErrorIs(t, err, mus.ErrTooSmallByteSlice)
	})
}

func TestMarshalUnmarshalDecisionRow(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	row := &core.DecisionRow{
		SessionID:   "0b4c7f3e-0000-4000-8000-000000000001",
		Seq:         7,
		Query:       "signs of heart failure",
		Decision:    core.DecisionAccepted,
		Source:      "auto",
		CandidateID: 1712345678901,
		Combined:    0.91,
		Lexical:     0.88,
		Semantic:    0.93,
		CreatedAt:   now,
	}

	decoded, err := UnmarshalDecisionRow(MarshalDecisionRow(row))
	require.NoError(t, err)
	assert.Equal(t, row, decoded)

	skipped := &core.DecisionRow{
		SessionID: row.SessionID,
		Query:     "renal physiology",
		Decision:  core.DecisionSkipped,
		Reason:    "no candidates found",
		CreatedAt: now,
	}
	decoded, err = UnmarshalDecisionRow(MarshalDecisionRow(skipped))
	require.NoError(t, err)
	assert.Equal(t, skipped, decoded)
}

func TestUnmarshalDecisionRow_Truncated(t *testing.T) {
	data := MarshalDecisionRow(&core.DecisionRow{
		SessionID: "s1",
		Query:     "signs of heart failure",
		Decision:  core.DecisionSkipped,
		CreatedAt: time.Now(),
	})
	_, err := UnmarshalDecisionRow(data[:len(data)-3])
	assert.ErrorIs(t, err, ErrSerializationFailed)
	assert.ErrorIs(t, err, ErrTruncatedData)
}
