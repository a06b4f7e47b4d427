package selection

import (
	"testing"

	"github.com/poiesic/lomatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pick(rank int, id int64, category string, labels ...string) core.Pick {
	return core.Pick{
		Rank: rank,
		Candidate: core.ScoredCandidate{
			Candidate: core.NewCandidate(id, category, labels, []core.Field{{Name: "Front", Value: "card"}}),
			Position:  rank,
		},
		Source: core.KindAuto,
	}
}

func ranksOf(picks []core.Pick) []int {
	out := make([]int, len(picks))
	for i, p := range picks {
		out[i] = p.Rank
	}
	return out
}

func TestParseDiversityMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"", DiversityNone},
		{"none", DiversityNone},
		{"category", DiversityCategory},
		{"model", DiversityCategory},
		{"Labels", DiversityLabels},
		{"tags", DiversityLabels},
	}
	for _, tt := range tests {
		got, err := ParseDiversityMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseDiversityMode("random")
	assert.ErrorIs(t, err, ErrUnknownDiversityMode)

	assert.Equal(t, "category", DiversityCategory.String())
}

func TestDiversify_None(t *testing.T) {
	in := []core.Pick{pick(0, 1, "Basic"), pick(1, 2, "Basic"), pick(2, 3, "Cloze")}
	out := Diversify(in, DiversityNone)
	assert.Equal(t, in, out)

	out[0].Rank = 99
	assert.Equal(t, 0, in[0].Rank, "input must not be aliased")
}

func TestDiversify_Category(t *testing.T) {
	in := []core.Pick{
		pick(0, 1, "Basic"),
		pick(1, 2, "Cloze"),
		pick(2, 3, "Basic"),
		pick(3, 4, "Image Occlusion"),
		pick(4, 5, "Cloze"),
	}
	out := Diversify(in, DiversityCategory)
	assert.Equal(t, []int{0, 1, 3}, ranksOf(out))

	seen := map[string]bool{}
	for _, p := range out {
		cat := p.Candidate.Candidate.Category
		assert.False(t, seen[cat], "category %s kept twice", cat)
		seen[cat] = true
	}
}

func TestDiversify_Labels(t *testing.T) {
	in := []core.Pick{
		pick(0, 1, "Basic", "cardio", "heart", "step1"),
		pick(1, 2, "Basic", "cardio", "heart"),          // shares 2 with rank 0
		pick(2, 3, "Basic", "cardio", "renal"),          // shares 1 with rank 0
		pick(3, 4, "Basic", "renal", "step1", "cardio"), // shares 2 with rank 0
		pick(4, 5, "Basic"),
	}
	out := Diversify(in, DiversityLabels)
	assert.Equal(t, []int{0, 2, 4}, ranksOf(out))
}

func TestDiversify_Invariants(t *testing.T) {
	in := []core.Pick{
		pick(0, 1, "Basic", "a", "b"),
		pick(1, 1, "Basic", "a", "b"), // same content, different rank
		pick(2, 3, "Cloze", "c"),
	}
	for _, mode := range []Mode{DiversityNone, DiversityCategory, DiversityLabels} {
		out := Diversify(in, mode)
		assert.LessOrEqual(t, len(out), len(in), mode.String())
		require.NotEmpty(t, out, mode.String())
		assert.Equal(t, 0, out[0].Rank, "first pick kept for %s", mode)
		for i := 1; i < len(out); i++ {
			assert.Less(t, out[i-1].Rank, out[i].Rank, "order kept for %s", mode)
		}
	}

	assert.Empty(t, Diversify(nil, DiversityCategory))
	assert.Empty(t, Diversify([]core.Pick{}, DiversityLabels))
}
