package selection

import (
	"testing"

	"github.com/poiesic/lomatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePicks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		n     int
		want  []int
	}{
		{"list and range", "1-2,4", 5, []int{0, 1, 3}},
		{"out of bounds", "9", 5, []int{}},
		{"single", "3", 5, []int{2}},
		{"reversed range", "4-2", 5, []int{1, 2, 3}},
		{"range clipped to bounds", "4-9", 5, []int{3, 4}},
		{"duplicates collapse", "2,2,1-2", 5, []int{0, 1}},
		{"spaces around chunks", " 1 , 3 ", 5, []int{0, 2}},
		{"zero is out of bounds", "0", 5, []int{}},
		{"malformed chunks ignored", "a,2,1-b,-3", 5, []int{1}},
		{"negative not accepted", "-1", 5, []int{}},
		{"empty", "", 5, []int{}},
		{"huge range stays bounded", "1-99999999999999999999", 3, []int{}},
		{"huge range inside int", "1-1000000000", 3, []int{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePicks(tt.input, tt.n))
		})
	}
}

func TestParseChoice(t *testing.T) {
	t.Run("skip and quit ignore case", func(t *testing.T) {
		c, err := ParseChoice(" S\n", 3, false)
		require.NoError(t, err)
		assert.Equal(t, ActionSkip, c.Action)

		c, err = ParseChoice("Q", 3, true)
		require.NoError(t, err)
		assert.Equal(t, ActionQuit, c.Action)
	})

	t.Run("multi pick", func(t *testing.T) {
		c, err := ParseChoice("1-2,4\n", 5, true)
		require.NoError(t, err)
		assert.Equal(t, ActionPick, c.Action)
		assert.Equal(t, []int{0, 1, 3}, c.Ranks)
	})

	t.Run("multi out of bounds is invalid", func(t *testing.T) {
		_, err := ParseChoice("9", 5, true)
		assert.ErrorIs(t, err, core.ErrInvalidSelectionInput)
	})

	t.Run("single pick", func(t *testing.T) {
		c, err := ParseChoice("2", 3, false)
		require.NoError(t, err)
		assert.Equal(t, []int{1}, c.Ranks)
	})

	t.Run("single rejects lists and bounds", func(t *testing.T) {
		for _, in := range []string{"1,2", "1-2", "4", "0", "x", ""} {
			_, err := ParseChoice(in, 3, false)
			assert.ErrorIs(t, err, core.ErrInvalidSelectionInput, "input %q", in)
		}
	})
}
