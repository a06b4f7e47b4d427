package selection

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/poiesic/lomatch/core"
)

// Action is what a line of interactive input asks for.
type Action int

const (
	ActionPick Action = iota
	ActionSkip
	ActionQuit
)

// Choice is a parsed line of interactive input.
type Choice struct {
	Action Action
	Ranks  []int // 0-based shortlist positions, ascending
}

// ParsePicks parses a 1-based pick list such as "2,4-5" against a shortlist
// of n entries and returns the selected 0-based positions, sorted and
// deduplicated. Ranges may be reversed. Out-of-bounds numbers and malformed
// chunks are ignored, so the result may be empty.
func ParsePicks(input string, n int) []int {
	seen := make(map[int]struct{})
	for _, chunk := range strings.Split(input, ",") {
		chunk = strings.TrimSpace(chunk)
		if lo, hi, ok := strings.Cut(chunk, "-"); ok {
			a, okA := parseIndex(lo)
			b, okB := parseIndex(hi)
			if !okA || !okB {
				continue
			}
			if a > b {
				a, b = b, a
			}
			for j := max(a, 1); j <= min(b, n); j++ {
				seen[j-1] = struct{}{}
			}
			continue
		}
		if j, ok := parseIndex(chunk); ok && j >= 1 && j <= n {
			seen[j-1] = struct{}{}
		}
	}

	picks := make([]int, 0, len(seen))
	for j := range seen {
		picks = append(picks, j)
	}
	slices.Sort(picks)
	return picks
}

// parseIndex accepts only plain ASCII digit strings.
func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseChoice interprets one line of input for a shortlist of n entries.
// "s" skips and "q" quits, case-insensitively. In single mode the line must
// be exactly one index in 1..n. Anything unusable returns an error matching
// core.ErrInvalidSelectionInput.
func ParseChoice(input string, n int, multi bool) (Choice, error) {
	line := strings.ToLower(strings.TrimSpace(input))
	switch line {
	case "s":
		return Choice{Action: ActionSkip}, nil
	case "q":
		return Choice{Action: ActionQuit}, nil
	}

	if multi {
		picks := ParsePicks(line, n)
		if len(picks) == 0 {
			return Choice{}, fmt.Errorf("%w: %q selects nothing in 1..%d", core.ErrInvalidSelectionInput, input, n)
		}
		return Choice{Action: ActionPick, Ranks: picks}, nil
	}

	j, ok := parseIndex(line)
	if !ok || j < 1 || j > n {
		return Choice{}, fmt.Errorf("%w: %q is not a number in 1..%d", core.ErrInvalidSelectionInput, input, n)
	}
	return Choice{Action: ActionPick, Ranks: []int{j - 1}}, nil
}
