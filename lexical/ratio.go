package lexical

import (
	"slices"
	"strings"
)

// Ratio returns the normalized Indel similarity of a and b in [0,1].
// Two empty strings are identical.
func Ratio(a, b string) float64 {
	return runeRatio([]rune(a), []rune(b))
}

func runeRatio(a, b []rune) float64 {
	lensum := len(a) + len(b)
	if lensum == 0 {
		return 1
	}
	dist := lensum - 2*lcsLength(a, b)
	return normSimilarity(dist, lensum)
}

func normSimilarity(dist, lensum int) float64 {
	if lensum == 0 {
		return 1
	}
	return 1 - float64(dist)/float64(lensum)
}

// lcsLength is the classic two-row longest common subsequence table.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) > len(a) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// TokenSortRatio compares the strings after sorting their whitespace tokens.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	slices.Sort(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(s string) []string {
	tokens := strings.Fields(s)
	slices.Sort(tokens)
	return slices.Compact(tokens)
}

// TokenSetRatio compares the shared tokens of a and b against each side's
// remainder, so repeated or reordered words do not lower the score.
func TokenSetRatio(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	var intersect, diffAB, diffBA []string
	inB := make(map[string]bool, len(setB))
	for _, t := range setB {
		inB[t] = true
	}
	inA := make(map[string]bool, len(setA))
	for _, t := range setA {
		inA[t] = true
		if inB[t] {
			intersect = append(intersect, t)
		} else {
			diffAB = append(diffAB, t)
		}
	}
	for _, t := range setB {
		if !inA[t] {
			diffBA = append(diffBA, t)
		}
	}

	// One side is fully contained in the other.
	if len(intersect) > 0 && (len(diffAB) == 0 || len(diffBA) == 0) {
		return 1
	}

	abJoined := []rune(strings.Join(diffAB, " "))
	baJoined := []rune(strings.Join(diffBA, " "))
	sectLen := len([]rune(strings.Join(intersect, " ")))

	sep := 0
	if sectLen != 0 {
		sep = 1
	}
	sectABLen := sectLen + sep + len(abJoined)
	sectBALen := sectLen + sep + len(baJoined)

	dist := len(abJoined) + len(baJoined) - 2*lcsLength(abJoined, baJoined)
	result := normSimilarity(dist, sectABLen+sectBALen)

	if sectLen == 0 {
		return result
	}

	// "sect" against "sect diff" only differs by the diff and its separator.
	sectABRatio := normSimilarity(sep+len(abJoined), sectLen+sectABLen)
	sectBARatio := normSimilarity(sep+len(baJoined), sectLen+sectBALen)

	return max(result, sectABRatio, sectBARatio)
}

// PartialRatio returns the best Ratio of the shorter string against every
// equally long window of the longer one, including the partial windows that
// hang over either end.
func PartialRatio(a, b string) float64 {
	s1 := []rune(a)
	s2 := []rune(b)
	if len(s1) == 0 || len(s2) == 0 {
		return 0
	}
	if len(s1) > len(s2) {
		s1, s2 = s2, s1
	}

	best := partialRatioShortNeedle(s1, s2)
	if len(s1) == len(s2) && best < 1 {
		best = max(best, partialRatioShortNeedle(s2, s1))
	}
	return best
}

func partialRatioShortNeedle(s1, s2 []rune) float64 {
	len1, len2 := len(s1), len(s2)
	chars := make(map[rune]struct{}, len1)
	for _, r := range s1 {
		chars[r] = struct{}{}
	}
	has := func(r rune) bool {
		_, ok := chars[r]
		return ok
	}

	best := 0.0
	consider := func(window []rune) bool {
		r := runeRatio(s1, window)
		if r > best {
			best = r
		}
		return best >= 1
	}

	// Windows sticking out on the left.
	for i := 1; i < len1; i++ {
		if !has(s2[i-1]) {
			continue
		}
		if consider(s2[:i]) {
			return best
		}
	}

	// Full windows.
	for i := 0; i < len2-len1; i++ {
		if !has(s2[i+len1-1]) {
			continue
		}
		if consider(s2[i : i+len1]) {
			return best
		}
	}

	// The last full window and windows sticking out on the right.
	for i := len2 - len1; i < len2; i++ {
		if !has(s2[i]) {
			continue
		}
		if consider(s2[i:]) {
			return best
		}
	}

	return best
}
