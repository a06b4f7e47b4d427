package selection

import (
	"fmt"
	"strings"

	"github.com/poiesic/lomatch/core"
)

// Mode is a post-selection de-duplication policy.
type Mode int

const (
	// DiversityNone keeps every pick.
	DiversityNone Mode = iota
	// DiversityCategory keeps the first pick of each category.
	DiversityCategory
	// DiversityLabels drops picks sharing two or more labels with a kept pick.
	DiversityLabels
)

// labelOverlapLimit is the number of shared labels that makes two picks
// redundant.
const labelOverlapLimit = 2

func (m Mode) String() string {
	switch m {
	case DiversityCategory:
		return "category"
	case DiversityLabels:
		return "labels"
	default:
		return "none"
	}
}

// ParseDiversityMode maps a mode name to a Mode. "model" and "tags" are
// accepted as aliases of "category" and "labels".
func ParseDiversityMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return DiversityNone, nil
	case "category", "model":
		return DiversityCategory, nil
	case "labels", "tags":
		return DiversityLabels, nil
	default:
		return DiversityNone, fmt.Errorf("%w: %q", ErrUnknownDiversityMode, name)
	}
}

// Diversify filters picks, which must be in rank order, according to mode.
// It returns a new slice; survivors keep their relative order and the first
// pick is always kept.
func Diversify(picks []core.Pick, mode Mode) []core.Pick {
	out := make([]core.Pick, 0, len(picks))
	switch mode {
	case DiversityCategory:
		seen := make(map[string]struct{}, len(picks))
		for _, p := range picks {
			cat := p.Candidate.Candidate.Category
			if _, dup := seen[cat]; dup {
				continue
			}
			seen[cat] = struct{}{}
			out = append(out, p)
		}
	case DiversityLabels:
		for _, p := range picks {
			if overlapsAny(p, out) {
				continue
			}
			out = append(out, p)
		}
	default:
		out = append(out, picks...)
	}
	return out
}

func overlapsAny(p core.Pick, kept []core.Pick) bool {
	labels := make(map[string]struct{}, len(p.Candidate.Candidate.Labels))
	for _, l := range p.Candidate.Candidate.Labels {
		labels[l] = struct{}{}
	}
	for _, k := range kept {
		shared := 0
		for _, l := range k.Candidate.Candidate.Labels {
			if _, ok := labels[l]; ok {
				shared++
			}
		}
		if shared >= labelOverlapLimit {
			return true
		}
	}
	return false
}
