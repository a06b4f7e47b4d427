package pipeline

import (
	"context"

	"github.com/poiesic/lomatch/core"
	"github.com/poiesic/lomatch/selection"
)

// PreviewConfig describes a preview run. It is echoed back in the report.
type PreviewConfig struct {
	TargetDeck    string   `json:"target_deck"`
	SourceDecks   []string `json:"source_decks"`
	MatchingMode  string   `json:"matching_mode"`
	AutoThreshold *float64 `json:"auto_threshold"`
	Multi         bool     `json:"multi_select"`
	MaxPerQuery   int      `json:"max_per_lo"`
	Diversity     string   `json:"diversity_mode"`
	Alpha         float64  `json:"alpha"`
	LimitIndex    int      `json:"limit_index,omitempty"`
	ExtraQuery    string   `json:"extra_query,omitempty"`
	Shortlist     int      `json:"candidates_per_lo"`
}

// PreviewMatch is one ranked candidate in a preview.
type PreviewMatch struct {
	NoteID         int64    `json:"note_id"`
	ModelName      string   `json:"model_name"`
	Tags           []string `json:"tags"`
	PreviewText    string   `json:"preview_text"`
	CombinedScore  float64  `json:"combined_score"`
	FuzzyScore     float64  `json:"fuzzy_score"`
	EmbeddingScore float64  `json:"embedding_score"`
}

// PreviewResult holds one objective's shortlist and what auto-selection
// would accept.
type PreviewResult struct {
	Objective    string         `json:"learning_objective"`
	Matches      []PreviewMatch `json:"matches"`
	AutoSelected []PreviewMatch `json:"auto_selected"`
}

// PreviewStats summarizes a preview.
type PreviewStats struct {
	TotalObjectives       int `json:"total_objectives"`
	PoolSize              int `json:"pool_size"`
	ObjectivesWithMatches int `json:"objectives_with_matches"`
	AutoSelectedTotal     int `json:"auto_selected_total"`
}

// PreviewReport is the JSON document produced by Preview.
type PreviewReport struct {
	Stats   PreviewStats    `json:"stats"`
	Results []PreviewResult `json:"results"`
	Config  PreviewConfig   `json:"config"`
}

// previewLength bounds preview snippets.
const previewLength = 200

// Preview ranks every objective and reports what auto-selection would accept
// without prompting or touching the note store. An empty pool yields a
// report with no results rather than an error.
func Preview(ctx context.Context, ranker Ranker, objectives []string, cfg PreviewConfig) (*PreviewReport, error) {
	if ranker == nil {
		return nil, ErrRankerRequired
	}
	if cfg.Shortlist < 1 {
		cfg.Shortlist = 3
		if cfg.Multi {
			cfg.Shortlist = 10
		}
	}
	if cfg.MaxPerQuery < 1 {
		cfg.MaxPerQuery = selection.DefaultMaxPerQuery
	}

	report := &PreviewReport{
		Stats:   PreviewStats{TotalObjectives: len(objectives), PoolSize: ranker.PoolSize()},
		Results: []PreviewResult{},
		Config:  cfg,
	}
	if len(objectives) == 0 || report.Stats.PoolSize == 0 {
		return report, nil
	}

	var engine *selection.Engine
	if cfg.AutoThreshold != nil {
		mode, err := selection.ParseDiversityMode(cfg.Diversity)
		if err != nil {
			return nil, err
		}
		engine, err = selection.NewEngine(selection.Config{
			AutoThreshold: cfg.AutoThreshold,
			Multi:         cfg.Multi,
			MaxPerQuery:   cfg.MaxPerQuery,
			Diversity:     mode,
		}, nil)
		if err != nil {
			return nil, err
		}
	}

	for _, obj := range objectives {
		shortlist, err := ranker.Rank(ctx, obj, cfg.Shortlist)
		if err != nil {
			return nil, err
		}
		result := PreviewResult{
			Objective:    obj,
			Matches:      make([]PreviewMatch, len(shortlist)),
			AutoSelected: []PreviewMatch{},
		}
		for i, sc := range shortlist {
			result.Matches[i] = previewMatch(sc)
		}

		if engine != nil && len(shortlist) > 0 {
			sel, err := engine.Select(ctx, obj, shortlist)
			if err != nil {
				return nil, err
			}
			for _, p := range sel.Picks {
				result.AutoSelected = append(result.AutoSelected, result.Matches[p.Rank])
			}
		}

		if len(result.Matches) > 0 {
			report.Stats.ObjectivesWithMatches++
		}
		report.Stats.AutoSelectedTotal += len(result.AutoSelected)
		report.Results = append(report.Results, result)
	}
	return report, nil
}

func previewMatch(sc core.ScoredCandidate) PreviewMatch {
	tags := sc.Candidate.Labels
	if tags == nil {
		tags = []string{}
	}
	return PreviewMatch{
		NoteID:         sc.Candidate.ID,
		ModelName:      sc.Candidate.Category,
		Tags:           tags,
		PreviewText:    sc.Candidate.Preview(previewLength),
		CombinedScore:  sc.Combined,
		FuzzyScore:     sc.Lexical,
		EmbeddingScore: sc.Semantic,
	}
}
