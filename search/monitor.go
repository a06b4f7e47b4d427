package search

import "github.com/poiesic/lomatch/core"

// RankMonitor provides hooks to observe the ranking process.
// Implement this interface to trace intermediate steps of a Rank call.
type RankMonitor interface {
	Start(query string)
	AfterSemanticSeed(hits []core.Hit)
	SemanticFallback(err error)
	AfterLexicalScoring(scored []core.ScoredCandidate)
	Finish(results []core.ScoredCandidate)
}

// noopMonitor is a no-op implementation of RankMonitor
type noopMonitor struct{}

var _ RankMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                               {}
func (n *noopMonitor) AfterSemanticSeed(_ []core.Hit)               {}
func (n *noopMonitor) SemanticFallback(_ error)                     {}
func (n *noopMonitor) AfterLexicalScoring(_ []core.ScoredCandidate) {}
func (n *noopMonitor) Finish(_ []core.ScoredCandidate)              {}
