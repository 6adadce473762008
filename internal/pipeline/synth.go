package pipeline

import (
	"github.com/standardbeagle/codecollage/internal/config"
	"github.com/standardbeagle/codecollage/internal/logging"
	"github.com/standardbeagle/codecollage/internal/pattern"
	"github.com/standardbeagle/codecollage/internal/store"
	"github.com/standardbeagle/codecollage/internal/types"
)

// SynthOptions mirrors the `synth --type` CLI flag (spec §6). An empty
// Tiers list mines all three.
type SynthOptions struct {
	Tiers    []pattern.Tier
	Parallel bool // parallelise the LCS tier's per-cluster work (spec §5)
}

// SynthStats summarises one synth run.
type SynthStats struct {
	PatternsWritten int
}

// Synth loads the snippets and clusters datasets and mines patterns from
// them (spec §4.6), clearing and rewriting the patterns log each run.
func Synth(s *store.Store, cfg *config.Config, opts SynthOptions) (SynthStats, error) {
	if err := RequireIngested(s, "synth"); err != nil {
		return SynthStats{}, err
	}
	if err := requireIndexed(s); err != nil {
		return SynthStats{}, err
	}

	snippets, err := store.LoadAll[types.Snippet](s, store.Snippets)
	if err != nil {
		return SynthStats{}, err
	}
	clusters, err := store.LoadAll[types.Cluster](s, store.Clusters)
	if err != nil {
		return SynthStats{}, err
	}

	patterns := mine(snippets, clusters, cfg.Mining, opts)

	if err := s.Clear(store.Patterns); err != nil {
		return SynthStats{}, err
	}
	for _, p := range patterns {
		if err := s.Append(store.Patterns, p); err != nil {
			return SynthStats{}, err
		}
	}

	stats := SynthStats{PatternsWritten: len(patterns)}
	logging.Stage("synth", "mined and wrote %d patterns", stats.PatternsWritten)
	return stats, nil
}

func mine(snippets []types.Snippet, clusters []types.Cluster, cfg config.Mining, opts SynthOptions) []types.Pattern {
	tiers := opts.Tiers
	if len(tiers) == 0 {
		tiers = []pattern.Tier{pattern.TierNGram, pattern.TierLCS, pattern.TierStructural}
	}

	var all []types.Pattern
	for _, t := range tiers {
		switch t {
		case pattern.TierNGram:
			all = append(all, pattern.NGramMiner{}.Mine(snippets, clusters, cfg)...)
		case pattern.TierLCS:
			if opts.Parallel {
				all = append(all, pattern.LCSMiner{}.MineParallel(snippets, clusters, cfg)...)
			} else {
				all = append(all, pattern.LCSMiner{}.Mine(snippets, clusters, cfg)...)
			}
		case pattern.TierStructural:
			all = append(all, pattern.StructuralMiner{}.Mine(snippets, clusters, cfg)...)
		}
	}

	pattern.Rank(all)
	return all
}
