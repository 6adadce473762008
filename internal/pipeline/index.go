package pipeline

import (
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/codecollage/internal/cluster"
	"github.com/standardbeagle/codecollage/internal/config"
	ccerrors "github.com/standardbeagle/codecollage/internal/errors"
	"github.com/standardbeagle/codecollage/internal/logging"
	"github.com/standardbeagle/codecollage/internal/minhash"
	"github.com/standardbeagle/codecollage/internal/store"
	"github.com/standardbeagle/codecollage/internal/types"
)

// IndexStats summarises one index run.
type IndexStats struct {
	SnippetsConsidered int
	SnippetsKept       int
	ClustersWritten    int
}

// Index loads every snippet written by Ingest, computes MinHash
// signatures (embarrassingly parallel over snippets, spec §5), builds
// the banded LSH index, runs the optional de-duplication pass, and
// clusters what survives via connected components (spec §4.4, §4.5).
// The clusters dataset is cleared and rewritten each run, since
// re-indexing fully supersedes a prior index (spec §4.7).
func Index(s *store.Store, cfg *config.Config, opts cluster.Options) (IndexStats, error) {
	if err := RequireIngested(s, "index"); err != nil {
		return IndexStats{}, err
	}

	snippets, err := store.LoadAll[types.Snippet](s, store.Snippets)
	if err != nil {
		return IndexStats{}, err
	}

	if err := s.WriteSidecar("config", cfg); err != nil {
		return IndexStats{}, err
	}

	ctx := minhash.NewLshContext(cfg.Hash.Seed, cfg.LSH.SignatureLength())
	if err := computeSignatures(ctx, snippets, cfg.LSH.ShingleSize); err != nil {
		return IndexStats{}, err
	}

	kept := cluster.Dedup(snippets, cfg.LSH.SimilarityThreshold)

	idx := minhash.NewLSHIndex(cfg.LSH.Bands, cfg.LSH.RowsPerBand)
	order := make([]types.SnippetID, 0, len(kept))
	for _, snip := range kept {
		idx.Add(snip.ID, snip.Signature)
		order = append(order, snip.ID)
	}

	clusters := cluster.BuildClusters(idx, order, cfg.LSH, opts)
	for i := range clusters {
		clusters[i].ID = types.ClusterID(uuid.NewString())
		clusters[i].Languages = languagesOf(clusters[i].SnippetIDs, kept)
	}

	clusterOf := make(map[types.SnippetID]types.ClusterID)
	for _, c := range clusters {
		for _, id := range c.SnippetIDs {
			clusterOf[id] = c.ID
		}
	}
	for i := range kept {
		kept[i].ClusterID = clusterOf[kept[i].ID]
	}

	// Re-indexing fully supersedes the prior snippets log too: the
	// de-dup pass may have discarded duplicates, and every surviving
	// snippet now carries a freshly computed signature and (if
	// clustered) a cluster id (spec §4.1 "clear snippets, rewrite
	// all", §3 snippet lifecycle).
	if err := s.Clear(store.Snippets); err != nil {
		return IndexStats{}, err
	}
	for _, snip := range kept {
		if err := s.Append(store.Snippets, snip); err != nil {
			return IndexStats{}, err
		}
	}

	if err := s.Clear(store.Clusters); err != nil {
		return IndexStats{}, err
	}
	for _, c := range clusters {
		if err := s.Append(store.Clusters, c); err != nil {
			return IndexStats{}, err
		}
	}

	stats := IndexStats{
		SnippetsConsidered: len(snippets),
		SnippetsKept:       len(kept),
		ClustersWritten:    len(clusters),
	}
	logging.Stage("index", "considered %d snippets, kept %d after dedup, wrote %d clusters",
		stats.SnippetsConsidered, stats.SnippetsKept, stats.ClustersWritten)
	return stats, nil
}

// computeSignatures fills in snippets[i].Signature in place, parallelised
// across up to runtime.NumCPU() workers (spec §5 "An implementer may
// parallelise signature generation"). Each goroutine only ever touches
// its own slice index, so no further synchronisation is needed.
func computeSignatures(ctx *minhash.LshContext, snippets []types.Snippet, shingleSize int) error {
	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())

	for i := range snippets {
		i := i
		g.Go(func() error {
			snippets[i].Signature = minhash.Signature(ctx, snippets[i].Tokens, shingleSize)
			return nil
		})
	}
	return g.Wait()
}

func languagesOf(ids []types.SnippetID, snippets []types.Snippet) []types.Language {
	byID := make(map[types.SnippetID]types.Language, len(snippets))
	for _, s := range snippets {
		byID[s.ID] = s.Language
	}

	seen := make(map[types.Language]bool)
	var langs []types.Language
	for _, id := range ids {
		lang, ok := byID[id]
		if !ok || seen[lang] {
			continue
		}
		seen[lang] = true
		langs = append(langs, lang)
	}
	return langs
}

// requireIndexed is used by Synth to enforce the state machine's next
// transition; unlike RequireIngested it lives here since only Index
// populates the clusters dataset.
func requireIndexed(s *store.Store) error {
	empty, err := s.IsEmpty(store.Clusters)
	if err != nil {
		return err
	}
	if empty {
		return ccerrors.NewEmptyDatasetError("synth", string(store.Clusters))
	}
	return nil
}
