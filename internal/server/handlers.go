package server

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/standardbeagle/codecollage/internal/types"
	"github.com/standardbeagle/codecollage/pkg/pathutil"
)

// relativize returns a copy of snippets with FilePath rendered relative
// to the server's project root, matching every other user-facing
// surface (pkg/pathutil).
func (s *Server) relativize(snippets []types.Snippet) []types.Snippet {
	out := make([]types.Snippet, len(snippets))
	for i, snip := range snippets {
		snip.FilePath = pathutil.ToRelative(snip.FilePath, s.root)
		out[i] = snip
	}
	return out
}

// patternsCap bounds /api/patterns regardless of what's stored (spec §6
// "capped at 100").
const patternsCap = 100

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statsResponse is the shape of GET /api/stats (spec §6).
type statsResponse struct {
	TotalSnippets     int                    `json:"totalSnippets"`
	TotalClusters     int                    `json:"totalClusters"`
	TotalPatterns     int                    `json:"totalPatterns"`
	LanguageBreakdown map[types.Language]int `json:"languageBreakdown"`
	AvgClusterSize    float64                `json:"avgClusterSize"`
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	snippets, err := s.store.LoadSnippets()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	clusters, err := s.store.LoadClusters()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	patterns, err := s.store.LoadPatterns()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	breakdown := make(map[types.Language]int)
	for _, snip := range snippets {
		breakdown[snip.Language]++
	}

	var avgClusterSize float64
	if len(clusters) > 0 {
		total := 0
		for _, c := range clusters {
			total += len(c.SnippetIDs)
		}
		avgClusterSize = float64(total) / float64(len(clusters))
	}

	respondJSON(w, http.StatusOK, statsResponse{
		TotalSnippets:     len(snippets),
		TotalClusters:     len(clusters),
		TotalPatterns:     len(patterns),
		LanguageBreakdown: breakdown,
		AvgClusterSize:    avgClusterSize,
	})
}

// clusterView is the shape shared by GET /api/clusters and
// GET /api/clusters/:id (spec §6 "{cluster, snippets[], patterns[], preview}").
type clusterView struct {
	Cluster  types.Cluster   `json:"cluster"`
	Snippets []types.Snippet `json:"snippets"`
	Patterns []types.Pattern `json:"patterns"`
	Preview  string          `json:"preview"`
}

func buildClusterView(c types.Cluster, snippets []types.Snippet, patterns []types.Pattern) clusterView {
	snipByID := make(map[types.SnippetID]types.Snippet, len(snippets))
	for _, s := range snippets {
		snipByID[s.ID] = s
	}

	members := make([]types.Snippet, 0, len(c.SnippetIDs))
	for _, id := range c.SnippetIDs {
		if snip, ok := snipByID[id]; ok {
			members = append(members, snip)
		}
	}

	var matched []types.Pattern
	memberSet := make(map[types.SnippetID]bool, len(c.SnippetIDs))
	for _, id := range c.SnippetIDs {
		memberSet[id] = true
	}
	for _, p := range patterns {
		for _, id := range p.SnippetIDs {
			if memberSet[id] {
				matched = append(matched, p)
				break
			}
		}
	}

	preview := ""
	if centroid, ok := snipByID[c.CentroidID]; ok {
		preview = centroid.Content
	} else if len(members) > 0 {
		preview = members[0].Content
	}

	return clusterView{Cluster: c, Snippets: members, Patterns: matched, Preview: preview}
}

func (s *Server) listClusters(w http.ResponseWriter, r *http.Request) {
	clusters, err := s.store.LoadClusters()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	snippets, err := s.store.LoadSnippets()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	snippets = s.relativize(snippets)
	patterns, err := s.store.LoadPatterns()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	views := make([]clusterView, 0, len(clusters))
	for _, c := range clusters {
		views = append(views, buildClusterView(c, snippets, patterns))
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) getCluster(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	clusters, err := s.store.LoadClusters()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	var found *types.Cluster
	for i := range clusters {
		if string(clusters[i].ID) == id {
			found = &clusters[i]
			break
		}
	}
	if found == nil {
		respondError(w, http.StatusNotFound, "cluster not found")
		return
	}

	snippets, err := s.store.LoadSnippets()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	snippets = s.relativize(snippets)
	patterns, err := s.store.LoadPatterns()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, buildClusterView(*found, snippets, patterns))
}

func (s *Server) getSnippet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snippets, err := s.store.LoadSnippets()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for _, snip := range snippets {
		if string(snip.ID) == id {
			respondJSON(w, http.StatusOK, s.relativize([]types.Snippet{snip})[0])
			return
		}
	}
	respondError(w, http.StatusNotFound, "snippet not found")
}

func (s *Server) listPatterns(w http.ResponseWriter, r *http.Request) {
	patterns, err := s.store.LoadPatterns()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if typ := r.URL.Query().Get("type"); typ != "" {
		filtered := patterns[:0:0]
		for _, p := range patterns {
			if string(p.Type) == typ {
				filtered = append(filtered, p)
			}
		}
		patterns = filtered
	}

	score := func(p types.Pattern) float64 { return float64(p.Frequency) * p.Confidence }
	sort.SliceStable(patterns, func(i, j int) bool {
		return score(patterns[i]) > score(patterns[j])
	})

	if len(patterns) > patternsCap {
		patterns = patterns[:patternsCap]
	}
	respondJSON(w, http.StatusOK, patterns)
}
