package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codecollage/internal/store"
	"github.com/standardbeagle/codecollage/internal/types"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)

	snippets := []types.Snippet{
		{ID: "s1", Content: "function add(a,b){return a+b}", Language: types.LangJavaScript, ClusterID: "c1"},
		{ID: "s2", Content: "function add(x,y){return x+y}", Language: types.LangJavaScript, ClusterID: "c1"},
		{ID: "s3", Content: "def sub(a, b):\n    return a - b", Language: types.LangPython},
	}
	for _, snip := range snippets {
		require.NoError(t, s.Append(store.Snippets, snip))
	}

	cluster := types.Cluster{
		ID:         "c1",
		SnippetIDs: []types.SnippetID{"s1", "s2"},
		CentroidID: "s1",
		Similarity: 0.9,
		Languages:  []types.Language{types.LangJavaScript},
	}
	require.NoError(t, s.Append(store.Clusters, cluster))

	patterns := []types.Pattern{
		{ID: "p1", Type: types.PatternNGram, Content: "function add", Frequency: 2, Confidence: 0.5, SnippetIDs: []types.SnippetID{"s1", "s2"}},
		{ID: "p2", Type: types.PatternStructural, Content: "func ID(CONDITION)", Frequency: 1, Confidence: 0.6, SnippetIDs: []types.SnippetID{"s3"}},
	}
	for _, p := range patterns {
		require.NoError(t, s.Append(store.Patterns, p))
	}

	return s
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := seededStore(t)
	return New("127.0.0.1:0", NewReadOnlyStore(s), "")
}

func doGet(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	return rec
}

func TestGetStats_ReportsCountsAndLanguageBreakdown(t *testing.T) {
	srv := newTestServer(t)
	rec := doGet(t, srv, "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var got statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, 3, got.TotalSnippets)
	require.Equal(t, 1, got.TotalClusters)
	require.Equal(t, 2, got.TotalPatterns)
	require.Equal(t, 2, got.LanguageBreakdown[types.LangJavaScript])
	require.Equal(t, float64(2), got.AvgClusterSize)
}

func TestListClusters_IncludesMembersPatternsAndPreview(t *testing.T) {
	srv := newTestServer(t)
	rec := doGet(t, srv, "/api/clusters")
	require.Equal(t, http.StatusOK, rec.Code)

	var views []clusterView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	require.Len(t, views[0].Snippets, 2)
	require.Len(t, views[0].Patterns, 1)
	require.Equal(t, "function add(a,b){return a+b}", views[0].Preview)
}

func TestGetCluster_NotFoundReturns404(t *testing.T) {
	srv := newTestServer(t)
	rec := doGet(t, srv, "/api/clusters/does-not-exist")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSnippet_ReturnsStoredRecord(t *testing.T) {
	srv := newTestServer(t)
	rec := doGet(t, srv, "/api/snippets/s3")
	require.Equal(t, http.StatusOK, rec.Code)

	var got types.Snippet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, types.SnippetID("s3"), got.ID)
}

func TestListPatterns_FiltersByTypeAndSortsByFrequencyTimesConfidence(t *testing.T) {
	srv := newTestServer(t)
	rec := doGet(t, srv, "/api/patterns")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []types.Pattern
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	require.Equal(t, types.PatternID("p1"), got[0].ID) // 2*0.5 = 1.0 beats 1*0.6 = 0.6

	rec = doGet(t, srv, "/api/patterns?type=ast")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, types.PatternID("p2"), got[0].ID)
}
