package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codecollage/internal/types"
)

func TestAppendAndScan(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	snippets := []types.Snippet{
		{ID: "s1", Content: "func a(){}", Language: types.LangGo},
		{ID: "s2", Content: "func b(){}", Language: types.LangGo},
	}
	for _, sn := range snippets {
		require.NoError(t, s.Append(Snippets, sn))
	}

	got, err := LoadAll[types.Snippet](s, Snippets)
	require.NoError(t, err)
	require.Equal(t, snippets, got)
}

func TestScanSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, s.Append(Snippets, types.Snippet{ID: "s1"}))

	path := filepath.Join(dir, Snippets.relPath())
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("not valid json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, s.Append(Snippets, types.Snippet{ID: "s2"}))

	got, err := LoadAll[types.Snippet](s, Snippets)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, types.SnippetID("s1"), got[0].ID)
	require.Equal(t, types.SnippetID("s2"), got[1].ID)
}

func TestClearTruncatesLog(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Append(Clusters, types.Cluster{ID: "c1"}))

	require.NoError(t, s.Clear(Clusters))

	empty, err := s.IsEmpty(Clusters)
	require.NoError(t, err)
	require.True(t, empty)
}

func TestIsEmptyOnMissingLog(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	empty, err := s.IsEmpty(Patterns)
	require.NoError(t, err)
	require.True(t, empty)
}

func TestGetByID(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Append(Snippets, types.Snippet{ID: "s1", Content: "x"}))
	require.NoError(t, s.Append(Snippets, types.Snippet{ID: "s2", Content: "y"}))

	found, ok, err := GetByID(s, Snippets, "s2", func(sn types.Snippet) string { return string(sn.ID) })
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "y", found.Content)

	_, ok, err = GetByID(s, Snippets, "missing", func(sn types.Snippet) string { return string(sn.ID) })
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSidecarRoundTrip(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	type stats struct {
		Count int `json:"count"`
	}
	require.NoError(t, s.WriteSidecar("indexStats", stats{Count: 42}))

	var got stats
	ok, err := ReadSidecar(s, "indexStats", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 42, got.Count)

	var missing stats
	ok, err = ReadSidecar(s, "doesNotExist", &missing)
	require.NoError(t, err)
	require.False(t, ok)
}
