package pathutil

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestToRelative(t *testing.T) {
	tests := []struct {
		name     string
		absPath  string
		rootDir  string
		expected string
	}{
		{
			name:     "simple relative path",
			absPath:  "/home/user/project/src/main.go",
			rootDir:  "/home/user/project",
			expected: "src/main.go",
		},
		{
			name:     "nested relative path",
			absPath:  "/home/user/project/internal/server/handlers.go",
			rootDir:  "/home/user/project",
			expected: "internal/server/handlers.go",
		},
		{
			name:     "root level file",
			absPath:  "/home/user/project/README.md",
			rootDir:  "/home/user/project",
			expected: "README.md",
		},
		{
			name:     "same directory",
			absPath:  "/home/user/project",
			rootDir:  "/home/user/project",
			expected: ".",
		},
		{
			name:     "already relative path",
			absPath:  "src/main.go",
			rootDir:  "/home/user/project",
			expected: "src/main.go",
		},
		{
			name:     "path outside root falls back to absolute",
			absPath:  "/other/location/file.go",
			rootDir:  "/home/user/project",
			expected: "/other/location/file.go",
		},
		{
			name:     "empty root directory falls back to absolute",
			absPath:  "/home/user/project/file.go",
			rootDir:  "",
			expected: "/home/user/project/file.go",
		},
		{
			name:     "empty absolute path stays empty",
			absPath:  "",
			rootDir:  "/home/user/project",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToRelative(tt.absPath, tt.rootDir)
			want := tt.expected
			if runtime.GOOS == "windows" {
				got = filepath.ToSlash(got)
				want = filepath.ToSlash(want)
			}
			if got != want {
				t.Errorf("ToRelative(%q, %q) = %q, want %q", tt.absPath, tt.rootDir, got, want)
			}
		})
	}
}

func TestToAbsolute(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		rootDir  string
		expected string
	}{
		{
			name:     "relative path resolved against root",
			path:     "src/main.go",
			rootDir:  "/home/user/project",
			expected: "/home/user/project/src/main.go",
		},
		{
			name:     "already absolute path is cleaned but unchanged",
			path:     "/home/user/project/src/main.go",
			rootDir:  "/somewhere/else",
			expected: "/home/user/project/src/main.go",
		},
		{
			name:     "empty path stays empty",
			path:     "",
			rootDir:  "/home/user/project",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToAbsolute(tt.path, tt.rootDir)
			want := tt.expected
			if runtime.GOOS == "windows" {
				got = filepath.ToSlash(got)
				want = filepath.ToSlash(want)
			}
			if got != want {
				t.Errorf("ToAbsolute(%q, %q) = %q, want %q", tt.path, tt.rootDir, got, want)
			}
		})
	}
}

func TestToRelativeThenToAbsoluteRoundTrips(t *testing.T) {
	root := "/home/user/project"
	original := "/home/user/project/internal/cluster/cluster.go"

	rel := ToRelative(original, root)
	if rel == original {
		t.Fatalf("expected ToRelative to shorten the path, got %q", rel)
	}
	if got := ToAbsolute(rel, root); got != original {
		t.Errorf("round trip mismatch: got %q, want %q", got, original)
	}
}
