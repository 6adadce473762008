// Package config holds CodeCollage's process-wide tuning constants
// (spec §3 "Config") and the loaders that populate them from a KDL
// sidecar file, a YAML override, or CLI flags.
package config

// Default tuning constants (spec §3, §4.4).
const (
	DefaultBands            = 20
	DefaultRowsPerBand      = 5
	DefaultNgramSize        = 3
	DefaultSimilarityThresh = 0.8 // de-dup / signature-agreement threshold
	DefaultClusterThreshold = 0.7 // looser threshold used for cluster-graph edges
	DefaultMinClusterSize   = 2
	DefaultMinFrequency     = 2
	DefaultShingleSize      = 3
	DefaultHashSeed  uint64 = 0x5eed // deterministic default; override via Hash.Seed
)

// DefaultExtensions is the extension allowlist for `ingest` (spec §6).
var DefaultExtensions = []string{
	".js", ".ts", ".py", ".java", ".cpp", ".c", ".go", ".rs", ".rb", ".php",
}

// DefaultSkipDirs is the fixed directory skip-list applied during the
// file walk (spec §5), regardless of --include/--exclude.
var DefaultSkipDirs = []string{
	".git", "node_modules", "dist", "build", "__pycache__", ".vscode",
}

// Config is CodeCollage's immutable, process-wide configuration record.
// It is loaded once at process start (Load) and persisted alongside the
// datasets as a sidecar metadata blob (spec §3 Config lifecycle).
type Config struct {
	Version int

	Project Project
	Hash    Hash
	LSH     LSH
	Mining  Mining

	Include []string
	Exclude []string
}

// Project describes the dataset root being operated on.
type Project struct {
	Root string
	Name string
}

// Hash carries the MinHash/LSH hash-family seed. Per spec §9 ("Global
// state … never stash it in a module-level variable"), this seed is the
// only thing that needs to be threaded through to construct a
// minhash.LshContext; it is not itself a hash function table.
type Hash struct {
	Seed uint64
}

// LSH holds the banding geometry and the two distinct similarity
// thresholds (spec §3, §9 "Similarity-threshold duality" — these are
// intentionally not unified into one value).
type LSH struct {
	Bands               int
	RowsPerBand         int
	ShingleSize         int
	SimilarityThreshold float64 // de-dup admission
	ClusterThreshold    float64 // cluster-graph edge admission
	MinClusterSize      int
}

// SignatureLength is bands * rowsPerBand (spec §3 invariant).
func (l LSH) SignatureLength() int { return l.Bands * l.RowsPerBand }

// Mining holds the pattern-extraction tunables.
type Mining struct {
	NgramSize    int
	MinFrequency int
}

// Default returns a Config populated with spec-mandated defaults and no
// project root set (callers should set Project.Root before use).
func Default() *Config {
	return &Config{
		Version: 1,
		Project: Project{Root: "."},
		Hash:    Hash{Seed: DefaultHashSeed},
		LSH: LSH{
			Bands:               DefaultBands,
			RowsPerBand:         DefaultRowsPerBand,
			ShingleSize:         DefaultShingleSize,
			SimilarityThreshold: DefaultSimilarityThresh,
			ClusterThreshold:    DefaultClusterThreshold,
			MinClusterSize:      DefaultMinClusterSize,
		},
		Mining: Mining{
			NgramSize:    DefaultNgramSize,
			MinFrequency: DefaultMinFrequency,
		},
		Include: nil,
		Exclude: nil,
	}
}
