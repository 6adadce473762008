package config

import (
	"fmt"

	ccerrors "github.com/standardbeagle/codecollage/internal/errors"
)

// Validator validates a Config and fills in the one smart default that
// is not a fixed tuning constant: a still-zero hash seed.
type Validator struct{}

// NewValidator creates a configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates cfg and applies smart defaults.
// Returns a *ccerrors.ConfigError on any violation of spec §3/§7
// ("ConfigError (invalid bands/rows/threshold)").
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateLSH(&cfg.LSH); err != nil {
		return err
	}
	if err := v.validateMining(&cfg.Mining); err != nil {
		return err
	}
	if cfg.Project.Root == "" {
		return ccerrors.NewConfigError("project.root", "", fmt.Errorf("project root cannot be empty"))
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateLSH(l *LSH) error {
	if l.Bands <= 0 {
		return ccerrors.NewConfigError("lsh.bands", fmt.Sprintf("%d", l.Bands), fmt.Errorf("bands must be positive"))
	}
	if l.RowsPerBand <= 0 {
		return ccerrors.NewConfigError("lsh.rows_per_band", fmt.Sprintf("%d", l.RowsPerBand), fmt.Errorf("rows_per_band must be positive"))
	}
	if l.ShingleSize <= 0 {
		return ccerrors.NewConfigError("lsh.shingle_size", fmt.Sprintf("%d", l.ShingleSize), fmt.Errorf("shingle_size must be positive"))
	}
	if l.SimilarityThreshold <= 0 || l.SimilarityThreshold > 1 {
		return ccerrors.NewConfigError("lsh.similarity_threshold", fmt.Sprintf("%v", l.SimilarityThreshold), fmt.Errorf("must be in (0,1]"))
	}
	if l.ClusterThreshold <= 0 || l.ClusterThreshold > 1 {
		return ccerrors.NewConfigError("lsh.cluster_threshold", fmt.Sprintf("%v", l.ClusterThreshold), fmt.Errorf("must be in (0,1]"))
	}
	if l.MinClusterSize < 1 {
		return ccerrors.NewConfigError("lsh.min_cluster_size", fmt.Sprintf("%d", l.MinClusterSize), fmt.Errorf("must be >= 1"))
	}
	return nil
}

func (v *Validator) validateMining(m *Mining) error {
	if m.NgramSize <= 0 {
		return ccerrors.NewConfigError("mining.ngram_size", fmt.Sprintf("%d", m.NgramSize), fmt.Errorf("ngram_size must be positive"))
	}
	if m.MinFrequency < 1 {
		return ccerrors.NewConfigError("mining.min_frequency", fmt.Sprintf("%d", m.MinFrequency), fmt.Errorf("min_frequency must be >= 1"))
	}
	return nil
}

// setSmartDefaults fills in defaults that Load leaves at their zero
// value when absent from the KDL file (the hash seed is the only one —
// worker parallelism is read directly from runtime.NumCPU by the
// pipeline at call time rather than stored on Config).
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Hash.Seed == 0 {
		cfg.Hash.Seed = DefaultHashSeed
	}
}

// ValidateConfig is a convenience wrapper around Validator.
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
