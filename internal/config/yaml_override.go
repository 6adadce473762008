package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// defaultYAMLName is an optional second sidecar checked after the KDL
// config, letting CI and deploy tooling override a handful of tunables
// without hand-writing KDL (spec §3 "Config" ambient loading).
const defaultYAMLName = ".codecollage.override.yaml"

// yamlOverride mirrors the subset of Config that's reasonable to patch
// from a generated YAML file: LSH/mining tunables and include/exclude,
// never Project (the root is always set from the CLI/working directory).
type yamlOverride struct {
	LSH     *yamlLSH    `yaml:"lsh"`
	Mining  *yamlMining `yaml:"mining"`
	Include []string    `yaml:"include"`
	Exclude []string    `yaml:"exclude"`
}

type yamlLSH struct {
	Bands               *int     `yaml:"bands"`
	RowsPerBand         *int     `yaml:"rows_per_band"`
	ShingleSize         *int     `yaml:"shingle_size"`
	SimilarityThreshold *float64 `yaml:"similarity_threshold"`
	ClusterThreshold    *float64 `yaml:"cluster_threshold"`
	MinClusterSize      *int     `yaml:"min_cluster_size"`
}

type yamlMining struct {
	NgramSize    *int `yaml:"ngram_size"`
	MinFrequency *int `yaml:"min_frequency"`
}

// ApplyYAMLOverride looks for defaultYAMLName next to the KDL config in
// projectRoot and, if present, overlays its fields onto cfg after the
// KDL load. A missing override file is not an error.
func ApplyYAMLOverride(cfg *Config, projectRoot string) error {
	path := filepath.Join(projectRoot, defaultYAMLName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var ov yamlOverride
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return fmt.Errorf("failed to parse YAML override %s: %w", path, err)
	}

	if ov.LSH != nil {
		applyIntOverride(&cfg.LSH.Bands, ov.LSH.Bands)
		applyIntOverride(&cfg.LSH.RowsPerBand, ov.LSH.RowsPerBand)
		applyIntOverride(&cfg.LSH.ShingleSize, ov.LSH.ShingleSize)
		applyFloatOverride(&cfg.LSH.SimilarityThreshold, ov.LSH.SimilarityThreshold)
		applyFloatOverride(&cfg.LSH.ClusterThreshold, ov.LSH.ClusterThreshold)
		applyIntOverride(&cfg.LSH.MinClusterSize, ov.LSH.MinClusterSize)
	}
	if ov.Mining != nil {
		applyIntOverride(&cfg.Mining.NgramSize, ov.Mining.NgramSize)
		applyIntOverride(&cfg.Mining.MinFrequency, ov.Mining.MinFrequency)
	}
	if len(ov.Include) > 0 {
		cfg.Include = ov.Include
	}
	if len(ov.Exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, ov.Exclude...)
	}
	return nil
}

func applyIntOverride(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func applyFloatOverride(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
