package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// defaultKDLName is the sidecar config file CodeCollage looks for in the
// project root, following the teacher's ".lci.kdl" convention.
const defaultKDLName = ".codecollage.kdl"

// Load reads configuration for projectRoot. If configPath is empty, it
// looks for defaultKDLName in projectRoot. A missing file is not an
// error — Default() is returned instead, so a bare `ingest` works
// without any config file.
func Load(projectRoot, configPath string) (*Config, error) {
	if configPath == "" {
		configPath = filepath.Join(projectRoot, defaultKDLName)
	}

	cfg := Default()
	absRoot, err := filepath.Abs(projectRoot)
	if err == nil {
		cfg.Project.Root = absRoot
	} else {
		cfg.Project.Root = projectRoot
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	if err := mergeKDL(cfg, string(content)); err != nil {
		return nil, err
	}
	if err := ApplyYAMLOverride(cfg, projectRoot); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeKDL parses KDL content and overlays it onto an already-defaulted
// Config, following the teacher's node-walking helpers (nodeName,
// firstIntArg, firstFloatArg, firstStringArg, collectStringArgs).
func mergeKDL(cfg *Config, content string) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "lsh":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "bands":
					if v, ok := firstIntArg(cn); ok {
						cfg.LSH.Bands = v
					}
				case "rows_per_band":
					if v, ok := firstIntArg(cn); ok {
						cfg.LSH.RowsPerBand = v
					}
				case "shingle_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.LSH.ShingleSize = v
					}
				case "similarity_threshold":
					if v, ok := firstFloatArg(cn); ok {
						cfg.LSH.SimilarityThreshold = v
					}
				case "cluster_threshold":
					if v, ok := firstFloatArg(cn); ok {
						cfg.LSH.ClusterThreshold = v
					}
				case "min_cluster_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.LSH.MinClusterSize = v
					}
				}
			}
		case "hash":
			for _, cn := range n.Children {
				if nodeName(cn) == "seed" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Hash.Seed = uint64(v)
					}
				}
			}
		case "mining":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "ngram_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Mining.NgramSize = v
					}
				case "min_frequency":
					if v, ok := firstIntArg(cn); ok {
						cfg.Mining.MinFrequency = v
					}
				}
			}
		case "include":
			cfg.Include = collectStringArgs(n)
		case "exclude":
			cfg.Exclude = collectStringArgs(n)
		}
	}

	return nil
}

// Helper functions leveraging kdl-go's document model, in the same shape
// as the teacher's propagation-config helpers.
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		log.Printf("WARNING: invalid numeric value for '%s' in KDL config, expected number but got %T", nodeName(n), n.Arguments[0].Value)
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}
