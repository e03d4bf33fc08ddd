package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// ConfigFileName is looked up in the project root.
const ConfigFileName = ".manifest-lsp.kdl"

// Load reads .manifest-lsp.kdl from projectRoot. A missing file yields the
// defaults; a present but malformed file is an error.
func Load(projectRoot string) (*Config, error) {
	kdlPath := filepath.Join(projectRoot, ConfigFileName)

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return Default(projectRoot), nil
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFileName, err)
	}

	cfg, err := parseKDL(projectRoot, string(content))
	if err != nil {
		return nil, err
	}

	// A relative root in the file resolves against the directory holding it.
	if cfg.Project.Root == "" {
		cfg.Project.Root = projectRoot
	} else if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Join(projectRoot, cfg.Project.Root)
	}
	if abs, absErr := filepath.Abs(cfg.Project.Root); absErr == nil {
		cfg.Project.Root = filepath.Clean(abs)
	}

	return cfg, nil
}

func parseKDL(projectRoot, content string) (*Config, error) {
	cfg := Default(projectRoot)
	cfg.Project.Root = ""

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFileName, err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "source":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "dirs":
					cfg.Source.Dirs = collectStringArgs(cn)
				case "exclude":
					cfg.Source.Exclude = collectStringArgs(cn)
				}
			}
		case "runner":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "binary":
					if s, ok := firstStringArg(cn); ok {
						cfg.Runner.Binary = s
					}
				case "timeout_sec":
					if v, ok := firstIntArg(cn); ok && v > 0 {
						cfg.Runner.TimeoutSec = v
					}
				}
			}
		case "workers":
			if v, ok := firstIntArg(n); ok && v > 0 {
				cfg.Workers = v
			}
		}
	}

	return cfg, nil
}

// Helpers over the kdl-go document model.
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
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

	// Block form: each child node's name is the string value.
	if len(out) == 0 && len(n.Children) > 0 {
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
