package corpus

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// urlManifest is the YAML form of a URL list.
type urlManifest struct {
	URLs []string `yaml:"urls"`
}

// LoadURLs reads source page URLs from a YAML manifest (.yaml/.yml with a
// top-level "urls" list) or a plain text file with one URL per line. Blank
// lines and lines starting with '#' are skipped.
func LoadURLs(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read url list: %w", err)
	}

	var raw []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var m urlManifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse url manifest %s: %w", path, err)
		}
		raw = m.URLs
	default:
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			raw = append(raw, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("scan url list: %w", err)
		}
	}

	var urls []string
	for _, u := range raw {
		u = strings.TrimSpace(u)
		if u == "" || strings.HasPrefix(u, "#") {
			continue
		}
		urls = append(urls, u)
	}
	return urls, nil
}
