// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value.
//
// Supported key files: openalex-email, openalex-api-key, database-url, gcp-project.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/juanceresa/BigQuery/internal/logging"
	"github.com/juanceresa/BigQuery/pkg/types"
)

// Key names recognised by Apply.
const (
	OpenAlexEmail  = "openalex-email"
	OpenAlexAPIKey = "openalex-api-key"
	DatabaseURL    = "database-url"
	GCPProject     = "gcp-project"
)

// Secrets maps key names to values.
type Secrets map[string]string

// Load reads all files in dir. A missing directory is not an error; Load
// returns an empty set. Unreadable files are logged and skipped.
func Load(dir string, logger *logging.Logger) (Secrets, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", "key", name, "error", err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, nil
}

// Keys returns the loaded key names in sorted order.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Default returns current when set, otherwise the secret stored under key.
func (s Secrets) Default(key, current string) string {
	if current != "" {
		return current
	}
	return s[key]
}

// Apply fills empty credential fields of cfg from s. Values already set by
// the config file, environment or flags win.
func (s Secrets) Apply(cfg *types.Config) {
	cfg.OpenAlex.Email = s.Default(OpenAlexEmail, cfg.OpenAlex.Email)
	cfg.OpenAlex.APIKey = s.Default(OpenAlexAPIKey, cfg.OpenAlex.APIKey)
	cfg.Store.DSN = s.Default(DatabaseURL, cfg.Store.DSN)
	cfg.Store.Project = s.Default(GCPProject, cfg.Store.Project)
	cfg.Bridge.Project = s.Default(GCPProject, cfg.Bridge.Project)
}
