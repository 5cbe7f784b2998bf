// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanceresa/BigQuery/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Secrets
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, OpenAlexAPIKey, "  oa_abc123  \n")
				writeFile(t, dir, GCPProject, "fulbright-prod")
				writeFile(t, dir, OpenAlexEmail, "user@example.com\n")
				return dir
			},
			want: Secrets{
				OpenAlexAPIKey: "oa_abc123",
				GCPProject:     "fulbright-prod",
				OpenAlexEmail:  "user@example.com",
			},
		},
		{
			name: "returns empty set for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Secrets{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, DatabaseURL, "postgres://localhost/alexmatch")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: Secrets{DatabaseURL: "postgres://localhost/alexmatch"},
		},
		{
			name: "skips dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, OpenAlexEmail, "a@b.org")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: Secrets{OpenAlexEmail: "a@b.org"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files without permission bits")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func TestKeys(t *testing.T) {
	s := Secrets{GCPProject: "p", DatabaseURL: "d", OpenAlexEmail: "e"}
	assert.Equal(t, []string{DatabaseURL, GCPProject, OpenAlexEmail}, s.Keys())
}

func TestApply(t *testing.T) {
	s := Secrets{
		OpenAlexEmail:  "secret@example.com",
		OpenAlexAPIKey: "oa_key",
		DatabaseURL:    "postgres://db",
		GCPProject:     "proj",
	}
	cfg := types.DefaultConfig()
	cfg.OpenAlex.Email = "configured@example.com"
	cfg.Bridge.Project = "snapshots"

	s.Apply(&cfg)

	assert.Equal(t, "configured@example.com", cfg.OpenAlex.Email)
	assert.Equal(t, "oa_key", cfg.OpenAlex.APIKey)
	assert.Equal(t, "postgres://db", cfg.Store.DSN)
	assert.Equal(t, "proj", cfg.Store.Project)
	assert.Equal(t, "snapshots", cfg.Bridge.Project)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
