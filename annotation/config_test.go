package annotation

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parelha.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file gives defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
		assert.Equal(t, "127.0.0.1:8081", cfg.UI.Addr)
		assert.Equal(t, 3*time.Second, cfg.UI.NoticeTTL)
		assert.Equal(t, 10, cfg.UI.HistoryPageSize)
	})

	t.Run("values and durations", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, `
api:
  base_url: https://annot.example.org/api
  timeout: 5s
ui:
  language: fr
  notice_ttl: 1500ms
  history_page_size: 25
session:
  dir: /tmp/parelha-test
`))
		require.NoError(t, err)
		assert.Equal(t, "https://annot.example.org/api", cfg.API.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.API.Timeout)
		assert.Equal(t, "fr", cfg.UI.Language)
		assert.Equal(t, 1500*time.Millisecond, cfg.UI.NoticeTTL)
		assert.Equal(t, 25, cfg.UI.HistoryPageSize)

		path, err := cfg.JournalPath()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/tmp/parelha-test", "journal.db"), path)
	})

	t.Run("empty journal path disables it", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, "journal:\n  path: \"\"\n"))
		require.NoError(t, err)
		path, err := cfg.JournalPath()
		require.NoError(t, err)
		assert.Empty(t, path)
	})

	t.Run("invalid values", func(t *testing.T) {
		for name, content := range map[string]string{
			"language":  "ui:\n  language: de\n",
			"page size": "ui:\n  history_page_size: 500\n",
			"base url":  "api:\n  base_url: not a url\n",
			"yaml":      "api: [",
		} {
			t.Run(name, func(t *testing.T) {
				_, err := LoadConfig(writeConfig(t, content))
				assert.Error(t, err)
			})
		}
	})
}
