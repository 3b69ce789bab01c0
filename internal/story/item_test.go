package story

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeItems(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestItemValidate(t *testing.T) {
	tests := []struct {
		name    string
		item    Item
		wantErr bool
	}{
		{"valid", Item{Title: "T", URL: "https://example.com/a"}, false},
		{"valid with all fields", Item{Title: "T", URL: "https://example.com/a", Subtitle: "s", Impact: "i"}, false},
		{"missing title", Item{URL: "https://example.com/a"}, true},
		{"missing url", Item{Title: "T"}, true},
		{"url not a url", Item{Title: "T", URL: "not a url"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidItem)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadItems(t *testing.T) {
	t.Run("valid array", func(t *testing.T) {
		path := writeItems(t, `[
			{"title": "A", "url": "https://example.com/a", "subtitle": "sub", "impact": "imp"},
			{"title": "B", "url": "https://example.com/b"}
		]`)

		items, rejected, err := LoadItems(path)
		require.NoError(t, err)
		assert.Empty(t, rejected)
		require.Len(t, items, 2)
		assert.Equal(t, "A", items[0].Title)
		assert.Equal(t, "sub", items[0].Subtitle)
	})

	t.Run("bad records rejected, rest kept", func(t *testing.T) {
		path := writeItems(t, `[
			{"title": "A", "url": "https://example.com/a"},
			{"title": "no url here"},
			{"title": "C", "url": "https://example.com/c"}
		]`)

		items, rejected, err := LoadItems(path)
		require.NoError(t, err)
		require.Len(t, items, 2)
		require.Len(t, rejected, 1)
		assert.Equal(t, 1, rejected[0].Index)
		assert.ErrorIs(t, rejected[0].Err, ErrInvalidItem)
	})

	t.Run("unparseable file is fatal", func(t *testing.T) {
		path := writeItems(t, `{"not": "an array"`)
		_, _, err := LoadItems(path)
		assert.Error(t, err)
	})

	t.Run("missing file is fatal", func(t *testing.T) {
		_, _, err := LoadItems(filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
	})
}
