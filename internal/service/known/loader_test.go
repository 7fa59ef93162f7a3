package known

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadReadsSeedTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"stories": {
			"1000": {"title": "La Flamme Imaginaire", "author": "Imaginary Flame"},
			"abc": {"title": "Dropped"}
		},
		"profiles": {
			"imaginaryflame": ["https://www.fyctia.com/story/1000-la-flamme-imaginaire"]
		}
	}`), 0o644))

	loader := NewLoader(path, testLogger())
	require.NoError(t, loader.Load())

	stories, err := loader.Stories()
	require.NoError(t, err)
	require.Len(t, stories, 1, "non-numeric keys are dropped")
	assert.Equal(t, "La Flamme Imaginaire", stories[1000].Title)
	assert.Equal(t, "Imaginary Flame", stories[1000].Author)

	profiles, err := loader.Profiles()
	require.NoError(t, err)
	assert.Len(t, profiles["imaginaryflame"], 1)
}

func TestLoadFallsBackToEmptyTables(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"no file configured", ""},
		{"missing file", filepath.Join(t.TempDir(), "absent.json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewLoader(tt.path, testLogger())
			require.NoError(t, loader.Load())

			stories, err := loader.Stories()
			require.NoError(t, err)
			assert.Empty(t, stories)

			profiles, err := loader.Profiles()
			require.NoError(t, err)
			assert.Empty(t, profiles)
		})
	}
}

func TestLoadFallsBackOnMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	loader := NewLoader(path, testLogger())
	require.NoError(t, loader.Load())
	assert.Equal(t, 0, loader.Count())
}

func TestTablesUnavailableBeforeLoad(t *testing.T) {
	loader := NewLoader("", testLogger())

	_, err := loader.Stories()
	require.Error(t, err)
	_, err = loader.Profiles()
	require.Error(t, err)
}
