package known

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"flamecompanion/internal/service/extractor"
)

// seedEntry is one known story in the seed file
type seedEntry struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// seedFile is the on-disk shape of the seed tables. Story keys are the
// site's numeric story identifiers.
type seedFile struct {
	Stories  map[string]seedEntry `json:"stories"`
	Profiles map[string][]string  `json:"profiles"`
}

// Loader manages the known-story and known-profile seed tables with
// in-memory caching. The tables back the heuristic extraction terminal
// and the profile crawler's discovery fallback.
type Loader struct {
	path   string
	logger *slog.Logger

	mu       sync.RWMutex
	stories  map[int64]extractor.KnownStory
	profiles map[string][]string
	loaded   bool
}

// NewLoader creates a seed loader. An empty path means no seed file is
// configured and the tables stay empty.
func NewLoader(path string, logger *slog.Logger) *Loader {
	return &Loader{
		path:     path,
		logger:   logger,
		stories:  make(map[int64]extractor.KnownStory),
		profiles: make(map[string][]string),
	}
}

// Load reads the seed file and caches its tables in memory. Falls back
// to empty tables if the file is missing or malformed.
func (l *Loader) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.path == "" {
		l.logger.Info("No seed file configured, starting with empty known tables")
		l.loaded = true
		return nil
	}

	l.logger.Info("Loading known-story seed file...", "path", l.path)

	data, err := os.ReadFile(l.path)
	if err != nil {
		l.logger.Warn("Failed to read seed file, falling back to empty tables",
			"path", l.path,
			"error", err,
		)
		l.loaded = true
		return nil
	}

	var file seedFile
	if err := json.Unmarshal(data, &file); err != nil {
		l.logger.Warn("Failed to parse seed file, falling back to empty tables",
			"path", l.path,
			"error", err,
		)
		l.loaded = true
		return nil
	}

	stories := make(map[int64]extractor.KnownStory, len(file.Stories))
	for key, entry := range file.Stories {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			l.logger.Warn("Skipping seed entry with non-numeric story id", "key", key)
			continue
		}
		stories[id] = extractor.KnownStory{
			Title:  entry.Title,
			Author: entry.Author,
		}
	}

	l.stories = stories
	l.profiles = file.Profiles
	if l.profiles == nil {
		l.profiles = make(map[string][]string)
	}
	l.loaded = true

	l.logger.Info("Seed tables loaded successfully",
		"stories", len(l.stories),
		"profiles", len(l.profiles),
	)
	return nil
}

// Refresh reloads the seed file
func (l *Loader) Refresh() error {
	l.logger.Info("Refreshing seed tables...")
	return l.Load()
}

// Stories returns a copy of the known-story table
func (l *Loader) Stories() (map[int64]extractor.KnownStory, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.loaded {
		return nil, fmt.Errorf("seed tables not loaded yet")
	}

	out := make(map[int64]extractor.KnownStory, len(l.stories))
	for id, story := range l.stories {
		out[id] = story
	}
	return out, nil
}

// Profiles returns a copy of the known-profile table
func (l *Loader) Profiles() (map[string][]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.loaded {
		return nil, fmt.Errorf("seed tables not loaded yet")
	}

	out := make(map[string][]string, len(l.profiles))
	for username, urls := range l.profiles {
		out[username] = append([]string(nil), urls...)
	}
	return out, nil
}

// Count returns the number of cached known stories
func (l *Loader) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.stories)
}
