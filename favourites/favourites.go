// Package favourites provides persistent bookmark storage.
package favourites

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Favourite is a saved bookmark.
type Favourite struct {
	URL     string    `json:"url"`
	Title   string    `json:"title"`
	AddedAt time.Time `json:"added_at"`
}

// Store manages the favourites collection.
type Store struct {
	path       string
	Favourites []Favourite `json:"favourites"`
}

// Load reads favourites from the default location under the user's
// config directory. A missing file yields an empty store.
func Load() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(home, ".config", "gembrowse")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return LoadPath(filepath.Join(dir, "favourites.json"))
}

// LoadPath reads favourites from an explicit file path.
func LoadPath(path string) (*Store, error) {
	store := &Store{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, store); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return store, nil
}

// Save writes favourites back to disk.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

// Add adds a new favourite, avoiding duplicates by URL.
func (s *Store) Add(url, title string) bool {
	for _, f := range s.Favourites {
		if f.URL == url {
			return false
		}
	}
	s.Favourites = append(s.Favourites, Favourite{
		URL:     url,
		Title:   title,
		AddedAt: time.Now(),
	})
	return true
}

// Remove removes the favourite with the given URL.
func (s *Store) Remove(url string) bool {
	for i, f := range s.Favourites {
		if f.URL == url {
			s.Favourites = append(s.Favourites[:i], s.Favourites[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of favourites.
func (s *Store) Len() int {
	return len(s.Favourites)
}

// Page builds a Gemtext listing of the favourites, one link per entry.
func (s *Store) Page() string {
	var b strings.Builder
	b.WriteString("# Favourites\n")
	if len(s.Favourites) == 0 {
		b.WriteString("\nNothing saved yet.\n")
		return b.String()
	}
	b.WriteString("\n")
	for _, f := range s.Favourites {
		title := f.Title
		if title == "" {
			title = f.URL
		}
		fmt.Fprintf(&b, "=> %s %s\n", f.URL, title)
	}
	return b.String()
}
