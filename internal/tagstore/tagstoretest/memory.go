// Package tagstoretest provides an in-memory tag store for tests.
package tagstoretest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/linuxmatters/albumprep/internal/tagstore"
)

// Store is an in-memory tagstore.Store. Changes become visible through
// Saved only after Save.
type Store struct {
	path     string
	working  map[string][]string
	saved    map[string][]string
	pictures int
	savedPic int
	saves    int

	// SaveErr, when set, is returned by Save.
	SaveErr error
}

// NewStore returns a store for path holding fields.
func NewStore(path string, fields map[string][]string) *Store {
	s := &Store{path: path}
	s.working = clone(fields)
	s.saved = clone(fields)
	return s
}

// Path implements tagstore.Store.
func (s *Store) Path() string { return s.path }

// Comments implements tagstore.Store.
func (s *Store) Comments() map[string][]string { return clone(s.working) }

// Get implements tagstore.Store.
func (s *Store) Get(key string) []string {
	return append([]string(nil), s.working[strings.ToLower(key)]...)
}

// Set implements tagstore.Store.
func (s *Store) Set(key string, values []string) {
	key = strings.ToLower(key)
	if len(values) == 0 {
		delete(s.working, key)
		return
	}
	s.working[key] = append([]string(nil), values...)
}

// RemoveComments implements tagstore.Store.
func (s *Store) RemoveComments() { s.working = map[string][]string{} }

// RemovePictures implements tagstore.Store.
func (s *Store) RemovePictures() { s.pictures = 0 }

// AddPicture implements tagstore.Store.
func (s *Store) AddPicture(p tagstore.Picture) error {
	if len(p.Data) == 0 {
		return fmt.Errorf("empty picture")
	}
	s.pictures++
	return nil
}

// Save implements tagstore.Store.
func (s *Store) Save() error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.saved = clone(s.working)
	s.savedPic = s.pictures
	s.saves++
	return nil
}

// Saved returns the fields as of the last Save.
func (s *Store) Saved() map[string][]string { return clone(s.saved) }

// SavedPictures returns the picture count as of the last Save.
func (s *Store) SavedPictures() int { return s.savedPic }

// Saves returns how many times Save succeeded.
func (s *Store) Saves() int { return s.saves }

// SetPictures seeds the number of embedded images.
func (s *Store) SetPictures(n int) {
	s.pictures = n
	s.savedPic = n
}

// Keys returns the saved keys, sorted.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.saved))
	for k := range s.saved {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Opener hands out registered stores by path.
type Opener struct {
	stores map[string]*Store
	opened []string
}

// NewOpener returns an empty Opener.
func NewOpener() *Opener {
	return &Opener{stores: map[string]*Store{}}
}

// Add registers a store for path.
func (o *Opener) Add(path string, fields map[string][]string) *Store {
	s := NewStore(path, fields)
	o.stores[path] = s
	return s
}

// Store returns the store registered for path.
func (o *Opener) Store(path string) *Store { return o.stores[path] }

// Opened returns the paths passed to Open, in call order.
func (o *Opener) Opened() []string { return append([]string(nil), o.opened...) }

// Open implements tagstore.Opener.
func (o *Opener) Open(path string) (tagstore.Store, error) {
	o.opened = append(o.opened, path)
	s, ok := o.stores[path]
	if !ok {
		return nil, fmt.Errorf("no tag store registered for %s", path)
	}
	return s, nil
}

func clone(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = append([]string(nil), v...)
	}
	return out
}
