// Package tagstore exposes the per-file tag block of an audio file as a
// small read/modify/persist capability. Keys are lowercased on the way in
// and out.
package tagstore

// Store is an open tag block.
type Store interface {
	// Path returns the file the store was opened from.
	Path() string

	// Comments returns every comment field, keyed by lowercase name, with
	// the values in file order.
	Comments() map[string][]string

	// Get returns all values for key, or nil when absent.
	Get(key string) []string

	// Set replaces all values for key.
	Set(key string, values []string)

	// RemoveComments drops every comment field.
	RemoveComments()

	// RemovePictures drops every embedded image, including ones added
	// since the store was opened.
	RemovePictures()

	// AddPicture embeds a new image.
	AddPicture(p Picture) error

	// Save persists the changes. The file is replaced atomically.
	Save() error
}

// Opener opens the tag store of a file.
type Opener interface {
	Open(path string) (Store, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) (Store, error)

// Open implements Opener.
func (f OpenerFunc) Open(path string) (Store, error) { return f(path) }

// Picture is an image to embed as the front cover.
type Picture struct {
	Description string
	MIME        string
	Data        []byte
}
