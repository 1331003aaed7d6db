// Package storage defines the document store the journal repository reads
// and writes through.
package storage

import "time"

// Entry is one direct child of a folder.
type Entry struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	IsDir   bool      `json:"is_dir"`
	ModTime time.Time `json:"mod_time"`
}

// Provider is the document store. All paths are relative to the store root
// and use forward slashes.
type Provider interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the content of the file at path, creating it
	// if needed.
	Write(path string, content []byte) error
	// Create writes a new file and fails with apperr.ErrAlreadyExists when
	// path is taken.
	Create(path string, content []byte) error
	// CreateFolder creates the folder at path and any missing parents.
	CreateFolder(path string) error
	// List returns the direct children of folder (non-recursive).
	List(folder string) ([]Entry, error)
	// Exists reports whether anything exists at path.
	Exists(path string) (bool, error)
}
