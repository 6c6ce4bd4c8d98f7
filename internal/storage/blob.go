package storage

import (
	"errors"
	"io"
	"path"
	"strings"
)

var ErrBadKey = errors.New("invalid blob key")

type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
}

// ImportKey is where the source document of an import run is kept.
func ImportKey(runID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "source.bin"
	}
	return "imports/" + runID + "/" + name
}

// cleanKey rejects keys that would escape the store root.
func cleanKey(key string) (string, error) {
	if key == "" {
		return "", ErrBadKey
	}
	key = strings.ReplaceAll(key, "\\", "/")
	k := strings.TrimPrefix(path.Clean("/"+key), "/")
	if k == "" || k != strings.TrimPrefix(path.Clean(key), "/") {
		return "", ErrBadKey
	}
	return k, nil
}
