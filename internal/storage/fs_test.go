package storage

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestFSStoreRoundTrip(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	key := ImportKey("run-1", `C:\uploads\题库.docx`)
	if key != "imports/run-1/题库.docx" {
		t.Fatalf("ImportKey = %q", key)
	}
	if _, err := s.Put(key, strings.NewReader("payload")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	rc, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != "payload" {
		t.Fatalf("got %q", b)
	}
}

func TestStoresRejectEscapingKeys(t *testing.T) {
	fs, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	for _, s := range []BlobStore{fs, NewMemStore()} {
		for _, key := range []string{"", "../x", "a/../../x", "/"} {
			if _, err := s.Put(key, strings.NewReader("x")); !errors.Is(err, ErrBadKey) {
				t.Fatalf("%T Put(%q) err = %v", s, key, err)
			}
		}
	}
}

func TestMemStoreMissing(t *testing.T) {
	m := NewMemStore()
	if _, err := m.Get("nope"); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := m.Put("a/b.txt", strings.NewReader("hi")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	rc, err := m.Get("a/b.txt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if string(b) != "hi" {
		t.Fatalf("got %q", b)
	}
}
