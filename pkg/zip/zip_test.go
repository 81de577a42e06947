package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

func TestArchiveBundlesEntries(t *testing.T) {
	data := Archive([]Entry{
		{Filename: "a.webp", Data: []byte("first")},
		{Filename: "b.png", Data: []byte("second")},
	})

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(reader.File) != 2 {
		t.Fatalf("archive has %d files, want 2", len(reader.File))
	}

	rc, err := reader.File[0].Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	content, _ := io.ReadAll(rc)
	rc.Close()
	if reader.File[0].Name != "a.webp" || string(content) != "first" {
		t.Fatalf("entry = %q/%q", reader.File[0].Name, content)
	}
}

func TestArchiveSkipsEmptyEntries(t *testing.T) {
	data := Archive([]Entry{
		{Filename: "a.webp", Data: []byte("kept")},
		{Filename: "empty.png"},
		{Filename: "", Data: []byte("nameless")},
	})

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(reader.File) != 1 {
		t.Fatalf("archive has %d files, want 1", len(reader.File))
	}
}

func TestArchiveEmptyInput(t *testing.T) {
	data := Archive(nil)
	if _, err := zip.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("empty archive unreadable: %v", err)
	}
}
