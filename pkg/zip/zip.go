package zip

import (
	"archive/zip"
	"bytes"
)

// Entry is one compressed output destined for a batch archive.
type Entry struct {
	Filename string
	Data     []byte
}

// Archive bundles batch outputs into a single zip. Entries without data are
// skipped (failed or degraded batch items have no local bytes to bundle).
func Archive(entries []Entry) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, entry := range entries {
		if len(entry.Data) == 0 || entry.Filename == "" {
			continue
		}
		w, err := zw.Create(entry.Filename)
		if err != nil {
			continue
		}
		if _, err := w.Write(entry.Data); err != nil {
			return nil
		}
	}
	_ = zw.Close()
	return buf.Bytes()
}
