package handlers

import (
	"io"
	"net/http"
	"path"

	"coolpress/internal/compress"
	"coolpress/pkg/zip"
)

// CompressBatch compresses every uploaded "files" part with one shared
// option set, preserving upload order. With ?archive=1 the finished outputs
// are re-read from the store and returned as a single zip.
func (a *App) CompressBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(a.Cfg.MaxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart form")
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "no files uploaded")
		return
	}

	opts, err := parseOptions(r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	var items []compress.BatchItem
	for _, header := range r.MultipartForm.File["files"] {
		file, openErr := header.Open()
		if openErr != nil {
			items = append(items, compress.BatchItem{Filename: header.Filename, Options: opts})
			continue
		}
		data, readErr := io.ReadAll(io.LimitReader(file, a.Cfg.MaxUploadBytes+1))
		file.Close()
		if readErr != nil {
			data = nil
		}
		items = append(items, compress.BatchItem{
			Input:    compress.Input{Data: data},
			Filename: header.Filename,
			Options:  opts,
		})
	}

	engine := a.Engines.Engine(r.FormValue("version"))
	results := engine.CompressBatch(r.Context(), items)

	if r.URL.Query().Get("archive") == "1" {
		a.writeArchive(w, r, results)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"results": results})
}

// writeArchive bundles the successful local outputs into a zip response.
func (a *App) writeArchive(w http.ResponseWriter, r *http.Request, results []compress.Result) {
	var entries []zip.Entry
	for _, result := range results {
		if !result.Success || result.Degraded || result.OutputURL == "" {
			continue
		}
		key := path.Base(result.OutputURL)
		data, err := a.Store.Read(r.Context(), key)
		if err != nil {
			a.Logger.Warn().Err(err).Str("key", key).Msg("skipping archive entry")
			continue
		}
		entries = append(entries, zip.Entry{Filename: key, Data: data})
	}
	if len(entries) == 0 {
		a.error(w, http.StatusUnprocessableEntity, "empty_archive", "no outputs available to archive")
		return
	}

	archive := zip.Archive(entries)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="compressed.zip"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
