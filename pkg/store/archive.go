package store

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aquastore/aquastore/pkg/connectors"
	"github.com/aquastore/aquastore/pkg/models"
)

// archiveManifest is the store.json entry of an archive.
type archiveManifest struct {
	Store    string    `json:"store"`
	Exported time.Time `json:"exported"`
}

// ExportArchive writes the full contents of the store as a zip archive:
// one JSON document per item under <library>/<name>.json, plus a store.json
// manifest.
func (s *Store) ExportArchive(ctx context.Context, w io.Writer) error {
	zw := zip.NewWriter(w)

	if err := writeArchiveEntry(zw, "store.json", archiveManifest{
		Store:    s.name,
		Exported: time.Now().UTC(),
	}); err != nil {
		return err
	}

	for _, lib := range connectors.Libraries() {
		names, err := s.conn.Names(ctx, lib)
		if err != nil {
			return err
		}
		for _, name := range names {
			if err := ctx.Err(); err != nil {
				return err
			}
			var doc interface{}
			if lib == connectors.LibraryModels {
				doc, err = s.conn.GetModel(ctx, name)
			} else {
				doc, err = s.conn.GetSeries(ctx, lib, name)
			}
			if err != nil {
				return err
			}
			entry := path.Join(string(lib), name+".json")
			if err := writeArchiveEntry(zw, entry, doc); err != nil {
				return err
			}
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	s.log.Info("exported archive")
	return nil
}

// writeArchiveEntry adds one JSON document to the archive.
func writeArchiveEntry(zw *zip.Writer, name string, doc interface{}) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create archive entry %s: %w", name, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode archive entry %s: %w", name, err)
	}
	return nil
}

// ImportArchive loads the contents of an archive produced by ExportArchive
// into the store. Series are imported before models so that model reference
// checks see the archived series. It returns the number of items imported.
func (s *Store) ImportArchive(ctx context.Context, r io.ReaderAt, size int64, overwrite bool) (int, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return 0, fmt.Errorf("open archive: %w", err)
	}

	imported := 0
	// series libraries first, models last
	for _, lib := range append(connectors.SeriesLibraries(), connectors.LibraryModels) {
		for _, zf := range zr.File {
			if err := ctx.Err(); err != nil {
				return imported, err
			}
			dir, file := path.Split(zf.Name)
			if connectors.Library(path.Clean(dir)) != lib || path.Ext(file) != ".json" {
				continue
			}
			if err := s.importArchiveEntry(ctx, lib, zf, overwrite); err != nil {
				return imported, err
			}
			imported++
		}
	}
	s.log.Infof("imported %d items from archive", imported)
	return imported, nil
}

// importArchiveEntry loads one archive document into the store.
func (s *Store) importArchiveEntry(ctx context.Context, lib connectors.Library, zf *zip.File, overwrite bool) error {
	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("open archive entry %s: %w", zf.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read archive entry %s: %w", zf.Name, err)
	}

	if lib == connectors.LibraryModels {
		var rec models.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("decode archive entry %s: %w", zf.Name, err)
		}
		return s.AddModel(ctx, &rec, overwrite)
	}

	var rec connectors.SeriesRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("decode archive entry %s: %w", zf.Name, err)
	}
	return s.conn.AddSeries(ctx, lib, &rec, overwrite)
}
