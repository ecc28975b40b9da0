package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aquastore/aquastore/pkg/models"
	"github.com/aquastore/aquastore/pkg/series"
)

const (
	fileExt     = ".json"
	fileExtZst  = ".json.zst"
	metaSuffix  = "_meta"
	fileDirPerm = 0o755
	filePerm    = 0o644
)

// FileConfig holds flat-file connector configuration.
type FileConfig struct {
	// Path is the root directory; one subdirectory is kept per library.
	Path string

	// Compress stores items zstd-compressed.
	Compress bool
}

// File stores every item as a JSON document on disk: one file per series
// plus a sidecar metadata file, one file per model record.
type File struct {
	name     string
	path     string
	compress bool
	codec    *codec
}

// NewFile creates a flat-file connector rooted at cfg.Path, creating the
// library directories when missing.
func NewFile(name string, cfg FileConfig) (*File, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("file connector: path is required")
	}
	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, err
	}
	for _, lib := range Libraries() {
		if err := os.MkdirAll(filepath.Join(path, string(lib)), fileDirPerm); err != nil {
			return nil, fmt.Errorf("create library dir %q: %w", lib, err)
		}
	}
	c, err := newCodec()
	if err != nil {
		return nil, err
	}
	return &File{
		name:     name,
		path:     path,
		compress: cfg.Compress,
		codec:    c,
	}, nil
}

// Name implements Connector.
func (f *File) Name() string { return f.name }

// Type implements Connector.
func (f *File) Type() string { return "file" }

// Path returns the connector's root directory.
func (f *File) Path() string { return f.path }

// Close implements Connector.
func (f *File) Close() error {
	f.codec.close()
	return nil
}

// libraryDir returns the directory holding a library.
func (f *File) libraryDir(lib Library) string {
	return filepath.Join(f.path, string(lib))
}

// writeDoc writes a JSON document, compressed when configured.
func (f *File) writeDoc(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if f.compress {
		return os.WriteFile(path+fileExtZst, f.codec.compress(data), filePerm)
	}
	return os.WriteFile(path+fileExt, data, filePerm)
}

// readDoc reads a JSON document, accepting both plain and compressed
// variants so a store survives a compression setting change.
func (f *File) readDoc(path string, v interface{}) error {
	data, err := os.ReadFile(path + fileExt)
	if os.IsNotExist(err) {
		var raw []byte
		raw, err = os.ReadFile(path + fileExtZst)
		if err == nil {
			data, err = f.codec.decompress(raw)
		}
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// removeDoc removes both variants of a document; ok reports whether at
// least one existed.
func removeDoc(path string) (bool, error) {
	found := false
	for _, p := range []string{path + fileExt, path + fileExtZst} {
		err := os.Remove(p)
		if err == nil {
			found = true
		} else if !os.IsNotExist(err) {
			return found, err
		}
	}
	return found, nil
}

// docExists reports whether either variant of a document exists.
func docExists(path string) bool {
	for _, p := range []string{path + fileExt, path + fileExtZst} {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}

// AddSeries implements Connector.
func (f *File) AddSeries(_ context.Context, lib Library, rec *SeriesRecord, overwrite bool) error {
	if err := validateSeriesAdd(lib, rec); err != nil {
		return err
	}
	name := rec.Series.Name
	base := filepath.Join(f.libraryDir(lib), name)
	if !overwrite && docExists(base) {
		return NewExistsError(lib, name)
	}
	// drop a stale variant left by a compression setting change
	if _, err := removeDoc(base); err != nil {
		return &Error{Class: ClassInternal, Library: lib, Name: name, Err: err}
	}
	if err := f.writeDoc(base, rec.Series); err != nil {
		return &Error{Class: ClassInternal, Library: lib, Name: name, Err: err}
	}
	metaBase := filepath.Join(f.libraryDir(lib), name+metaSuffix)
	if _, err := removeDoc(metaBase); err != nil {
		return &Error{Class: ClassInternal, Library: lib, Name: name, Err: err}
	}
	if rec.Metadata != nil {
		if err := f.writeDoc(metaBase, rec.Metadata); err != nil {
			return &Error{Class: ClassInternal, Library: lib, Name: name, Err: err}
		}
	}
	return nil
}

// GetSeries implements Connector.
func (f *File) GetSeries(_ context.Context, lib Library, name string) (*SeriesRecord, error) {
	if !lib.HoldsSeries() {
		return nil, NewValidationError("library %q does not hold series", lib)
	}
	base := filepath.Join(f.libraryDir(lib), name)
	var s series.Series
	if err := f.readDoc(base, &s); err != nil {
		if os.IsNotExist(err) {
			return nil, NewNotFoundError(lib, name)
		}
		return nil, &Error{Class: ClassInternal, Library: lib, Name: name, Err: err}
	}
	rec := &SeriesRecord{Series: &s}
	metaBase := filepath.Join(f.libraryDir(lib), name+metaSuffix)
	if docExists(metaBase) {
		var meta series.Metadata
		if err := f.readDoc(metaBase, &meta); err != nil {
			return nil, &Error{Class: ClassInternal, Library: lib, Name: name, Err: err}
		}
		rec.Metadata = meta
	}
	return rec, nil
}

// DeleteSeries implements Connector.
func (f *File) DeleteSeries(_ context.Context, lib Library, name string) error {
	if !lib.HoldsSeries() {
		return NewValidationError("library %q does not hold series", lib)
	}
	base := filepath.Join(f.libraryDir(lib), name)
	found, err := removeDoc(base)
	if err != nil {
		return &Error{Class: ClassInternal, Library: lib, Name: name, Err: err}
	}
	if !found {
		return NewNotFoundError(lib, name)
	}
	// metadata sidecar is optional
	if _, err := removeDoc(filepath.Join(f.libraryDir(lib), name+metaSuffix)); err != nil {
		return &Error{Class: ClassInternal, Library: lib, Name: name, Err: err}
	}
	return nil
}

// SeriesMetadata implements Connector.
func (f *File) SeriesMetadata(ctx context.Context, lib Library, name string) (series.Metadata, error) {
	rec, err := f.GetSeries(ctx, lib, name)
	if err != nil {
		return nil, err
	}
	return rec.Metadata, nil
}

// AddModel implements Connector.
func (f *File) AddModel(_ context.Context, rec *models.Record, overwrite bool) error {
	if err := validateModelAdd(rec); err != nil {
		return err
	}
	base := filepath.Join(f.libraryDir(LibraryModels), rec.Name)
	if !overwrite && docExists(base) {
		return NewExistsError(LibraryModels, rec.Name)
	}
	if _, err := removeDoc(base); err != nil {
		return &Error{Class: ClassInternal, Library: LibraryModels, Name: rec.Name, Err: err}
	}
	if err := f.writeDoc(base, rec); err != nil {
		return &Error{Class: ClassInternal, Library: LibraryModels, Name: rec.Name, Err: err}
	}
	return nil
}

// GetModel implements Connector.
func (f *File) GetModel(_ context.Context, name string) (*models.Record, error) {
	base := filepath.Join(f.libraryDir(LibraryModels), name)
	var rec models.Record
	if err := f.readDoc(base, &rec); err != nil {
		if os.IsNotExist(err) {
			return nil, NewNotFoundError(LibraryModels, name)
		}
		return nil, &Error{Class: ClassInternal, Library: LibraryModels, Name: name, Err: err}
	}
	return &rec, nil
}

// DeleteModel implements Connector.
func (f *File) DeleteModel(_ context.Context, name string) error {
	found, err := removeDoc(filepath.Join(f.libraryDir(LibraryModels), name))
	if err != nil {
		return &Error{Class: ClassInternal, Library: LibraryModels, Name: name, Err: err}
	}
	if !found {
		return NewNotFoundError(LibraryModels, name)
	}
	return nil
}

// Names implements Connector.
func (f *File) Names(_ context.Context, lib Library) ([]string, error) {
	if !lib.Valid() {
		return nil, NewValidationError("unknown library %q", lib)
	}
	entries, err := os.ReadDir(f.libraryDir(lib))
	if err != nil {
		return nil, &Error{Class: ClassInternal, Library: lib, Err: err}
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, ok := itemName(e.Name())
		if !ok {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// itemName strips the document extensions from a filename and filters out
// metadata sidecars.
func itemName(filename string) (string, bool) {
	name := filename
	switch {
	case strings.HasSuffix(name, fileExtZst):
		name = strings.TrimSuffix(name, fileExtZst)
	case strings.HasSuffix(name, fileExt):
		name = strings.TrimSuffix(name, fileExt)
	default:
		return "", false
	}
	if strings.HasSuffix(name, metaSuffix) {
		return "", false
	}
	return name, true
}
