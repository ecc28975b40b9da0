package connectors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/aquastore/aquastore/pkg/models"
	"github.com/aquastore/aquastore/pkg/series"
)

// BadgerConfig holds Badger connector configuration.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps all data in memory, useful for tests.
	InMemory bool
}

// envelope is the stored form of a series: the timestamp and value columns
// are encoded separately and compressed, which packs regular daily series
// into a few bytes per sample.
type envelope struct {
	Name       string          `json:"name"`
	Count      int             `json:"count"`
	Timestamps []byte          `json:"timestamps"`
	Values     []byte          `json:"values"`
	Metadata   series.Metadata `json:"metadata,omitempty"`
}

// Badger stores series in columnar compressed form in a Badger key-value
// database. Keys are "<library>/<name>".
type Badger struct {
	name  string
	db    *badger.DB
	codec *codec
}

// NewBadger opens a Badger-backed connector.
func NewBadger(name string, cfg BadgerConfig) (*Badger, error) {
	opts := badger.DefaultOptions(cfg.Path)
	opts.Logger = nil
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
		opts.Logger = nil
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	c, err := newCodec()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Badger{name: name, db: db, codec: c}, nil
}

// Name implements Connector.
func (b *Badger) Name() string { return b.name }

// Type implements Connector.
func (b *Badger) Type() string { return "badger" }

// Close implements Connector.
func (b *Badger) Close() error {
	b.codec.close()
	return b.db.Close()
}

func itemKey(lib Library, name string) []byte {
	return []byte(string(lib) + "/" + name)
}

func (b *Badger) set(lib Library, name string, data []byte, overwrite bool) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		key := itemKey(lib, name)
		if !overwrite {
			if _, err := txn.Get(key); err == nil {
				return NewExistsError(lib, name)
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return txn.Set(key, data)
	})
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr
	}
	if err != nil {
		return &Error{Class: ClassInternal, Library: lib, Name: name, Err: err}
	}
	return nil
}

func (b *Badger) get(lib Library, name string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(itemKey(lib, name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, NewNotFoundError(lib, name)
	}
	if err != nil {
		return nil, &Error{Class: ClassInternal, Library: lib, Name: name, Err: err}
	}
	return data, nil
}

func (b *Badger) delete(lib Library, name string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		key := itemKey(lib, name)
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return NewNotFoundError(lib, name)
	}
	if err != nil {
		return &Error{Class: ClassInternal, Library: lib, Name: name, Err: err}
	}
	return nil
}

// encodeSeries packs a series record into its columnar stored form.
func (b *Badger) encodeSeries(rec *SeriesRecord) ([]byte, error) {
	ts, err := b.codec.encodeTimestamps(rec.Series.Timestamps)
	if err != nil {
		return nil, err
	}
	vals, err := b.codec.encodeValues(rec.Series.Values)
	if err != nil {
		return nil, err
	}
	env := envelope{
		Name:       rec.Series.Name,
		Count:      rec.Series.Len(),
		Timestamps: ts,
		Values:     vals,
		Metadata:   rec.Metadata,
	}
	return json.Marshal(&env)
}

// decodeSeries unpacks the columnar stored form back into a series record.
func (b *Badger) decodeSeries(data []byte) (*SeriesRecord, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	ts, err := b.codec.decodeTimestamps(env.Timestamps, env.Count)
	if err != nil {
		return nil, err
	}
	vals, err := b.codec.decodeValues(env.Values, env.Count)
	if err != nil {
		return nil, err
	}
	return &SeriesRecord{
		Series: &series.Series{
			Name:       env.Name,
			Timestamps: ts,
			Values:     vals,
		},
		Metadata: env.Metadata,
	}, nil
}

// AddSeries implements Connector.
func (b *Badger) AddSeries(_ context.Context, lib Library, rec *SeriesRecord, overwrite bool) error {
	if err := validateSeriesAdd(lib, rec); err != nil {
		return err
	}
	data, err := b.encodeSeries(rec)
	if err != nil {
		return &Error{Class: ClassInternal, Library: lib, Name: rec.Series.Name, Err: err}
	}
	return b.set(lib, rec.Series.Name, data, overwrite)
}

// GetSeries implements Connector.
func (b *Badger) GetSeries(_ context.Context, lib Library, name string) (*SeriesRecord, error) {
	if !lib.HoldsSeries() {
		return nil, NewValidationError("library %q does not hold series", lib)
	}
	data, err := b.get(lib, name)
	if err != nil {
		return nil, err
	}
	rec, err := b.decodeSeries(data)
	if err != nil {
		return nil, &Error{Class: ClassInternal, Library: lib, Name: name, Err: err}
	}
	return rec, nil
}

// DeleteSeries implements Connector.
func (b *Badger) DeleteSeries(_ context.Context, lib Library, name string) error {
	if !lib.HoldsSeries() {
		return NewValidationError("library %q does not hold series", lib)
	}
	return b.delete(lib, name)
}

// SeriesMetadata implements Connector.
func (b *Badger) SeriesMetadata(_ context.Context, lib Library, name string) (series.Metadata, error) {
	if !lib.HoldsSeries() {
		return nil, NewValidationError("library %q does not hold series", lib)
	}
	data, err := b.get(lib, name)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &Error{Class: ClassInternal, Library: lib, Name: name, Err: err}
	}
	return env.Metadata, nil
}

// AddModel implements Connector.
func (b *Badger) AddModel(_ context.Context, rec *models.Record, overwrite bool) error {
	if err := validateModelAdd(rec); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return &Error{Class: ClassInternal, Library: LibraryModels, Name: rec.Name, Err: err}
	}
	return b.set(LibraryModels, rec.Name, b.codec.compress(data), overwrite)
}

// GetModel implements Connector.
func (b *Badger) GetModel(_ context.Context, name string) (*models.Record, error) {
	data, err := b.get(LibraryModels, name)
	if err != nil {
		return nil, err
	}
	raw, err := b.codec.decompress(data)
	if err != nil {
		return nil, &Error{Class: ClassInternal, Library: LibraryModels, Name: name, Err: err}
	}
	var rec models.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, &Error{Class: ClassInternal, Library: LibraryModels, Name: name, Err: err}
	}
	return &rec, nil
}

// DeleteModel implements Connector.
func (b *Badger) DeleteModel(_ context.Context, name string) error {
	return b.delete(LibraryModels, name)
}

// Names implements Connector.
func (b *Badger) Names(_ context.Context, lib Library) ([]string, error) {
	if !lib.Valid() {
		return nil, NewValidationError("unknown library %q", lib)
	}
	prefix := []byte(string(lib) + "/")
	var names []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			names = append(names, strings.TrimPrefix(key, string(prefix)))
		}
		return nil
	})
	if err != nil {
		return nil, &Error{Class: ClassInternal, Library: lib, Err: err}
	}
	sort.Strings(names)
	return names, nil
}
