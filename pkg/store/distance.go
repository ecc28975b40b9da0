package store

import (
	"context"
	"math"
	"sort"

	"github.com/aquastore/aquastore/pkg/connectors"
)

// Neighbor is one entry of a nearest-neighbor query result.
type Neighbor struct {
	Name     string
	Distance float64
}

// NearestStresses returns up to n stresses of the given kind closest to the
// named observation series, ordered by distance. Series without x/y metadata
// are skipped. An empty kind matches all stresses.
func (s *Store) NearestStresses(ctx context.Context, oseries, kind string, n int) ([]Neighbor, error) {
	meta, err := s.conn.SeriesMetadata(ctx, connectors.LibraryOseries, oseries)
	if err != nil {
		return nil, err
	}
	x, y, ok := meta.XY()
	if !ok {
		return nil, connectors.NewValidationError("oseries %q has no x/y metadata", oseries)
	}
	return s.nearest(ctx, connectors.LibraryStresses, x, y, kind, n, "")
}

// NearestOseries returns up to n observation series closest to the named
// observation series, excluding itself.
func (s *Store) NearestOseries(ctx context.Context, oseries string, n int) ([]Neighbor, error) {
	meta, err := s.conn.SeriesMetadata(ctx, connectors.LibraryOseries, oseries)
	if err != nil {
		return nil, err
	}
	x, y, ok := meta.XY()
	if !ok {
		return nil, connectors.NewValidationError("oseries %q has no x/y metadata", oseries)
	}
	return s.nearest(ctx, connectors.LibraryOseries, x, y, "", n, oseries)
}

// nearest scans a library for the n items closest to (x, y).
func (s *Store) nearest(ctx context.Context, lib connectors.Library, x, y float64, kind string, n int, exclude string) ([]Neighbor, error) {
	names, err := s.conn.Names(ctx, lib)
	if err != nil {
		return nil, err
	}
	var neighbors []Neighbor
	for _, name := range names {
		if name == exclude {
			continue
		}
		meta, err := s.conn.SeriesMetadata(ctx, lib, name)
		if err != nil {
			return nil, err
		}
		if kind != "" && meta.Kind() != kind {
			continue
		}
		nx, ny, ok := meta.XY()
		if !ok {
			continue
		}
		neighbors = append(neighbors, Neighbor{
			Name:     name,
			Distance: math.Hypot(nx-x, ny-y),
		})
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Distance != neighbors[j].Distance {
			return neighbors[i].Distance < neighbors[j].Distance
		}
		return neighbors[i].Name < neighbors[j].Name
	})
	if n > 0 && len(neighbors) > n {
		neighbors = neighbors[:n]
	}
	return neighbors, nil
}
