// Package feature defines the in-memory feature model and the file codecs
// that produce and consume it. A feature keeps its original GeoJSON geometry
// bytes alongside the parsed GEOS geometry so that faults can be written back
// out byte-for-byte unchanged.
package feature

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/twpayne/go-geos"
)

// Feature is one record: geometry plus its attribute mapping. Immutable after
// load; the group sanitizer copies properties instead of editing them.
type Feature struct {
	Geometry   json.RawMessage
	Properties map[string]interface{}
	Geom       *geos.Geom
}

// Set is a loaded feature collection. CRS is the declared reference
// identifier, empty when the source carried none.
type Set struct {
	Features []Feature
	CRS      string

	// Diagnostics holds per-feature load warnings (invalid geometries and
	// the like). They never fail the load.
	Diagnostics []string
}

// FieldNames lists the attribute fields seen across the set, sorted. Used to
// report what is available when a configured field is missing.
func (s *Set) FieldNames() []string {
	seen := map[string]struct{}{}
	for i := range s.Features {
		for k := range s.Features[i].Properties {
			seen[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// HasField reports whether any feature in the set carries the named field.
func (s *Set) HasField(name string) bool {
	for i := range s.Features {
		if _, ok := s.Features[i].Properties[name]; ok {
			return true
		}
	}
	return false
}

// Load reads a feature set, dispatching on the file extension.
func Load(path string) (*Set, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return LoadGeoJSON(path)
	case ".shp":
		return LoadShapefile(path)
	default:
		return nil, fmt.Errorf("unsupported input format %q for %s (want .geojson, .json or .shp)", filepath.Ext(path), path)
	}
}
