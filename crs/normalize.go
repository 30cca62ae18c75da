// Package crs brings two feature sets into one spatial reference. Faults are
// authoritative: regions are reprojected to match, never the reverse.
package crs

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/twpayne/go-geos"

	"faultsplit/feature"
)

// Transformer reprojects a single raw GeoJSON geometry between two reference
// identifiers. The production implementation wraps PROJ; tests substitute
// their own.
type Transformer interface {
	Transform(geometry json.RawMessage, from, to string) (json.RawMessage, error)
}

// Normalize ensures both sets carry the same reference identifier. Sets with
// no declared reference get defaultCRS first; if the identifiers still
// differ, every region geometry is transformed into the fault reference. An
// unresolvable reference is a fatal configuration error.
func Normalize(faults, regions *feature.Set, defaultCRS string, tr Transformer) error {
	if faults.CRS == "" {
		faults.CRS = defaultCRS
	}
	if regions.CRS == "" {
		regions.CRS = defaultCRS
	}
	if Equal(faults.CRS, regions.CRS) {
		regions.CRS = faults.CRS
		return nil
	}

	for i := range regions.Features {
		raw, err := tr.Transform(regions.Features[i].Geometry, regions.CRS, faults.CRS)
		if err != nil {
			return fmt.Errorf("reproject region %d into %s: %w", i, faults.CRS, err)
		}
		g, err := geos.NewGeomFromGeoJSON(string(raw))
		if err != nil {
			return fmt.Errorf("reproject region %d: rebuild geometry: %w", i, err)
		}
		regions.Features[i].Geometry = raw
		regions.Features[i].Geom = g
	}
	regions.CRS = faults.CRS
	return nil
}

// Equal compares two reference identifiers after folding the common aliases
// of the geographic default onto one spelling.
func Equal(a, b string) bool {
	return strings.EqualFold(feature.NormalizeCRSName(a), feature.NormalizeCRSName(b))
}
