package feature

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/twpayne/go-geos"
)

// Wire structs for the GeoJSON codec. Geometry stays raw so input bytes
// survive a round trip untouched.
type geoJSONFeature struct {
	Type       string                 `json:"type"`
	Geometry   json.RawMessage        `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type geoJSONCollection struct {
	Type     string           `json:"type"`
	CRS      *geoJSONCRS      `json:"crs,omitempty"`
	Features []geoJSONFeature `json:"features"`
}

// geoJSONCRS is the legacy (pre RFC 7946) named-CRS member. Modern files omit
// it; when present it is the set's declared reference identifier.
type geoJSONCRS struct {
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties"`
}

// LoadGeoJSON reads a GeoJSON FeatureCollection. Every feature must parse
// into a GEOS geometry; features that are parseable but invalid are kept and
// noted in the set's diagnostics with the GEOS validity reason.
func LoadGeoJSON(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var fc geoJSONCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("%s: expected a FeatureCollection, got %q", path, fc.Type)
	}

	set := &Set{Features: make([]Feature, 0, len(fc.Features))}
	if fc.CRS != nil {
		set.CRS = NormalizeCRSName(fc.CRS.Properties["name"])
	}

	for i, f := range fc.Features {
		if len(f.Geometry) == 0 || string(f.Geometry) == "null" {
			set.Diagnostics = append(set.Diagnostics, fmt.Sprintf("feature %d: null geometry, skipped", i))
			continue
		}
		g, err := geos.NewGeomFromGeoJSON(string(f.Geometry))
		if err != nil {
			return nil, fmt.Errorf("%s feature %d: %w", path, i, err)
		}
		if !g.IsValid() {
			set.Diagnostics = append(set.Diagnostics, fmt.Sprintf("feature %d: %s", i, g.IsValidReason()))
		}
		props := f.Properties
		if props == nil {
			props = map[string]interface{}{}
		}
		set.Features = append(set.Features, Feature{
			Geometry:   f.Geometry,
			Properties: props,
			Geom:       g,
		})
	}
	return set, nil
}

// WriteGeoJSON serializes a set as a GeoJSON FeatureCollection. The legacy
// crs member is only emitted for non-default references.
func WriteGeoJSON(path string, s *Set) error {
	fc := geoJSONCollection{
		Type:     "FeatureCollection",
		Features: make([]geoJSONFeature, 0, len(s.Features)),
	}
	if s.CRS != "" && !strings.EqualFold(s.CRS, "EPSG:4326") {
		fc.CRS = &geoJSONCRS{
			Type:       "name",
			Properties: map[string]string{"name": s.CRS},
		}
	}
	for i := range s.Features {
		fc.Features = append(fc.Features, geoJSONFeature{
			Type:       "Feature",
			Geometry:   s.Features[i].Geometry,
			Properties: s.Features[i].Properties,
		})
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// NormalizeCRSName folds the common URN spellings of the geographic default
// onto the EPSG form so identifier comparison is a string compare.
func NormalizeCRSName(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "urn:ogc:def:crs:ogc:1.3:crs84", "urn:ogc:def:crs:ogc::crs84", "crs84":
		return "EPSG:4326"
	case "urn:ogc:def:crs:epsg::4326", "epsg:4326":
		return "EPSG:4326"
	}
	return strings.TrimSpace(name)
}
