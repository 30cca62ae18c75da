package engine

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geos"

	"faultsplit/feature"
)

// Shared test fixtures: two square regions with a common border at x=2 and
// three faults (border-crossing, interior, offshore).

func lineFeature(t *testing.T, id string, coords [][]float64) feature.Feature {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"type":        "LineString",
		"coordinates": coords,
	})
	require.NoError(t, err)
	g, err := geos.NewGeomFromGeoJSON(string(raw))
	require.NoError(t, err)
	return feature.Feature{
		Geometry:   json.RawMessage(raw),
		Properties: map[string]interface{}{"fault_id": id, "slip_type": "Dextral"},
		Geom:       g,
	}
}

func boxFeature(t *testing.T, name string, minX, minY, maxX, maxY float64) feature.Feature {
	t.Helper()
	raw := []byte(fmt.Sprintf(
		`{"type":"Polygon","coordinates":[[[%g,%g],[%g,%g],[%g,%g],[%g,%g],[%g,%g]]]}`,
		minX, minY, maxX, minY, maxX, maxY, minX, maxY, minX, minY))
	g, err := geos.NewGeomFromGeoJSON(string(raw))
	require.NoError(t, err)
	return feature.Feature{
		Geometry:   json.RawMessage(raw),
		Properties: map[string]interface{}{"NAME_EN": name},
		Geom:       g,
	}
}

func scenarioSets(t *testing.T) (faults, regions *feature.Set) {
	t.Helper()
	regions = &feature.Set{
		CRS: "EPSG:4326",
		Features: []feature.Feature{
			boxFeature(t, "Alpha", 0, 0, 2, 2),
			boxFeature(t, "Beta", 2, 0, 4, 2),
		},
	}
	faults = &feature.Set{
		CRS: "EPSG:4326",
		Features: []feature.Feature{
			lineFeature(t, "A", [][]float64{{1, 1}, {3, 1}}),
			lineFeature(t, "B", [][]float64{{2.5, 0.5}, {3.5, 0.5}}),
			lineFeature(t, "C", [][]float64{{10, 10}, {11, 11}}),
		},
	}
	return faults, regions
}

func faultIDs(features []feature.Feature) []string {
	out := make([]string, 0, len(features))
	for _, f := range features {
		out = append(out, f.Properties["fault_id"].(string))
	}
	return out
}
