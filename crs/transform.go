package crs

import (
	"encoding/json"
	"fmt"

	"github.com/everystreet/go-proj/v8/proj"
)

// ProjTransformer reprojects geometries through PROJ. Identifiers can be
// anything PROJ resolves: EPSG codes, WKT from a .prj sidecar, proj strings.
type ProjTransformer struct{}

func (ProjTransformer) Transform(geometry json.RawMessage, from, to string) (json.RawMessage, error) {
	var g struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(geometry, &g); err != nil {
		return nil, err
	}

	var coords interface{}
	switch g.Type {
	case "Point":
		coords = new([]float64)
	case "MultiPoint", "LineString":
		coords = new([][]float64)
	case "MultiLineString", "Polygon":
		coords = new([][][]float64)
	case "MultiPolygon":
		coords = new([][][][]float64)
	default:
		return nil, fmt.Errorf("cannot reproject geometry type %q", g.Type)
	}
	if err := json.Unmarshal(g.Coordinates, coords); err != nil {
		return nil, err
	}

	if err := transformPositions(positionsOf(coords), from, to); err != nil {
		return nil, err
	}

	out := struct {
		Type        string      `json:"type"`
		Coordinates interface{} `json:"coordinates"`
	}{Type: g.Type, Coordinates: coords}
	return json.Marshal(out)
}

// positionsOf flattens the decoded coordinate arrays into the leaf positions,
// which alias the original slices so transformation happens in place.
func positionsOf(coords interface{}) [][]float64 {
	switch c := coords.(type) {
	case *[]float64:
		return [][]float64{*c}
	case *[][]float64:
		return *c
	case *[][][]float64:
		var out [][]float64
		for _, ring := range *c {
			out = append(out, ring...)
		}
		return out
	case *[][][][]float64:
		var out [][]float64
		for _, poly := range *c {
			for _, ring := range poly {
				out = append(out, ring...)
			}
		}
		return out
	}
	return nil
}

func transformPositions(positions [][]float64, from, to string) error {
	var opErr error
	err := proj.CRSToCRS(from, to, func(pj proj.Projection) {
		for _, pos := range positions {
			if len(pos) < 2 {
				continue
			}
			c := proj.XY{X: pos[0], Y: pos[1]}
			if terr := proj.TransformForward(pj, &c); terr != nil {
				opErr = terr
				return
			}
			pos[0], pos[1] = c.X, c.Y
		}
	})
	if err != nil {
		return fmt.Errorf("resolve transform %s -> %s: %w", from, to, err)
	}
	return opErr
}
