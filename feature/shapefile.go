package feature

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/twpayne/go-geom"
	geomjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geos"
)

// LoadShapefile reads a shapefile (.shp + .shx + .dbf) into a Set. The
// reference identifier comes from the .prj sidecar when one exists; its WKT
// is kept verbatim since PROJ resolves WKT strings directly.
func LoadShapefile(path string) (*Set, error) {
	base := strings.TrimSuffix(path, ".shp")
	for _, ext := range []string{".shx", ".dbf"} {
		if _, err := os.Stat(base + ext); err != nil {
			return nil, fmt.Errorf("%s: missing sidecar %s%s (all of .shp/.shx/.dbf are required)", path, base, ext)
		}
	}

	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	fields := r.Fields()
	set := &Set{}
	row := 0
	for r.Next() {
		n, shape := r.Shape()
		props := make(map[string]interface{}, len(fields))
		for i := range fields {
			props[fields[i].String()] = strings.TrimSpace(r.ReadAttribute(n, i))
		}

		g, err := shapeToGeom(shape)
		if err != nil {
			set.Diagnostics = append(set.Diagnostics, fmt.Sprintf("record %d: %v, skipped", row, err))
			row++
			continue
		}
		raw, err := geomjson.Marshal(g)
		if err != nil {
			return nil, fmt.Errorf("%s record %d: %w", path, row, err)
		}
		gg, err := geos.NewGeomFromGeoJSON(string(raw))
		if err != nil {
			return nil, fmt.Errorf("%s record %d: %w", path, row, err)
		}
		if !gg.IsValid() {
			set.Diagnostics = append(set.Diagnostics, fmt.Sprintf("record %d: %s", row, gg.IsValidReason()))
		}
		set.Features = append(set.Features, Feature{
			Geometry:   json.RawMessage(raw),
			Properties: props,
			Geom:       gg,
		})
		row++
	}

	if prj, err := os.ReadFile(base + ".prj"); err == nil {
		set.CRS = strings.TrimSpace(string(prj))
	}
	return set, nil
}

// shapeToGeom lifts a shapefile record into a go-geom geometry so it can be
// marshalled as GeoJSON. Polygons follow shapefile winding: clockwise rings
// open a new polygon, counter-clockwise rings are holes in the current one.
func shapeToGeom(shape shp.Shape) (geom.T, error) {
	switch s := shape.(type) {
	case *shp.Point:
		return geom.NewPoint(geom.XY).MustSetCoords(geom.Coord{s.X, s.Y}), nil
	case *shp.PolyLine:
		parts, err := splitParts(s.Points, s.Parts)
		if err != nil {
			return nil, err
		}
		return geom.NewMultiLineString(geom.XY).MustSetCoords(parts), nil
	case *shp.Polygon:
		rings, err := splitParts(s.Points, s.Parts)
		if err != nil {
			return nil, err
		}
		return polygonFromRings(rings)
	default:
		return nil, fmt.Errorf("unsupported shape type %T", shape)
	}
}

func splitParts(points []shp.Point, parts []int32) ([][]geom.Coord, error) {
	if len(parts) == 0 {
		parts = []int32{0}
	}
	out := make([][]geom.Coord, 0, len(parts))
	for i, start := range parts {
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		// Part offsets come straight off disk; a corrupt file must not
		// panic the reader.
		if start < 0 || int(start) > end || end > len(points) {
			return nil, fmt.Errorf("corrupt part offsets [%d:%d] for %d points", start, end, len(points))
		}
		coords := make([]geom.Coord, 0, end-int(start))
		for _, p := range points[start:end] {
			coords = append(coords, geom.Coord{p.X, p.Y})
		}
		out = append(out, coords)
	}
	return out, nil
}

func polygonFromRings(rings [][]geom.Coord) (geom.T, error) {
	var polys [][][]geom.Coord
	for _, ring := range rings {
		if len(ring) < 4 {
			continue
		}
		ring = closeRing(ring)
		if signedArea(ring) <= 0 && len(polys) > 0 {
			// counter-clockwise: hole in the polygon opened last
			polys[len(polys)-1] = append(polys[len(polys)-1], ring)
		} else {
			polys = append(polys, [][]geom.Coord{ring})
		}
	}
	if len(polys) == 0 {
		return nil, fmt.Errorf("polygon record has no usable rings")
	}
	return geom.NewMultiPolygon(geom.XY).MustSetCoords(polys), nil
}

func closeRing(ring []geom.Coord) []geom.Coord {
	first, last := ring[0], ring[len(ring)-1]
	if first[0] != last[0] || first[1] != last[1] {
		ring = append(ring, geom.Coord{first[0], first[1]})
	}
	return ring
}

// signedArea is positive for clockwise rings in shapefile axis order.
func signedArea(ring []geom.Coord) float64 {
	var sum float64
	for i := 0; i < len(ring)-1; i++ {
		sum += (ring[i+1][0] - ring[i][0]) * (ring[i+1][1] + ring[i][1])
	}
	return sum / 2
}

// WriteShapefile serializes a set as .shp/.shx/.dbf. The shape type is taken
// from the first feature; DBF fields come from its properties (names cut to
// the 10 character DBF limit).
func WriteShapefile(path string, s *Set) error {
	if len(s.Features) == 0 {
		return fmt.Errorf("write %s: no features", path)
	}

	var first struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(s.Features[0].Geometry, &first); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	var shapeType shp.ShapeType
	switch first.Type {
	case "Point":
		shapeType = shp.POINT
	case "LineString", "MultiLineString":
		shapeType = shp.POLYLINE
	case "Polygon", "MultiPolygon":
		shapeType = shp.POLYGON
	default:
		return fmt.Errorf("write %s: unsupported geometry type %q", path, first.Type)
	}

	w, err := shp.Create(path, shapeType)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer w.Close()

	fields := dbfFields(s.Features[0].Properties)
	w.SetFields(fields)

	for i := range s.Features {
		shape, err := geometryToShape(s.Features[i].Geometry)
		if err != nil {
			return fmt.Errorf("write %s record %d: %w", path, i, err)
		}
		w.Write(shape)
		writeAttributes(w, i, fields, s.Features[i].Properties)
	}

	// A .prj can only be written when the reference is already WKT (the
	// shapefile-to-shapefile path); EPSG codes have no sidecar form here.
	if strings.Contains(s.CRS, "[") {
		base := strings.TrimSuffix(path, ".shp")
		if err := os.WriteFile(base+".prj", []byte(s.CRS), 0644); err != nil {
			return fmt.Errorf("write %s.prj: %w", base, err)
		}
	}
	return nil
}

func dbfFields(props map[string]interface{}) []shp.Field {
	names := make([]string, 0, len(props))
	for k := range props {
		names = append(names, k)
	}
	// map iteration order is random; field order must be stable
	sort.Strings(names)

	fields := make([]shp.Field, 0, len(names))
	for _, key := range names {
		name := key
		if len(name) > 10 {
			name = name[:10]
		}
		switch props[key].(type) {
		case float64:
			fields = append(fields, shp.FloatField(name, 19, 9))
		case int, int32, int64:
			fields = append(fields, shp.NumberField(name, 15))
		default:
			fields = append(fields, shp.StringField(name, 254))
		}
	}
	if len(fields) == 0 {
		fields = append(fields, shp.NumberField("ID", 10))
	}
	return fields
}

func writeAttributes(w *shp.Writer, row int, fields []shp.Field, props map[string]interface{}) {
	for i := range fields {
		name := fields[i].String()
		var value interface{}
		for k, v := range props {
			if strings.EqualFold(k, name) || (len(k) > 10 && strings.EqualFold(k[:10], name)) {
				value = v
				break
			}
		}
		if value == nil {
			if name == "ID" && len(props) == 0 {
				w.WriteAttribute(row, i, row+1)
			} else {
				w.WriteAttribute(row, i, "")
			}
			continue
		}
		switch v := value.(type) {
		case float64, int, int32, int64:
			w.WriteAttribute(row, i, v)
		default:
			w.WriteAttribute(row, i, fmt.Sprintf("%v", v))
		}
	}
}

func geometryToShape(raw json.RawMessage) (shp.Shape, error) {
	var g struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, err
	}

	switch g.Type {
	case "Point":
		var c []float64
		if err := json.Unmarshal(g.Coordinates, &c); err != nil {
			return nil, err
		}
		if len(c) < 2 {
			return nil, fmt.Errorf("point has %d coordinates", len(c))
		}
		return &shp.Point{X: c[0], Y: c[1]}, nil
	case "LineString":
		var c [][]float64
		if err := json.Unmarshal(g.Coordinates, &c); err != nil {
			return nil, err
		}
		return polylineShape([][][]float64{c}), nil
	case "MultiLineString":
		var c [][][]float64
		if err := json.Unmarshal(g.Coordinates, &c); err != nil {
			return nil, err
		}
		return polylineShape(c), nil
	case "Polygon":
		var c [][][]float64
		if err := json.Unmarshal(g.Coordinates, &c); err != nil {
			return nil, err
		}
		return (*shp.Polygon)(polylineShape(c)), nil
	case "MultiPolygon":
		var c [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &c); err != nil {
			return nil, err
		}
		var rings [][][]float64
		for _, poly := range c {
			rings = append(rings, poly...)
		}
		return (*shp.Polygon)(polylineShape(rings)), nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}
}

func polylineShape(parts [][][]float64) *shp.PolyLine {
	line := &shp.PolyLine{}
	for _, part := range parts {
		line.Parts = append(line.Parts, int32(len(line.Points)))
		for _, c := range part {
			if len(c) >= 2 {
				line.Points = append(line.Points, shp.Point{X: c[0], Y: c[1]})
			}
		}
	}
	line.NumParts = int32(len(line.Parts))
	line.NumPoints = int32(len(line.Points))
	return line
}
