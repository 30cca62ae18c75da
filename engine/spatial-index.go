// Package engine contains the spatial join pipeline: region index, join
// engine, grouping, and the run orchestration.
package engine

import (
	"sort"

	"github.com/golang/geo/r2"
	"github.com/tidwall/rtree"
	"github.com/twpayne/go-geos"

	"faultsplit/feature"
)

// RegionIndex is an R-tree over region bounding boxes. Built once, read-only
// afterwards; queries return a conservative superset of the true matches and
// the join engine filters with exact geometry tests.
type RegionIndex struct {
	tree rtree.RTreeG[int]
	size int
}

// BuildRegionIndex indexes every region geometry by its bounding box.
// Regions without a usable geometry are simply not indexed. Zero regions
// yield an empty index where every query returns nothing.
func BuildRegionIndex(regions *feature.Set) *RegionIndex {
	idx := &RegionIndex{}
	for i := range regions.Features {
		g := regions.Features[i].Geom
		if g == nil {
			continue
		}
		b := g.Bounds()
		idx.tree.Insert([2]float64{b.MinX, b.MinY}, [2]float64{b.MaxX, b.MaxY}, i)
		idx.size++
	}
	return idx
}

// Len returns the number of indexed regions.
func (ri *RegionIndex) Len() int { return ri.size }

// Query returns the region indices whose bounding box overlaps rect, in
// ascending order.
func (ri *RegionIndex) Query(rect r2.Rect) []int {
	var out []int
	ri.tree.Search(
		[2]float64{rect.X.Lo, rect.Y.Lo},
		[2]float64{rect.X.Hi, rect.Y.Hi},
		func(_, _ [2]float64, data int) bool {
			out = append(out, data)
			return true
		},
	)
	sort.Ints(out)
	return out
}

// BoundsRect exposes a geometry's bounding box as an r2.Rect query box.
func BoundsRect(g *geos.Geom) r2.Rect {
	b := g.Bounds()
	return r2.Rect{
		X: r2.Interval{Lo: b.MinX, Hi: b.MaxX},
		Y: r2.Interval{Lo: b.MinY, Hi: b.MaxY},
	}
}
