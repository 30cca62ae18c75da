package engine

import (
	"faultsplit/feature"
)

// JoinRecord pairs a fault with one region whose geometry it intersects.
// Many-to-many: a fault crossing k regions produces k records.
type JoinRecord struct {
	FaultIndex  int
	RegionIndex int
}

// JoinJob and JoinResult shard the join across the worker pool; the index
// lets results be reassembled in fault input order.
type JoinJob struct {
	Index int
}

type JoinResult struct {
	Index   int
	Regions []int
}

// Join tests every fault against the candidate regions from the index and
// returns records ordered by fault input position (and region index within
// one fault). workers <= 1 runs sequentially; the parallel path produces the
// identical record sequence because results are merged by fault index.
func Join(faults, regions *feature.Set, idx *RegionIndex, workers int, tracker *ProgressTracker) []JoinRecord {
	matches := make([][]int, len(faults.Features))

	work := func(i int) []int {
		g := faults.Features[i].Geom
		if g == nil {
			return nil
		}
		var hits []int
		for _, ri := range idx.Query(BoundsRect(g)) {
			rg := regions.Features[ri].Geom
			if rg != nil && g.Intersects(rg) {
				hits = append(hits, ri)
			}
		}
		return hits
	}

	if workers <= 1 {
		for i := range faults.Features {
			matches[i] = work(i)
			if tracker != nil {
				tracker.Increment()
			}
		}
	} else {
		jobs := make([]interface{}, len(faults.Features))
		for i := range jobs {
			jobs[i] = JoinJob{Index: i}
		}
		for _, r := range ProcessBatch(workers, jobs, func(job interface{}) interface{} {
			j := job.(JoinJob)
			return JoinResult{Index: j.Index, Regions: work(j.Index)}
		}, tracker) {
			res := r.(JoinResult)
			matches[res.Index] = res.Regions
		}
	}

	var records []JoinRecord
	for i, hit := range matches {
		for _, ri := range hit {
			records = append(records, JoinRecord{FaultIndex: i, RegionIndex: ri})
		}
	}
	return records
}
