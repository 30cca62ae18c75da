package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"faultsplit/config"
	"faultsplit/crs"
	"faultsplit/feature"
	"faultsplit/logger"
	"faultsplit/slug"
)

// Summary reports what a run did. Per-record issues land in Diagnostics; only
// fatal setup failures surface as the error from Run.
type Summary struct {
	FaultCount    int
	RegionCount   int
	PairCount     int
	GroupCount    int
	GroupsWritten int
	Discarded     int
	WriteFailures int
	Diagnostics   []string
}

// Run executes the full pipeline: load both datasets, normalize references,
// index the regions, join, group, and write one file per region. The region
// transformer defaults to PROJ; tests inject their own through RunWith.
func Run(cfg config.Config, log *slog.Logger) (*Summary, error) {
	return RunWith(cfg, log, crs.ProjTransformer{})
}

// RunWith is Run with an explicit reprojection service.
func RunWith(cfg config.Config, log *slog.Logger, tr crs.Transformer) (*Summary, error) {
	if log == nil {
		log = logger.L()
	}

	var faults, regions *feature.Set
	var g errgroup.Group
	g.Go(func() error {
		s, err := feature.Load(cfg.FaultsPath)
		if err != nil {
			return fmt.Errorf("load faults: %w", err)
		}
		faults = s
		return nil
	})
	g.Go(func() error {
		s, err := feature.Load(cfg.RegionsPath)
		if err != nil {
			return fmt.Errorf("load regions: %w", err)
		}
		regions = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Info("datasets loaded",
		"faults", len(faults.Features), "fault_path", cfg.FaultsPath,
		"regions", len(regions.Features), "region_path", cfg.RegionsPath)

	summary := &Summary{
		FaultCount:  len(faults.Features),
		RegionCount: len(regions.Features),
	}
	for _, d := range faults.Diagnostics {
		log.Warn("fault input issue", "detail", d)
		summary.Diagnostics = append(summary.Diagnostics, "faults: "+d)
	}
	for _, d := range regions.Diagnostics {
		log.Warn("region input issue", "detail", d)
		summary.Diagnostics = append(summary.Diagnostics, "regions: "+d)
	}

	if len(regions.Features) > 0 && !regions.HasField(cfg.NameField) {
		return nil, fmt.Errorf("region name field %q not found in %s (available fields: %s)",
			cfg.NameField, cfg.RegionsPath, strings.Join(regions.FieldNames(), ", "))
	}

	if err := crs.Normalize(faults, regions, cfg.DefaultCRS, tr); err != nil {
		return nil, err
	}
	log.Info("reference systems normalized", "crs", shortCRS(faults.CRS))

	idx := BuildRegionIndex(regions)
	tracker := NewProgressTracker(int64(len(faults.Features)), "joining faults")
	records := Join(faults, regions, idx, cfg.Workers, tracker)
	summary.PairCount = len(records)
	log.Info("spatial join complete", "pairs", len(records))

	groups, diags := Group(faults, regions, records, cfg.NameField)
	summary.GroupCount = len(groups)
	summary.Discarded = len(diags)
	for _, d := range diags {
		log.Warn("group issue", "detail", d)
		summary.Diagnostics = append(summary.Diagnostics, d)
	}

	if len(groups) == 0 {
		log.Info("no regions received any fault; nothing to write")
		return summary, nil
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", cfg.OutputDir, err)
	}

	for _, grp := range groups {
		path := outputPath(cfg, grp.Name)
		set := &feature.Set{Features: grp.Features, CRS: faults.CRS}

		var err error
		if cfg.OutputFormat == "shapefile" {
			err = feature.WriteShapefile(path, set)
		} else {
			err = feature.WriteGeoJSON(path, set)
		}
		if err != nil {
			// one bad region must not abort the rest
			log.Error("write failed", "region", grp.Name, "path", path, "error", err)
			summary.WriteFailures++
			summary.Diagnostics = append(summary.Diagnostics,
				fmt.Sprintf("write %s: %v", grp.Name, err))
			continue
		}
		summary.GroupsWritten++
	}

	log.Info("run complete",
		"groups", summary.GroupCount,
		"written", summary.GroupsWritten,
		"discarded_records", summary.Discarded,
		"write_failures", summary.WriteFailures)
	return summary, nil
}

// outputPath names a region's output file. Colliding slugs from distinct
// region names map to the same path; the later group overwrites the earlier
// file, which is accepted behavior.
func outputPath(cfg config.Config, regionName string) string {
	ext := ".geojson"
	if cfg.OutputFormat == "shapefile" {
		ext = ".shp"
	}
	return filepath.Join(cfg.OutputDir, "faults_"+slug.Make(regionName)+ext)
}

// shortCRS shortens WKT blobs to their leading name for log lines.
func shortCRS(ref string) string {
	if i := strings.IndexByte(ref, '['); i > 0 && len(ref) > 60 {
		return ref[:i] + "[...]"
	}
	return ref
}
