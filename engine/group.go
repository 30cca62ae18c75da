package engine

import (
	"fmt"
	"strings"

	"faultsplit/feature"
)

// RegionGroup is the per-region output: the region's display name plus the
// faults assigned to it, in fault input order.
type RegionGroup struct {
	Name     string
	Features []feature.Feature
}

// artifactFields enumerates attribute fields that exist only as join
// machinery and never belong in output. The configured region-name field is
// stripped as well since the group identity already encodes it.
var artifactFields = map[string]struct{}{
	"index_right": {},
}

// Group buckets join records by region name. Records whose region has an
// empty or non-text name value are discarded with a diagnostic; groups appear
// in first-encounter order, which is deterministic because the record
// sequence is.
func Group(faults, regions *feature.Set, records []JoinRecord, nameField string) ([]RegionGroup, []string) {
	byName := map[string]int{}
	groups := []RegionGroup{}
	var diagnostics []string

	for _, rec := range records {
		raw, ok := regions.Features[rec.RegionIndex].Properties[nameField]
		name, isText := raw.(string)
		if !ok || !isText || strings.TrimSpace(name) == "" {
			diagnostics = append(diagnostics, fmt.Sprintf(
				"discarding fault %d: region %d has no usable %s value (%v)",
				rec.FaultIndex, rec.RegionIndex, nameField, raw))
			continue
		}

		gi, seen := byName[name]
		if !seen {
			gi = len(groups)
			byName[name] = gi
			groups = append(groups, RegionGroup{Name: name})
		}
		groups[gi].Features = append(groups[gi].Features,
			sanitize(faults.Features[rec.FaultIndex], nameField))
	}

	return groups, diagnostics
}

// sanitize copies a fault feature with join-artifact fields removed. The
// original feature is never mutated.
func sanitize(f feature.Feature, nameField string) feature.Feature {
	props := make(map[string]interface{}, len(f.Properties))
	for k, v := range f.Properties {
		if _, drop := artifactFields[k]; drop {
			continue
		}
		if k == nameField {
			continue
		}
		props[k] = v
	}
	return feature.Feature{
		Geometry:   f.Geometry,
		Properties: props,
		Geom:       f.Geom,
	}
}
