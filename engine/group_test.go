package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupScenario(t *testing.T) {
	faults, regions := scenarioSets(t)
	idx := BuildRegionIndex(regions)
	records := Join(faults, regions, idx, 1, nil)

	groups, diags := Group(faults, regions, records, "NAME_EN")
	require.Empty(t, diags)
	require.Len(t, groups, 2)

	assert.Equal(t, "Alpha", groups[0].Name)
	assert.Equal(t, []string{"A"}, faultIDs(groups[0].Features))

	assert.Equal(t, "Beta", groups[1].Name)
	assert.Equal(t, []string{"A", "B"}, faultIDs(groups[1].Features))
}

func TestGroupReplicatesAcrossRegions(t *testing.T) {
	faults, regions := scenarioSets(t)
	idx := BuildRegionIndex(regions)
	records := Join(faults, regions, idx, 1, nil)
	groups, _ := Group(faults, regions, records, "NAME_EN")

	// Fault A intersects two regions so it appears in both groups, each copy
	// with its full attribute set.
	count := 0
	for _, g := range groups {
		for _, f := range g.Features {
			if f.Properties["fault_id"] == "A" {
				count++
				assert.Equal(t, "Dextral", f.Properties["slip_type"])
			}
		}
	}
	assert.Equal(t, 2, count)
}

func TestGroupStripsArtifactFields(t *testing.T) {
	faults, regions := scenarioSets(t)
	faults.Features[0].Properties["index_right"] = 7
	faults.Features[0].Properties["NAME_EN"] = "stale region name"

	idx := BuildRegionIndex(regions)
	records := Join(faults, regions, idx, 1, nil)
	groups, _ := Group(faults, regions, records, "NAME_EN")

	f := groups[0].Features[0]
	assert.NotContains(t, f.Properties, "index_right")
	assert.NotContains(t, f.Properties, "NAME_EN")
	assert.Equal(t, "A", f.Properties["fault_id"])

	// The source feature is untouched.
	assert.Contains(t, faults.Features[0].Properties, "index_right")
}

func TestGroupDiscardsInvalidRegionNames(t *testing.T) {
	faults, regions := scenarioSets(t)
	regions.Features[0].Properties["NAME_EN"] = "   " // whitespace only
	delete(regions.Features[1].Properties, "NAME_EN") // missing entirely

	idx := BuildRegionIndex(regions)
	records := Join(faults, regions, idx, 1, nil)
	require.NotEmpty(t, records)

	groups, diags := Group(faults, regions, records, "NAME_EN")
	assert.Empty(t, groups)
	assert.Len(t, diags, len(records))
}

func TestGroupDiscardsNonTextRegionNames(t *testing.T) {
	faults, regions := scenarioSets(t)
	regions.Features[1].Properties["NAME_EN"] = 42.0

	idx := BuildRegionIndex(regions)
	records := Join(faults, regions, idx, 1, nil)
	groups, diags := Group(faults, regions, records, "NAME_EN")

	require.Len(t, groups, 1)
	assert.Equal(t, "Alpha", groups[0].Name)
	assert.Len(t, diags, 2) // faults A and B both pointed at the bad region
}

func TestGroupNoRecords(t *testing.T) {
	faults, regions := scenarioSets(t)
	groups, diags := Group(faults, regions, nil, "NAME_EN")
	assert.Empty(t, groups)
	assert.Empty(t, diags)
}
