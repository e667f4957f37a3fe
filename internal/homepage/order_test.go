package homepage

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwatson/storefront/internal/domain"
)

func sectionWithLocation(id, location string) *domain.Section {
	cfg := json.RawMessage(`{}`)
	if location != "" {
		cfg = json.RawMessage(fmt.Sprintf(`{"location":%q}`, location))
	}
	return &domain.Section{
		ID:          id,
		Name:        "section-" + id,
		Type:        domain.SectionTypeScrollingText,
		Config:      cfg,
		IsActive:    true,
		IsPublished: true,
	}
}

func orderIDs(result OrderResult) []string {
	ids := make([]string, len(result.Sections))
	for i, s := range result.Sections {
		ids[i] = s.ID
	}
	return ids
}

func TestResolveOrderBuckets(t *testing.T) {
	sections := []*domain.Section{
		sectionWithLocation("a", "bottom"),
		sectionWithLocation("b", ""),
		sectionWithLocation("c", "top"),
		sectionWithLocation("d", ""),
		sectionWithLocation("e", "top"),
	}

	result := ResolveOrder(sections)

	assert.Equal(t, []string{"c", "e", "b", "d", "a"}, orderIDs(result))
	assert.Empty(t, result.Unresolved)
}

func TestResolveOrderAfterSection(t *testing.T) {
	sections := []*domain.Section{
		sectionWithLocation("a", ""),
		sectionWithLocation("b", ""),
		sectionWithLocation("x", "after-section-a"),
	}

	result := ResolveOrder(sections)

	assert.Equal(t, []string{"a", "x", "b"}, orderIDs(result))
	assert.Empty(t, result.Unresolved)
}

func TestResolveOrderChainedAfterSections(t *testing.T) {
	// y anchors on x, which itself anchors on a; y needs a second pass.
	sections := []*domain.Section{
		sectionWithLocation("y", "after-section-x"),
		sectionWithLocation("a", ""),
		sectionWithLocation("x", "after-section-a"),
		sectionWithLocation("b", ""),
	}

	result := ResolveOrder(sections)

	assert.Equal(t, []string{"a", "x", "y", "b"}, orderIDs(result))
	assert.Empty(t, result.Unresolved)
	assert.GreaterOrEqual(t, result.Iterations, 2)
}

func TestResolveOrderDanglingReference(t *testing.T) {
	sections := []*domain.Section{
		sectionWithLocation("a", ""),
		sectionWithLocation("x", "after-section-ghost"),
		sectionWithLocation("b", ""),
	}

	result := ResolveOrder(sections)

	assert.Equal(t, []string{"a", "b", "x"}, orderIDs(result))
	assert.Equal(t, []string{"x"}, result.Unresolved)
}

func TestResolveOrderCycleSafety(t *testing.T) {
	sections := []*domain.Section{
		sectionWithLocation("a", "after-section-b"),
		sectionWithLocation("b", "after-section-a"),
		sectionWithLocation("c", ""),
	}

	result := ResolveOrder(sections)

	require.Len(t, result.Sections, 3)
	assert.LessOrEqual(t, result.Iterations, iterationBudget(3))

	// Both cycle members appear exactly once, appended after the placed
	// sections, and are reported as unresolved.
	assert.Equal(t, []string{"c", "a", "b"}, orderIDs(result))
	assert.ElementsMatch(t, []string{"a", "b"}, result.Unresolved)
}

func TestResolveOrderNeverDropsOrDuplicates(t *testing.T) {
	locations := []string{"top", "bottom", "", "after-section-s0", "after-section-missing"}

	var sections []*domain.Section
	for i := 0; i < 40; i++ {
		sections = append(sections, sectionWithLocation(
			fmt.Sprintf("s%d", i),
			locations[i%len(locations)],
		))
	}

	result := ResolveOrder(sections)

	require.Len(t, result.Sections, len(sections))
	seen := make(map[string]int)
	for _, s := range result.Sections {
		seen[s.ID]++
	}
	for _, s := range sections {
		assert.Equal(t, 1, seen[s.ID], s.ID)
	}
}

func TestResolveOrderDeterministicAcrossBucketPermutations(t *testing.T) {
	// Shuffling sections across buckets while keeping relative order within
	// each bucket must not change the output.
	base := []*domain.Section{
		sectionWithLocation("t1", "top"),
		sectionWithLocation("t2", "top"),
		sectionWithLocation("n1", ""),
		sectionWithLocation("n2", ""),
		sectionWithLocation("f1", "after-section-n1"),
		sectionWithLocation("b1", "bottom"),
	}

	want := orderIDs(ResolveOrder(base))
	assert.Equal(t, []string{"t1", "t2", "n1", "f1", "n2", "b1"}, want)

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		shuffled := interleavePreservingBucketOrder(rng, base)
		assert.Equal(t, want, orderIDs(ResolveOrder(shuffled)), "trial %d", trial)
	}
}

// interleavePreservingBucketOrder randomly interleaves the location buckets
// while keeping each bucket's internal order intact.
func interleavePreservingBucketOrder(rng *rand.Rand, sections []*domain.Section) []*domain.Section {
	buckets := make(map[string][]*domain.Section)
	var keys []string
	for _, s := range sections {
		loc := SectionLocation(s)
		if _, ok := buckets[loc]; !ok {
			keys = append(keys, loc)
		}
		buckets[loc] = append(buckets[loc], s)
	}

	idx := make(map[string]int)
	out := make([]*domain.Section, 0, len(sections))
	for len(out) < len(sections) {
		k := keys[rng.Intn(len(keys))]
		if idx[k] < len(buckets[k]) {
			out = append(out, buckets[k][idx[k]])
			idx[k]++
		}
	}
	return out
}
