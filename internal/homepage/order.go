package homepage

import (
	"strings"

	"github.com/dwatson/storefront/internal/domain"
)

// OrderResult is the outcome of resolving section placement. Unresolved holds
// the ids of sections whose after-section anchor never resolved (dangling or
// cyclic); those sections are appended at the end, never dropped.
type OrderResult struct {
	Sections   []*domain.Section
	Iterations int
	Unresolved []string
}

// iterationBudget bounds the fixpoint splice loop. Chained after-section
// references can need one pass per link, so the budget scales with input size.
func iterationBudget(n int) int {
	return 3 * n
}

// ResolveOrder computes the total render order for the given sections from
// their location directives:
//
//  1. location "top", in relative input order,
//  2. sections with no location, in relative input order (placed before the
//     after-section splice so they can serve as anchors),
//  3. "after-section-<id>" sections spliced immediately after their anchor,
//     iterating to a fixpoint within the budget,
//  4. everything left — "bottom" sections and unresolved after-references —
//     appended in relative input order.
//
// Every input section appears exactly once in the output.
func ResolveOrder(sections []*domain.Section) OrderResult {
	var (
		tops    []*domain.Section
		unset   []*domain.Section
		pending []*domain.Section // after-section refs awaiting their anchor
		anchors = make(map[string]string, len(sections))
	)

	for _, s := range sections {
		loc := SectionLocation(s)
		switch {
		case loc == LocationTop:
			tops = append(tops, s)
		case loc == "":
			unset = append(unset, s)
		case strings.HasPrefix(loc, afterSectionPrefix):
			anchors[s.ID] = strings.TrimPrefix(loc, afterSectionPrefix)
			pending = append(pending, s)
		}
		// "bottom" and unrecognized values are handled by the final append.
	}

	ordered := make([]*domain.Section, 0, len(sections))
	ordered = append(ordered, tops...)
	ordered = append(ordered, unset...)

	result := OrderResult{}

	budget := iterationBudget(len(sections))
	for result.Iterations < budget && len(pending) > 0 {
		result.Iterations++
		placed := false

		remaining := pending[:0]
		for _, s := range pending {
			idx := indexOf(ordered, anchors[s.ID])
			if idx < 0 {
				remaining = append(remaining, s)
				continue
			}
			ordered = splice(ordered, idx+1, s)
			placed = true
		}
		pending = remaining

		if !placed {
			break
		}
	}

	// Final append pass: bottom sections and any after-refs that never
	// resolved, all in relative input order.
	for _, s := range sections {
		if indexOf(ordered, s.ID) >= 0 {
			continue
		}
		if _, isAfter := anchors[s.ID]; isAfter {
			result.Unresolved = append(result.Unresolved, s.ID)
		}
		ordered = append(ordered, s)
	}

	result.Sections = ordered
	return result
}

func indexOf(sections []*domain.Section, id string) int {
	for i, s := range sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func splice(sections []*domain.Section, at int, s *domain.Section) []*domain.Section {
	sections = append(sections, nil)
	copy(sections[at+1:], sections[at:])
	sections[at] = s
	return sections
}
