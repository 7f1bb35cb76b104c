package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Identifier prefixes. Each prefix is an independent sequence.
const (
	ProductIDPrefix  = "productid"
	BrandIDPrefix    = "brand"
	CategoryIDPrefix = "category"
)

// NextID walks the sorted ids with a candidate starting at 1, stopping at the
// first id above the candidate and otherwise advancing it by one. That gives
// 1 for an empty set, len+1 for a dense set, and the first gap otherwise.
// Duplicate ids each advance the candidate, so {1, 1, 2} yields 4; the result
// is never an existing id.
func NextID(existing []int) int {
	sorted := slices.Clone(existing)
	slices.Sort(sorted)

	candidate := 1
	for _, id := range sorted {
		if candidate < id {
			break
		}
		candidate++
	}
	return candidate
}

// FormatID renders n as prefix followed by at least four zero-padded digits.
func FormatID(prefix string, n int) string {
	return fmt.Sprintf("%s%04d", prefix, n)
}

// ParseID extracts the numeric part of an id carrying prefix.
func ParseID(prefix, id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, prefix)
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// AllocateID picks the next free id for prefix given the ids already stored.
// Stored ids that do not parse are ignored.
func AllocateID(prefix string, stored []string) string {
	nums := make([]int, 0, len(stored))
	for _, id := range stored {
		if n, ok := ParseID(prefix, id); ok {
			nums = append(nums, n)
		}
	}
	return FormatID(prefix, NextID(nums))
}
