package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextID(t *testing.T) {
	tests := []struct {
		name     string
		existing []int
		want     int
	}{
		{"empty", nil, 1},
		{"dense", []int{1, 2, 3}, 4},
		{"gap", []int{1, 2, 4}, 3},
		{"gap at start", []int{2, 3}, 1},
		{"unsorted", []int{4, 1, 2}, 3},
		{"duplicates advance the walk", []int{1, 1, 2}, 4},
		{"duplicate before a gap", []int{2, 2, 5}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextID(tt.existing))
		})
	}
}

func TestNextID_DoesNotMutateInput(t *testing.T) {
	in := []int{3, 1, 2}
	NextID(in)
	assert.Equal(t, []int{3, 1, 2}, in)
}

func TestFormatID(t *testing.T) {
	assert.Equal(t, "productid0001", FormatID(ProductIDPrefix, 1))
	assert.Equal(t, "brand0042", FormatID(BrandIDPrefix, 42))
	assert.Equal(t, "category12345", FormatID(CategoryIDPrefix, 12345))
}

func TestParseID(t *testing.T) {
	n, ok := ParseID(ProductIDPrefix, "productid0007")
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	for _, bad := range []string{"brand0001", "productid", "productidabc", "productid0000"} {
		_, ok := ParseID(ProductIDPrefix, bad)
		assert.False(t, ok, bad)
	}
}

func TestAllocateID(t *testing.T) {
	assert.Equal(t, "brand0001", AllocateID(BrandIDPrefix, nil))
	assert.Equal(t, "brand0003", AllocateID(BrandIDPrefix, []string{"brand0001", "brand0002", "brand0004"}))
	assert.Equal(t, "category0002", AllocateID(CategoryIDPrefix, []string{"category0001", "legacy-id"}))
	assert.Equal(t, "productid0003", AllocateID(ProductIDPrefix, []string{"productid01", "productid0001"}))
}
