package pagination

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	apperrors "github.com/utafrali/catalog/pkg/errors"
)

const (
	DefaultLimit = 15
	MaxLimit     = 100
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// DefaultParams returns page 1 with the default limit.
func DefaultParams() Params {
	return Params{
		Page:   1,
		Limit:  DefaultLimit,
		Offset: 0,
	}
}

// New validates page and limit and computes the offset.
func New(page, limit int) (Params, error) {
	if page < 1 {
		return Params{}, apperrors.InvalidInput("page must be a positive integer")
	}
	if limit < 1 || limit > MaxLimit {
		return Params{}, apperrors.InvalidInput(fmt.Sprintf("limit must be between 1 and %d", MaxLimit))
	}
	// The offset must fit in an int.
	if page-1 > math.MaxInt/limit {
		return Params{}, apperrors.InvalidInput("page is out of range")
	}
	return Params{Page: page, Limit: limit, Offset: (page - 1) * limit}, nil
}

// FromRequest extracts page and limit from the query string. Absent values
// take the defaults; present but malformed or out-of-range values are
// rejected as invalid input.
func FromRequest(r *http.Request) (Params, error) {
	p := DefaultParams()
	q := r.URL.Query()

	if raw := q.Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, apperrors.InvalidInput("page must be a positive integer")
		}
		p.Page = v
	}

	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, apperrors.InvalidInput(fmt.Sprintf("limit must be between 1 and %d", MaxLimit))
		}
		p.Limit = v
	}

	return New(p.Page, p.Limit)
}

// Result is one page of a listing.
type Result[T any] struct {
	Page           int `json:"page"`
	TotalPages     int `json:"totalPages"`
	TotalDocuments int `json:"totalDocuments"`
	Data           []T `json:"data"`
}

// NewResult creates a paginated result. A nil data slice is rendered as an
// empty array.
func NewResult[T any](data []T, totalDocuments int, params Params) Result[T] {
	totalPages := 0
	if params.Limit > 0 {
		totalPages = totalDocuments / params.Limit
		if totalDocuments%params.Limit > 0 {
			totalPages++
		}
	}
	if data == nil {
		data = []T{}
	}

	return Result[T]{
		Page:           params.Page,
		TotalPages:     totalPages,
		TotalDocuments: totalDocuments,
		Data:           data,
	}
}
