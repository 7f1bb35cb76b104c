package validator

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/catalog/pkg/errors"
)

type categoryBody struct {
	MainCategory    string `json:"mainCategory" validate:"notblank"`
	SubCategoryName string `json:"subCategoryName" validate:"omitempty,max=10"`
	Level           int    `json:"level" validate:"gte=0,lte=4"`
	Driver          string `json:"driver" validate:"omitempty,oneof=postgres mongo"`
}

type formBody struct {
	Title string `form:"title" validate:"required"`
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(categoryBody{MainCategory: "Electronics", Level: 1}))
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	err := Validate(categoryBody{})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "is required", valErr.Fields()["mainCategory"])
}

func TestValidate_ReportsFormFieldNames(t *testing.T) {
	err := Validate(formBody{})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "title")
}

func TestValidate_NotBlankRejectsWhitespace(t *testing.T) {
	err := Validate(categoryBody{MainCategory: "   "})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "is required", valErr.Fields()["mainCategory"])
}

func TestValidate_MaxAndRange(t *testing.T) {
	err := Validate(categoryBody{MainCategory: "Home", SubCategoryName: "much-too-long-name", Level: 9})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "must be at most 10 characters", fields["subCategoryName"])
	assert.Contains(t, fields["level"], "4")
}

func TestValidate_OneOf(t *testing.T) {
	err := Validate(categoryBody{MainCategory: "Home", Driver: "sqlite"})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields()["driver"], "one of")
}

func TestValidationError_IsInvalidInput(t *testing.T) {
	err := Validate(categoryBody{})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "field 'mainCategory' is required")
}

func TestDecodeAndValidate_Success(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"mainCategory":"Electronics"}`))

	var b categoryBody
	require.NoError(t, DecodeAndValidate(req, &b))
	assert.Equal(t, "Electronics", b.MainCategory)
}

func TestDecodeAndValidate_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{invalid"))

	var b categoryBody
	err := DecodeAndValidate(req, &b)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestDecodeAndValidate_ValidationFails(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"mainCategory":""}`))

	var b categoryBody
	err := DecodeAndValidate(req, &b)

	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}
