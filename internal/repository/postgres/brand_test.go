package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/catalog/internal/domain"
	apperrors "github.com/utafrali/catalog/pkg/errors"
)

var brandColumnNames = []string{"brand_id", "brandname", "brand_image", "public_id", "created_at", "updated_at"}

func sampleBrand() domain.Brand {
	return domain.Brand{
		BrandID:    "brand0001",
		BrandName:  "Acme",
		BrandImage: "https://cdn.example.com/matrixsol/brand/acme.png",
		PublicID:   "matrixsol/brand/acme",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func brandRow(b domain.Brand) []any {
	return []any{b.BrandID, b.BrandName, b.BrandImage, b.PublicID, b.CreatedAt, b.UpdatedAt}
}

func TestBrandRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewBrandRepository(mock)
	b := sampleBrand()

	mock.ExpectExec("INSERT INTO brands").
		WithArgs(brandRow(b)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), &b))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBrandRepository_Create_DuplicateName(t *testing.T) {
	mock := newMock(t)
	repo := NewBrandRepository(mock)
	b := sampleBrand()

	mock.ExpectExec("INSERT INTO brands").
		WillReturnError(uniqueErr("brands_brandname_key"))

	err := repo.Create(context.Background(), &b)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestBrandRepository_GetByBrandID(t *testing.T) {
	mock := newMock(t)
	repo := NewBrandRepository(mock)
	b := sampleBrand()

	mock.ExpectQuery("SELECT .+ FROM brands WHERE brand_id").
		WithArgs(b.BrandID).
		WillReturnRows(pgxmock.NewRows(brandColumnNames).AddRow(brandRow(b)...))

	got, err := repo.GetByBrandID(context.Background(), b.BrandID)
	require.NoError(t, err)
	assert.Equal(t, b, *got)
}

func TestBrandRepository_GetByBrandID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewBrandRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM brands").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByBrandID(context.Background(), "brand0404")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestBrandRepository_UpdateAndDelete_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewBrandRepository(mock)
	b := sampleBrand()

	mock.ExpectExec("UPDATE brands").WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec("DELETE FROM brands").WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.True(t, errors.Is(repo.Update(context.Background(), &b), apperrors.ErrNotFound))
	assert.True(t, errors.Is(repo.Delete(context.Background(), b.BrandID), apperrors.ErrNotFound))
}

func TestBrandRepository_ListAllAndCount(t *testing.T) {
	mock := newMock(t)
	repo := NewBrandRepository(mock)
	b := sampleBrand()

	mock.ExpectQuery("SELECT .+ FROM brands ORDER BY").
		WillReturnRows(pgxmock.NewRows(brandColumnNames).AddRow(brandRow(b)...))
	mock.ExpectQuery(`SELECT count\(\*\) FROM brands`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	brands, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, brands, 1)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
