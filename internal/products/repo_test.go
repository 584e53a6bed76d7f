package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kurokira/storefront-backend/pkg/db/models"
	"github.com/kurokira/storefront-backend/pkg/types"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, slug string, price int, active bool) models.Product {
	t.Helper()

	compareAt := price + 8000
	row := models.Product{
		ID:             uuid.New(),
		Name:           "Oversize Hoodie " + slug,
		Slug:           slug,
		Price:          price,
		CompareAtPrice: &compareAt,
		Images:         []string{"https://cdn.example.com/" + slug + ".jpg"},
		Sizes: types.ProductSizes{
			{Label: "M", Stock: 3},
			{Label: "L", Stock: 2},
		},
		Colors:   types.ProductColors{{Name: "Negro", Hex: "#000000"}},
		Category: "hoodies",
		IsActive: active,
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func TestGetBySlug(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedProduct(t, db, "kuro-hoodie", 44900, true)

	row, err := repo.GetBySlug(ctx, "kuro-hoodie")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, seeded.ID, row.ID)
	assert.Equal(t, 44900, row.Price)
	assert.Equal(t, 5, row.TotalStock())
}

func TestGetBySlugMissingAndInactive(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedProduct(t, db, "retired-tee", 19900, false)

	row, err := repo.GetBySlug(ctx, "retired-tee")
	require.NoError(t, err)
	assert.Nil(t, row)

	row, err = repo.GetBySlug(ctx, "never-existed")
	require.NoError(t, err)
	assert.Nil(t, row)

	row, err = repo.GetBySlug(ctx, "  ")
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestListBySlugs(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedProduct(t, db, "kuro-hoodie", 44900, true)
	seedProduct(t, db, "kira-tee", 21900, true)
	seedProduct(t, db, "hidden", 9900, false)

	rows, err := repo.ListBySlugs(ctx, []string{"kira-tee", "hidden", "kuro-hoodie", ""})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	rows, err = repo.ListBySlugs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestListFiltersByCategory(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedProduct(t, db, "kuro-hoodie", 44900, true)
	tee := seedProduct(t, db, "kira-tee", 21900, true)
	tee.Category = "tees"
	require.NoError(t, db.Save(&tee).Error)

	rows, err := repo.List(ctx, "tees")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "kira-tee", rows[0].Slug)

	rows, err = repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
