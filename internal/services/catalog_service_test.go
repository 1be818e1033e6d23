package services

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kefystore-backend/internal/models"
)

func TestCreateProductStatus(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	catalog := NewCatalogService(db)

	draft, err := catalog.CreateProduct(vendor.ID, &models.ProductCreation{
		Name:     "Sac en cuir",
		Category: models.ProductCategoryFashion,
		Price:    decimal.NewFromInt(15000),
		Stock:    4,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusDraft, draft.Status)
	assert.NotEmpty(t, draft.SKU)
	assert.Equal(t, "sac-en-cuir", draft.Slug)

	published, err := catalog.CreateProduct(vendor.ID, &models.ProductCreation{
		Name:     "Collier perles",
		Category: models.ProductCategoryFashion,
		Price:    decimal.NewFromInt(8000),
		Stock:    4,
		Publish:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusPublished, published.Status)

	// Publishing with nothing to sell lands in archived
	empty, err := catalog.CreateProduct(vendor.ID, &models.ProductCreation{
		Name:     "Bracelet bronze",
		Category: models.ProductCategoryFashion,
		Price:    decimal.NewFromInt(3000),
		Stock:    0,
		Publish:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusArchived, empty.Status)

	_, err = catalog.CreateProduct(vendor.ID, &models.ProductCreation{
		Name:     "Gratuit",
		Category: models.ProductCategoryFashion,
		Price:    decimal.Zero,
		Stock:    1,
	})
	assert.ErrorContains(t, err, "price must be positive")
}

func TestUniqueSlugOnCollision(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	catalog := NewCatalogService(db)

	creation := &models.ProductCreation{
		Name:     "Robe été",
		Category: models.ProductCategoryFashion,
		Price:    decimal.NewFromInt(12000),
		Stock:    2,
		Publish:  true,
	}

	first, err := catalog.CreateProduct(vendor.ID, creation)
	require.NoError(t, err)
	assert.Equal(t, "robe-ete", first.Slug)

	second, err := catalog.CreateProduct(vendor.ID, creation)
	require.NoError(t, err)
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.Contains(t, second.Slug, "robe-ete-")
}

func TestUpdateProductStockRules(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	catalog := NewCatalogService(db)
	product := seedProduct(t, db, vendor.ID, 5000, 3)

	zero := 0
	updated, err := catalog.UpdateProduct(product.ID, vendor.ID, &models.ProductUpdate{Stock: &zero})
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusArchived, updated.Status)

	// Restocking an archived product republishes it
	ten := 10
	updated, err = catalog.UpdateProduct(product.ID, vendor.ID, &models.ProductUpdate{Stock: &ten})
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusPublished, updated.Status)
	assert.Equal(t, 10, updated.Stock)

	// Archiving explicitly sticks even while stock remains
	archived := models.ProductStatusArchived
	five := 5
	updated, err = catalog.UpdateProduct(product.ID, vendor.ID, &models.ProductUpdate{
		Stock:  &five,
		Status: &archived,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusArchived, updated.Status)

	// The stock rule has the last word: published cannot survive stock 0
	published := models.ProductStatusPublished
	updated, err = catalog.UpdateProduct(product.ID, vendor.ID, &models.ProductUpdate{
		Stock:  &zero,
		Status: &published,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusArchived, updated.Status)
	assert.Equal(t, 0, updated.Stock)

	negative := -1
	_, err = catalog.UpdateProduct(product.ID, vendor.ID, &models.ProductUpdate{Stock: &negative})
	assert.ErrorContains(t, err, "stock cannot be negative")
}

func TestUpdateProductOwnership(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	other := seedVendor(t, db)
	catalog := NewCatalogService(db)
	product := seedProduct(t, db, vendor.ID, 5000, 3)

	price := decimal.NewFromInt(6000)
	_, err := catalog.UpdateProduct(product.ID, other.ID, &models.ProductUpdate{Price: &price})
	assert.ErrorContains(t, err, "does not belong")

	require.Error(t, catalog.DeleteProduct(product.ID, other.ID))
}

func TestDeleteProductArchives(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	catalog := NewCatalogService(db)
	product := seedProduct(t, db, vendor.ID, 5000, 3)

	require.NoError(t, catalog.DeleteProduct(product.ID, vendor.ID))

	reloaded, err := catalog.GetProductByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusArchived, reloaded.Status)
}

func TestListProductsFilters(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	catalog := NewCatalogService(db)

	seedProduct(t, db, vendor.ID, 2000, 5)
	draft, err := catalog.CreateProduct(vendor.ID, &models.ProductCreation{
		Name:     "Brouillon",
		Category: models.ProductCategoryFashion,
		Price:    decimal.NewFromInt(1000),
		Stock:    5,
	})
	require.NoError(t, err)

	// The default listing only shows published products
	listed, err := catalog.ListProducts(&ProductFilters{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.NotEqual(t, draft.ID, listed[0].ID)

	listed, err = catalog.ListProducts(&ProductFilters{Search: "Brouillon"})
	require.NoError(t, err)
	assert.Empty(t, listed)

	min := decimal.NewFromInt(5000)
	listed, err = catalog.ListProducts(&ProductFilters{MinPrice: &min})
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestVariants(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	other := seedVendor(t, db)
	catalog := NewCatalogService(db)
	product := seedProduct(t, db, vendor.ID, 5000, 3)

	variant, err := catalog.AddVariant(product.ID, vendor.ID, "Taille M", decimal.NewFromInt(5500), 2)
	require.NoError(t, err)

	reloaded, err := catalog.GetProductByID(product.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Variants, 1)
	assert.Equal(t, "Taille M", reloaded.Variants[0].Name)

	_, err = catalog.AddVariant(product.ID, other.ID, "Taille L", decimal.NewFromInt(5500), 2)
	assert.ErrorContains(t, err, "does not belong")

	require.Error(t, catalog.DeleteVariant(variant.ID, other.ID))
	require.NoError(t, catalog.DeleteVariant(variant.ID, vendor.ID))
}

func TestReviewRequiresDeliveredPurchase(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	buyer := seedClient(t, db)
	product := seedProduct(t, db, vendor.ID, 1000, 10)
	fillCart(t, db, buyer.ID, product.ID, 1)

	orders := newTestOrderService(db, decimal.Zero)
	order := checkoutOrder(t, orders, buyer.ID)

	catalog := NewCatalogService(db)

	_, err := catalog.CreateReview(product.ID, buyer.ID, &models.ReviewCreation{
		OrderID: order.ID,
		Rating:  5,
	})
	assert.ErrorContains(t, err, "only delivered purchases")

	for _, next := range []models.OrderStatus{
		models.OrderStatusConfirmed,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
	} {
		_, err = orders.UpdateStatus(order.ID, next, &vendor.ID, nil)
		require.NoError(t, err)
	}

	comment := "Très bonne qualité"
	review, err := catalog.CreateReview(product.ID, buyer.ID, &models.ReviewCreation{
		OrderID: order.ID,
		Rating:  4,
		Comment: &comment,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, review.Rating)

	// One review per order
	_, err = catalog.CreateReview(product.ID, buyer.ID, &models.ReviewCreation{
		OrderID: order.ID,
		Rating:  1,
	})
	assert.ErrorContains(t, err, "already been reviewed")

	reloaded, err := catalog.GetProductByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.TotalRatings)
	assert.InDelta(t, 4.0, reloaded.Rating, 0.001)

	reviews, err := catalog.GetReviews(product.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	require.NotNil(t, reviews[0].Reviewer)
	assert.Equal(t, buyer.FirstName, reviews[0].Reviewer.FirstName)
}

func TestStatusForStock(t *testing.T) {
	cases := []struct {
		oldStock, newStock int
		current, want      models.ProductStatus
	}{
		{5, 0, models.ProductStatusPublished, models.ProductStatusArchived},
		{0, 5, models.ProductStatusArchived, models.ProductStatusPublished},
		{5, 3, models.ProductStatusPublished, models.ProductStatusPublished},
		{5, 0, models.ProductStatusDraft, models.ProductStatusDraft},
		{0, 5, models.ProductStatusDraft, models.ProductStatusDraft},
		{0, 0, models.ProductStatusArchived, models.ProductStatusArchived},
	}

	for _, tc := range cases {
		got := models.StatusForStock(tc.oldStock, tc.newStock, tc.current)
		assert.Equal(t, tc.want, got,
			fmt.Sprintf("%d -> %d from %s", tc.oldStock, tc.newStock, tc.current))
	}
}
