package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"kefystore-backend/internal/models"
	"kefystore-backend/internal/utils"
)

// CatalogService handles product catalog business logic
type CatalogService struct {
	db *sql.DB
}

// NewCatalogService creates a new catalog service
func NewCatalogService(db *sql.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ProductFilters narrows a product listing
type ProductFilters struct {
	Category string
	VendorID string
	Search   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Status   string
	Limit    int
	Offset   int
}

// CreateProduct creates a product for an approved vendeur
func (s *CatalogService) CreateProduct(vendorID string, creation *models.ProductCreation) (*models.Product, error) {
	if err := utils.ValidateStruct(creation); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	if creation.Price.IsNegative() || creation.Price.IsZero() {
		return nil, errors.New("price must be positive")
	}

	status := models.ProductStatusDraft
	if creation.Publish {
		status = models.ProductStatusPublished
		if creation.Stock == 0 {
			status = models.ProductStatusArchived
		}
	}

	now := time.Now()
	product := &models.Product{
		ID:          uuid.New().String(),
		VendorID:    vendorID,
		Name:        utils.SanitizeString(creation.Name),
		SKU:         utils.GenerateSKU(),
		Description: utils.SanitizeString(creation.Description),
		Category:    creation.Category,
		Price:       creation.Price,
		Stock:       creation.Stock,
		Status:      status,
		Images:      creation.Images,
		Tags:        creation.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	product.Slug = s.uniqueSlug(product.Name)

	imagesJSON, err := product.GetImagesJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode images: %w", err)
	}
	tagsJSON, err := product.GetTagsJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	query := `
		INSERT INTO products (
			id, vendor_id, name, slug, sku, description, category, price, stock, status,
			rating, total_ratings, sales_count, images, tags, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, 0, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query,
		product.ID, product.VendorID, product.Name, product.Slug, product.SKU,
		product.Description, product.Category, product.Price.String(), product.Stock,
		product.Status, imagesJSON, tagsJSON, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// GetProductByID retrieves a product with its variants
func (s *CatalogService) GetProductByID(productID string) (*models.Product, error) {
	return s.getProduct("id = ?", productID)
}

// GetProductBySlug retrieves a product by its slug
func (s *CatalogService) GetProductBySlug(slug string) (*models.Product, error) {
	return s.getProduct("slug = ?", slug)
}

func (s *CatalogService) getProduct(where string, arg interface{}) (*models.Product, error) {
	query := fmt.Sprintf(`
		SELECT p.id, p.vendor_id, p.name, p.slug, p.sku, p.description, p.category,
			   p.price, p.stock, p.status, p.rating, p.total_ratings, p.sales_count,
			   p.images, p.tags, p.created_at, p.updated_at
		FROM products p WHERE p.%s
	`, where)

	product := &models.Product{}
	var priceStr, imagesJSON, tagsJSON string
	err := s.db.QueryRow(query, arg).Scan(
		&product.ID, &product.VendorID, &product.Name, &product.Slug, &product.SKU,
		&product.Description, &product.Category, &priceStr, &product.Stock,
		&product.Status, &product.Rating, &product.TotalRatings, &product.SalesCount,
		&imagesJSON, &tagsJSON, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	product.Price, err = decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product price: %w", err)
	}
	if err := product.SetImagesFromJSON(imagesJSON); err != nil {
		return nil, fmt.Errorf("failed to decode images: %w", err)
	}
	if err := product.SetTagsFromJSON(tagsJSON); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}

	variants, err := s.GetVariants(product.ID)
	if err != nil {
		return nil, err
	}
	product.Variants = variants

	return product, nil
}

// ListProducts returns products matching the filters
func (s *CatalogService) ListProducts(filters *ProductFilters) ([]models.Product, error) {
	var conditions []string
	var args []interface{}

	if filters.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filters.Status)
	} else {
		conditions = append(conditions, "status = ?")
		args = append(args, models.ProductStatusPublished)
	}
	if filters.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filters.Category)
	}
	if filters.VendorID != "" {
		conditions = append(conditions, "vendor_id = ?")
		args = append(args, filters.VendorID)
	}
	if filters.Search != "" {
		conditions = append(conditions, "(name LIKE ? OR description LIKE ?)")
		like := "%" + filters.Search + "%"
		args = append(args, like, like)
	}
	if filters.MinPrice != nil {
		conditions = append(conditions, "CAST(price AS REAL) >= ?")
		args = append(args, filters.MinPrice.InexactFloat64())
	}
	if filters.MaxPrice != nil {
		conditions = append(conditions, "CAST(price AS REAL) <= ?")
		args = append(args, filters.MaxPrice.InexactFloat64())
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT id, vendor_id, name, slug, sku, description, category, price, stock,
			   status, rating, total_ratings, sales_count, images, tags, created_at, updated_at
		FROM products WHERE %s
		ORDER BY created_at DESC LIMIT ? OFFSET ?
	`, strings.Join(conditions, " AND "))
	args = append(args, limit, offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var product models.Product
		var priceStr, imagesJSON, tagsJSON string
		err := rows.Scan(
			&product.ID, &product.VendorID, &product.Name, &product.Slug, &product.SKU,
			&product.Description, &product.Category, &priceStr, &product.Stock,
			&product.Status, &product.Rating, &product.TotalRatings, &product.SalesCount,
			&imagesJSON, &tagsJSON, &product.CreatedAt, &product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		product.Price, err = decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse product price: %w", err)
		}
		if err := product.SetImagesFromJSON(imagesJSON); err != nil {
			return nil, fmt.Errorf("failed to decode images: %w", err)
		}
		if err := product.SetTagsFromJSON(tagsJSON); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

// UpdateProduct updates a vendor's product. Stock changes run through the
// stock/status rules so an emptied product archives itself and a restock
// brings an archived one back.
func (s *CatalogService) UpdateProduct(productID, vendorID string, update *models.ProductUpdate) (*models.Product, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var oldStock int
	var currentStatus models.ProductStatus
	var ownerID string
	err = tx.QueryRow(
		"SELECT vendor_id, stock, status FROM products WHERE id = ?", productID,
	).Scan(&ownerID, &oldStock, &currentStatus)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	if ownerID != vendorID {
		return nil, errors.New("product does not belong to this vendor")
	}

	var setParts []string
	var args []interface{}

	if update.Name != nil {
		name := utils.SanitizeString(*update.Name)
		setParts = append(setParts, "name = ?", "slug = ?")
		args = append(args, name, s.uniqueSlug(name))
	}
	if update.Description != nil {
		setParts = append(setParts, "description = ?")
		args = append(args, utils.SanitizeString(*update.Description))
	}
	if update.Category != nil {
		setParts = append(setParts, "category = ?")
		args = append(args, *update.Category)
	}
	if update.Price != nil {
		if update.Price.IsNegative() || update.Price.IsZero() {
			return nil, errors.New("price must be positive")
		}
		setParts = append(setParts, "price = ?")
		args = append(args, update.Price.String())
	}
	if update.Images != nil {
		p := models.Product{Images: update.Images}
		imagesJSON, err := p.GetImagesJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to encode images: %w", err)
		}
		setParts = append(setParts, "images = ?")
		args = append(args, imagesJSON)
	}
	if update.Tags != nil {
		p := models.Product{Tags: update.Tags}
		tagsJSON, err := p.GetTagsJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to encode tags: %w", err)
		}
		setParts = append(setParts, "tags = ?")
		args = append(args, tagsJSON)
	}

	// The stock rule always has the last word: even an explicit status
	// cannot keep a zero-stock product published
	newStatus := currentStatus
	if update.Status != nil {
		newStatus = *update.Status
	}
	if update.Stock != nil {
		if *update.Stock < 0 {
			return nil, errors.New("stock cannot be negative")
		}
		setParts = append(setParts, "stock = ?")
		args = append(args, *update.Stock)
		newStatus = models.StatusForStock(oldStock, *update.Stock, newStatus)
	}
	if newStatus != currentStatus {
		setParts = append(setParts, "status = ?")
		args = append(args, newStatus)
	}

	if len(setParts) == 0 {
		return s.GetProductByID(productID)
	}

	setParts = append(setParts, "updated_at = ?")
	args = append(args, time.Now())
	args = append(args, productID)

	query := fmt.Sprintf("UPDATE products SET %s WHERE id = ?", strings.Join(setParts, ", "))
	if _, err := tx.Exec(query, args...); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return s.GetProductByID(productID)
}

// DeleteProduct archives a product so existing orders keep their references
func (s *CatalogService) DeleteProduct(productID, vendorID string) error {
	result, err := s.db.Exec(`
		UPDATE products SET status = ?, updated_at = ?
		WHERE id = ? AND vendor_id = ?
	`, models.ProductStatusArchived, time.Now(), productID, vendorID)
	if err != nil {
		return fmt.Errorf("failed to archive product: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check archive result: %w", err)
	}
	if rows == 0 {
		return errors.New("product not found or not owned by this vendor")
	}

	return nil
}

// AddVariant adds a variant to a product
func (s *CatalogService) AddVariant(productID, vendorID, name string, price decimal.Decimal, stock int) (*models.ProductVariant, error) {
	var ownerID string
	err := s.db.QueryRow("SELECT vendor_id FROM products WHERE id = ?", productID).Scan(&ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if ownerID != vendorID {
		return nil, errors.New("product does not belong to this vendor")
	}

	if price.IsNegative() || price.IsZero() {
		return nil, errors.New("price must be positive")
	}
	if stock < 0 {
		return nil, errors.New("stock cannot be negative")
	}

	now := time.Now()
	variant := &models.ProductVariant{
		ID:        uuid.New().String(),
		ProductID: productID,
		Name:      utils.SanitizeString(name),
		Price:     price,
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.Exec(`
		INSERT INTO product_variants (id, product_id, name, price, stock, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, variant.ID, variant.ProductID, variant.Name, variant.Price.String(),
		variant.Stock, variant.CreatedAt, variant.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create variant: %w", err)
	}

	return variant, nil
}

// GetVariants returns the variants of a product
func (s *CatalogService) GetVariants(productID string) ([]models.ProductVariant, error) {
	rows, err := s.db.Query(`
		SELECT id, product_id, name, price, stock, created_at, updated_at
		FROM product_variants WHERE product_id = ? ORDER BY created_at ASC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}
	defer rows.Close()

	var variants []models.ProductVariant
	for rows.Next() {
		var variant models.ProductVariant
		var priceStr string
		err := rows.Scan(&variant.ID, &variant.ProductID, &variant.Name,
			&priceStr, &variant.Stock, &variant.CreatedAt, &variant.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		variant.Price, err = decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse variant price: %w", err)
		}
		variants = append(variants, variant)
	}

	return variants, rows.Err()
}

// DeleteVariant removes a variant from a vendor's product
func (s *CatalogService) DeleteVariant(variantID, vendorID string) error {
	result, err := s.db.Exec(`
		DELETE FROM product_variants WHERE id = ? AND product_id IN
			(SELECT id FROM products WHERE vendor_id = ?)
	`, variantID, vendorID)
	if err != nil {
		return fmt.Errorf("failed to delete variant: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return errors.New("variant not found or not owned by this vendor")
	}

	return nil
}

// CreateReview records a verified-purchase review and recomputes the rating.
// Only the buyer of a delivered order containing the product may review it,
// once per order.
func (s *CatalogService) CreateReview(productID, reviewerID string, creation *models.ReviewCreation) (*models.ProductReview, error) {
	if err := utils.ValidateStruct(creation); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRow(`
		SELECT COUNT(*) FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.id = ? AND o.buyer_id = ? AND o.status = ? AND oi.product_id = ?
	`, creation.OrderID, reviewerID, models.OrderStatusDelivered, productID).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed to verify purchase: %w", err)
	}
	if count == 0 {
		return nil, errors.New("only delivered purchases can be reviewed")
	}

	err = tx.QueryRow(`
		SELECT COUNT(*) FROM product_reviews
		WHERE product_id = ? AND reviewer_id = ? AND order_id = ?
	`, productID, reviewerID, creation.OrderID).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if count > 0 {
		return nil, errors.New("this purchase has already been reviewed")
	}

	review := &models.ProductReview{
		ID:         uuid.New().String(),
		ProductID:  productID,
		OrderID:    creation.OrderID,
		ReviewerID: reviewerID,
		Rating:     creation.Rating,
		Comment:    creation.Comment,
		CreatedAt:  time.Now(),
	}

	_, err = tx.Exec(`
		INSERT INTO product_reviews (id, product_id, order_id, reviewer_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, review.ID, review.ProductID, review.OrderID, review.ReviewerID,
		review.Rating, review.Comment, review.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	// Recompute the aggregate from the review rows themselves
	_, err = tx.Exec(`
		UPDATE products SET
			rating = (SELECT AVG(rating) FROM product_reviews WHERE product_id = ?),
			total_ratings = (SELECT COUNT(*) FROM product_reviews WHERE product_id = ?),
			updated_at = ?
		WHERE id = ?
	`, productID, productID, time.Now(), productID)
	if err != nil {
		return nil, fmt.Errorf("failed to update product rating: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return review, nil
}

// GetReviews returns the reviews of a product, newest first
func (s *CatalogService) GetReviews(productID string, limit, offset int) ([]models.ProductReview, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.Query(`
		SELECT r.id, r.product_id, r.order_id, r.reviewer_id, r.rating, r.comment, r.created_at,
			   u.first_name, u.last_name
		FROM product_reviews r
		JOIN users u ON u.id = r.reviewer_id
		WHERE r.product_id = ?
		ORDER BY r.created_at DESC LIMIT ? OFFSET ?
	`, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.ProductReview
	for rows.Next() {
		var review models.ProductReview
		var reviewer models.User
		err := rows.Scan(
			&review.ID, &review.ProductID, &review.OrderID, &review.ReviewerID,
			&review.Rating, &review.Comment, &review.CreatedAt,
			&reviewer.FirstName, &reviewer.LastName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviewer.ID = review.ReviewerID
		review.Reviewer = &reviewer
		reviews = append(reviews, review)
	}

	return reviews, rows.Err()
}

// uniqueSlug builds a slug from the name, suffixing a random fragment when
// the plain slug is already taken
func (s *CatalogService) uniqueSlug(name string) string {
	slug := utils.Slugify(name)
	if slug == "" {
		slug = "produit"
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM products WHERE slug = ?", slug).Scan(&count); err == nil && count == 0 {
		return slug
	}

	return slug + "-" + strings.ToLower(utils.GenerateRandomString(6))
}
