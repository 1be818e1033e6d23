package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ProductCategory represents product categories
type ProductCategory string

const (
	ProductCategoryFashion     ProductCategory = "fashion"
	ProductCategoryElectronics ProductCategory = "electronics"
	ProductCategoryBeauty      ProductCategory = "beauty"
	ProductCategoryHome        ProductCategory = "home"
	ProductCategoryFood        ProductCategory = "food"
	ProductCategorySports      ProductCategory = "sports"
	ProductCategoryOther       ProductCategory = "other"
)

// ProductStatus represents product lifecycle status
type ProductStatus string

const (
	ProductStatusDraft     ProductStatus = "draft"
	ProductStatusPublished ProductStatus = "published"
	ProductStatusArchived  ProductStatus = "archived"
)

// StatusForStock returns the status a product must carry after a stock change.
// Stock hitting zero archives the product; stock coming back republishes an
// archived one. A draft stays a draft either way.
func StatusForStock(oldStock, newStock int, current ProductStatus) ProductStatus {
	if current == ProductStatusDraft {
		return current
	}
	if newStock == 0 && oldStock > 0 {
		return ProductStatusArchived
	}
	if newStock > 0 && oldStock == 0 && current == ProductStatusArchived {
		return ProductStatusPublished
	}
	return current
}

// Product represents a vendor-owned catalog item
type Product struct {
	ID           string          `json:"id" db:"id"`
	VendorID     string          `json:"vendorId" db:"vendor_id"`
	Name         string          `json:"name" db:"name"`
	Slug         string          `json:"slug" db:"slug"`
	SKU          string          `json:"sku" db:"sku"`
	Description  string          `json:"description" db:"description"`
	Category     ProductCategory `json:"category" db:"category"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Stock        int             `json:"stock" db:"stock"`
	Status       ProductStatus   `json:"status" db:"status"`
	Rating       float64         `json:"rating" db:"rating"`
	TotalRatings int             `json:"totalRatings" db:"total_ratings"`
	SalesCount   int             `json:"salesCount" db:"sales_count"`
	Images       []string        `json:"images" db:"images"`
	Tags         []string        `json:"tags" db:"tags"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`

	// Joined data (populated when needed)
	Vendor   *User            `json:"vendor,omitempty"`
	Variants []ProductVariant `json:"variants,omitempty"`
}

// ProductVariant represents an optional variation of a product with its own price and stock
type ProductVariant struct {
	ID        string          `json:"id" db:"id"`
	ProductID string          `json:"productId" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Stock     int             `json:"stock" db:"stock"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// ProductCreation represents data for creating a new product
type ProductCreation struct {
	Name        string          `json:"name" validate:"required,min=2,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Category    ProductCategory `json:"category" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Images      []string        `json:"images"`
	Tags        []string        `json:"tags"`
	Publish     bool            `json:"publish"`
}

// ProductUpdate represents data for updating a product
type ProductUpdate struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *ProductCategory `json:"category,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	Status      *ProductStatus   `json:"status,omitempty"`
	Images      []string         `json:"images,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
}

// ProductReview represents a verified-purchase review
type ProductReview struct {
	ID         string    `json:"id" db:"id"`
	ProductID  string    `json:"productId" db:"product_id"`
	OrderID    string    `json:"orderId" db:"order_id"`
	ReviewerID string    `json:"reviewerId" db:"reviewer_id"`
	Rating     int       `json:"rating" db:"rating"`
	Comment    *string   `json:"comment,omitempty" db:"comment"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`

	// Joined data (populated when needed)
	Reviewer *User `json:"reviewer,omitempty"`
}

// ReviewCreation represents data for submitting a review
type ReviewCreation struct {
	OrderID string  `json:"orderId" validate:"required"`
	Rating  int     `json:"rating" validate:"required,gte=1,lte=5"`
	Comment *string `json:"comment,omitempty"`
}

// IsAvailable checks if the product can be bought
func (p *Product) IsAvailable() bool {
	return p.Status == ProductStatusPublished && p.Stock > 0
}

// IsInStock checks if the product has sufficient stock
func (p *Product) IsInStock(quantity int) bool {
	return p.Stock >= quantity
}

// GetImagesJSON returns images as JSON string for database storage
func (p *Product) GetImagesJSON() (string, error) {
	if len(p.Images) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(p.Images)
	return string(data), err
}

// SetImagesFromJSON sets images from JSON string
func (p *Product) SetImagesFromJSON(imagesJSON string) error {
	if imagesJSON == "" {
		p.Images = []string{}
		return nil
	}
	return json.Unmarshal([]byte(imagesJSON), &p.Images)
}

// GetTagsJSON returns tags as JSON string for database storage
func (p *Product) GetTagsJSON() (string, error) {
	if len(p.Tags) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(p.Tags)
	return string(data), err
}

// SetTagsFromJSON sets tags from JSON string
func (p *Product) SetTagsFromJSON(tagsJSON string) error {
	if tagsJSON == "" {
		p.Tags = []string{}
		return nil
	}
	return json.Unmarshal([]byte(tagsJSON), &p.Tags)
}

// IsValidRating checks if the rating is valid (1-5)
func (r *ProductReview) IsValidRating() bool {
	return r.Rating >= 1 && r.Rating <= 5
}

// WishlistItem represents an item in a user's wishlist
type WishlistItem struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	ProductID string    `json:"productId" db:"product_id"`
	AddedAt   time.Time `json:"addedAt" db:"added_at"`

	// Joined data (populated when needed)
	Product *Product `json:"product,omitempty"`
}
