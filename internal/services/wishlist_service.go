package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"kefystore-backend/internal/models"
)

// WishlistService manages per-user wishlists
type WishlistService struct {
	db *sql.DB
}

// NewWishlistService creates a new wishlist service
func NewWishlistService(db *sql.DB) *WishlistService {
	return &WishlistService{db: db}
}

// AddItem puts a product on the user's wishlist. Adding it twice is a no-op.
func (s *WishlistService) AddItem(userID, productID string) (*models.WishlistItem, error) {
	var exists int
	err := s.db.QueryRow("SELECT COUNT(*) FROM products WHERE id = ?", productID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check product: %w", err)
	}
	if exists == 0 {
		return nil, errors.New("product not found")
	}

	item := &models.WishlistItem{
		ID:        uuid.New().String(),
		UserID:    userID,
		ProductID: productID,
		AddedAt:   time.Now(),
	}

	_, err = s.db.Exec(`
		INSERT OR IGNORE INTO wishlist_items (id, user_id, product_id, added_at)
		VALUES (?, ?, ?, ?)
	`, item.ID, item.UserID, item.ProductID, item.AddedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add wishlist item: %w", err)
	}

	return item, nil
}

// RemoveItem takes a product off the user's wishlist
func (s *WishlistService) RemoveItem(userID, productID string) error {
	result, err := s.db.Exec(
		"DELETE FROM wishlist_items WHERE user_id = ? AND product_id = ?",
		userID, productID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check remove result: %w", err)
	}
	if rows == 0 {
		return errors.New("wishlist item not found")
	}

	return nil
}

// ListItems returns the user's wishlist with product details
func (s *WishlistService) ListItems(userID string) ([]models.WishlistItem, error) {
	rows, err := s.db.Query(`
		SELECT w.id, w.user_id, w.product_id, w.added_at,
			   p.name, p.slug, p.price, p.stock, p.status, p.rating
		FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = ?
		ORDER BY w.added_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	defer rows.Close()

	var items []models.WishlistItem
	for rows.Next() {
		var item models.WishlistItem
		var priceStr string
		product := &models.Product{}
		err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.AddedAt,
			&product.Name, &product.Slug, &priceStr, &product.Stock,
			&product.Status, &product.Rating)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		product.Price, err = decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse product price: %w", err)
		}
		product.ID = item.ProductID
		item.Product = product
		items = append(items, item)
	}

	return items, rows.Err()
}
