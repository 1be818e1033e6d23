package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"kefystore-backend/internal/models"
	"kefystore-backend/internal/utils"
)

// CartService handles shopping cart business logic
type CartService struct {
	db *sql.DB
}

// NewCartService creates a new cart service
func NewCartService(db *sql.DB) *CartService {
	return &CartService{db: db}
}

// GetOrCreateCart returns the user's cart, creating it on first use
func (s *CartService) GetOrCreateCart(userID string) (*models.Cart, error) {
	cart := &models.Cart{}
	err := s.db.QueryRow(
		"SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = ?", userID,
	).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)

	if err == sql.ErrNoRows {
		now := time.Now()
		cart = &models.Cart{
			ID:        uuid.New().String(),
			UserID:    userID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, err = s.db.Exec(
			"INSERT INTO carts (id, user_id, created_at, updated_at) VALUES (?, ?, ?, ?)",
			cart.ID, cart.UserID, cart.CreatedAt, cart.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create cart: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	items, err := s.getItems(cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items

	return cart, nil
}

// AddItem puts a product into the cart or bumps its quantity. The unit price
// is snapshotted at add time.
func (s *CartService) AddItem(userID string, creation *models.CartItemCreation) (*models.Cart, error) {
	if err := utils.ValidateStruct(creation); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	cart, err := s.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}

	var stock int
	var status models.ProductStatus
	var priceStr string
	err = s.db.QueryRow(
		"SELECT price, stock, status FROM products WHERE id = ?", creation.ProductID,
	).Scan(&priceStr, &stock, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	if status != models.ProductStatusPublished {
		return nil, errors.New("product is not available")
	}

	unitPrice, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product price: %w", err)
	}

	// A variant overrides price and stock
	if creation.VariantID != nil {
		var variantPriceStr string
		err = s.db.QueryRow(
			"SELECT price, stock FROM product_variants WHERE id = ? AND product_id = ?",
			*creation.VariantID, creation.ProductID,
		).Scan(&variantPriceStr, &stock)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, errors.New("variant not found")
			}
			return nil, fmt.Errorf("failed to load variant: %w", err)
		}
		unitPrice, err = decimal.NewFromString(variantPriceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse variant price: %w", err)
		}
	}

	// Merge with an existing line for the same product and variant
	existingQty := 0
	var existingID string
	row := s.db.QueryRow(`
		SELECT id, quantity FROM cart_items
		WHERE cart_id = ? AND product_id = ? AND COALESCE(variant_id, '') = COALESCE(?, '')
	`, cart.ID, creation.ProductID, creation.VariantID)
	err = row.Scan(&existingID, &existingQty)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check existing cart item: %w", err)
	}

	newQty := existingQty + creation.Quantity
	if newQty > stock {
		return nil, fmt.Errorf("insufficient stock: %d available", stock)
	}

	if existingID != "" {
		_, err = s.db.Exec(
			"UPDATE cart_items SET quantity = ?, unit_price = ? WHERE id = ?",
			newQty, unitPrice.String(), existingID,
		)
	} else {
		_, err = s.db.Exec(`
			INSERT INTO cart_items (id, cart_id, product_id, variant_id, quantity, unit_price, added_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, uuid.New().String(), cart.ID, creation.ProductID, creation.VariantID,
			newQty, unitPrice.String(), time.Now())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	s.touch(cart.ID)
	return s.GetOrCreateCart(userID)
}

// UpdateItemQuantity changes the quantity of a cart line. Zero removes it.
func (s *CartService) UpdateItemQuantity(userID, itemID string, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		return nil, errors.New("quantity cannot be negative")
	}

	cart, err := s.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}

	if quantity == 0 {
		return s.RemoveItem(userID, itemID)
	}

	var productID string
	var variantID *string
	err = s.db.QueryRow(
		"SELECT product_id, variant_id FROM cart_items WHERE id = ? AND cart_id = ?",
		itemID, cart.ID,
	).Scan(&productID, &variantID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("cart item not found")
		}
		return nil, fmt.Errorf("failed to load cart item: %w", err)
	}

	var stock int
	if variantID != nil {
		err = s.db.QueryRow("SELECT stock FROM product_variants WHERE id = ?", *variantID).Scan(&stock)
	} else {
		err = s.db.QueryRow("SELECT stock FROM products WHERE id = ?", productID).Scan(&stock)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check stock: %w", err)
	}
	if quantity > stock {
		return nil, fmt.Errorf("insufficient stock: %d available", stock)
	}

	_, err = s.db.Exec("UPDATE cart_items SET quantity = ? WHERE id = ?", quantity, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	s.touch(cart.ID)
	return s.GetOrCreateCart(userID)
}

// RemoveItem removes a line from the cart
func (s *CartService) RemoveItem(userID, itemID string) (*models.Cart, error) {
	cart, err := s.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}

	result, err := s.db.Exec(
		"DELETE FROM cart_items WHERE id = ? AND cart_id = ?", itemID, cart.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check remove result: %w", err)
	}
	if rows == 0 {
		return nil, errors.New("cart item not found")
	}

	s.touch(cart.ID)
	return s.GetOrCreateCart(userID)
}

// ClearCart removes every line from the user's cart
func (s *CartService) ClearCart(userID string) error {
	cart, err := s.GetOrCreateCart(userID)
	if err != nil {
		return err
	}

	if _, err := s.db.Exec("DELETE FROM cart_items WHERE cart_id = ?", cart.ID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	s.touch(cart.ID)
	return nil
}

func (s *CartService) getItems(cartID string) ([]models.CartItem, error) {
	rows, err := s.db.Query(`
		SELECT ci.id, ci.cart_id, ci.product_id, ci.variant_id, ci.quantity, ci.unit_price, ci.added_at,
			   p.name, p.slug, p.stock, p.status, p.vendor_id
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = ?
		ORDER BY ci.added_at ASC
	`, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	var items []models.CartItem
	for rows.Next() {
		var item models.CartItem
		var unitPriceStr string
		product := &models.Product{}
		err := rows.Scan(
			&item.ID, &item.CartID, &item.ProductID, &item.VariantID,
			&item.Quantity, &unitPriceStr, &item.AddedAt,
			&product.Name, &product.Slug, &product.Stock, &product.Status, &product.VendorID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		item.UnitPrice, err = decimal.NewFromString(unitPriceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse unit price: %w", err)
		}
		product.ID = item.ProductID
		item.Product = product
		items = append(items, item)
	}

	return items, rows.Err()
}

func (s *CartService) touch(cartID string) {
	s.db.Exec("UPDATE carts SET updated_at = ? WHERE id = ?", time.Now(), cartID)
}
