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

// OrderService handles order placement and the order status workflow
type OrderService struct {
	db       *sql.DB
	delivery *DeliveryService
	taxRate  decimal.Decimal
	currency string
}

// NewOrderService creates a new order service
func NewOrderService(db *sql.DB, delivery *DeliveryService, taxRate decimal.Decimal, currency string) *OrderService {
	return &OrderService{db: db, delivery: delivery, taxRate: taxRate, currency: currency}
}

// Checkout turns the user's cart into an order. Stock is decremented with a
// guard so two buyers cannot both take the last unit; a failed guard aborts
// the whole transaction and the cart stays intact.
func (s *OrderService) Checkout(userID string, creation *models.OrderCreation) (*models.Order, error) {
	if err := utils.ValidateStruct(creation); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	cartService := NewCartService(s.db)
	cart, err := cartService.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, errors.New("cart is empty")
	}

	shippingCost, zone, err := s.delivery.FeeForCity(creation.ShippingCity)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	subtotal := decimal.Zero
	order := &models.Order{
		ID:              uuid.New().String(),
		OrderNumber:     utils.GenerateOrderNumber(),
		BuyerID:         userID,
		Status:          models.OrderStatusPending,
		PaymentState:    models.PaymentStateUnpaid,
		ShippingName:    utils.SanitizeString(creation.ShippingName),
		ShippingPhone:   utils.FormatPhoneNumber(creation.ShippingPhone),
		ShippingAddress: utils.SanitizeString(creation.ShippingAddress),
		ShippingCity:    utils.SanitizeString(creation.ShippingCity),
		DeliveryZone:    zone,
		ShippingCost:    shippingCost,
		Currency:        s.currency,
		Notes:           creation.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// The parent row goes in first so the item inserts satisfy the
	// order_items foreign key; totals are filled in after the loop
	_, err = tx.Exec(`
		INSERT INTO orders (id, order_number, buyer_id, status, payment_state,
			shipping_name, shipping_phone, shipping_address, shipping_city, delivery_zone,
			subtotal, shipping_cost, tax_amount, total_amount, currency, notes,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, order.ID, order.OrderNumber, order.BuyerID, order.Status, order.PaymentState,
		order.ShippingName, order.ShippingPhone, order.ShippingAddress, order.ShippingCity,
		order.DeliveryZone, order.Subtotal.String(), order.ShippingCost.String(),
		order.TaxAmount.String(), order.TotalAmount.String(), order.Currency, order.Notes,
		order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range cart.Items {
		// Guarded decrement: only succeeds while enough stock remains
		var result sql.Result
		if item.VariantID != nil {
			result, err = tx.Exec(
				"UPDATE product_variants SET stock = stock - ?, updated_at = ? WHERE id = ? AND stock >= ?",
				item.Quantity, now, *item.VariantID, item.Quantity,
			)
		} else {
			result, err = tx.Exec(
				"UPDATE products SET stock = stock - ?, updated_at = ? WHERE id = ? AND stock >= ?",
				item.Quantity, now, item.ProductID, item.Quantity,
			)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to reserve stock: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to check stock reservation: %w", err)
		}
		if rows == 0 {
			return nil, fmt.Errorf("insufficient stock for %s", item.Product.Name)
		}

		_, err = tx.Exec(
			"UPDATE products SET sales_count = sales_count + ? WHERE id = ?",
			item.Quantity, item.ProductID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update sales count: %w", err)
		}

		// Archive a product whose stock just ran out
		if item.VariantID == nil {
			if err := s.applyStockStatus(tx, item.ProductID, -item.Quantity); err != nil {
				return nil, err
			}
		}

		var variantName *string
		if item.VariantID != nil {
			var name string
			if err := tx.QueryRow("SELECT name FROM product_variants WHERE id = ?", *item.VariantID).Scan(&name); err == nil {
				variantName = &name
			}
		}

		lineTotal := item.GetTotalPrice()
		subtotal = subtotal.Add(lineTotal)

		orderItem := models.OrderItem{
			ID:          uuid.New().String(),
			OrderID:     order.ID,
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			VendorID:    item.Product.VendorID,
			ProductName: item.Product.Name,
			VariantName: variantName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  lineTotal,
			CreatedAt:   now,
		}

		_, err = tx.Exec(`
			INSERT INTO order_items (id, order_id, product_id, variant_id, vendor_id,
				product_name, variant_name, quantity, unit_price, total_price, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, orderItem.ID, orderItem.OrderID, orderItem.ProductID, orderItem.VariantID,
			orderItem.VendorID, orderItem.ProductName, orderItem.VariantName,
			orderItem.Quantity, orderItem.UnitPrice.String(), orderItem.TotalPrice.String(),
			orderItem.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}

		order.Items = append(order.Items, orderItem)
	}

	order.Subtotal = subtotal
	order.TaxAmount = subtotal.Mul(s.taxRate).Round(0)
	order.TotalAmount = subtotal.Add(order.ShippingCost).Add(order.TaxAmount)

	if _, err := tx.Exec(
		"UPDATE orders SET subtotal = ?, tax_amount = ?, total_amount = ? WHERE id = ?",
		order.Subtotal.String(), order.TaxAmount.String(), order.TotalAmount.String(), order.ID,
	); err != nil {
		return nil, fmt.Errorf("failed to update order totals: %w", err)
	}

	if err := s.recordHistory(tx, order.ID, "", models.OrderStatusPending, &userID, nil); err != nil {
		return nil, err
	}

	if _, err := tx.Exec("DELETE FROM cart_items WHERE cart_id = ?", cart.ID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return order, nil
}

// GetOrderByID retrieves an order with its items and history
func (s *OrderService) GetOrderByID(orderID string) (*models.Order, error) {
	order := &models.Order{}
	var subtotalStr, shippingStr, taxStr, totalStr string
	err := s.db.QueryRow(`
		SELECT id, order_number, buyer_id, status, payment_state, shipping_name,
			   shipping_phone, shipping_address, shipping_city, delivery_zone,
			   subtotal, shipping_cost, tax_amount, total_amount, currency, notes,
			   created_at, updated_at
		FROM orders WHERE id = ?
	`, orderID).Scan(
		&order.ID, &order.OrderNumber, &order.BuyerID, &order.Status, &order.PaymentState,
		&order.ShippingName, &order.ShippingPhone, &order.ShippingAddress, &order.ShippingCity,
		&order.DeliveryZone, &subtotalStr, &shippingStr, &taxStr, &totalStr,
		&order.Currency, &order.Notes, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("order not found")
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order.Subtotal, err = decimal.NewFromString(subtotalStr); err != nil {
		return nil, fmt.Errorf("failed to parse order subtotal: %w", err)
	}
	if order.ShippingCost, err = decimal.NewFromString(shippingStr); err != nil {
		return nil, fmt.Errorf("failed to parse shipping cost: %w", err)
	}
	if order.TaxAmount, err = decimal.NewFromString(taxStr); err != nil {
		return nil, fmt.Errorf("failed to parse tax amount: %w", err)
	}
	if order.TotalAmount, err = decimal.NewFromString(totalStr); err != nil {
		return nil, fmt.Errorf("failed to parse order total: %w", err)
	}

	items, err := s.getItems(orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	history, err := s.GetHistory(orderID)
	if err != nil {
		return nil, err
	}
	order.History = history

	return order, nil
}

// ListOrdersForBuyer returns a buyer's orders, newest first
func (s *OrderService) ListOrdersForBuyer(buyerID string, limit, offset int) ([]models.Order, error) {
	return s.listOrders("buyer_id = ?", buyerID, limit, offset)
}

// ListOrdersForVendor returns orders containing the vendor's products
func (s *OrderService) ListOrdersForVendor(vendorID string, limit, offset int) ([]models.Order, error) {
	return s.listOrders(
		"id IN (SELECT DISTINCT order_id FROM order_items WHERE vendor_id = ?)",
		vendorID, limit, offset,
	)
}

func (s *OrderService) listOrders(where string, arg interface{}, limit, offset int) ([]models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT id, order_number, buyer_id, status, payment_state, shipping_name,
			   shipping_phone, shipping_address, shipping_city, delivery_zone,
			   subtotal, shipping_cost, tax_amount, total_amount, currency, notes,
			   created_at, updated_at
		FROM orders WHERE %s ORDER BY created_at DESC LIMIT ? OFFSET ?
	`, where)

	rows, err := s.db.Query(query, arg, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		var subtotalStr, shippingStr, taxStr, totalStr string
		err := rows.Scan(
			&order.ID, &order.OrderNumber, &order.BuyerID, &order.Status, &order.PaymentState,
			&order.ShippingName, &order.ShippingPhone, &order.ShippingAddress, &order.ShippingCity,
			&order.DeliveryZone, &subtotalStr, &shippingStr, &taxStr, &totalStr,
			&order.Currency, &order.Notes, &order.CreatedAt, &order.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if order.Subtotal, err = decimal.NewFromString(subtotalStr); err != nil {
			return nil, fmt.Errorf("failed to parse order subtotal: %w", err)
		}
		if order.ShippingCost, err = decimal.NewFromString(shippingStr); err != nil {
			return nil, fmt.Errorf("failed to parse shipping cost: %w", err)
		}
		if order.TaxAmount, err = decimal.NewFromString(taxStr); err != nil {
			return nil, fmt.Errorf("failed to parse tax amount: %w", err)
		}
		if order.TotalAmount, err = decimal.NewFromString(totalStr); err != nil {
			return nil, fmt.Errorf("failed to parse order total: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

// UpdateStatus moves an order along the workflow. The previous status is
// read inside the transaction and the move is checked against the
// transition table before anything changes.
func (s *OrderService) UpdateStatus(orderID string, to models.OrderStatus, changedBy *string, note *string) (*models.Order, error) {
	if !models.IsValidOrderStatus(to) {
		return nil, fmt.Errorf("unknown order status: %s", to)
	}
	// Refunds settle the payment transaction too, so they only go
	// through RefundOrder
	if to == models.OrderStatusRefunded {
		return nil, errors.New("refunds must go through the refund operation")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var from models.OrderStatus
	err = tx.QueryRow("SELECT status FROM orders WHERE id = ?", orderID).Scan(&from)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("order not found")
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	if !models.CanTransition(from, to) {
		return nil, fmt.Errorf("cannot move order from %s to %s", from, to)
	}

	if to == models.OrderStatusCancelled {
		if err := s.restoreStock(tx, orderID); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(
		"UPDATE orders SET status = ?, updated_at = ? WHERE id = ?",
		to, time.Now(), orderID,
	); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if err := s.recordHistory(tx, orderID, from, to, changedBy, note); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return s.GetOrderByID(orderID)
}

// CancelOrder cancels a pending or confirmed order on the buyer's behalf,
// restoring the reserved stock
func (s *OrderService) CancelOrder(orderID, buyerID string, note *string) (*models.Order, error) {
	order, err := s.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, errors.New("order does not belong to this user")
	}
	if !order.CanBeCancelled() {
		return nil, fmt.Errorf("order in status %s can no longer be cancelled", order.Status)
	}

	return s.UpdateStatus(orderID, models.OrderStatusCancelled, &buyerID, note)
}

// RefundOrder refunds a delivered, paid order. The payment transaction is
// marked refunded along with the order.
func (s *OrderService) RefundOrder(orderID string, changedBy *string, note *string) (*models.Order, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status models.OrderStatus
	var paymentState models.PaymentState
	err = tx.QueryRow("SELECT status, payment_state FROM orders WHERE id = ?", orderID).Scan(&status, &paymentState)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("order not found")
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	if status != models.OrderStatusDelivered {
		return nil, errors.New("only delivered orders can be refunded")
	}
	if paymentState != models.PaymentStatePaid {
		return nil, errors.New("order has no completed payment to refund")
	}

	now := time.Now()
	result, err := tx.Exec(`
		UPDATE payment_transactions SET status = ?, updated_at = ?
		WHERE order_id = ? AND status = ?
	`, models.TransactionStatusRefunded, now, orderID, models.TransactionStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to refund payment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check refund result: %w", err)
	}
	if rows == 0 {
		return nil, errors.New("no completed payment transaction found for this order")
	}

	if _, err := tx.Exec(
		"UPDATE orders SET status = ?, payment_state = ?, updated_at = ? WHERE id = ?",
		models.OrderStatusRefunded, models.PaymentStateRefunded, now, orderID,
	); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	if err := s.recordHistory(tx, orderID, status, models.OrderStatusRefunded, changedBy, note); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return s.GetOrderByID(orderID)
}

// GetHistory returns the status history of an order, oldest first
func (s *OrderService) GetHistory(orderID string) ([]models.OrderStatusHistory, error) {
	rows, err := s.db.Query(`
		SELECT id, order_id, from_status, to_status, changed_by, note, created_at
		FROM order_status_history WHERE order_id = ? ORDER BY created_at ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order history: %w", err)
	}
	defer rows.Close()

	var history []models.OrderStatusHistory
	for rows.Next() {
		var entry models.OrderStatusHistory
		err := rows.Scan(&entry.ID, &entry.OrderID, &entry.FromStatus, &entry.ToStatus,
			&entry.ChangedBy, &entry.Note, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		history = append(history, entry)
	}

	return history, rows.Err()
}

// VendorOwnsOrderItems reports whether any line of the order belongs to the vendor
func (s *OrderService) VendorOwnsOrderItems(orderID, vendorID string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM order_items WHERE order_id = ? AND vendor_id = ?",
		orderID, vendorID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check order ownership: %w", err)
	}
	return count > 0, nil
}

// MarkPaid flags the order as paid once its payment completes
func (s *OrderService) MarkPaid(tx *sql.Tx, orderID string) error {
	if _, err := tx.Exec(
		"UPDATE orders SET payment_state = ?, updated_at = ? WHERE id = ?",
		models.PaymentStatePaid, time.Now(), orderID,
	); err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	return nil
}

func (s *OrderService) getItems(orderID string) ([]models.OrderItem, error) {
	rows, err := s.db.Query(`
		SELECT id, order_id, product_id, variant_id, vendor_id, product_name,
			   variant_name, quantity, unit_price, total_price, created_at
		FROM order_items WHERE order_id = ? ORDER BY created_at ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		var unitStr, totalStr string
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.VariantID,
			&item.VendorID, &item.ProductName, &item.VariantName, &item.Quantity,
			&unitStr, &totalStr, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if item.UnitPrice, err = decimal.NewFromString(unitStr); err != nil {
			return nil, fmt.Errorf("failed to parse unit price: %w", err)
		}
		if item.TotalPrice, err = decimal.NewFromString(totalStr); err != nil {
			return nil, fmt.Errorf("failed to parse total price: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// restoreStock puts the reserved quantities back and unwinds the sales counters
func (s *OrderService) restoreStock(tx *sql.Tx, orderID string) error {
	rows, err := tx.Query(
		"SELECT product_id, variant_id, quantity FROM order_items WHERE order_id = ?", orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	type line struct {
		productID string
		variantID *string
		quantity  int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.productID, &l.variantID, &l.quantity); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	now := time.Now()
	for _, l := range lines {
		if l.variantID != nil {
			if _, err := tx.Exec(
				"UPDATE product_variants SET stock = stock + ?, updated_at = ? WHERE id = ?",
				l.quantity, now, *l.variantID,
			); err != nil {
				return fmt.Errorf("failed to restore variant stock: %w", err)
			}
		} else {
			if _, err := tx.Exec(
				"UPDATE products SET stock = stock + ?, updated_at = ? WHERE id = ?",
				l.quantity, now, l.productID,
			); err != nil {
				return fmt.Errorf("failed to restore stock: %w", err)
			}
			if err := s.applyStockStatus(tx, l.productID, l.quantity); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(
			"UPDATE products SET sales_count = MAX(sales_count - ?, 0) WHERE id = ?",
			l.quantity, l.productID,
		); err != nil {
			return fmt.Errorf("failed to unwind sales count: %w", err)
		}
	}

	return nil
}

// applyStockStatus re-derives a product's status after its stock moved by
// delta. A product the vendor archived while it still had stock stays
// archived when a cancellation restores units.
func (s *OrderService) applyStockStatus(tx *sql.Tx, productID string, delta int) error {
	var stock int
	var status models.ProductStatus
	if err := tx.QueryRow(
		"SELECT stock, status FROM products WHERE id = ?", productID,
	).Scan(&stock, &status); err != nil {
		return fmt.Errorf("failed to read product stock: %w", err)
	}

	newStatus := models.StatusForStock(stock-delta, stock, status)
	if newStatus == status {
		return nil
	}

	if _, err := tx.Exec(
		"UPDATE products SET status = ?, updated_at = ? WHERE id = ?",
		newStatus, time.Now(), productID,
	); err != nil {
		return fmt.Errorf("failed to update product status: %w", err)
	}

	return nil
}

func (s *OrderService) recordHistory(tx *sql.Tx, orderID string, from, to models.OrderStatus, changedBy *string, note *string) error {
	_, err := tx.Exec(`
		INSERT INTO order_status_history (id, order_id, from_status, to_status, changed_by, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), orderID, from, to, changedBy, note, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record status history: %w", err)
	}
	return nil
}
