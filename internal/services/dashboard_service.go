package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"kefystore-backend/internal/models"
	"kefystore-backend/internal/utils"
)

// DashboardService aggregates sales figures for vendors and admins
type DashboardService struct {
	db *sql.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *sql.DB) *DashboardService {
	return &DashboardService{db: db}
}

// Products with this many units or fewer left count as low stock
const lowStockThreshold = 5

// VendorStats summarizes a vendeur's sales
type VendorStats struct {
	TotalProducts     int             `json:"totalProducts"`
	PublishedProducts int             `json:"publishedProducts"`
	LowStockProducts  int             `json:"lowStockProducts"`
	TotalOrders       int             `json:"totalOrders"`
	PendingOrders     int             `json:"pendingOrders"`
	RevenueTotal      decimal.Decimal `json:"revenueTotal"`
	RevenueThisMonth  decimal.Decimal `json:"revenueThisMonth"`
	UnitsSold         int             `json:"unitsSold"`
	AverageRating     float64         `json:"averageRating"`
}

// AdminStats summarizes the whole storefront
type AdminStats struct {
	TotalUsers        int             `json:"totalUsers"`
	TotalVendors      int             `json:"totalVendors"`
	PendingVendors    int             `json:"pendingVendors"`
	TotalProducts     int             `json:"totalProducts"`
	TotalOrders       int             `json:"totalOrders"`
	OrdersToday       int             `json:"ordersToday"`
	RevenueTotal      decimal.Decimal `json:"revenueTotal"`
	RevenueThisMonth  decimal.Decimal `json:"revenueThisMonth"`
	PaymentsCompleted int             `json:"paymentsCompleted"`
	PaymentsFailed    int             `json:"paymentsFailed"`

	// Completed payment volume keyed by provider
	VolumeByProvider map[string]decimal.Decimal `json:"volumeByProvider"`
}

// GetVendorStats builds the dashboard for one vendeur. Revenue counts only
// delivered order lines.
func (s *DashboardService) GetVendorStats(vendorID string) (*VendorStats, error) {
	stats := &VendorStats{
		RevenueTotal:     decimal.Zero,
		RevenueThisMonth: decimal.Zero,
	}

	err := s.db.QueryRow(`
		SELECT COUNT(*),
			   COALESCE(SUM(CASE WHEN status = 'published' THEN 1 ELSE 0 END), 0),
			   COALESCE(SUM(CASE WHEN status = 'published' AND stock <= ? THEN 1 ELSE 0 END), 0),
			   COALESCE(AVG(CASE WHEN total_ratings > 0 THEN rating END), 0)
		FROM products WHERE vendor_id = ?
	`, lowStockThreshold, vendorID).Scan(
		&stats.TotalProducts, &stats.PublishedProducts, &stats.LowStockProducts, &stats.AverageRating)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate products: %w", err)
	}

	err = s.db.QueryRow(`
		SELECT COUNT(DISTINCT o.id),
			   COALESCE(SUM(CASE WHEN o.status IN ('pending', 'confirmed', 'processing') THEN 1 ELSE 0 END), 0)
		FROM orders o
		WHERE o.id IN (SELECT DISTINCT order_id FROM order_items WHERE vendor_id = ?)
	`, vendorID).Scan(&stats.TotalOrders, &stats.PendingOrders)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate orders: %w", err)
	}

	monthStart := utils.GetStartOfMonth(utils.NowGMT())

	var revenueTotal, revenueMonth float64
	err = s.db.QueryRow(`
		SELECT COALESCE(SUM(CAST(oi.total_price AS REAL)), 0),
			   COALESCE(SUM(CASE WHEN o.created_at >= ? THEN CAST(oi.total_price AS REAL) ELSE 0 END), 0),
			   COALESCE(SUM(oi.quantity), 0)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE oi.vendor_id = ? AND o.status = ?
	`, monthStart, vendorID, models.OrderStatusDelivered).Scan(&revenueTotal, &revenueMonth, &stats.UnitsSold)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}

	stats.RevenueTotal = decimal.NewFromFloat(revenueTotal).Round(0)
	stats.RevenueThisMonth = decimal.NewFromFloat(revenueMonth).Round(0)

	return stats, nil
}

// GetAdminStats builds the storefront-wide dashboard
func (s *DashboardService) GetAdminStats() (*AdminStats, error) {
	stats := &AdminStats{
		RevenueTotal:     decimal.Zero,
		RevenueThisMonth: decimal.Zero,
	}

	err := s.db.QueryRow(`
		SELECT COUNT(*),
			   COALESCE(SUM(CASE WHEN user_type = 'vendeur' THEN 1 ELSE 0 END), 0)
		FROM users
	`).Scan(&stats.TotalUsers, &stats.TotalVendors)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate users: %w", err)
	}

	err = s.db.QueryRow(
		"SELECT COUNT(*) FROM vendor_profiles WHERE is_approved = FALSE",
	).Scan(&stats.PendingVendors)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending vendors: %w", err)
	}

	err = s.db.QueryRow("SELECT COUNT(*) FROM products").Scan(&stats.TotalProducts)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	now := utils.NowGMT()
	dayStart := utils.GetStartOfDay(now)
	monthStart := utils.GetStartOfMonth(now)

	err = s.db.QueryRow(`
		SELECT COUNT(*),
			   COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0)
		FROM orders
	`, dayStart).Scan(&stats.TotalOrders, &stats.OrdersToday)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate orders: %w", err)
	}

	var revenueTotal, revenueMonth float64
	err = s.db.QueryRow(`
		SELECT COALESCE(SUM(CAST(total_amount AS REAL)), 0),
			   COALESCE(SUM(CASE WHEN created_at >= ? THEN CAST(total_amount AS REAL) ELSE 0 END), 0)
		FROM orders WHERE payment_state = ?
	`, monthStart, models.PaymentStatePaid).Scan(&revenueTotal, &revenueMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}
	stats.RevenueTotal = decimal.NewFromFloat(revenueTotal).Round(0)
	stats.RevenueThisMonth = decimal.NewFromFloat(revenueMonth).Round(0)

	err = s.db.QueryRow(`
		SELECT COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			   COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		FROM payment_transactions
	`, models.TransactionStatusCompleted, models.TransactionStatusFailed).Scan(
		&stats.PaymentsCompleted, &stats.PaymentsFailed)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payments: %w", err)
	}

	stats.VolumeByProvider = make(map[string]decimal.Decimal)
	rows, err := s.db.Query(`
		SELECT provider, COALESCE(SUM(CAST(total AS REAL)), 0)
		FROM payment_transactions WHERE status = ? GROUP BY provider
	`, models.TransactionStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payment volume: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var provider string
		var volume float64
		if err := rows.Scan(&provider, &volume); err != nil {
			return nil, fmt.Errorf("failed to scan payment volume: %w", err)
		}
		stats.VolumeByProvider[provider] = decimal.NewFromFloat(volume).Round(0)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// TopProducts returns the vendor's best sellers over the period
func (s *DashboardService) TopProducts(vendorID string, since time.Time, limit int) ([]models.Product, error) {
	if limit <= 0 || limit > 50 {
		limit = 5
	}

	rows, err := s.db.Query(`
		SELECT p.id, p.name, p.slug, p.price, p.stock, p.status, p.sales_count, p.rating
		FROM products p
		WHERE p.vendor_id = ? AND p.id IN (
			SELECT oi.product_id FROM order_items oi
			JOIN orders o ON o.id = oi.order_id
			WHERE o.created_at >= ? AND o.status != 'cancelled'
		)
		ORDER BY p.sales_count DESC LIMIT ?
	`, vendorID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var product models.Product
		var priceStr string
		err := rows.Scan(&product.ID, &product.Name, &product.Slug, &priceStr,
			&product.Stock, &product.Status, &product.SalesCount, &product.Rating)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		product.Price, err = decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse product price: %w", err)
		}
		product.VendorID = vendorID
		products = append(products, product)
	}

	return products, rows.Err()
}
