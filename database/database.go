package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

// Initialize creates and returns a database connection
func Initialize(databaseURL string) (*sql.DB, error) {
	// Add SQLite-specific parameters for better concurrent access
	if databaseURL == "kefystore.db" {
		databaseURL = "kefystore.db?_busy_timeout=30000&_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=1"
	}

	db, err := sql.Open("sqlite3", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set SQLite pragmas for better concurrent access
	pragmas := []string{
		"PRAGMA busy_timeout = 30000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA temp_store = memory",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			log.Printf("Warning: failed to set pragma %s: %v", pragma, err)
		}
	}

	log.Println("Database connection established successfully")
	return db, nil
}

// Migrate runs database migrations
func Migrate(db *sql.DB) error {
	migrations := []string{
		createUsersTable,
		createVendorProfilesTable,
		createProductsTable,
		createProductVariantsTable,
		createProductReviewsTable,
		createCartsTable,
		createCartItemsTable,
		createOrdersTable,
		createOrderItemsTable,
		createOrderStatusHistoryTable,
		createPaymentTransactionsTable,
		createDeliveryZonesTable,
		createNotificationsTable,
		createEmailQueueTable,
		createSMSQueueTable,
		createOTPCodesTable,
		createPopupsTable,
		createPopupAcksTable,
		createWishlistItemsTable,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration %d: %w", i+1, err)
		}
	}

	if err := createIndexes(db); err != nil {
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// createIndexes creates indexes used by the hot query paths
func createIndexes(db *sql.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_vendor_id ON products(vendor_id)",
		"CREATE INDEX IF NOT EXISTS idx_products_status_stock ON products(status, stock)",
		"CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)",
		"CREATE INDEX IF NOT EXISTS idx_cart_items_cart_id ON cart_items(cart_id)",
		"CREATE INDEX IF NOT EXISTS idx_orders_buyer_id ON orders(buyer_id)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_vendor_id ON order_items(vendor_id)",
		"CREATE INDEX IF NOT EXISTS idx_payment_transactions_reference ON payment_transactions(reference)",
		"CREATE INDEX IF NOT EXISTS idx_payment_transactions_order_id ON payment_transactions(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id, is_read)",
		"CREATE INDEX IF NOT EXISTS idx_email_queue_status ON email_queue(status)",
		"CREATE INDEX IF NOT EXISTS idx_sms_queue_status ON sms_queue(status)",
		"CREATE INDEX IF NOT EXISTS idx_otp_codes_user_id ON otp_codes(user_id)",
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT UNIQUE NOT NULL,
	phone TEXT UNIQUE NOT NULL,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	user_type TEXT NOT NULL DEFAULT 'client',
	status TEXT NOT NULL DEFAULT 'active',
	avatar TEXT,
	city TEXT,
	country TEXT,
	address TEXT,
	language TEXT NOT NULL DEFAULT 'fr',
	two_factor_enabled BOOLEAN NOT NULL DEFAULT FALSE,
	two_factor_channel TEXT NOT NULL DEFAULT 'email',
	is_email_verified BOOLEAN NOT NULL DEFAULT FALSE,
	is_phone_verified BOOLEAN NOT NULL DEFAULT FALSE,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
)`

const createVendorProfilesTable = `
CREATE TABLE IF NOT EXISTS vendor_profiles (
	id TEXT PRIMARY KEY,
	user_id TEXT UNIQUE NOT NULL,
	business_name TEXT NOT NULL,
	business_description TEXT,
	is_approved BOOLEAN NOT NULL DEFAULT FALSE,
	approved_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
)`

const createProductsTable = `
CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	vendor_id TEXT NOT NULL,
	name TEXT NOT NULL,
	slug TEXT UNIQUE NOT NULL,
	sku TEXT UNIQUE NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT 'other',
	price TEXT NOT NULL DEFAULT '0',
	stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
	status TEXT NOT NULL DEFAULT 'draft',
	rating REAL NOT NULL DEFAULT 0,
	total_ratings INTEGER NOT NULL DEFAULT 0,
	sales_count INTEGER NOT NULL DEFAULT 0,
	images TEXT NOT NULL DEFAULT '[]',
	tags TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (vendor_id) REFERENCES users (id) ON DELETE CASCADE
)`

const createProductVariantsTable = `
CREATE TABLE IF NOT EXISTS product_variants (
	id TEXT PRIMARY KEY,
	product_id TEXT NOT NULL,
	name TEXT NOT NULL,
	price TEXT NOT NULL DEFAULT '0',
	stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (product_id) REFERENCES products (id) ON DELETE CASCADE
)`

const createProductReviewsTable = `
CREATE TABLE IF NOT EXISTS product_reviews (
	id TEXT PRIMARY KEY,
	product_id TEXT NOT NULL,
	order_id TEXT NOT NULL,
	reviewer_id TEXT NOT NULL,
	rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
	comment TEXT,
	created_at DATETIME NOT NULL,
	UNIQUE (product_id, reviewer_id, order_id),
	FOREIGN KEY (product_id) REFERENCES products (id) ON DELETE CASCADE,
	FOREIGN KEY (reviewer_id) REFERENCES users (id) ON DELETE CASCADE
)`

const createCartsTable = `
CREATE TABLE IF NOT EXISTS carts (
	id TEXT PRIMARY KEY,
	user_id TEXT UNIQUE NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
)`

const createCartItemsTable = `
CREATE TABLE IF NOT EXISTS cart_items (
	id TEXT PRIMARY KEY,
	cart_id TEXT NOT NULL,
	product_id TEXT NOT NULL,
	variant_id TEXT,
	quantity INTEGER NOT NULL CHECK (quantity > 0),
	unit_price TEXT NOT NULL DEFAULT '0',
	added_at DATETIME NOT NULL,
	UNIQUE (cart_id, product_id, variant_id),
	FOREIGN KEY (cart_id) REFERENCES carts (id) ON DELETE CASCADE,
	FOREIGN KEY (product_id) REFERENCES products (id) ON DELETE CASCADE,
	FOREIGN KEY (variant_id) REFERENCES product_variants (id) ON DELETE CASCADE
)`

const createOrdersTable = `
CREATE TABLE IF NOT EXISTS orders (
	id TEXT PRIMARY KEY,
	order_number TEXT UNIQUE NOT NULL,
	buyer_id TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	payment_state TEXT NOT NULL DEFAULT 'unpaid',
	shipping_name TEXT NOT NULL,
	shipping_phone TEXT NOT NULL,
	shipping_address TEXT NOT NULL,
	shipping_city TEXT NOT NULL,
	delivery_zone TEXT,
	subtotal TEXT NOT NULL DEFAULT '0',
	shipping_cost TEXT NOT NULL DEFAULT '0',
	tax_amount TEXT NOT NULL DEFAULT '0',
	total_amount TEXT NOT NULL DEFAULT '0',
	currency TEXT NOT NULL DEFAULT 'XOF',
	notes TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (buyer_id) REFERENCES users (id) ON DELETE CASCADE
)`

const createOrderItemsTable = `
CREATE TABLE IF NOT EXISTS order_items (
	id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL,
	product_id TEXT NOT NULL,
	variant_id TEXT,
	vendor_id TEXT NOT NULL,
	product_name TEXT NOT NULL,
	variant_name TEXT,
	quantity INTEGER NOT NULL CHECK (quantity > 0),
	unit_price TEXT NOT NULL DEFAULT '0',
	total_price TEXT NOT NULL DEFAULT '0',
	created_at DATETIME NOT NULL,
	FOREIGN KEY (order_id) REFERENCES orders (id) ON DELETE CASCADE
)`

const createOrderStatusHistoryTable = `
CREATE TABLE IF NOT EXISTS order_status_history (
	id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL,
	from_status TEXT NOT NULL DEFAULT '',
	to_status TEXT NOT NULL,
	changed_by TEXT,
	note TEXT,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (order_id) REFERENCES orders (id) ON DELETE CASCADE
)`

const createPaymentTransactionsTable = `
CREATE TABLE IF NOT EXISTS payment_transactions (
	id TEXT PRIMARY KEY,
	reference TEXT UNIQUE NOT NULL,
	order_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	provider TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	amount TEXT NOT NULL DEFAULT '0',
	fees TEXT NOT NULL DEFAULT '0',
	total TEXT NOT NULL DEFAULT '0',
	currency TEXT NOT NULL DEFAULT 'XOF',
	phone_number TEXT NOT NULL,
	payload TEXT,
	completed_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (order_id) REFERENCES orders (id) ON DELETE CASCADE,
	FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
)`

const createDeliveryZonesTable = `
CREATE TABLE IF NOT EXISTS delivery_zones (
	id TEXT PRIMARY KEY,
	city TEXT UNIQUE NOT NULL COLLATE NOCASE,
	zone TEXT NOT NULL,
	fee TEXT NOT NULL DEFAULT '0',
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
)`

const createNotificationsTable = `
CREATE TABLE IF NOT EXISTS notifications (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	type TEXT NOT NULL,
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	is_read BOOLEAN NOT NULL DEFAULT FALSE,
	action_url TEXT,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
)`

const createEmailQueueTable = `
CREATE TABLE IF NOT EXISTS email_queue (
	id TEXT PRIMARY KEY,
	recipient TEXT NOT NULL,
	subject TEXT NOT NULL,
	body TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	attempts INTEGER NOT NULL DEFAULT 0,
	last_error TEXT,
	created_at DATETIME NOT NULL,
	sent_at DATETIME
)`

const createSMSQueueTable = `
CREATE TABLE IF NOT EXISTS sms_queue (
	id TEXT PRIMARY KEY,
	recipient TEXT NOT NULL,
	message TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	attempts INTEGER NOT NULL DEFAULT 0,
	last_error TEXT,
	created_at DATETIME NOT NULL,
	sent_at DATETIME
)`

const createOTPCodesTable = `
CREATE TABLE IF NOT EXISTS otp_codes (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	code TEXT NOT NULL,
	channel TEXT NOT NULL DEFAULT 'email',
	purpose TEXT NOT NULL DEFAULT 'login',
	expires_at DATETIME NOT NULL,
	used BOOLEAN NOT NULL DEFAULT FALSE,
	attempts INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
)`

const createPopupsTable = `
CREATE TABLE IF NOT EXISTS popups (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	kind TEXT NOT NULL DEFAULT 'info',
	image_url TEXT,
	link_url TEXT,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	starts_at DATETIME,
	ends_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
)`

const createPopupAcksTable = `
CREATE TABLE IF NOT EXISTS popup_acks (
	id TEXT PRIMARY KEY,
	popup_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	action TEXT NOT NULL DEFAULT 'dismissed',
	created_at DATETIME NOT NULL,
	UNIQUE (popup_id, user_id),
	FOREIGN KEY (popup_id) REFERENCES popups (id) ON DELETE CASCADE,
	FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
)`

const createWishlistItemsTable = `
CREATE TABLE IF NOT EXISTS wishlist_items (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	product_id TEXT NOT NULL,
	added_at DATETIME NOT NULL,
	UNIQUE (user_id, product_id),
	FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
	FOREIGN KEY (product_id) REFERENCES products (id) ON DELETE CASCADE
)`
