package backend

import (
	"context"
	"fmt"
)

// seedDDL creates the demo e-commerce warehouse. The layout mirrors a
// typical orders/items/products/users star schema, including the
// deliberate quirk that orders keys on order_id while the other
// tables key on id.
var seedDDL = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL,
		age INTEGER,
		gender TEXT,
		city TEXT,
		state TEXT,
		country TEXT,
		traffic_source TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		brand TEXT,
		category TEXT,
		department TEXT,
		retail_price REAL,
		cost REAL,
		sku TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_id INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		shipped_at TEXT,
		delivered_at TEXT,
		num_of_item INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id INTEGER PRIMARY KEY,
		order_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		product_id INTEGER NOT NULL,
		status TEXT NOT NULL,
		sale_price REAL NOT NULL,
		created_at TEXT NOT NULL
	)`,
}

var seedRows = []string{
	`INSERT INTO users (id, first_name, last_name, email, age, gender, city, state, country, traffic_source, created_at) VALUES
		(1, 'Alice', 'Nguyen', 'alice.nguyen@example.com', 31, 'F', 'Portland', 'Oregon', 'United States', 'Search', '2024-01-04 09:12:00'),
		(2, 'Bruno', 'Keller', 'bruno.keller@example.com', 44, 'M', 'Munich', 'Bavaria', 'Germany', 'Organic', '2024-01-11 14:03:00'),
		(3, 'Chen', 'Wei', 'chen.wei@example.com', 27, 'M', 'Shanghai', 'Shanghai', 'China', 'Email', '2024-02-02 08:45:00'),
		(4, 'Dana', 'Silva', 'dana.silva@example.com', 36, 'F', 'Sao Paulo', 'Sao Paulo', 'Brazil', 'Search', '2024-02-19 18:21:00'),
		(5, 'Erin', 'Walsh', 'erin.walsh@example.com', 52, 'F', 'Dublin', 'Leinster', 'Ireland', 'Display', '2024-03-07 11:30:00'),
		(6, 'Farid', 'Hassan', 'farid.hassan@example.com', 29, 'M', 'Cairo', 'Cairo', 'Egypt', 'Organic', '2024-03-22 16:55:00'),
		(7, 'Grace', 'Okafor', 'grace.okafor@example.com', 41, 'F', 'Lagos', 'Lagos', 'Nigeria', 'Search', '2024-04-09 10:08:00'),
		(8, 'Hiro', 'Tanaka', 'hiro.tanaka@example.com', 33, 'M', 'Osaka', 'Osaka', 'Japan', 'Email', '2024-04-28 20:40:00')`,
	`INSERT INTO products (id, name, brand, category, department, retail_price, cost, sku) VALUES
		(1, 'Trail Running Shoes', 'Peakline', 'Footwear', 'Men', 129.99, 54.60, 'PL-TRS-001'),
		(2, 'Waterproof Shell Jacket', 'Northbound', 'Outerwear', 'Women', 189.50, 82.95, 'NB-WSJ-014'),
		(3, 'Merino Base Layer', 'Northbound', 'Tops', 'Men', 74.00, 28.10, 'NB-MBL-031'),
		(4, 'Canvas Tote Bag', 'Harbor & Co', 'Accessories', 'Women', 39.95, 11.20, 'HC-CTB-009'),
		(5, 'Insulated Water Bottle', 'Peakline', 'Accessories', 'Men', 29.99, 8.75, 'PL-IWB-022'),
		(6, 'Yoga Leggings', 'Formfit', 'Active', 'Women', 64.00, 21.45, 'FF-YLG-007'),
		(7, 'Slim Fit Chinos', 'Harbor & Co', 'Bottoms', 'Men', 89.00, 33.70, 'HC-SFC-018'),
		(8, 'Down Puffer Vest', 'Northbound', 'Outerwear', 'Men', 149.00, 61.30, 'NB-DPV-026'),
		(9, 'Linen Summer Dress', 'Formfit', 'Dresses', 'Women', 98.50, 37.90, 'FF-LSD-012'),
		(10, 'Wool Beanie', 'Peakline', 'Accessories', 'Women', 24.99, 6.80, 'PL-WBN-003')`,
	`INSERT INTO orders (order_id, user_id, status, created_at, shipped_at, delivered_at, num_of_item) VALUES
		(1, 1, 'Complete', '2024-05-02 10:15:00', '2024-05-03 08:00:00', '2024-05-06 14:20:00', 2),
		(2, 2, 'Complete', '2024-05-05 09:40:00', '2024-05-06 11:30:00', '2024-05-10 16:05:00', 1),
		(3, 3, 'Shipped', '2024-05-11 17:22:00', '2024-05-12 09:15:00', NULL, 3),
		(4, 1, 'Complete', '2024-05-18 12:05:00', '2024-05-19 10:45:00', '2024-05-22 13:30:00', 1),
		(5, 4, 'Cancelled', '2024-05-23 15:50:00', NULL, NULL, 2),
		(6, 5, 'Complete', '2024-06-01 08:30:00', '2024-06-02 14:00:00', '2024-06-05 11:10:00', 2),
		(7, 6, 'Processing', '2024-06-08 19:12:00', NULL, NULL, 1),
		(8, 7, 'Complete', '2024-06-14 13:45:00', '2024-06-15 09:50:00', '2024-06-19 15:25:00', 4),
		(9, 8, 'Complete', '2024-06-21 11:08:00', '2024-06-22 16:35:00', '2024-06-26 10:55:00', 1),
		(10, 2, 'Returned', '2024-06-28 16:20:00', '2024-06-29 10:10:00', '2024-07-03 12:40:00', 2),
		(11, 3, 'Complete', '2024-07-04 09:55:00', '2024-07-05 13:25:00', '2024-07-09 17:15:00', 2),
		(12, 5, 'Complete', '2024-07-12 14:35:00', '2024-07-13 08:40:00', '2024-07-17 09:05:00', 1),
		(13, 7, 'Shipped', '2024-07-19 10:25:00', '2024-07-20 15:30:00', NULL, 3),
		(14, 4, 'Complete', '2024-07-25 18:02:00', '2024-07-26 11:20:00', '2024-07-30 14:45:00', 1),
		(15, 8, 'Processing', '2024-08-01 12:48:00', NULL, NULL, 2)`,
	`INSERT INTO order_items (id, order_id, user_id, product_id, status, sale_price, created_at) VALUES
		(1, 1, 1, 1, 'Complete', 129.99, '2024-05-02 10:15:00'),
		(2, 1, 1, 5, 'Complete', 29.99, '2024-05-02 10:15:00'),
		(3, 2, 2, 2, 'Complete', 170.55, '2024-05-05 09:40:00'),
		(4, 3, 3, 3, 'Shipped', 74.00, '2024-05-11 17:22:00'),
		(5, 3, 3, 7, 'Shipped', 89.00, '2024-05-11 17:22:00'),
		(6, 3, 3, 10, 'Shipped', 24.99, '2024-05-11 17:22:00'),
		(7, 4, 1, 6, 'Complete', 64.00, '2024-05-18 12:05:00'),
		(8, 5, 4, 9, 'Cancelled', 98.50, '2024-05-23 15:50:00'),
		(9, 5, 4, 4, 'Cancelled', 39.95, '2024-05-23 15:50:00'),
		(10, 6, 5, 8, 'Complete', 149.00, '2024-06-01 08:30:00'),
		(11, 6, 5, 5, 'Complete', 26.99, '2024-06-01 08:30:00'),
		(12, 7, 6, 1, 'Processing', 116.99, '2024-06-08 19:12:00'),
		(13, 8, 7, 2, 'Complete', 189.50, '2024-06-14 13:45:00'),
		(14, 8, 7, 6, 'Complete', 64.00, '2024-06-14 13:45:00'),
		(15, 8, 7, 9, 'Complete', 88.65, '2024-06-14 13:45:00'),
		(16, 8, 7, 10, 'Complete', 24.99, '2024-06-14 13:45:00'),
		(17, 9, 8, 7, 'Complete', 89.00, '2024-06-21 11:08:00'),
		(18, 10, 2, 3, 'Returned', 74.00, '2024-06-28 16:20:00'),
		(19, 10, 2, 8, 'Returned', 134.10, '2024-06-28 16:20:00'),
		(20, 11, 3, 4, 'Complete', 39.95, '2024-07-04 09:55:00'),
		(21, 11, 3, 5, 'Complete', 29.99, '2024-07-04 09:55:00'),
		(22, 12, 5, 6, 'Complete', 57.60, '2024-07-12 14:35:00'),
		(23, 13, 7, 1, 'Shipped', 129.99, '2024-07-19 10:25:00'),
		(24, 13, 7, 3, 'Shipped', 74.00, '2024-07-19 10:25:00'),
		(25, 13, 7, 9, 'Shipped', 98.50, '2024-07-19 10:25:00'),
		(26, 14, 4, 10, 'Complete', 24.99, '2024-07-25 18:02:00'),
		(27, 15, 8, 2, 'Processing', 189.50, '2024-08-01 12:48:00'),
		(28, 15, 8, 4, 'Processing', 39.95, '2024-08-01 12:48:00')`,
}

// Seed creates the demo warehouse tables and loads sample rows. It is
// idempotent: existing tables are kept and reseeded only when empty.
func (s *SQLite) Seed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrBackendClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, ddl := range seedDDL {
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create seed table: %w", err)
		}
	}

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("check seed state: %w", err)
	}
	if count > 0 {
		return tx.Commit()
	}

	for _, stmt := range seedRows {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("insert seed rows: %w", err)
		}
	}
	return tx.Commit()
}
