package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"product-intel/models"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrNotFound is returned when a product id has no row.
var ErrNotFound = errors.New("not found")

// Store persists products, reviews and price history in PostgreSQL or
// SQLite. Timestamps are stored as unix nanoseconds.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the database, waits for it to accept connections and
// creates the schema.
func Open(driver, dsn string) (*Store, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", driver, err)
	}

	attempts := 1
	if driver == DriverPostgres {
		attempts = 10
	} else {
		// an in-memory database lives and dies with its connection
		db.SetMaxOpenConns(1)
	}
	for i := 0; i < attempts; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		if i < attempts-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping failed after retries: %w", driver, err)
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: migrate: %w", driver, err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	pk := "BIGSERIAL PRIMARY KEY"
	num := "DOUBLE PRECISION"
	if s.driver == DriverSQLite {
		pk = "INTEGER PRIMARY KEY AUTOINCREMENT"
		num = "REAL"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id          ` + pk + `,
			name        TEXT NOT NULL,
			brand       TEXT NOT NULL DEFAULT '',
			category    TEXT NOT NULL DEFAULT '',
			price       ` + num + `,
			description TEXT NOT NULL DEFAULT '',
			url         TEXT NOT NULL DEFAULT '',
			image_url   TEXT NOT NULL DEFAULT '',
			source      TEXT NOT NULL DEFAULT '',
			source_id   TEXT NOT NULL UNIQUE,
			updated_at  BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id              ` + pk + `,
			product_id      BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			reviewer_name   TEXT NOT NULL DEFAULT '',
			rating          INTEGER,
			review_text     TEXT NOT NULL,
			review_date     TEXT NOT NULL DEFAULT '',
			sentiment_score ` + num + ` NOT NULL,
			sentiment_label TEXT NOT NULL,
			scraped_at      BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS price_history (
			id          ` + pk + `,
			product_id  BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			price       ` + num + ` NOT NULL,
			recorded_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_product ON reviews(product_id, scraped_at)`,
		`CREATE INDEX IF NOT EXISTS idx_price_history_product ON price_history(product_id, recorded_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SaveProduct inserts p or updates the row with the same source id and
// returns the row id.
func (s *Store) SaveProduct(ctx context.Context, p models.ProductRecord) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO products (name, brand, category, price, description, url, image_url, source, source_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_id) DO UPDATE SET
			name = excluded.name, brand = excluded.brand, category = excluded.category,
			price = excluded.price, description = excluded.description, url = excluded.url,
			image_url = excluded.image_url, source = excluded.source, updated_at = excluded.updated_at
		RETURNING id`),
		p.Name, p.Brand, p.Category, nullFloat(p.Price), p.Description, p.URL, p.ImageURL,
		p.Source, p.SourceID, time.Now().UnixNano(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: save product %q: %w", s.driver, p.SourceID, err)
	}
	return id, nil
}

// SaveReviews stores scored reviews for a product in one transaction and
// returns how many were new. A review already stored for the product with the
// same reviewer and text is skipped.
func (s *Store) SaveReviews(ctx context.Context, productID int64, reviews []models.ScoredReview) (int, error) {
	if len(reviews) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin: %w", s.driver, err)
	}
	defer func() { _ = tx.Rollback() }()

	exists, err := tx.PrepareContext(ctx, s.rebind(`
		SELECT COUNT(*) FROM reviews
		WHERE product_id = ? AND reviewer_name = ? AND review_text = ?`))
	if err != nil {
		return 0, fmt.Errorf("%s: prepare review lookup: %w", s.driver, err)
	}
	defer exists.Close()

	insert, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO reviews (product_id, reviewer_name, rating, review_text, review_date,
			sentiment_score, sentiment_label, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return 0, fmt.Errorf("%s: prepare review insert: %w", s.driver, err)
	}
	defer insert.Close()

	now := time.Now().UnixNano()
	added := 0
	for i, r := range reviews {
		var n int
		if err := exists.QueryRowContext(ctx, productID, r.ReviewerName, r.ReviewText).Scan(&n); err != nil {
			return 0, fmt.Errorf("%s: lookup review: %w", s.driver, err)
		}
		if n > 0 {
			continue
		}

		var rating sql.NullInt64
		if r.Rating != nil {
			rating = sql.NullInt64{Int64: int64(*r.Rating), Valid: true}
		}
		// later reviews on the page sort as older
		if _, err := insert.ExecContext(ctx, productID, r.ReviewerName, rating, r.ReviewText, r.ReviewDate,
			r.Sentiment.Score, r.Sentiment.Label, now-int64(i)); err != nil {
			return 0, fmt.Errorf("%s: insert review: %w", s.driver, err)
		}
		added++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit reviews: %w", s.driver, err)
	}
	return added, nil
}

// RecordPrice appends an observation to the product's price history.
func (s *Store) RecordPrice(ctx context.Context, productID int64, price float64, at time.Time) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO price_history (product_id, price, recorded_at) VALUES (?, ?, ?)`),
		productID, price, at.UnixNano())
	if err != nil {
		return fmt.Errorf("%s: record price: %w", s.driver, err)
	}
	return nil
}

// PriceHistory returns the product's observations, oldest first.
func (s *Store) PriceHistory(ctx context.Context, productID int64) ([]models.PricePoint, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT price, recorded_at FROM price_history
		WHERE product_id = ?
		ORDER BY recorded_at, id`), productID)
	if err != nil {
		return nil, fmt.Errorf("%s: price history: %w", s.driver, err)
	}
	defer rows.Close()

	var points []models.PricePoint
	for rows.Next() {
		var (
			p  models.PricePoint
			ns int64
		)
		if err := rows.Scan(&p.Price, &ns); err != nil {
			return nil, fmt.Errorf("%s: scan price: %w", s.driver, err)
		}
		p.RecordedAt = time.Unix(0, ns).UTC()
		points = append(points, p)
	}
	return points, rows.Err()
}

// Categories lists the distinct product categories.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT category FROM products ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("%s: categories: %w", s.driver, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("%s: scan category: %w", s.driver, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CategoryItems returns the products of a category that have a description,
// the input for description clustering.
func (s *Store) CategoryItems(ctx context.Context, category string) ([]models.ClusterItem, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, name, description, price FROM products
		WHERE category = ? AND description <> ''
		ORDER BY id`), category)
	if err != nil {
		return nil, fmt.Errorf("%s: category items: %w", s.driver, err)
	}
	defer rows.Close()

	var items []models.ClusterItem
	for rows.Next() {
		var (
			it    models.ClusterItem
			price sql.NullFloat64
		)
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &price); err != nil {
			return nil, fmt.Errorf("%s: scan item: %w", s.driver, err)
		}
		it.Price = floatPtr(price)
		items = append(items, it)
	}
	return items, rows.Err()
}

// ProductStats aggregates the stored reviews of a product. Averages are nil
// when no review carries a value.
func (s *Store) ProductStats(ctx context.Context, productID int64) (models.AggregateStats, error) {
	var (
		agg               models.AggregateStats
		price, avgR, avgS sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT p.name, p.category, p.price, COUNT(r.id), AVG(r.rating), AVG(r.sentiment_score)
		FROM products p
		LEFT JOIN reviews r ON p.id = r.product_id
		WHERE p.id = ?
		GROUP BY p.id, p.name, p.category, p.price`), productID,
	).Scan(&agg.ProductName, &agg.Category, &price, &agg.ReviewCount, &avgR, &avgS)
	if errors.Is(err, sql.ErrNoRows) {
		return agg, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	if err != nil {
		return agg, fmt.Errorf("%s: product stats: %w", s.driver, err)
	}
	agg.Price = floatPtr(price)
	agg.AvgRating = floatPtr(avgR)
	agg.AvgSentiment = floatPtr(avgS)
	return agg, nil
}

// RecentReviewLabels returns the sentiment labels of the latest limit
// reviews, newest first.
func (s *Store) RecentReviewLabels(ctx context.Context, productID int64, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT sentiment_label FROM reviews
		WHERE product_id = ?
		ORDER BY scraped_at DESC, id
		LIMIT ?`), productID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: recent reviews: %w", s.driver, err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, fmt.Errorf("%s: scan label: %w", s.driver, err)
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
