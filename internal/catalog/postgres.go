package catalog

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/SavithriNandadasa/message-construction-patterns/pkg/models"
)

// LoadFromPostgres reads the phone inventory once at startup. The returned
// catalog is read-only; the connection can be closed after loading.
func LoadFromPostgres(dsn string, logger *logrus.Logger) (*Catalog, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory database: %w", err)
	}
	defer db.Close()

	// Wait for database to be ready
	for i := 0; i < 30; i++ {
		if err = db.Ping(); err == nil {
			logger.Info("Inventory database connection established")
			break
		}
		logger.Info("Waiting for inventory database...")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("inventory database not reachable: %w", err)
	}

	if err := createPhonesTable(db); err != nil {
		return nil, fmt.Errorf("failed to prepare phones table: %w", err)
	}

	rows, err := db.Query(`SELECT name, price FROM phones ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query phones: %w", err)
	}
	defer rows.Close()

	var entries []models.InventoryEntry
	for rows.Next() {
		var entry models.InventoryEntry
		if err := rows.Scan(&entry.Name, &entry.Price); err != nil {
			return nil, fmt.Errorf("failed to scan phone row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logger.WithField("count", len(entries)).Info("Inventory catalog loaded from database")
	return New(entries), nil
}

func createPhonesTable(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS phones (
			name VARCHAR(255) PRIMARY KEY,
			price INTEGER NOT NULL
		)`,
		`INSERT INTO phones (name, price) VALUES
			('Apple', 190000),
			('Samsung', 150000),
			('Nokia', 80000),
			('HTC', 40000),
			('Huawei', 70000)
		ON CONFLICT (name) DO NOTHING`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
