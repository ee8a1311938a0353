package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"shopbot/entity"
	"shopbot/internal/config"
)

// MySQLSource reads the catalog from an OpenCart-style shop database:
// enabled products grouped by category description name.
type MySQLSource struct {
	db     *sql.DB
	prefix string
}

func NewMySQLSource(conf *config.Config) (*MySQLSource, error) {
	if !conf.Catalog.MySQLEnabled {
		return nil, fmt.Errorf("mysql catalog source is disabled in configuration")
	}
	connectionURI := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		conf.Catalog.UserName, conf.Catalog.Password, conf.Catalog.HostName, conf.Catalog.Port, conf.Catalog.Database)
	db, err := sql.Open("mysql", connectionURI)
	if err != nil {
		return nil, fmt.Errorf("sql connect: %w", err)
	}

	// try to ping three times with a 30-second interval; wait for a database to start
	for i := 0; i < 3; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		if i == 2 {
			return nil, fmt.Errorf("ping database: %w", err)
		}
		time.Sleep(30 * time.Second)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	return &MySQLSource{
		db:     db,
		prefix: conf.Catalog.Prefix,
	}, nil
}

func (s *MySQLSource) Close() {
	_ = s.db.Close()
}

func (s *MySQLSource) Categories(ctx context.Context) (entity.Catalog, error) {
	query := fmt.Sprintf(`
		SELECT cd.name, pd.name
		FROM %[1]sproduct_to_category p2c
		JOIN %[1]scategory_description cd ON cd.category_id = p2c.category_id
		JOIN %[1]sproduct_description pd ON pd.product_id = p2c.product_id
		JOIN %[1]sproduct p ON p.product_id = p2c.product_id
		WHERE p.status = 1
		ORDER BY cd.name, pd.name`, s.prefix)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	catalog := entity.Catalog{}
	for rows.Next() {
		var category, product string
		if err := rows.Scan(&category, &product); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		catalog[category] = append(catalog[category], entity.Product{Name: product})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read catalog rows: %w", err)
	}
	return catalog, nil
}
