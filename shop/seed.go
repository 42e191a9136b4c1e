package shop

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"

	"github.com/zhukata/shopbot/core/logger"
)

// Catalog seed file layout.
type seedProduct struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
}

type seedSubcategory struct {
	Name     string        `yaml:"name"`
	Products []seedProduct `yaml:"products"`
}

type seedCategory struct {
	Name          string            `yaml:"name"`
	Subcategories []seedSubcategory `yaml:"subcategories"`
}

type seedFile struct {
	Categories []seedCategory `yaml:"categories"`
}

// SeedCatalog loads the YAML seed file into the catalog tables. Names are
// the upsert keys, so re-running against the same file changes nothing.
func SeedCatalog(path string) func(ctx context.Context, db *sqlx.DB) error {
	return func(ctx context.Context, db *sqlx.DB) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("seed: read %s: %w", path, err)
		}
		var seed seedFile
		if err := yaml.Unmarshal(data, &seed); err != nil {
			return fmt.Errorf("seed: parse %s: %w", path, err)
		}

		var categories, subcategories, products int
		for _, cat := range seed.Categories {
			var catID int64
			if err := db.GetContext(ctx, &catID,
				`INSERT INTO categories (name) VALUES ($1)
				 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
				 RETURNING id`, cat.Name); err != nil {
				return fmt.Errorf("seed: category %q: %w", cat.Name, err)
			}
			categories++

			for _, sub := range cat.Subcategories {
				var subID int64
				if err := db.GetContext(ctx, &subID,
					`INSERT INTO subcategories (category_id, name) VALUES ($1, $2)
					 ON CONFLICT (category_id, name) DO UPDATE SET name = EXCLUDED.name
					 RETURNING id`, catID, sub.Name); err != nil {
					return fmt.Errorf("seed: subcategory %q: %w", sub.Name, err)
				}
				subcategories++

				for _, p := range sub.Products {
					if _, err := db.ExecContext(ctx,
						`INSERT INTO products (subcategory_id, name, description, price)
						 VALUES ($1, $2, $3, $4)
						 ON CONFLICT (subcategory_id, name)
						 DO UPDATE SET description = EXCLUDED.description, price = EXCLUDED.price`,
						subID, p.Name, p.Description, p.Price); err != nil {
						return fmt.Errorf("seed: product %q: %w", p.Name, err)
					}
					products++
				}
			}
		}

		logger.SEED.Info("catalog seeded",
			slog.String("event", "seed.catalog"),
			slog.String("path", path),
			slog.Int("categories", categories),
			slog.Int("subcategories", subcategories),
			slog.Int("products", products),
		)
		return nil
	}
}
