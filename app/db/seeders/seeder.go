package seeders

import (
	"fmt"
	"math/rand"

	"github.com/heartscript/storefront/app/db/fakers"
	"github.com/heartscript/storefront/app/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const productsPerCategory = 4

// DBSeed creates the starter categories and fills any empty one with
// products. Running it twice adds nothing.
func DBSeed(db *gorm.DB, seed int64) error {
	rng := rand.New(rand.NewSource(seed))

	return db.Transaction(func(tx *gorm.DB) error {
		for _, name := range fakers.CategoryNames {
			category := models.Category{Name: name}
			if err := tx.Where(models.Category{Name: name}).FirstOrCreate(&category).Error; err != nil {
				return fmt.Errorf("seed category %q: %w", name, err)
			}

			var count int64
			if err := tx.Model(&models.Product{}).Where("category_id = ?", category.ID).Count(&count).Error; err != nil {
				return fmt.Errorf("count products of %q: %w", name, err)
			}
			if count > 0 {
				continue
			}

			for i := 0; i < productsPerCategory; i++ {
				if err := tx.Create(fakers.ProductFaker(rng, &category)).Error; err != nil {
					return fmt.Errorf("seed product for %q: %w", name, err)
				}
			}
			log.Info().Str("category", name).Int("products", productsPerCategory).Msg("Seeded category")
		}
		return nil
	})
}
