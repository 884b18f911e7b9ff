package fakers

import (
	"fmt"
	"math/rand"

	"github.com/heartscript/storefront/app/models"
)

var adjectives = []string{"Handwritten", "Engraved", "Vintage", "Pressed-Flower", "Gold-Leaf", "Hand-Painted"}

// CategoryNames are the storefront's starter categories.
var CategoryNames = []string{"Love Letters", "Lockets", "Memory Frames", "Keepsake Boxes"}

// ProductFaker builds an unsaved product for category. rng decides the name
// and price so a seeded run is reproducible.
func ProductFaker(rng *rand.Rand, category *models.Category) *models.Product {
	adj := adjectives[rng.Intn(len(adjectives))]
	return &models.Product{
		Name:        fmt.Sprintf("%s %s #%d", adj, category.Name, rng.Intn(900)+100),
		Price:       (rng.Intn(40) + 5) * 100,
		Description: fmt.Sprintf("A %s piece from our %s collection, made to order.", adj, category.Name),
		CategoryID:  category.ID,
	}
}
