package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PlaceholderImage = "https://via.placeholder.com/300"

	// ProductImageSlots is the number of images a product can carry.
	ProductImageSlots = 3
)

type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;index" json:"name"`
	Price       int       `gorm:"not null" json:"price"`
	ImageURL    string    `gorm:"size:500" json:"image_url"`
	ImageURL2   string    `gorm:"size:500" json:"image_url2"`
	ImageURL3   string    `gorm:"size:500" json:"image_url3"`
	Description string    `gorm:"type:text" json:"description"`
	CategoryID  uint      `gorm:"not null;index" json:"category_id"`
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ImageURL == "" {
		p.ImageURL = PlaceholderImage
	}
	return
}

func (p *Product) Images() [ProductImageSlots]string {
	return [ProductImageSlots]string{p.ImageURL, p.ImageURL2, p.ImageURL3}
}
