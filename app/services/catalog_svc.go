package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/heartscript/storefront/app/models"
	"github.com/heartscript/storefront/app/repositories"
	"github.com/heartscript/storefront/app/services/mirror"
	"github.com/heartscript/storefront/app/utils/storage"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// RelatedProductsLimit caps the "you may also like" list on a product page.
const RelatedProductsLimit = 3

type NewProductInput struct {
	Name        string
	Price       string
	Description string
	CategoryID  string
	Images      [models.ProductImageSlots]*Upload
}

type CatalogService struct {
	categories repositories.CategoryRepositoryImpl
	products   repositories.ProductRepositoryImpl
	disk       storage.Disk
	mirror     *mirror.Syncer
	now        func() time.Time
}

func NewCatalogService(
	categories repositories.CategoryRepositoryImpl,
	products repositories.ProductRepositoryImpl,
	disk storage.Disk,
	syncer *mirror.Syncer,
) *CatalogService {
	return &CatalogService{
		categories: categories,
		products:   products,
		disk:       disk,
		mirror:     syncer,
		now:        time.Now,
	}
}

func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.categories.GetAll(ctx)
}

// AddCategory fails with ErrValidation for a blank name and ErrConflict when
// the name is already taken.
func (s *CatalogService) AddCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("category name is required")
	}

	existing, err := s.categories.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up category %q: %w", name, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("category %q: %w", name, ErrConflict)
	}

	category := &models.Category{Name: name}
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("category %q: %w", name, ErrConflict)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// DeleteCategory removes the category and all of its products and returns
// how many products went with it. Deleting the same id twice yields
// ErrNotFound.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) (int, error) {
	removed, err := s.categories.DeleteWithProducts(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, notFound("category", id)
		}
		return 0, fmt.Errorf("failed to delete category %d: %w", id, err)
	}

	log.Ctx(ctx).Info().Uint("category_id", id).Int("products", len(removed)).Msg("CatalogService.DeleteCategory: category removed")
	for _, p := range removed {
		images := p.Images()
		discardUploads(ctx, s.disk, images[:]...)
		s.mirror.ProductRemoved(ctx, p.Name)
	}
	return len(removed), nil
}

// Products lists every product, or only those of categoryID when it is
// non-zero.
func (s *CatalogService) Products(ctx context.Context, categoryID uint) ([]models.Product, error) {
	if categoryID == 0 {
		return s.products.GetAll(ctx)
	}
	return s.products.GetByCategoryID(ctx, categoryID)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %d: %w", id, err)
	}
	if product == nil {
		return nil, notFound("product", id)
	}
	return product, nil
}

// ProductWithRelated returns the product and up to RelatedProductsLimit other
// products from the same category.
func (s *CatalogService) ProductWithRelated(ctx context.Context, id uint) (*models.Product, []models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	related, err := s.products.GetRelated(ctx, product, RelatedProductsLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load related products of %d: %w", id, err)
	}
	return product, related, nil
}

// AddProduct validates the numeric fields and every image before anything is
// written. Images are stored as <timestamp>_<slot>_<name>; an empty first
// slot falls back to the placeholder image.
func (s *CatalogService) AddProduct(ctx context.Context, in NewProductInput) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("product name is required")
	}
	price, err := strconv.Atoi(strings.TrimSpace(in.Price))
	if err != nil {
		return nil, invalid("price %q is not a whole number", in.Price)
	}
	if price < 0 {
		return nil, invalid("price must not be negative")
	}
	categoryID, err := strconv.ParseUint(strings.TrimSpace(in.CategoryID), 10, 64)
	if err != nil {
		return nil, invalid("category %q is not a valid id", in.CategoryID)
	}

	category, err := s.categories.GetByID(ctx, uint(categoryID))
	if err != nil {
		return nil, fmt.Errorf("failed to load category %d: %w", categoryID, err)
	}
	if category == nil {
		return nil, notFound("category", categoryID)
	}

	var names [models.ProductImageSlots]string
	for i, img := range in.Images {
		if img.empty() {
			continue
		}
		if names[i], err = checkImage(img); err != nil {
			return nil, err
		}
	}

	stamp := s.now().Format("20060102150405")
	var refs [models.ProductImageSlots]string
	for i, img := range in.Images {
		if names[i] == "" {
			continue
		}
		refs[i], err = storeUpload(ctx, s.disk, fmt.Sprintf("%s_%d_%s", stamp, i+1, names[i]), img)
		if err != nil {
			discardUploads(ctx, s.disk, refs[:]...)
			return nil, err
		}
	}

	product := &models.Product{
		Name:        name,
		Price:       price,
		ImageURL:    refs[0],
		ImageURL2:   refs[1],
		ImageURL3:   refs[2],
		Description: in.Description,
		CategoryID:  category.ID,
	}
	if err := s.products.Create(ctx, product); err != nil {
		discardUploads(ctx, s.disk, refs[:]...)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	log.Ctx(ctx).Info().Uint("product_id", product.ID).Msg("CatalogService.AddProduct: product created")
	s.mirror.ProductAdded(ctx, product)
	return product, nil
}

// DeleteProduct removes the product and its stored images; the mirror copy
// is removed by name.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.products.Delete(ctx, product.ID); err != nil {
		return nil, fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	images := product.Images()
	discardUploads(ctx, s.disk, images[:]...)
	s.mirror.ProductRemoved(ctx, product.Name)
	return product, nil
}
