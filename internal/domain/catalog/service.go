// internal/domain/catalog/service.go
package catalog

import (
	"errors"
	"fmt"

	"github.com/pawverse/petstore-backend/internal/config"
	"github.com/pawverse/petstore-backend/internal/pkg/slug"
	"gorm.io/gorm"
)

var (
	ErrPetNotFound      = errors.New("pet not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrStoreNotFound    = errors.New("store not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// Service handles catalog reads
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// PetListRequest represents pet list query parameters
type PetListRequest struct {
	Page       int  `form:"page,default=1"`
	Limit      int  `form:"limit,default=12"`
	CategoryID uint `form:"category_id"`
	StoreID    uint `form:"store_id"`
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page         int    `form:"page,default=1"`
	Limit        int    `form:"limit,default=12"`
	CategorySlug string `form:"category"`
	StoreID      uint   `form:"store_id"`
}

// PetResponse represents a page of pets
type PetResponse struct {
	Pets       []Pet      `json:"pets"`
	Pagination Pagination `json:"pagination"`
}

// ProductResponse represents a page of products
type ProductResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewPagination computes pagination info for a page of results
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// ListPets retrieves pets with filtering and pagination
func (s *Service) ListPets(req *PetListRequest) (*PetResponse, error) {
	normalizePage(&req.Page, &req.Limit)

	var pets []Pet
	var total int64

	query := s.db.Model(&Pet{}).Preload("Category").Preload("Store")
	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}
	if req.StoreID > 0 {
		query = query.Where("store_id = ?", req.StoreID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count pets: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(req.Limit).Find(&pets).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve pets: %w", err)
	}

	return &PetResponse{
		Pets:       pets,
		Pagination: NewPagination(req.Page, req.Limit, total),
	}, nil
}

// GetPet retrieves a single pet by ID
func (s *Service) GetPet(id uint) (*Pet, error) {
	var pet Pet
	result := s.db.Preload("Category").Preload("Store").Where("id = ?", id).First(&pet)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPetNotFound
		}
		return nil, fmt.Errorf("failed to retrieve pet: %w", result.Error)
	}
	return &pet, nil
}

const (
	relatedProductsLimit = 12
	accessoriesLimit     = 6
)

// PetExtras are the products shown next to a pet: everything sold for its
// pet category, and the accessories among them
type PetExtras struct {
	RelatedProducts []Product `json:"related_products"`
	Accessories     []Product `json:"accessories"`
}

// GetPetExtras loads the products that belong to the pet's category.
// Accessories are products in categories whose name starts with
// "Accessories".
func (s *Service) GetPetExtras(pet *Pet) (*PetExtras, error) {
	extras := &PetExtras{RelatedProducts: []Product{}, Accessories: []Product{}}

	categories := s.db.Model(&ProductCategory{}).Select("id").
		Where("pet_category_id = ?", pet.CategoryID)
	err := s.db.Where("category_id IN (?)", categories).
		Order("created_at DESC, id DESC").
		Limit(relatedProductsLimit).
		Find(&extras.RelatedProducts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve related products: %w", err)
	}

	accessoryCategories := s.db.Model(&ProductCategory{}).Select("id").
		Where("pet_category_id = ? AND LOWER(name) LIKE ?", pet.CategoryID, "accessories%")
	err = s.db.Where("category_id IN (?)", accessoryCategories).
		Order("created_at DESC, id DESC").
		Limit(accessoriesLimit).
		Find(&extras.Accessories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve accessories: %w", err)
	}

	return extras, nil
}

// ListProducts retrieves products, optionally limited to one category slug
func (s *Service) ListProducts(req *ProductListRequest) (*ProductResponse, error) {
	normalizePage(&req.Page, &req.Limit)

	var products []Product
	var total int64

	query := s.db.Model(&Product{}).Preload("Category").Preload("Category.PetCategory")
	if req.CategorySlug != "" {
		var category ProductCategory
		if err := s.db.Where("slug = ?", req.CategorySlug).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to retrieve category: %w", err)
		}
		query = query.Where("category_id = ?", category.ID)
	}
	if req.StoreID > 0 {
		query = query.Where("store_id = ?", req.StoreID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	return &ProductResponse{
		Products:   products,
		Pagination: NewPagination(req.Page, req.Limit, total),
	}, nil
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var product Product
	result := s.db.Preload("Category").Preload("Store").Where("id = ?", id).First(&product)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}
	return &product, nil
}

// ListProductCategories returns all product categories with their pet category
func (s *Service) ListProductCategories() ([]ProductCategory, error) {
	var categories []ProductCategory
	if err := s.db.Preload("PetCategory").Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// CreateProductCategory creates a category, deriving a unique slug from
// the category and pet category names
func (s *Service) CreateProductCategory(name string, petCategoryID uint) (*ProductCategory, error) {
	var petCategory PetCategory
	if err := s.db.Where("id = ?", petCategoryID).First(&petCategory).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to retrieve pet category: %w", err)
	}

	slugValue, err := s.uniqueCategorySlug(name + " " + petCategory.Name)
	if err != nil {
		return nil, err
	}

	category := ProductCategory{
		Name:          name,
		PetCategoryID: petCategoryID,
		Slug:          slugValue,
	}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	category.PetCategory = &petCategory

	return &category, nil
}

// ListStores returns all stores
func (s *Service) ListStores() ([]Store, error) {
	var stores []Store
	if err := s.db.Order("name ASC").Find(&stores).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve stores: %w", err)
	}
	return stores, nil
}

// GetStore retrieves a store with its pets and products
func (s *Service) GetStore(id uint) (*Store, error) {
	var store Store
	result := s.db.Preload("Pets").Preload("Products").Where("id = ?", id).First(&store)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to retrieve store: %w", result.Error)
	}
	return &store, nil
}

func (s *Service) uniqueCategorySlug(text string) (string, error) {
	base := slug.Make(text)
	candidate := base
	for n := 1; ; n++ {
		var count int64
		if err := s.db.Model(&ProductCategory{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check category slug: %w", err)
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

func normalizePage(page, limit *int) {
	if *page < 1 {
		*page = 1
	}
	if *limit < 1 || *limit > 100 {
		*limit = 12
	}
}
