// internal/interfaces/http/handlers/catalog.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pawverse/petstore-backend/internal/domain/cart"
	"github.com/pawverse/petstore-backend/internal/domain/catalog"
	"github.com/pawverse/petstore-backend/internal/domain/itemref"
	"github.com/pawverse/petstore-backend/internal/domain/wishlist"
	"github.com/pawverse/petstore-backend/internal/interfaces/http/middleware"
)

// CatalogHandler serves pets, products, categories and stores
type CatalogHandler struct {
	catalogService  *catalog.Service
	cartService     *cart.Service
	wishlistService *wishlist.Service
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *catalog.Service, cartService *cart.Service, wishlistService *wishlist.Service) *CatalogHandler {
	return &CatalogHandler{
		catalogService:  catalogService,
		cartService:     cartService,
		wishlistService: wishlistService,
	}
}

// itemState reports whether the requester already has ref in their cart
// and on their wishlist. Guests never have a wishlist.
func (h *CatalogHandler) itemState(c *gin.Context, ref itemref.Ref) (inCart, inWishlist bool, err error) {
	if inCart, err = h.cartService.Contains(requestScope(c), ref); err != nil {
		return false, false, err
	}
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		if inWishlist, err = h.wishlistService.Contains(userID, ref); err != nil {
			return false, false, err
		}
	}
	return inCart, inWishlist, nil
}

// GetPets handles GET /pets
func (h *CatalogHandler) GetPets(c *gin.Context) {
	var req catalog.PetListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBadRequest(c, "Invalid query parameters", err)
		return
	}

	pets, err := h.catalogService.ListPets(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": pets})
}

// GetPet handles GET /pets/:id
func (h *CatalogHandler) GetPet(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	pet, err := h.catalogService.GetPet(id)
	if err != nil {
		respondError(c, err)
		return
	}

	extras, err := h.catalogService.GetPetExtras(pet)
	if err != nil {
		respondError(c, err)
		return
	}

	inCart, inWishlist, err := h.itemState(c, itemref.Ref{Kind: itemref.KindPet, ID: pet.ID})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"data":             pet,
		"display_name":     pet.DisplayName(),
		"related_products": extras.RelatedProducts,
		"accessories":      extras.Accessories,
		"in_cart":          inCart,
		"is_in_wishlist":   inWishlist,
	})
}

// GetProducts handles GET /products
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	var req catalog.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBadRequest(c, "Invalid query parameters", err)
		return
	}

	products, err := h.catalogService.ListProducts(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": products})
}

// GetProduct handles GET /products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(id)
	if err != nil {
		respondError(c, err)
		return
	}

	inCart, inWishlist, err := h.itemState(c, itemref.Ref{Kind: itemref.KindProduct, ID: product.ID})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"data":           product,
		"in_cart":        inCart,
		"is_in_wishlist": inWishlist,
	})
}

// GetCategories handles GET /categories
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalogService.ListProductCategories()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": categories})
}

// CreateCategoryRequest is the admin form for a product category
type CreateCategoryRequest struct {
	Name          string `json:"name" binding:"required,max=50"`
	PetCategoryID uint   `json:"pet_category_id" binding:"required"`
}

// CreateCategory handles POST /admin/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data", err)
		return
	}

	category, err := h.catalogService.CreateProductCategory(req.Name, req.PetCategoryID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": category})
}

// GetStores handles GET /stores
func (h *CatalogHandler) GetStores(c *gin.Context) {
	stores, err := h.catalogService.ListStores()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": stores})
}

// GetStore handles GET /stores/:id
func (h *CatalogHandler) GetStore(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	store, err := h.catalogService.GetStore(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": store})
}
