package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"kefystore-backend/internal/models"
	"kefystore-backend/internal/services"
)

// ProductHandlers handles catalog endpoints
type ProductHandlers struct {
	catalog *services.CatalogService
	users   *services.UserService
}

// NewProductHandlers creates new product handlers
func NewProductHandlers(catalog *services.CatalogService, users *services.UserService) *ProductHandlers {
	return &ProductHandlers{catalog: catalog, users: users}
}

// ListProducts returns published products with optional filters
func (h *ProductHandlers) ListProducts(c *gin.Context) {
	filters := &services.ProductFilters{
		Category: c.Query("category"),
		VendorID: c.Query("vendorId"),
		Search:   c.Query("search"),
		Limit:    parseIntQuery(c, "limit", 20),
		Offset:   parseIntQuery(c, "offset", 0),
	}

	if v := c.Query("minPrice"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			filters.MinPrice = &d
		}
	}
	if v := c.Query("maxPrice"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			filters.MaxPrice = &d
		}
	}

	products, err := h.catalog.ListProducts(filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to list products",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    products,
	})
}

// GetProduct returns a product by slug
func (h *ProductHandlers) GetProduct(c *gin.Context) {
	slug := c.Param("slug")

	product, err := h.catalog.GetProductBySlug(slug)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// CreateProduct creates a product for the calling vendeur. Only approved
// vendors may list products.
func (h *ProductHandlers) CreateProduct(c *gin.Context) {
	userID := c.GetString("userID")

	user, err := h.users.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	if !user.CanSell() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Vendor account is not approved",
		})
		return
	}

	var req models.ProductCreation
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	product, err := h.catalog.CreateProduct(userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Product created",
		"data":    product,
	})
}

// UpdateProduct updates one of the vendeur's products
func (h *ProductHandlers) UpdateProduct(c *gin.Context) {
	userID := c.GetString("userID")
	productID := c.Param("id")

	var req models.ProductUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	product, err := h.catalog.UpdateProduct(productID, userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Product updated",
		"data":    product,
	})
}

// DeleteProduct archives one of the vendeur's products
func (h *ProductHandlers) DeleteProduct(c *gin.Context) {
	userID := c.GetString("userID")
	productID := c.Param("id")

	if err := h.catalog.DeleteProduct(productID, userID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Product archived",
	})
}

// variantRequest carries variant creation data
type variantRequest struct {
	Name  string `json:"name" binding:"required"`
	Price string `json:"price" binding:"required"`
	Stock int    `json:"stock"`
}

// AddVariant adds a variant to one of the vendeur's products
func (h *ProductHandlers) AddVariant(c *gin.Context) {
	userID := c.GetString("userID")
	productID := c.Param("id")

	var req variantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid price",
		})
		return
	}

	variant, err := h.catalog.AddVariant(productID, userID, req.Name, price, req.Stock)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Variant added",
		"data":    variant,
	})
}

// DeleteVariant removes a variant from one of the vendeur's products
func (h *ProductHandlers) DeleteVariant(c *gin.Context) {
	userID := c.GetString("userID")
	variantID := c.Param("variantId")

	if err := h.catalog.DeleteVariant(variantID, userID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Variant removed",
	})
}

// ListReviews returns a product's reviews
func (h *ProductHandlers) ListReviews(c *gin.Context) {
	productID := c.Param("id")

	reviews, err := h.catalog.GetReviews(productID,
		parseIntQuery(c, "limit", 20), parseIntQuery(c, "offset", 0))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to list reviews",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    reviews,
	})
}

// CreateReview submits a verified-purchase review
func (h *ProductHandlers) CreateReview(c *gin.Context) {
	userID := c.GetString("userID")
	productID := c.Param("id")

	var req models.ReviewCreation
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	review, err := h.catalog.CreateReview(productID, userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Review submitted",
		"data":    review,
	})
}

// parseIntQuery reads an integer query parameter with a default
func parseIntQuery(c *gin.Context, name string, defaultValue int) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
