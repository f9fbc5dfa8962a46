package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/NobreTrajes/os-control/internal/models"
)

type ProductHandler struct {
	db *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// --------- Requests ---------

type CreateProductRequest struct {
	Tipo        string          `json:"tipo" binding:"required"`
	Nome        string          `json:"nome_produto" binding:"required"`
	Tamanho     *string         `json:"tamanho"`
	Cor         *string         `json:"cor"`
	Marca       *string         `json:"marca"`
	RentalPrice decimal.Decimal `json:"rental_price"`
}

type UpdateProductRequest struct {
	Tipo        *string          `json:"tipo,omitempty"`
	Nome        *string          `json:"nome_produto,omitempty"`
	Tamanho     *string          `json:"tamanho,omitempty"`
	Cor         *string          `json:"cor,omitempty"`
	Marca       *string          `json:"marca,omitempty"`
	RentalPrice *decimal.Decimal `json:"rental_price,omitempty"`
	Active      *bool            `json:"active,omitempty"`
}

// --------- Handlers ---------

func (h *ProductHandler) List(c *gin.Context) {
	tipo := strings.ToLower(strings.TrimSpace(c.Query("tipo")))
	activeStr := strings.TrimSpace(c.Query("active")) // "true", "false" ou vazio
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.Session(&gorm.Session{})

	if tipo != "" {
		q = q.Where("LOWER(type) = ?", tipo)
	}

	if activeStr != "" {
		if activeStr == "true" {
			q = q.Where("active = ?", true)
		} else if activeStr == "false" {
			q = q.Where("active = ?", false)
		}
	}

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ?", like, like)
	}

	var products []models.Product
	if err := q.
		Order("id ASC").
		Find(&products).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	product := models.Product{
		Type:        strings.ToLower(req.Tipo),
		Name:        req.Nome,
		Size:        req.Tamanho,
		Color:       req.Cor,
		Brand:       req.Marca,
		RentalPrice: req.RentalPrice,
		Active:      true,
	}

	if err := h.db.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_product"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_product"})
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if req.Tipo != nil {
		product.Type = strings.ToLower(*req.Tipo)
	}
	if req.Nome != nil {
		product.Name = *req.Nome
	}
	if req.Tamanho != nil {
		product.Size = req.Tamanho
	}
	if req.Cor != nil {
		product.Color = req.Cor
	}
	if req.Marca != nil {
		product.Brand = req.Marca
	}
	if req.RentalPrice != nil {
		product.RentalPrice = *req.RentalPrice
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := h.db.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_product"})
		return
	}

	c.JSON(http.StatusOK, product)
}
