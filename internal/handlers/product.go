package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/example/adire/internal/models"
	"github.com/example/adire/internal/utils"
)

// ProductHandler manages the product catalog.
type ProductHandler struct {
	db *gorm.DB
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// ListProducts returns products for the storefront, optionally filtered.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{})

	if c.Query("featured") == "true" {
		query = query.Where("featured = ?", true)
	}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetProductBySlug returns one product for the detail page.
func (h *ProductHandler) GetProductBySlug(c *fiber.Ctx) error {
	var product models.Product
	if err := h.db.First(&product, "slug = ?", c.Params("slug")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

type productRequest struct {
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	Category    string   `json:"category"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
	Stock       *int     `json:"stock"`
	Featured    *bool    `json:"featured"`
}

// CreateProduct persists a new product.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" || req.Slug == "" || req.Description == "" || req.Price == 0 || req.Category == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	var existing models.Product
	if err := h.db.First(&existing, "slug = ?", req.Slug).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "product with this slug already exists")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	product := models.Product{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       req.Price,
		Images:      pq.StringArray(req.Images),
		Category:    req.Category,
		Sizes:       pq.StringArray(req.Sizes),
		Colors:      pq.StringArray(req.Colors),
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Featured != nil {
		product.Featured = *req.Featured
	}

	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct updates an existing product. Only provided fields change.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Slug != "" && req.Slug != product.Slug {
		var existing models.Product
		if err := h.db.First(&existing, "slug = ?", req.Slug).Error; err == nil {
			return fiber.NewError(fiber.StatusConflict, "product with this slug already exists")
		} else if err != gorm.ErrRecordNotFound {
			return err
		}
	}

	updates := map[string]any{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Slug != "" {
		updates["slug"] = req.Slug
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Price != 0 {
		updates["price"] = req.Price
	}
	if req.Images != nil {
		updates["images"] = pq.StringArray(req.Images)
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if req.Sizes != nil {
		updates["sizes"] = pq.StringArray(req.Sizes)
	}
	if req.Colors != nil {
		updates["colors"] = pq.StringArray(req.Colors)
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.Featured != nil {
		updates["featured"] = *req.Featured
	}

	if err := h.db.Model(&product).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// DeleteProduct removes a product. Order item snapshots are unaffected.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	if err := h.db.Delete(&product).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "product deleted"})
}
