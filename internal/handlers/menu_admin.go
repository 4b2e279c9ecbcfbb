package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/vendorr/restaurant-backend/internal/models"
	"github.com/vendorr/restaurant-backend/internal/mykafka"
	"github.com/vendorr/restaurant-backend/internal/service/search"
)

// MenuAdminHandler covers the admin-only menu mutations. Every write is
// mirrored to Elasticsearch and announced on the menu events topic.
type MenuAdminHandler struct {
	DB       *gorm.DB
	ES       *elasticsearch.Client
	Producer *mykafka.Producer
}

type categoryRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"display_order"`
	IsActive     *bool  `json:"is_active"`
	Icon         string `json:"icon"`
}

type categoryPatch struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	DisplayOrder *int    `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
	Icon         *string `json:"icon"`
}

func (h *MenuAdminHandler) CreateCategory(c echo.Context) error {
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	category := models.MenuCategory{
		Name:         req.Name,
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
		IsActive:     true,
		Icon:         req.Icon,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if err := h.DB.Create(&category).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, "category_created", category.ID)
	return c.JSON(http.StatusCreated, category)
}

func (h *MenuAdminHandler) UpdateCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var category models.MenuCategory
	if err := h.DB.First(&category, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "category not found")
	}

	var req categoryPatch
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.DisplayOrder != nil {
		category.DisplayOrder = *req.DisplayOrder
	}
	if req.Icon != nil {
		category.Icon = *req.Icon
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&category).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, "category_updated", category.ID)
	return c.JSON(http.StatusOK, category)
}

func (h *MenuAdminHandler) DeleteCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var count int64
	if err := h.DB.Model(&models.MenuItem{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if count > 0 {
		return echo.NewHTTPError(http.StatusConflict, "category still has menu items")
	}

	res := h.DB.Delete(&models.MenuCategory{}, id)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "category not found")
	}

	h.publish(c, "category_deleted", id)
	return c.JSON(http.StatusOK, echo.Map{"message": "category deleted"})
}

type menuItemRequest struct {
	Name                 string  `json:"name"`
	Description          string  `json:"description"`
	Price                float64 `json:"price"`
	CategoryID           uint    `json:"category_id"`
	ImageURL             string  `json:"image_url"`
	ThumbnailURL         string  `json:"thumbnail_url"`
	Calories             int     `json:"calories"`
	Ingredients          string  `json:"ingredients"`
	Allergens            string  `json:"allergens"`
	DietaryTags          string  `json:"dietary_tags"`
	IsAvailable          *bool   `json:"is_available"`
	IsFeatured           *bool   `json:"is_featured"`
	PreparationTime      int     `json:"preparation_time"`
	SpiceLevel           int     `json:"spice_level"`
	Customizable         *bool   `json:"customizable"`
	CustomizationOptions string  `json:"customization_options"`
}

func (h *MenuAdminHandler) CreateItem(c echo.Context) error {
	var req menuItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || req.Price <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "name and a positive price are required")
	}
	if req.CategoryID != 0 {
		var category models.MenuCategory
		if err := h.DB.First(&category, req.CategoryID).Error; err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "category not found")
		}
	}

	item := models.MenuItem{
		Name:                 req.Name,
		Description:          req.Description,
		Price:                req.Price,
		CategoryID:           req.CategoryID,
		ImageURL:             req.ImageURL,
		ThumbnailURL:         req.ThumbnailURL,
		Calories:             req.Calories,
		Ingredients:          req.Ingredients,
		Allergens:            req.Allergens,
		DietaryTags:          req.DietaryTags,
		IsAvailable:          true,
		Status:               "available",
		PreparationTime:      req.PreparationTime,
		SpiceLevel:           req.SpiceLevel,
		CustomizationOptions: req.CustomizationOptions,
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	if req.IsFeatured != nil {
		item.IsFeatured = *req.IsFeatured
	}
	if req.Customizable != nil {
		item.Customizable = *req.Customizable
	}
	if !item.IsAvailable {
		item.Status = "unavailable"
	}
	if item.PreparationTime == 0 {
		item.PreparationTime = 15
	}

	if err := h.DB.Create(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.reindex(c, &item)
	h.publish(c, "item_created", item.ID)
	return c.JSON(http.StatusCreated, item)
}

func (h *MenuAdminHandler) UpdateItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var item models.MenuItem
	if err := h.DB.First(&item, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "menu item not found")
	}

	var req menuItemPatch
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "price must be positive")
		}
		item.Price = *req.Price
	}
	if req.CategoryID != nil {
		item.CategoryID = *req.CategoryID
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.ImageURL != nil {
		item.ImageURL = *req.ImageURL
	}
	if req.ThumbnailURL != nil {
		item.ThumbnailURL = *req.ThumbnailURL
	}
	if req.Calories != nil {
		item.Calories = *req.Calories
	}
	if req.Ingredients != nil {
		item.Ingredients = *req.Ingredients
	}
	if req.Allergens != nil {
		item.Allergens = *req.Allergens
	}
	if req.DietaryTags != nil {
		item.DietaryTags = *req.DietaryTags
	}
	if req.SpiceLevel != nil {
		item.SpiceLevel = *req.SpiceLevel
	}
	if req.CustomizationOptions != nil {
		item.CustomizationOptions = *req.CustomizationOptions
	}
	if req.PreparationTime != nil {
		item.PreparationTime = *req.PreparationTime
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
		if item.IsAvailable {
			item.Status = "available"
		} else {
			item.Status = "unavailable"
		}
	}
	if req.IsFeatured != nil {
		item.IsFeatured = *req.IsFeatured
	}
	if req.Customizable != nil {
		item.Customizable = *req.Customizable
	}

	if err := h.DB.Save(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.reindex(c, &item)
	h.publish(c, "item_updated", item.ID)
	return c.JSON(http.StatusOK, item)
}

type menuItemPatch struct {
	Name                 *string  `json:"name"`
	Description          *string  `json:"description"`
	Price                *float64 `json:"price"`
	CategoryID           *uint    `json:"category_id"`
	ImageURL             *string  `json:"image_url"`
	ThumbnailURL         *string  `json:"thumbnail_url"`
	Calories             *int     `json:"calories"`
	Ingredients          *string  `json:"ingredients"`
	Allergens            *string  `json:"allergens"`
	DietaryTags          *string  `json:"dietary_tags"`
	IsAvailable          *bool    `json:"is_available"`
	IsFeatured           *bool    `json:"is_featured"`
	PreparationTime      *int     `json:"preparation_time"`
	SpiceLevel           *int     `json:"spice_level"`
	Customizable         *bool    `json:"customizable"`
	CustomizationOptions *string  `json:"customization_options"`
}

type availabilityRequest struct {
	IsAvailable bool `json:"is_available"`
}

func (h *MenuAdminHandler) SetItemAvailability(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req availabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var item models.MenuItem
	if err := h.DB.First(&item, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "menu item not found")
	}

	item.IsAvailable = req.IsAvailable
	if req.IsAvailable {
		item.Status = "available"
	} else {
		item.Status = "unavailable"
	}
	if err := h.DB.Save(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.reindex(c, &item)
	h.publish(c, "item_availability_changed", item.ID)
	return c.JSON(http.StatusOK, item)
}

func (h *MenuAdminHandler) DeleteItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	res := h.DB.Delete(&models.MenuItem{}, id)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "menu item not found")
	}

	if h.ES != nil {
		if err := search.DeleteMenuItem(c.Request().Context(), h.ES, menuIndex, id); err != nil {
			c.Logger().Errorf("Elasticsearch delete error: %v", err)
		}
	}
	h.publish(c, "item_deleted", id)
	return c.JSON(http.StatusOK, echo.Map{"message": "menu item deleted"})
}

func (h *MenuAdminHandler) reindex(c echo.Context, item *models.MenuItem) {
	if h.ES == nil {
		return
	}
	if err := search.IndexMenuItem(c.Request().Context(), h.ES, menuIndex, item); err != nil {
		c.Logger().Errorf("Elasticsearch index error: %v", err)
	}
}

func (h *MenuAdminHandler) publish(c echo.Context, eventType string, id uint) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), 5*time.Second)
	defer cancel()

	event := map[string]any{"type": eventType, "id": id}
	if err := h.Producer.PublishEvent(ctx, mykafka.TopicMenuEvents, fmt.Sprint(id), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}
