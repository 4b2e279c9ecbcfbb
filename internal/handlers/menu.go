package handlers

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/vendorr/restaurant-backend/internal/models"
	"github.com/vendorr/restaurant-backend/internal/service/search"
	"github.com/vendorr/restaurant-backend/internal/util"
)

const menuIndex = "menu_items"

// MenuHandler serves the public, read-only menu surface.
type MenuHandler struct {
	DB *gorm.DB
	ES *elasticsearch.Client
}

func (h *MenuHandler) ListCategories(c echo.Context) error {
	var categories []models.MenuCategory
	if err := h.DB.
		Where("is_active = ?", true).
		Order("display_order ASC, name ASC").
		Find(&categories).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *MenuHandler) ListItems(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("page_size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	query := h.DB.Model(&models.MenuItem{}).Where("is_available = ?", true)
	if categoryID := c.QueryParam("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	if q := c.QueryParam("q"); q != "" && h.ES != nil {
		total, items, err := search.Search(c.Request().Context(), h.ES, menuIndex, q, offset, limit)
		if err == nil {
			return c.JSON(http.StatusOK, echo.Map{
				"items":     items,
				"total":     total,
				"page":      page,
				"page_size": limit,
			})
		}
		c.Logger().Errorf("Elasticsearch error, serving from db: %v", err)
		query = query.Where("name ILIKE ?", "%"+q+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var items []models.MenuItem
	if err := query.
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": limit,
	})
}

func (h *MenuHandler) GetCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var category models.MenuCategory
	if err := h.DB.
		Preload("MenuItems", "is_available = ?", true).
		Where("id = ? AND is_active = ?", id, true).
		First(&category).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "category not found")
	}
	return c.JSON(http.StatusOK, category)
}

// SearchItems is the Elasticsearch-backed menu search endpoint.
func (h *MenuHandler) SearchItems(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is unavailable")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("page_size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := search.Search(c.Request().Context(), h.ES, menuIndex, query, offset, limit)
	if err != nil {
		c.Logger().Errorf("Elasticsearch error: %v", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is unavailable")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": limit,
	})
}

func (h *MenuHandler) GetItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var item models.MenuItem
	if err := h.DB.First(&item, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "menu item not found")
	}
	return c.JSON(http.StatusOK, item)
}

func (h *MenuHandler) FeaturedItems(c echo.Context) error {
	var items []models.MenuItem
	if err := h.DB.
		Where("is_featured = ? AND is_available = ?", true, true).
		Order("name ASC").
		Limit(util.DefaultPageSize).
		Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, items)
}

// PopularItems ranks available items by how often they were ordered.
func (h *MenuHandler) PopularItems(c echo.Context) error {
	limit := parseIntDefault(c.QueryParam("limit"), 10)
	if limit < 1 || limit > util.DefaultPageSize {
		limit = 10
	}

	var items []models.MenuItem
	err := h.DB.
		Model(&models.MenuItem{}).
		Select("menu_items.*, COALESCE(SUM(order_items.quantity), 0) AS order_count").
		Joins("LEFT JOIN order_items ON order_items.menu_item_id = menu_items.id").
		Where("menu_items.is_available = ?", true).
		Group("menu_items.id").
		Order("order_count DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, items)
}
