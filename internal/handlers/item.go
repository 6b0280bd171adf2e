package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/stores_api/internal/apperr"
	"github.com/Skotchmaster/stores_api/internal/logging"
	"github.com/Skotchmaster/stores_api/internal/models"
	"github.com/Skotchmaster/stores_api/internal/mykafka"
	"github.com/Skotchmaster/stores_api/internal/service/search"
	"github.com/Skotchmaster/stores_api/internal/tokens"
	"github.com/Skotchmaster/stores_api/internal/util"
)

type ItemHandler struct {
	DB       *gorm.DB
	Producer mykafka.Publisher
	Index    *search.Index
}

func (h *ItemHandler) publish(c echo.Context, key string, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "item_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

func (h *ItemHandler) mirror(c echo.Context, op func(context.Context) error) {
	if h.Index == nil {
		return
	}
	if err := op(c.Request().Context()); err != nil {
		logging.FromContext(c.Request().Context()).Error("es index failed", "error", err)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *ItemHandler) GetItems(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.WithContext(c.Request().Context()).
		Model(&models.Item{}).Count(&total).Error; err != nil {
		return err
	}

	var items []models.Item
	if err := h.DB.WithContext(c.Request().Context()).
		Preload("Tags").
		Order("id ASC").Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": echo.Map{
			"page":  page,
			"size":  limit,
			"total": total,
		},
	})
}

func (h *ItemHandler) GetItem(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var item models.Item
	if err := h.DB.WithContext(c.Request().Context()).
		Preload("Tags").First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// CreateItem sits behind a fresh access token: adding stock is one of the
// operations that demands a recent password login, not a refreshed session.
func (h *ItemHandler) CreateItem(c echo.Context, claims *tokens.Claims) error {
	var req struct {
		Name    string  `json:"name"`
		Price   float64 `json:"price"`
		StoreID uint    `json:"store_id"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Wrap(apperr.CodeInvalidArgument, "invalid request body", err)
	}
	if req.Name == "" || req.StoreID == 0 {
		return apperr.New(apperr.CodeInvalidArgument, "name and store_id are required")
	}

	ctx := c.Request().Context()
	var store models.Store
	if err := h.DB.WithContext(ctx).First(&store, req.StoreID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.CodeNotFound, "store not found")
		}
		return err
	}

	item := models.Item{Name: req.Name, Price: req.Price, StoreID: req.StoreID}
	if err := h.DB.WithContext(ctx).Create(&item).Error; err != nil {
		return err
	}

	h.mirror(c, func(ctx context.Context) error { return h.Index.IndexItem(ctx, &item) })
	h.publish(c, fmt.Sprint(item.ID), map[string]any{
		"type":    "item_created",
		"item_id": item.ID,
		"subject": claims.Subject,
	})

	return c.JSON(http.StatusCreated, item)
}

func (h *ItemHandler) DeleteItem(c echo.Context, claims *tokens.Claims) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	var item models.Item
	if err := h.DB.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}
	if err := h.DB.WithContext(ctx).Model(&item).Association("Tags").Clear(); err != nil {
		return err
	}
	if err := h.DB.WithContext(ctx).Delete(&item).Error; err != nil {
		return err
	}

	h.mirror(c, func(ctx context.Context) error { return h.Index.DeleteItem(ctx, item.ID) })
	h.publish(c, fmt.Sprint(item.ID), map[string]any{
		"type":    "item_deleted",
		"item_id": item.ID,
		"subject": claims.Subject,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Item deleted"})
}

func (h *ItemHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return apperr.New(apperr.CodeInvalidArgument, "q is required")
	}
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, items, err := h.Index.Search(c.Request().Context(), q, from, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "items": items})
}
