package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/stores_api/internal/apperr"
	"github.com/Skotchmaster/stores_api/internal/models"
	"github.com/Skotchmaster/stores_api/internal/tokens"
)

type StoreHandler struct {
	DB *gorm.DB
}

func (h *StoreHandler) GetStores(c echo.Context) error {
	var stores []models.Store
	if err := h.DB.WithContext(c.Request().Context()).
		Preload("Items").Preload("Tags").
		Order("id ASC").Find(&stores).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stores)
}

func (h *StoreHandler) GetStore(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var store models.Store
	if err := h.DB.WithContext(c.Request().Context()).
		Preload("Items").Preload("Tags").
		First(&store, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}
	return c.JSON(http.StatusOK, store)
}

func (h *StoreHandler) CreateStore(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Wrap(apperr.CodeInvalidArgument, "invalid request body", err)
	}
	if req.Name == "" {
		return apperr.New(apperr.CodeInvalidArgument, "name is required")
	}

	store := models.Store{Name: req.Name}
	if err := h.DB.WithContext(c.Request().Context()).Create(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.New(apperr.CodeConflict, "a store with that name already exists")
		}
		return err
	}
	return c.JSON(http.StatusCreated, store)
}

func (h *StoreHandler) DeleteStore(c echo.Context, _ *tokens.Claims) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	err = h.DB.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		var store models.Store
		if err := tx.First(&store, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return err
		}
		if err := tx.Where("store_id = ?", id).Delete(&models.Item{}).Error; err != nil {
			return err
		}
		if err := tx.Where("store_id = ?", id).Delete(&models.Tag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&store).Error
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Store deleted"})
}
