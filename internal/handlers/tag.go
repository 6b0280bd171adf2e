package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/stores_api/internal/apperr"
	"github.com/Skotchmaster/stores_api/internal/models"
)

type TagHandler struct {
	DB *gorm.DB
}

func (h *TagHandler) GetStoreTags(c echo.Context) error {
	storeID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var tags []models.Tag
	if err := h.DB.WithContext(c.Request().Context()).
		Where("store_id = ?", storeID).
		Order("id ASC").Find(&tags).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tags)
}

func (h *TagHandler) CreateTag(c echo.Context) error {
	storeID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Wrap(apperr.CodeInvalidArgument, "invalid request body", err)
	}
	if req.Name == "" {
		return apperr.New(apperr.CodeInvalidArgument, "name is required")
	}

	ctx := c.Request().Context()
	var store models.Store
	if err := h.DB.WithContext(ctx).First(&store, storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.CodeNotFound, "store not found")
		}
		return err
	}

	tag := models.Tag{Name: req.Name, StoreID: store.ID}
	if err := h.DB.WithContext(ctx).Create(&tag).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tag)
}

func (h *TagHandler) GetTag(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var tag models.Tag
	if err := h.DB.WithContext(c.Request().Context()).
		Preload("Items").First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}
	return c.JSON(http.StatusOK, tag)
}

// DeleteTag refuses while items still carry the tag, matching the
// link/unlink lifecycle.
func (h *TagHandler) DeleteTag(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	var tag models.Tag
	if err := h.DB.WithContext(ctx).Preload("Items").First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}
	if len(tag.Items) > 0 {
		return apperr.New(apperr.CodeConflict, "tag is still linked to items")
	}
	if err := h.DB.WithContext(ctx).Delete(&tag).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Tag deleted"})
}

func (h *TagHandler) loadItemAndTag(c echo.Context) (*models.Item, *models.Tag, error) {
	itemID, err := pathID(c, "item_id")
	if err != nil {
		return nil, nil, err
	}
	tagID, err := pathID(c, "tag_id")
	if err != nil {
		return nil, nil, err
	}

	ctx := c.Request().Context()
	var item models.Item
	if err := h.DB.WithContext(ctx).First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.New(apperr.CodeNotFound, "item not found")
		}
		return nil, nil, err
	}
	var tag models.Tag
	if err := h.DB.WithContext(ctx).First(&tag, tagID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.New(apperr.CodeNotFound, "tag not found")
		}
		return nil, nil, err
	}
	if item.StoreID != tag.StoreID {
		return nil, nil, apperr.New(apperr.CodeInvalidArgument, "item and tag belong to different stores")
	}
	return &item, &tag, nil
}

func (h *TagHandler) LinkTag(c echo.Context) error {
	item, tag, err := h.loadItemAndTag(c)
	if err != nil {
		return err
	}
	if err := h.DB.WithContext(c.Request().Context()).
		Model(item).Association("Tags").Append(tag); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tag)
}

func (h *TagHandler) UnlinkTag(c echo.Context) error {
	item, tag, err := h.loadItemAndTag(c)
	if err != nil {
		return err
	}
	if err := h.DB.WithContext(c.Request().Context()).
		Model(item).Association("Tags").Delete(tag); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Item removed from tag"})
}
