package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/stores_api/internal/handlers"
	"github.com/Skotchmaster/stores_api/internal/middleware/auth"
	"github.com/Skotchmaster/stores_api/internal/tokens"
)

type Deps struct {
	Issuer       *tokens.Issuer
	AuthHandler  *handlers.AuthHandler
	StoreHandler *handlers.StoreHandler
	ItemHandler  *handlers.ItemHandler
	TagHandler   *handlers.TagHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.POST("/register", d.AuthHandler.Register)
	e.POST("/login", d.AuthHandler.Login)
	e.POST("/refresh", auth.Require(d.Issuer, tokens.TypeRefresh, d.AuthHandler.Refresh))
	e.POST("/logout", auth.Require(d.Issuer, "", d.AuthHandler.Logout))

	e.GET("/user/:id", auth.AdminOnly(d.Issuer, d.AuthHandler.GetUser))
	e.DELETE("/user/:id", auth.AdminOnly(d.Issuer, d.AuthHandler.DeleteUser))
	e.POST("/user/forgot-password", d.AuthHandler.ForgotPassword)
	e.POST("/user/reset-password", d.AuthHandler.ResetPassword)

	e.GET("/store", d.StoreHandler.GetStores)
	e.POST("/store", d.StoreHandler.CreateStore)
	e.GET("/store/:id", d.StoreHandler.GetStore)
	e.DELETE("/store/:id", auth.AdminOnly(d.Issuer, d.StoreHandler.DeleteStore))
	e.GET("/store/:id/tag", d.TagHandler.GetStoreTags)
	e.POST("/store/:id/tag", d.TagHandler.CreateTag)

	e.GET("/item", d.ItemHandler.GetItems)
	e.POST("/item", auth.Require(d.Issuer, tokens.TypeAccess, d.ItemHandler.CreateItem, tokens.WithFresh()))
	e.GET("/item/:id", d.ItemHandler.GetItem)
	e.DELETE("/item/:id", auth.AdminOnly(d.Issuer, d.ItemHandler.DeleteItem))
	e.GET("/search", d.ItemHandler.Search)

	e.GET("/tag/:id", d.TagHandler.GetTag)
	e.DELETE("/tag/:id", d.TagHandler.DeleteTag)
	e.POST("/item/:item_id/tag/:tag_id", d.TagHandler.LinkTag)
	e.DELETE("/item/:item_id/tag/:tag_id", d.TagHandler.UnlinkTag)
}
