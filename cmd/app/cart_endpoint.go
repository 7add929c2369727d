package main

import (
	"net/http"

	"MusicStoreAPI/internal/middleware"
	"MusicStoreAPI/internal/model"
	"MusicStoreAPI/internal/services"

	"github.com/labstack/echo/v4"
)

type addCartRequest struct {
	Product model.Product `json:"product"`
	Qty     *int          `json:"quantity"`
}

type updateCartRequest struct {
	Qty int `json:"quantity"`
}

type couponRequest struct {
	Code string `json:"code"`
}

func registerCartRoutes(g *echo.Group, cs *services.CartService) {
	p := g.Group("/cart")

	// GET cart
	p.GET("", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		return c.JSON(http.StatusOK, cs.Get(c.Request().Context(), claims.SessionID))
	})

	// ADD item
	p.POST("", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		req := new(addCartRequest)
		if err := c.Bind(req); err != nil || req.Product.ID == "" {
			return badRequest(c)
		}
		qty := 1
		if req.Qty != nil {
			qty = *req.Qty
		}
		ctx := c.Request().Context()
		cs.Store(ctx, claims.SessionID).Add(ctx, req.Product, qty)
		return c.JSON(http.StatusOK, cs.Get(ctx, claims.SessionID))
	})

	// UPDATE quantity
	p.PUT("/:productId", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		req := new(updateCartRequest)
		if err := c.Bind(req); err != nil {
			return badRequest(c)
		}
		ctx := c.Request().Context()
		cs.Store(ctx, claims.SessionID).UpdateQuantity(ctx, model.ProductID(c.Param("productId")), req.Qty)
		return c.JSON(http.StatusOK, cs.Get(ctx, claims.SessionID))
	})

	// REMOVE item
	p.DELETE("/:productId", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		ctx := c.Request().Context()
		cs.Store(ctx, claims.SessionID).Remove(ctx, model.ProductID(c.Param("productId")))
		return c.JSON(http.StatusOK, cs.Get(ctx, claims.SessionID))
	})

	// CLEAR cart
	p.DELETE("", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		ctx := c.Request().Context()
		cs.Store(ctx, claims.SessionID).Clear(ctx)
		return c.JSON(http.StatusOK, cs.Get(ctx, claims.SessionID))
	})

	// APPLY coupon; a rejected code is reported in the coupon state
	p.POST("/coupon", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		req := new(couponRequest)
		if err := c.Bind(req); err != nil {
			return badRequest(c)
		}
		ctx := c.Request().Context()
		cs.Store(ctx, claims.SessionID).ApplyCoupon(req.Code)
		return c.JSON(http.StatusOK, cs.Get(ctx, claims.SessionID))
	})
}
