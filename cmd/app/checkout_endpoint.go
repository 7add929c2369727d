package main

import (
	"net/http"

	"MusicStoreAPI/internal/middleware"
	"MusicStoreAPI/internal/model"
	"MusicStoreAPI/internal/services"

	"github.com/labstack/echo/v4"
)

type contactRequest struct {
	Email      string `json:"email"`
	Newsletter *bool  `json:"newsletter"`
}

type shippingRequest struct {
	BillingAddress  model.Address  `json:"billingAddress"`
	ShippingAddress *model.Address `json:"shippingAddress"`
}

type sameAsBillingRequest struct {
	SameAsBilling bool `json:"sameAsBilling"`
}

type paymentMethodRequest struct {
	Method model.PaymentMethod `json:"method"`
}

type paymentRequest struct {
	Card *model.CardInfo `json:"card"`
}

func registerCheckoutRoutes(g *echo.Group, svc *services.CheckoutService) {
	p := g.Group("/checkout")

	// START checkout from the current cart
	p.POST("", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		return c.JSON(http.StatusCreated, svc.Start(c.Request().Context(), claims.SessionID))
	})

	p.GET("", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		view, err := svc.Get(claims.SessionID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, view)
	})

	// contact -> shipping
	p.POST("/contact", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		req := new(contactRequest)
		if err := c.Bind(req); err != nil {
			return badRequest(c)
		}
		newsletter := true
		if req.Newsletter != nil {
			newsletter = *req.Newsletter
		}
		view, err := svc.SubmitContact(c.Request().Context(), claims.SessionID, req.Email, newsletter)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, view)
	})

	// draft edits while on the shipping stage
	p.PUT("/billing", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		addr := new(model.Address)
		if err := c.Bind(addr); err != nil {
			return badRequest(c)
		}
		view, err := svc.UpdateBilling(claims.SessionID, *addr)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, view)
	})

	p.PUT("/shipping", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		addr := new(model.Address)
		if err := c.Bind(addr); err != nil {
			return badRequest(c)
		}
		view, err := svc.UpdateShipping(claims.SessionID, *addr)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, view)
	})

	p.PUT("/same-as-billing", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		req := new(sameAsBillingRequest)
		if err := c.Bind(req); err != nil {
			return badRequest(c)
		}
		view, err := svc.SetSameAsBilling(claims.SessionID, req.SameAsBilling)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, view)
	})

	// shipping -> payment
	p.POST("/shipping", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		req := new(shippingRequest)
		if err := c.Bind(req); err != nil {
			return badRequest(c)
		}
		view, err := svc.SubmitShipping(c.Request().Context(), claims.SessionID, req.BillingAddress, req.ShippingAddress)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, view)
	})

	p.PUT("/payment-method", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		req := new(paymentMethodRequest)
		if err := c.Bind(req); err != nil {
			return badRequest(c)
		}
		view, selected, err := svc.SelectPaymentMethod(claims.SessionID, req.Method)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"selected": selected, "checkout": view})
	})

	// PAY: redirect link for paypal, simulated completion otherwise
	p.POST("/payment", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		req := new(paymentRequest)
		if err := c.Bind(req); err != nil {
			return badRequest(c)
		}
		res, err := svc.SubmitPayment(c.Request().Context(), claims.SessionID, req.Card)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, res)
	})
}
