package main

import (
	"net/http"

	"MusicStoreAPI/internal/middleware"
	"MusicStoreAPI/internal/model"
	"MusicStoreAPI/internal/services"

	"github.com/labstack/echo/v4"
)

func registerConfirmationRoutes(g *echo.Group, svc *services.ConfirmationService) {
	p := g.Group("/confirmation")

	p.GET("", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		return c.JSON(http.StatusOK, svc.Resolve(c.Request().Context(), claims.SessionID))
	})

	// customer reports a completed PayPal transfer
	p.POST("/paid", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		view, err := svc.ConfirmManualPayment(c.Request().Context(), claims.SessionID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, view)
	})

	p.POST("/notice", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		form := new(model.ConfirmationForm)
		if err := c.Bind(form); err != nil {
			return badRequest(c)
		}
		notice, err := svc.SubmitPaymentNotice(c.Request().Context(), claims.SessionID, *form)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusAccepted, notice)
	})
}
