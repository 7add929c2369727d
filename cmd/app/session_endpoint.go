package main

import (
	"net/http"

	"MusicStoreAPI/internal/middleware"

	"github.com/labstack/echo/v4"
)

func registerSessionRoutes(g *echo.Group, tokens *middleware.SessionTokens, m ...echo.MiddlewareFunc) {
	// POST /storefront/sessions
	g.POST("/sessions", func(c echo.Context) error {
		token, sid, err := tokens.Issue()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not start session"})
		}
		return c.JSON(http.StatusCreated, map[string]string{"token": token, "session_id": sid})
	}, m...)
}
