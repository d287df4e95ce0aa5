package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devagency/agency-api/internal/core/domain"
)

// successResponse is the envelope for every 2xx response.
type successResponse struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message,omitempty"`
	Data       any                `json:"data,omitempty"`
	Pagination *domain.Pagination `json:"pagination,omitempty"`
}

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

func respondOK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, successResponse{Success: true, Data: data})
}

func respondCreated(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusCreated, successResponse{Success: true, Message: message, Data: data})
}

func respondMessage(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusOK, successResponse{Success: true, Message: message, Data: data})
}

func respondList(c echo.Context, data any, p domain.Pagination) error {
	return c.JSON(http.StatusOK, successResponse{Success: true, Data: data, Pagination: &p})
}
