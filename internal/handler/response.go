package handler

import "github.com/labstack/echo/v4"

const statusSuccess = "success"

// Envelope wraps successful resource responses.
type Envelope struct {
	Status  string      `json:"status" example:"success"`
	Results *int        `json:"results,omitempty" example:"1"`
	Data    interface{} `json:"data"`
}

func respond(c echo.Context, code int, data interface{}) error {
	return c.JSON(code, Envelope{Status: statusSuccess, Data: data})
}

func respondList(c echo.Context, code int, results int, data interface{}) error {
	return c.JSON(code, Envelope{Status: statusSuccess, Results: &results, Data: data})
}
