package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/janekbaraniewski/wfdash/internal/core"
)

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// classify maps the core error taxonomy onto HTTP.
func classify(err error) (int, string) {
	var schemaErr *core.SchemaError
	var dateErr *core.DateFormatError
	switch {
	case errors.As(err, &schemaErr):
		return http.StatusBadRequest, "schema_error"
	case errors.As(err, &dateErr):
		return http.StatusBadRequest, "invalid_date"
	case errors.Is(err, core.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, core.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "store_unavailable"
	case errors.Is(err, core.ErrSourceUnavailable):
		return http.StatusBadGateway, "source_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func respondErr(c *gin.Context, err error) {
	status, code := classify(err)
	_ = c.Error(err)
	respondError(c, status, code, err)
}
