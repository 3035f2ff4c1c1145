package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kestrelmedia/clipflow-backend/internal/apierr"
)

// ErrorEnvelope matches the public error contract: a stable machine code
// plus a human-readable message, nothing internal.
type ErrorEnvelope struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Code: code, Error: msg})
}

// RespondAPIError maps a service-layer apierr onto the wire envelope.
func RespondAPIError(c *gin.Context, aerr *apierr.Error) {
	if aerr == nil {
		RespondError(c, http.StatusInternalServerError, apierr.CodeInternal, nil)
		return
	}
	status := aerr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	RespondError(c, status, aerr.Code, aerr.Err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
