// Package respond writes the JSON envelope shared by every endpoint and by the
// request pipeline middleware.
package respond

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/memo/internal/apperr"
)

type Envelope struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data"`
	Error     *ErrorBody `json:"error"`
	Timestamp time.Time  `json:"timestamp"`
}

type ErrorBody struct {
	Status      int               `json:"status"`
	Message     string            `json:"message"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

// OK writes a successful envelope with the given status.
func OK(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data, Timestamp: time.Now().UTC()})
}

// Error writes err as a failed envelope. Internal failures are logged with the
// underlying cause and reported without detail.
func Error(c *gin.Context, err error) {
	ae := apperr.From(err)
	status := ae.Status()
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Str("request_id", c.GetString("request_id")).
			Msg("request failed")
	}
	c.JSON(status, Envelope{
		Success: false,
		Error: &ErrorBody{
			Status:      status,
			Message:     ae.Message,
			FieldErrors: ae.FieldErrors,
		},
		Timestamp: time.Now().UTC(),
	})
}

// Abort writes err and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
