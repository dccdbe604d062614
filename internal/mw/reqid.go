package mw

import (
	"github.com/gin-gonic/gin"

	"dorm-reservation-backend/internal/reqid"
)

// RequestID reuses the caller's X-Request-ID or assigns a new one, stores it in
// the request context and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(reqid.Header)
		if id == "" {
			id = reqid.New()
		}
		c.Request = c.Request.WithContext(reqid.With(c.Request.Context(), id))
		c.Header(reqid.Header, id)
		c.Next()
	}
}
