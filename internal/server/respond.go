package server

import (
	"time"

	"github.com/gin-gonic/gin"
)

// envelope is the uniform response wrapper.
type envelope struct {
	Data      any       `json:"data,omitempty"`
	Message   string    `json:"message,omitempty"`
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{
		Data:      data,
		Success:   true,
		Timestamp: time.Now().UTC(),
	})
}

func respondMessage(c *gin.Context, status int, data any, message string) {
	c.JSON(status, envelope{
		Data:      data,
		Message:   message,
		Success:   true,
		Timestamp: time.Now().UTC(),
	})
}
