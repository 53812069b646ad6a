package dto

import (
	"time"

	"github.com/google/uuid"
)

// NotificationMessage is what the websocket push and the notification email render.
type NotificationMessage struct {
	Id        uuid.UUID              `json:"id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
