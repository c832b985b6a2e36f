package models

// OutboundMessageRequest is a text message pushed to a WhatsApp recipient or group.
type OutboundMessageRequest struct {
	To      string `json:"to" binding:"required"`
	Message string `json:"message" binding:"required"`
}
