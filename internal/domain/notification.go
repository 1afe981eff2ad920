package domain

import "time"

type NotificationType string

const NotificationPriceAlert NotificationType = "PRICE_ALERT"

type Notification struct {
	ID        uint             `json:"id"`
	UserID    uint             `json:"userId"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	LinkURL   string           `json:"linkUrl"`
	Read      bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}
