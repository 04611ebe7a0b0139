package notification

type NotificationResponse struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

type MarkReadResponse struct {
	Message string `json:"message"`
}
