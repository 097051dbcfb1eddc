package httpdto

type BroadcastRequest struct {
	Content string `json:"content" binding:"required"`
}

type BroadcastResponse struct {
	Sent int `json:"sent"`
}
