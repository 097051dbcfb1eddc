package httpdto

import (
	"github.com/JabulaniUsen/new-leenk/internal/domain"

	"github.com/google/uuid"
)

type BusinessResponse struct {
	ID                 uuid.UUID `json:"id"`
	Email              string    `json:"email"`
	BusinessName       string    `json:"business_name"`
	Phone              string    `json:"phone,omitempty"`
	Address            string    `json:"address,omitempty"`
	BusinessLogo       string    `json:"business_logo,omitempty"`
	Online             bool      `json:"online"`
	AwayMessage        string    `json:"away_message,omitempty"`
	AwayMessageEnabled bool      `json:"away_message_enabled"`
}

func NewBusinessResponse(b domain.Business) BusinessResponse {
	return BusinessResponse{
		ID:                 b.ID,
		Email:              b.Email,
		BusinessName:       b.BusinessName,
		Phone:              b.Phone,
		Address:            b.Address,
		BusinessLogo:       b.BusinessLogo,
		Online:             b.Online,
		AwayMessage:        b.AwayMessage,
		AwayMessageEnabled: b.AwayMessageEnabled,
	}
}

type UpdateBusinessProfileRequest struct {
	BusinessName string `json:"business_name" binding:"required"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	BusinessLogo string `json:"business_logo"`
}

type UpdateAwaySettingsRequest struct {
	AwayMessage string `json:"away_message"`
	Enabled     bool   `json:"enabled"`
}

type SetOnlineRequest struct {
	Online bool `json:"online"`
}
