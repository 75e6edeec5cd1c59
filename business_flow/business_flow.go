// Package businessflow contains the core business logic and use cases of the CRM
package businessflow

import (
	"github.com/amirphl/mini-crm/app/dto"
	"github.com/amirphl/mini-crm/models"
	"go.uber.org/zap"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client information attached to flow logs
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// fields renders the metadata as zap fields; a nil receiver yields none
func (cm *ClientMetadata) fields() []zap.Field {
	if cm == nil {
		return nil
	}
	return []zap.Field{
		zap.String("request_id", cm.RequestID),
		zap.String("ip", cm.IPAddress),
	}
}

// ToUserResponse converts a user model to its public view
func ToUserResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
	}
}
