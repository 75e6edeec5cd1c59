package businessflow

import (
	"context"

	"github.com/amirphl/mini-crm/app/dto"
	"github.com/amirphl/mini-crm/app/services"
	"github.com/amirphl/mini-crm/models"
	"github.com/amirphl/mini-crm/repository"
	"github.com/amirphl/mini-crm/utils"
	"go.uber.org/zap"
)

// AuthFlow handles Google sign-in. No session is issued.
type AuthFlow interface {
	GoogleLogin(ctx context.Context, req *dto.GoogleLoginRequest, metadata *ClientMetadata) (*dto.GoogleLoginResponse, error)
}

// AuthFlowImpl implements the sign-in flow
type AuthFlowImpl struct {
	verifier services.IdentityVerifier
	userRepo repository.UserRepository
	logger   *zap.Logger
}

// NewAuthFlow creates a new auth flow instance
func NewAuthFlow(verifier services.IdentityVerifier, userRepo repository.UserRepository, logger *zap.Logger) AuthFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthFlowImpl{
		verifier: verifier,
		userRepo: userRepo,
		logger:   logger.Named("auth"),
	}
}

// GoogleLogin verifies the ID token and records the user, refreshing the profile on every login
func (s *AuthFlowImpl) GoogleLogin(ctx context.Context, req *dto.GoogleLoginRequest, metadata *ClientMetadata) (*dto.GoogleLoginResponse, error) {
	profile, err := s.verifier.Verify(ctx, req.Token)
	if err != nil {
		s.logger.Warn("google token rejected", append(metadata.fields(), zap.Error(err))...)
		return nil, NewBusinessError("IDENTITY_VERIFICATION_FAILED", "Authentication failed", ErrIdentityVerificationFailed)
	}

	user := &models.User{
		GoogleID:  profile.Subject,
		Email:     profile.Email,
		Name:      profile.Name,
		LastLogin: utils.UTCNow(),
	}
	if profile.AvatarURL != "" {
		user.AvatarURL = utils.ToPtr(profile.AvatarURL)
	}

	saved, err := s.userRepo.UpsertByGoogleID(ctx, user)
	if err != nil {
		return nil, NewBusinessError("USER_UPSERT_FAILED", "Failed to save user", err)
	}

	s.logger.Info("user signed in", append(metadata.fields(),
		zap.String("user_id", saved.ID.String()),
		zap.String("email", utils.RedactEmail(saved.Email)))...)

	return &dto.GoogleLoginResponse{
		Success: true,
		User:    ToUserResponse(saved),
	}, nil
}
