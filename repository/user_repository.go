package repository

import (
	"context"

	"github.com/amirphl/mini-crm/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepositoryImpl implements UserRepository interface
type UserRepositoryImpl struct {
	*BaseRepository[models.User, struct{}]
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{
		BaseRepository: NewBaseRepository[models.User, struct{}](db),
	}
}

// ByGoogleID retrieves a user by Google subject id. A missing row yields (nil, nil).
func (r *UserRepositoryImpl) ByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	db := r.getDB(ctx)

	var user models.User
	err := db.Where("google_id = ?", googleID).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to fetch user")
	}

	return &user, nil
}

// UpsertByGoogleID records a login: profile fields and last_login are refreshed for a known subject
func (r *UserRepositoryImpl) UpsertByGoogleID(ctx context.Context, user *models.User) (*models.User, error) {
	var stored *models.User

	err := WithTransaction(ctx, r.DB, func(txCtx context.Context) error {
		err := r.getDB(txCtx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "google_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "name", "avatar_url", "last_login"}),
		}).Create(user).Error
		if err != nil {
			return errors.Wrap(err, "failed to upsert user")
		}

		stored, err = r.ByGoogleID(txCtx, user.GoogleID)
		if err != nil {
			return err
		}
		if stored == nil {
			return errors.Errorf("failed to upsert user: %s not readable after write", user.GoogleID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stored, nil
}
