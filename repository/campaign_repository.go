package repository

import (
	"context"

	"github.com/amirphl/mini-crm/models"
	"github.com/amirphl/mini-crm/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// CampaignRepositoryImpl implements the CampaignRepository interface
type CampaignRepositoryImpl struct {
	*BaseRepository[models.Campaign, models.CampaignFilter]
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &CampaignRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Campaign, models.CampaignFilter](db),
	}
}

// ListNewestFirst returns every campaign, most recently created first
func (r *CampaignRepositoryImpl) ListNewestFirst(ctx context.Context) ([]*models.Campaign, error) {
	campaigns, err := r.ByFilter(ctx, models.CampaignFilter{}, "created_at DESC", 0, 0)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch campaigns")
	}
	return campaigns, nil
}

// Update applies the non-nil fields of update in a single statement and returns the
// stored campaign. An unknown id yields (nil, nil).
func (r *CampaignRepositoryImpl) Update(ctx context.Context, id uuid.UUID, update models.CampaignUpdate) (*models.Campaign, error) {
	if update.IsEmpty() {
		return r.ByID(ctx, id)
	}

	db := r.getDB(ctx)

	cols := update.Columns()
	cols["updated_at"] = utils.UTCNow()

	res := db.Model(&models.Campaign{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "failed to update campaign")
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	return r.ByID(ctx, id)
}

// Touch bumps updated_at while the campaign is sending. Other statuses are left untouched.
func (r *CampaignRepositoryImpl) Touch(ctx context.Context, id uuid.UUID) error {
	db := r.getDB(ctx)

	err := db.Model(&models.Campaign{}).
		Where("id = ? AND status = ?", id, models.CampaignStatusSending).
		Update("updated_at", utils.UTCNow()).Error
	if err != nil {
		return errors.Wrap(err, "failed to touch campaign")
	}
	return nil
}

// ByFilter retrieves campaigns based on filter criteria
func (r *CampaignRepositoryImpl) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
	db := r.getDB(ctx)

	var campaigns []*models.Campaign
	query := r.applyFilter(db, filter)

	// Apply ordering
	if orderBy != "" {
		query = query.Order(orderBy)
	}

	// Apply pagination
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&campaigns).Error; err != nil {
		return nil, err
	}

	return campaigns, nil
}

// Count returns the number of campaigns matching the filter
func (r *CampaignRepositoryImpl) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.Campaign{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count campaigns")
	}

	return count, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *CampaignRepositoryImpl) applyFilter(query *gorm.DB, filter models.CampaignFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	if filter.UpdatedBefore != nil {
		query = query.Where("updated_at < ?", *filter.UpdatedBefore)
	}

	return query
}
