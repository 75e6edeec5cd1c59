package repository

import (
	"context"

	"github.com/amirphl/mini-crm/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// CommunicationRepositoryImpl implements CommunicationRepository interface.
// Entries are only ever inserted.
type CommunicationRepositoryImpl struct {
	*BaseRepository[models.Communication, models.CommunicationFilter]
}

func NewCommunicationRepository(db *gorm.DB) CommunicationRepository {
	return &CommunicationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Communication, models.CommunicationFilter](db),
	}
}

// ListByCampaign returns log entries latest first, restricted to one campaign when campaignID is set
func (r *CommunicationRepositoryImpl) ListByCampaign(ctx context.Context, campaignID *uuid.UUID) ([]*models.Communication, error) {
	entries, err := r.ByFilter(ctx, models.CommunicationFilter{CampaignID: campaignID}, "sent_at DESC", 0, 0)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch communications")
	}
	return entries, nil
}

func (r *CommunicationRepositoryImpl) ByFilter(ctx context.Context, filter models.CommunicationFilter, orderBy string, limit, offset int) ([]*models.Communication, error) {
	db := r.getDB(ctx)

	var entries []*models.Communication
	query := r.applyFilter(db, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *CommunicationRepositoryImpl) Count(ctx context.Context, filter models.CommunicationFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	if err := r.applyFilter(db.Model(&models.Communication{}), filter).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count communications")
	}

	return count, nil
}

func (r *CommunicationRepositoryImpl) applyFilter(query *gorm.DB, filter models.CommunicationFilter) *gorm.DB {
	if filter.CampaignID != nil {
		query = query.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	return query
}
