package businessflow

import (
	"context"

	"github.com/amirphl/mini-crm/app/dto"
	"github.com/amirphl/mini-crm/models"
	"github.com/amirphl/mini-crm/repository"
	"github.com/amirphl/mini-crm/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CommunicationFlow exposes the communication log outside of a dispatch
type CommunicationFlow interface {
	ListCommunications(ctx context.Context, req *dto.ListCommunicationsRequest) ([]*models.Communication, error)
	LogCommunication(ctx context.Context, req *dto.LogCommunicationRequest, metadata *ClientMetadata) (*models.Communication, error)
}

// CommunicationFlowImpl implements the communication log flow
type CommunicationFlowImpl struct {
	communicationRepo repository.CommunicationRepository
	campaignRepo      repository.CampaignRepository
	customerRepo      repository.CustomerRepository
	logger            *zap.Logger
}

// NewCommunicationFlow creates a new communication flow instance
func NewCommunicationFlow(
	communicationRepo repository.CommunicationRepository,
	campaignRepo repository.CampaignRepository,
	customerRepo repository.CustomerRepository,
	logger *zap.Logger,
) CommunicationFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommunicationFlowImpl{
		communicationRepo: communicationRepo,
		campaignRepo:      campaignRepo,
		customerRepo:      customerRepo,
		logger:            logger.Named("communication"),
	}
}

func (s *CommunicationFlowImpl) ListCommunications(ctx context.Context, req *dto.ListCommunicationsRequest) ([]*models.Communication, error) {
	var campaignID *uuid.UUID
	if req.CampaignID != "" {
		id, err := uuid.Parse(req.CampaignID)
		if err != nil {
			return nil, ErrInvalidCampaignID
		}
		campaignID = &id
	}

	entries, err := s.communicationRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, NewBusinessError("COMMUNICATION_LIST_FAILED", "Failed to list communications", err)
	}
	return entries, nil
}

// LogCommunication appends one entry. Campaign and customer must exist.
func (s *CommunicationFlowImpl) LogCommunication(ctx context.Context, req *dto.LogCommunicationRequest, metadata *ClientMetadata) (*models.Communication, error) {
	campaignID, err := uuid.Parse(req.CampaignID)
	if err != nil {
		return nil, ErrInvalidCampaignID
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, ErrInvalidCustomerID
	}
	status := models.CommunicationStatus(req.Status)
	if !status.Valid() {
		return nil, ErrInvalidCommunicationStatus
	}

	campaign, err := s.campaignRepo.ByID(ctx, campaignID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to fetch campaign", err)
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	customer, err := s.customerRepo.ByID(ctx, customerID)
	if err != nil {
		return nil, NewBusinessError("CUSTOMER_LOOKUP_FAILED", "Failed to fetch customer", err)
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}

	entry := &models.Communication{
		CampaignID:        campaignID,
		CustomerID:        customerID,
		Message:           req.Message,
		Status:            status,
		DeliveryReceiptAt: req.DeliveryReceiptAt,
	}
	if req.SentAt != nil {
		entry.SentAt = req.SentAt.UTC()
	}
	if status == models.CommunicationStatusDelivered && entry.DeliveryReceiptAt == nil {
		entry.DeliveryReceiptAt = utils.UTCNowPtr()
	}

	if err := s.communicationRepo.Save(ctx, entry); err != nil {
		return nil, NewBusinessError("COMMUNICATION_LOG_FAILED", "Failed to log communication", err)
	}

	s.logger.Debug("communication logged", append(metadata.fields(), zap.String("communication_id", entry.ID.String()))...)
	return entry, nil
}
