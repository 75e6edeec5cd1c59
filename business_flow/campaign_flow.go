// Package businessflow contains the core business logic and use cases for campaign workflows
package businessflow

import (
	"bytes"
	"context"
	"encoding/json"
	"html"
	"sync/atomic"
	"time"

	"github.com/amirphl/mini-crm/app/dto"
	"github.com/amirphl/mini-crm/app/services"
	"github.com/amirphl/mini-crm/config"
	"github.com/amirphl/mini-crm/models"
	"github.com/amirphl/mini-crm/repository"
	"github.com/amirphl/mini-crm/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// CampaignFlow handles the campaign business logic
type CampaignFlow interface {
	ListCampaigns(ctx context.Context) ([]*models.Campaign, error)
	GetCampaign(ctx context.Context, id string) (*models.Campaign, error)
	CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CreateCampaignResult, error)
	UpdateCampaign(ctx context.Context, req *dto.UpdateCampaignRequest, metadata *ClientMetadata) (*models.Campaign, error)
	ListCampaignCommunications(ctx context.Context, id string) ([]*models.Communication, error)
}

// CampaignFlowImpl implements the campaign business flow
type CampaignFlowImpl struct {
	campaignRepo      repository.CampaignRepository
	customerRepo      repository.CustomerRepository
	communicationRepo repository.CommunicationRepository
	mailer            services.MailService
	dispatchConfig    config.DispatchConfig
	logger            *zap.Logger
}

// NewCampaignFlow creates a new campaign flow instance
func NewCampaignFlow(
	campaignRepo repository.CampaignRepository,
	customerRepo repository.CustomerRepository,
	communicationRepo repository.CommunicationRepository,
	mailer services.MailService,
	dispatchConfig config.DispatchConfig,
	logger *zap.Logger,
) CampaignFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CampaignFlowImpl{
		campaignRepo:      campaignRepo,
		customerRepo:      customerRepo,
		communicationRepo: communicationRepo,
		mailer:            mailer,
		dispatchConfig:    dispatchConfig,
		logger:            logger.Named("campaign"),
	}
}

// ListCampaigns returns every campaign, newest first
func (s *CampaignFlowImpl) ListCampaigns(ctx context.Context) ([]*models.Campaign, error) {
	campaigns, err := s.campaignRepo.ListNewestFirst(ctx)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to list campaigns", err)
	}
	return campaigns, nil
}

// GetCampaign returns one campaign by id
func (s *CampaignFlowImpl) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	campaignID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidCampaignID
	}

	campaign, err := s.campaignRepo.ByID(ctx, campaignID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to fetch campaign", err)
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	return campaign, nil
}

// CreateCampaign records a campaign and sends it to every customer. The call returns after
// the fan-out completes with the persisted counters; per-recipient send failures are counted,
// storage failures abort the dispatch and leave the campaign in the failed status.
// Cancellation and deadlines of ctx are ignored: once started, every customer gets an attempt.
func (s *CampaignFlowImpl) CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CreateCampaignResult, error) {
	ctx = context.WithoutCancel(ctx)
	started := time.Now()

	rules, err := normalizeAudienceRules(req.AudienceRules)
	if err != nil {
		return nil, err
	}

	customers, err := s.customerRepo.ListNewestFirst(ctx)
	if err != nil {
		return nil, NewBusinessError("CUSTOMER_LOOKUP_FAILED", "Failed to fetch customers", err)
	}

	campaign := &models.Campaign{
		Name:          req.Name,
		Objective:     req.Objective,
		AudienceRules: rules,
		Message:       req.Message,
		AudienceSize:  len(customers),
		Status:        models.CampaignStatusDraft,
	}
	if err := s.campaignRepo.Save(ctx, campaign); err != nil {
		return nil, NewBusinessError("CAMPAIGN_CREATION_FAILED", "Failed to create campaign", err)
	}

	log := s.logger.With(append(metadata.fields(),
		zap.String("campaign_id", campaign.ID.String()),
		zap.Int("audience_size", len(customers)))...)
	log.Info("campaign dispatch started")

	sending := models.CampaignStatusSending
	if _, err := s.campaignRepo.Update(ctx, campaign.ID, models.CampaignUpdate{Status: &sending}); err != nil {
		s.markFailed(ctx, campaign.ID, log)
		return nil, NewBusinessError("CAMPAIGN_DISPATCH_FAILED", "Failed to start campaign dispatch", err)
	}

	stopHeartbeat := s.startHeartbeat(ctx, campaign.ID, log)
	outcomes, missingPlaceholder, err := s.dispatch(ctx, campaign, customers)
	stopHeartbeat()
	if err != nil {
		log.Error("campaign dispatch aborted", zap.Error(err))
		s.markFailed(ctx, campaign.ID, log)
		campaignDispatchDuration.WithLabelValues(string(models.CampaignStatusFailed)).Observe(time.Since(started).Seconds())
		return nil, NewBusinessError("CAMPAIGN_DISPATCH_FAILED", "Campaign dispatch failed", err)
	}

	stats := aggregate(outcomes)
	completed := models.CampaignStatusCompleted
	updated, err := s.campaignRepo.Update(ctx, campaign.ID, models.CampaignUpdate{
		Sent:      &stats.Sent,
		Delivered: &stats.Delivered,
		Failed:    &stats.Failed,
		Status:    &completed,
	})
	if err != nil {
		s.markFailed(ctx, campaign.ID, log)
		return nil, NewBusinessError("CAMPAIGN_STATS_UPDATE_FAILED", "Failed to record campaign stats", err)
	}
	if updated == nil {
		return nil, ErrCampaignNotFound
	}

	campaignDispatchDuration.WithLabelValues(string(models.CampaignStatusCompleted)).Observe(time.Since(started).Seconds())
	if missingPlaceholder {
		log.Warn("campaign message has no name placeholder, sent without personalization")
	}
	log.Info("campaign dispatch completed",
		zap.Int("sent", stats.Sent),
		zap.Int("delivered", stats.Delivered),
		zap.Int("failed", stats.Failed))

	return &dto.CreateCampaignResult{
		Campaign:           updated,
		Stats:              stats,
		MissingPlaceholder: missingPlaceholder,
	}, nil
}

// UpdateCampaign applies a partial update of counters and status
func (s *CampaignFlowImpl) UpdateCampaign(ctx context.Context, req *dto.UpdateCampaignRequest, metadata *ClientMetadata) (*models.Campaign, error) {
	campaignID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, ErrInvalidCampaignID
	}

	update := models.CampaignUpdate{
		Sent:      req.Sent,
		Delivered: req.Delivered,
		Failed:    req.Failed,
	}
	if req.Status != nil {
		status := models.CampaignStatus(*req.Status)
		if !status.Valid() {
			return nil, ErrInvalidCampaignStatus
		}
		update.Status = &status
	}
	if update.IsEmpty() {
		return nil, ErrCampaignUpdateEmpty
	}

	campaign, err := s.campaignRepo.Update(ctx, campaignID, update)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_UPDATE_FAILED", "Failed to update campaign", err)
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}

	s.logger.Info("campaign updated", append(metadata.fields(), zap.String("campaign_id", campaign.ID.String()))...)
	return campaign, nil
}

// ListCampaignCommunications returns the log entries of one campaign, newest first
func (s *CampaignFlowImpl) ListCampaignCommunications(ctx context.Context, id string) ([]*models.Communication, error) {
	campaignID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidCampaignID
	}

	entries, err := s.communicationRepo.ListByCampaign(ctx, &campaignID)
	if err != nil {
		return nil, NewBusinessError("COMMUNICATION_LIST_FAILED", "Failed to list communications", err)
	}
	return entries, nil
}

// recipientOutcome is the result of one send attempt
type recipientOutcome struct {
	attempted bool
	delivered bool
}

// dispatch sends the campaign to every customer with at most Concurrency sends in flight.
// Outcomes are indexed by the customer's position in the list.
func (s *CampaignFlowImpl) dispatch(ctx context.Context, campaign *models.Campaign, customers []*models.Customer) ([]recipientOutcome, bool, error) {
	outcomes := make([]recipientOutcome, len(customers))
	var missingPlaceholder atomic.Bool

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())

	for i, customer := range customers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			delivered, personalized, err := s.sendToRecipient(gctx, campaign, customer)
			if err != nil {
				return err
			}
			if !personalized {
				missingPlaceholder.Store(true)
			}
			outcomes[i] = recipientOutcome{attempted: true, delivered: delivered}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, false, err
	}
	return outcomes, missingPlaceholder.Load(), nil
}

// sendToRecipient personalizes the message, sends it and logs the attempt.
// A send failure is an outcome; only storage failures are returned as errors.
func (s *CampaignFlowImpl) sendToRecipient(ctx context.Context, campaign *models.Campaign, customer *models.Customer) (bool, bool, error) {
	current, err := s.customerRepo.ByEmail(ctx, customer.Email)
	if err != nil {
		return false, false, errors.Wrapf(err, "failed to re-read customer %s", customer.ID)
	}

	name := ""
	if current != nil {
		name = current.Name
	}
	text, personalized := Personalize(campaign.Message, ResolveDisplayName(name))

	result := s.mailer.Send(ctx, &services.EmailMessage{
		To:      customer.Email,
		From:    s.fromEmail(),
		Subject: utils.CampaignSubjectPrefix + campaign.Name,
		Text:    text,
		HTML:    "<p>" + html.EscapeString(text) + "</p>",
	})

	entry := &models.Communication{
		CampaignID: campaign.ID,
		CustomerID: customer.ID,
		Message:    text,
		Status:     models.CommunicationStatusFailed,
		SentAt:     utils.UTCNow(),
	}
	if result.Success {
		entry.Status = models.CommunicationStatusDelivered
		entry.DeliveryReceiptAt = utils.UTCNowPtr()
	}

	if err := s.communicationRepo.Save(ctx, entry); err != nil {
		return false, false, errors.Wrapf(err, "failed to log communication for customer %s", customer.ID)
	}

	campaignRecipientsTotal.WithLabelValues(string(entry.Status)).Inc()
	if !result.Success {
		s.logger.Debug("campaign send failed",
			zap.String("campaign_id", campaign.ID.String()),
			zap.String("to", utils.RedactEmail(customer.Email)),
			zap.String("error", result.Error))
	}

	return result.Success, personalized, nil
}

// startHeartbeat keeps updated_at of a sending campaign fresh so the stale dispatch sweep
// leaves it alone. It is a no-op when the sweep is disabled.
func (s *CampaignFlowImpl) startHeartbeat(ctx context.Context, id uuid.UUID, log *zap.Logger) func() {
	if s.dispatchConfig.SweepInterval <= 0 || s.dispatchConfig.StaleAfter <= 0 {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.dispatchConfig.StaleAfter / 3)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.campaignRepo.Touch(ctx, id); err != nil {
					log.Warn("campaign heartbeat failed", zap.Error(err))
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// markFailed moves the campaign to the failed status; the request context may already be cancelled
func (s *CampaignFlowImpl) markFailed(ctx context.Context, id uuid.UUID, log *zap.Logger) {
	failed := models.CampaignStatusFailed
	if _, err := s.campaignRepo.Update(context.WithoutCancel(ctx), id, models.CampaignUpdate{Status: &failed}); err != nil {
		log.Error("failed to mark campaign as failed", zap.Error(err))
	}
}

func (s *CampaignFlowImpl) concurrency() int {
	if s.dispatchConfig.Concurrency < 1 {
		return 1
	}
	return s.dispatchConfig.Concurrency
}

func (s *CampaignFlowImpl) fromEmail() string {
	if s.dispatchConfig.FromEmail != "" {
		return s.dispatchConfig.FromEmail
	}
	return utils.DefaultCampaignFromEmail
}

func aggregate(outcomes []recipientOutcome) dto.DispatchStats {
	var stats dto.DispatchStats
	for _, o := range outcomes {
		if !o.attempted {
			continue
		}
		stats.Sent++
		if o.delivered {
			stats.Delivered++
		} else {
			stats.Failed++
		}
	}
	return stats
}

// normalizeAudienceRules stores absent or null rules as an empty object
func normalizeAudienceRules(raw json.RawMessage) (datatypes.JSON, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return datatypes.JSON("{}"), nil
	}
	if trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, ErrInvalidAudienceRules
	}
	return datatypes.JSON(trimmed), nil
}
