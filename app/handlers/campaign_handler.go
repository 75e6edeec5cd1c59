package handlers

import (
	"github.com/amirphl/mini-crm/app/dto"
	businessflow "github.com/amirphl/mini-crm/business_flow"
	"github.com/gofiber/fiber/v3"
)

// CampaignHandler handles campaign HTTP requests
type CampaignHandler struct {
	responder
	campaignFlow businessflow.CampaignFlow
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaignFlow businessflow.CampaignFlow) *CampaignHandler {
	return &CampaignHandler{
		responder:    newResponder(),
		campaignFlow: campaignFlow,
	}
}

// ListCampaigns returns every campaign
// @Summary List Campaigns
// @Tags Campaigns
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Campaign}
// @Router /api/campaigns [get]
func (h *CampaignHandler) ListCampaigns(c fiber.Ctx) error {
	ctx, cancel := requestContext(c, defaultRequestTimeout)
	defer cancel()

	campaigns, err := h.campaignFlow.ListCampaigns(ctx)
	if err != nil {
		return h.businessError(c, err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, campaigns)
}

// GetCampaign returns one campaign
// @Summary Get Campaign
// @Tags Campaigns
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} dto.APIResponse{data=models.Campaign}
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/campaigns/{id} [get]
func (h *CampaignHandler) GetCampaign(c fiber.Ctx) error {
	ctx, cancel := requestContext(c, defaultRequestTimeout)
	defer cancel()

	campaign, err := h.campaignFlow.GetCampaign(ctx, c.Params("id"))
	if err != nil {
		return h.businessError(c, err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, campaign)
}

// CreateCampaign records the campaign and sends it to every customer before responding
// @Summary Create and dispatch Campaign
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param request body dto.CreateCampaignRequest true "Campaign data"
// @Success 201 {object} dto.CreateCampaignResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 500 {object} dto.ErrorResponse "Storage failure"
// @Router /api/campaigns [post]
func (h *CampaignHandler) CreateCampaign(c fiber.Ctx) error {
	var req dto.CreateCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", []string{err.Error()})
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	// no deadline: the dispatch runs to completion once started
	result, err := h.campaignFlow.CreateCampaign(c.Context(), &req, clientMetadata(c))
	if err != nil {
		return h.businessError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.CreateCampaignResponse{
		Success: true,
		Data:    result.Campaign,
		Stats:   result.Stats,
	})
}

// UpdateCampaign applies a partial update of counters and status
// @Summary Update Campaign
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param id path string true "Campaign ID"
// @Param request body dto.UpdateCampaignRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=models.Campaign}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "Campaign not found"
// @Router /api/campaigns/{id} [patch]
func (h *CampaignHandler) UpdateCampaign(c fiber.Ctx) error {
	var req dto.UpdateCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", []string{err.Error()})
	}
	req.ID = c.Params("id")
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := requestContext(c, defaultRequestTimeout)
	defer cancel()

	campaign, err := h.campaignFlow.UpdateCampaign(ctx, &req, clientMetadata(c))
	if err != nil {
		return h.businessError(c, err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, campaign)
}

// ListCampaignCommunications returns the log entries of one campaign
// @Summary List Campaign Communications
// @Tags Campaigns
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Communication}
// @Router /api/campaigns/{id}/communications [get]
func (h *CampaignHandler) ListCampaignCommunications(c fiber.Ctx) error {
	ctx, cancel := requestContext(c, defaultRequestTimeout)
	defer cancel()

	entries, err := h.campaignFlow.ListCampaignCommunications(ctx, c.Params("id"))
	if err != nil {
		return h.businessError(c, err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, entries)
}
