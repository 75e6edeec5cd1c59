package utils

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Campaign dispatch constants
const (
	// FallbackDisplayName is used when a customer has no usable name on record
	FallbackDisplayName = "Valued Customer"

	// CampaignSubjectPrefix prefixes the campaign name in every dispatched email subject
	CampaignSubjectPrefix = "Campaign: "

	// DefaultCampaignFromEmail is the sender used for campaign emails when none is configured
	DefaultCampaignFromEmail = "onboarding@resend.dev"
)

// Order constants
const (
	DefaultOrderStatus = "pending"
)
