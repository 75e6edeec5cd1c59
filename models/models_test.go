package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerBeforeCreate(t *testing.T) {
	c := &Customer{Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, c.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.False(t, c.CreatedAt.IsZero())

	id := uuid.New()
	kept := &Customer{ID: id}
	require.NoError(t, kept.BeforeCreate(nil))
	assert.Equal(t, id, kept.ID)
}

func TestCampaignBeforeCreateDefaults(t *testing.T) {
	c := &Campaign{Name: "Spring", Message: "Hi {name}!"}
	require.NoError(t, c.BeforeCreate(nil))
	assert.Equal(t, CampaignStatusDraft, c.Status)
	assert.JSONEq(t, `{}`, string(c.AudienceRules))
	assert.False(t, c.IsFinished())
}

func TestOrderBeforeCreateDefaults(t *testing.T) {
	o := &Order{CustomerID: uuid.New(), TotalAmount: decimal.RequireFromString("12.50")}
	require.NoError(t, o.BeforeCreate(nil))
	assert.Equal(t, "pending", o.Status)
	assert.False(t, o.OrderDate.IsZero())

	raw, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"total_amount":12.5`)
}

func TestCampaignStatusValid(t *testing.T) {
	for _, s := range []CampaignStatus{CampaignStatusDraft, CampaignStatusSending, CampaignStatusCompleted, CampaignStatusFailed} {
		assert.True(t, s.Valid(), s.String())
	}
	assert.False(t, CampaignStatus("archived").Valid())

	var scanned CampaignStatus
	require.NoError(t, scanned.Scan([]byte("sending")))
	assert.Equal(t, CampaignStatusSending, scanned)
	assert.Error(t, scanned.Scan(42))
}

func TestCommunicationStatusValue(t *testing.T) {
	v, err := CommunicationStatusDelivered.Value()
	require.NoError(t, err)
	assert.Equal(t, "delivered", v)

	_, err = CommunicationStatus("bounced").Value()
	assert.Error(t, err)
}

func TestCampaignUpdateColumns(t *testing.T) {
	assert.True(t, CampaignUpdate{}.IsEmpty())

	sent, status := 3, CampaignStatusCompleted
	cols := CampaignUpdate{Sent: &sent, Status: &status}.Columns()
	assert.Equal(t, map[string]any{"sent": 3, "status": CampaignStatusCompleted}, cols)
}
