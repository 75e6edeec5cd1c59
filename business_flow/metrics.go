package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	campaignRecipientsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_campaign_recipients_total",
			Help: "Campaign send attempts by delivery outcome",
		},
		[]string{"outcome"},
	)

	campaignDispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crm_campaign_dispatch_duration_seconds",
			Help:    "Wall time of a campaign dispatch from creation to final status",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"status"},
	)
)
