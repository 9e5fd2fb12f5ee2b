// Package jobs holds the background work scheduled alongside the API.
package jobs

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	pmodels "github.com/c14220110/hms-backend/internal/pharmacy/models"
	"github.com/c14220110/hms-backend/pkg/events"
	"github.com/c14220110/hms-backend/pkg/metrics"
)

// AlertSource is satisfied by the pharmacy service.
type AlertSource interface {
	Alerts(ctx context.Context) (*pmodels.InventoryAlerts, error)
}

// StockSweep refreshes the inventory alert gauges and notifies dashboards
// when anything needs attention.
type StockSweep struct {
	Source AlertSource
	Events events.Publisher
	Log    zerolog.Logger
}

func NewStockSweep(src AlertSource, pub events.Publisher, log zerolog.Logger) *StockSweep {
	return &StockSweep{Source: src, Events: pub, Log: log}
}

func names(meds []pmodels.Medicine) []string {
	out := make([]string, 0, len(meds))
	for _, m := range meds {
		out = append(out, m.Name)
	}
	return out
}

// Run performs one sweep.
func (s *StockSweep) Run(ctx context.Context) error {
	alerts, err := s.Source.Alerts(ctx)
	if err != nil {
		return err
	}
	metrics.LowStockItems.WithLabelValues("expired").Set(float64(len(alerts.Expired)))
	metrics.LowStockItems.WithLabelValues("expiring_soon").Set(float64(len(alerts.ExpiringSoon)))
	metrics.LowStockItems.WithLabelValues("low_stock").Set(float64(len(alerts.LowStock)))

	if len(alerts.Expired)+len(alerts.ExpiringSoon)+len(alerts.LowStock) == 0 {
		return nil
	}
	s.Events.Publish(ctx, events.New(events.StockAlert, map[string]interface{}{
		"source":        "sweep",
		"expired":       names(alerts.Expired),
		"expiring_soon": names(alerts.ExpiringSoon),
		"low_stock":     names(alerts.LowStock),
	}))
	s.Log.Warn().
		Int("expired", len(alerts.Expired)).
		Int("expiring_soon", len(alerts.ExpiringSoon)).
		Int("low_stock", len(alerts.LowStock)).
		Msg("inventory needs attention")
	return nil
}

// Start schedules the sweep every interval, running once immediately.
// The caller stops the returned scheduler on shutdown.
func (s *StockSweep) Start(ctx context.Context, interval time.Duration) (*gocron.Scheduler, error) {
	if interval <= 0 {
		interval = time.Hour
	}
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()
	_, err := scheduler.Every(interval).Do(func() {
		if err := s.Run(ctx); err != nil {
			s.Log.Error().Err(err).Msg("stock sweep failed")
		}
	})
	if err != nil {
		return nil, err
	}
	scheduler.StartAsync()
	s.Log.Info().Dur("interval", interval).Msg("stock sweep scheduled")
	return scheduler, nil
}
