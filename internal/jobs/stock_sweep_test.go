package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pmodels "github.com/c14220110/hms-backend/internal/pharmacy/models"
	"github.com/c14220110/hms-backend/pkg/events"
	"github.com/c14220110/hms-backend/pkg/metrics"
)

type fakeSource struct {
	alerts *pmodels.InventoryAlerts
	err    error
}

func (f fakeSource) Alerts(context.Context) (*pmodels.InventoryAlerts, error) {
	return f.alerts, f.err
}

func TestRun_PublishesWhenItemsNeedAttention(t *testing.T) {
	rec := &events.Recorder{}
	sweep := NewStockSweep(fakeSource{alerts: &pmodels.InventoryAlerts{
		LowStock: []pmodels.Medicine{{Name: "Amoxicillin"}, {Name: "Paracetamol"}},
		Expired:  []pmodels.Medicine{{Name: "Insulin"}},
	}}, rec, zerolog.Nop())

	require.NoError(t, sweep.Run(context.Background()))
	assert.Equal(t, []string{events.StockAlert}, rec.Types())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.LowStockItems.WithLabelValues("low_stock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.LowStockItems.WithLabelValues("expired")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.LowStockItems.WithLabelValues("expiring_soon")))
}

func TestRun_QuietWhenStockHealthy(t *testing.T) {
	rec := &events.Recorder{}
	sweep := NewStockSweep(fakeSource{alerts: &pmodels.InventoryAlerts{}}, rec, zerolog.Nop())

	require.NoError(t, sweep.Run(context.Background()))
	assert.Empty(t, rec.Events)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.LowStockItems.WithLabelValues("low_stock")))
}

func TestRun_SourceError(t *testing.T) {
	sweep := NewStockSweep(fakeSource{err: errors.New("db down")}, events.Nop{}, zerolog.Nop())
	assert.Error(t, sweep.Run(context.Background()))
}
