package observability

import (
	"testing"
	"time"

	"github.com/danmuck/steerctl/internal/logging"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("webctl", "GET", "/health", 200, 12*time.Millisecond)
	RecordOfferProxy("webctl", "http://localhost:5001/stream", 200, 24*time.Millisecond, true)

	logging.Infof("observability/metrics: registration idempotent and recording paths executed")
}
