package workers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"vega/internal/services/scan"
	"vega/pkg/errors"
)

// ScanWorker runs the scan pipeline on a schedule and keeps the latest
// report available for inspection
type ScanWorker struct {
	*BaseWorker
	service *scan.Service

	mu         sync.RWMutex
	lastReport *scan.Report
}

// NewScanWorker creates a scan worker
func NewScanWorker(service *scan.Service, interval time.Duration) *ScanWorker {
	return &ScanWorker{
		BaseWorker: NewBaseWorker("scan", interval, true),
		service:    service,
	}
}

// Run implements Worker
func (w *ScanWorker) Run(ctx context.Context) error {
	report, err := w.service.Run(ctx)
	w.RecordRun(err)
	if err != nil {
		return errors.Wrap(err, "scan pass")
	}

	w.mu.Lock()
	w.lastReport = report
	w.mu.Unlock()

	for _, res := range report.Results {
		payload, err := json.Marshal(res)
		if err != nil {
			w.Log().Warnf("cannot serialize result for %s: %v", res.Symbol, err)
			continue
		}
		w.Log().Infof("suggestion %s: %s", res.Symbol, string(payload))
	}
	for sym, msg := range report.Errors {
		w.Log().Warnf("scan error for %s: %s", sym, msg)
	}
	return nil
}

// LastReport returns the most recent scan report, or nil before the first
// successful pass
func (w *ScanWorker) LastReport() *scan.Report {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastReport
}
