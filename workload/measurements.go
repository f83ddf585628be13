package workload

import (
	"time"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
)

// Measurements receives the latency and the outcome status of every operation.
type Measurements interface {
	Measure(operation string, latency time.Duration)
	ReportStatus(operation string, status economy.Status)
}

type noMeasurements struct{}

func (noMeasurements) Measure(string, time.Duration) {}
func (noMeasurements) ReportStatus(string, economy.Status) {}
