// Package health turns raw store aggregates into the summary served by the
// health endpoint.
package health

import (
	"math"

	"github.com/mamadbah2/agritrack/internal/domain/models"
)

// Summarize rounds the aggregate into user-facing integers. An owner with no
// records gets an all-zero summary.
func Summarize(agg models.HealthAggregate) models.HealthSummary {
	if agg.TotalRecords == 0 {
		return models.HealthSummary{}
	}

	rate := float64(agg.VerifiedRecords) / float64(agg.TotalRecords) * 100

	return models.HealthSummary{
		AverageHealthScore: int(math.Round(agg.AvgHealth)),
		TotalRecords:       agg.TotalRecords,
		VerifiedRecords:    agg.VerifiedRecords,
		VerificationRate:   int(math.Round(rate)),
	}
}
