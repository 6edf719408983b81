package services

import (
	"context"
	"fmt"

	"kucukaslan/tracker/database"
	"kucukaslan/tracker/domain"
)

// MetricsSource runs the aggregation query
type MetricsSource interface {
	GetMetrics(ctx context.Context, request domain.MetricRequest) ([]database.MetricResult, error)
}

var _ domain.MetricsService = &metricsService{}

type metricsService struct {
	source MetricsSource
}

// NewMetricsService returns a domain.MetricsService over the ClickHouse sink's table.
func NewMetricsService(source MetricsSource) (domain.MetricsService, error) {
	if source == nil {
		return nil, fmt.Errorf("metrics source cannot be nil")
	}
	return &metricsService{source: source}, nil
}

func (m metricsService) GetMetrics(ctx context.Context, req *domain.MetricRequest) (*domain.MetricResponse, error) {
	metrics, err := m.source.GetMetrics(ctx, *req)
	if err != nil {
		return &domain.MetricResponse{
			Success: false,
			Message: "Failed to retrieve metrics: " + err.Error(),
		}, err
	}

	results := make([]domain.MetricResult, len(metrics))
	for i, r := range metrics {
		results[i] = domain.MetricResult{
			Bucket:         r.Bucket,
			TotalEvents:    r.TotalEvents,
			UniqueSessions: r.UniqueSessions,
			UniqueUsers:    r.UniqueUsers,
		}
	}
	return &domain.MetricResponse{
		Success: true,
		Message: "Metrics retrieved successfully",
		Metrics: results,
	}, nil
}
