package domain

import (
	"kucukaslan/tracker/buildinfo"
	"time"
)

// HealthResponse represents the health status of the agent
type HealthResponse struct {
	Status    string              `json:"status" example:"healthy"`
	Timestamp time.Time           `json:"timestamp" example:"2025-11-22T10:00:00Z"`
	BuildInfo buildinfo.Info      `json:"buildInfo"`
	Services  ServiceHealthStatus `json:"services"`
}

// ServiceHealthStatus holds one entry per configured dependency
type ServiceHealthStatus struct {
	ClickHouse *ServiceStatus `json:"clickhouse,omitempty"`
	Redis      *ServiceStatus `json:"redis,omitempty"`
	SQLite     *ServiceStatus `json:"sqlite,omitempty"`
}

// ServiceStatus represents the status of a single service
type ServiceStatus struct {
	Status  string `json:"status" example:"healthy"`
	Message string `json:"message,omitempty" example:""`
}

// TrackResponse is returned for signals and programmatic events
type TrackResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Event accepted"`
	// number of signals the tracker handled
	Handled int `json:"handled,omitempty" example:"1"`
}

// PageResponse is returned when a page view starts
type PageResponse struct {
	Success  bool           `json:"success" example:"true"`
	Message  string         `json:"message" example:"Page view started"`
	Session  SessionContext `json:"session"`
	Endpoint string         `json:"endpoint" example:"https://shop.example.com/analytics"`
}

// DeliveryStats describes the delivery pipeline
type DeliveryStats struct {
	Online  bool  `json:"online" example:"true"`
	Queued  int   `json:"queued" example:"0"`
	Dropped int   `json:"dropped" example:"0"`
	Sent    int64 `json:"sent" example:"12"`
	Failed  int64 `json:"failed" example:"0"`
	Beacons int64 `json:"beacons" example:"0"`
}

// TrackerStats is a diagnostics snapshot of the current page view
type TrackerStats struct {
	Session             SessionContext `json:"session"`
	DurationMS          int64          `json:"duration_ms" example:"5400"`
	Buffered            map[string]int `json:"buffered" swaggertype:"object,integer"`
	ClickCount          int            `json:"click_count" example:"3"`
	ScrollDepthMax      int            `json:"scroll_depth_max" example:"60"`
	RemainingMilestones []int          `json:"remaining_milestones" example:"75,100"`
	TrackedVideos       int            `json:"tracked_videos" example:"1"`
	Flushes             int            `json:"flushes" example:"2"`
	Unloaded            bool           `json:"unloaded" example:"false"`
	Delivery            DeliveryStats  `json:"delivery"`
}

// StatsResponse wraps TrackerStats
type StatsResponse struct {
	Success bool          `json:"success" example:"true"`
	Message string        `json:"message" example:"Stats retrieved successfully"`
	Stats   *TrackerStats `json:"stats"`
}

// MetricResult is one aggregated bucket
type MetricResult struct {
	Bucket         string `json:"bucket" example:"2025-11-22 10:00:00"`
	TotalEvents    uint64 `json:"total_events" example:"1500"`
	UniqueSessions uint64 `json:"unique_sessions" example:"120"`
	UniqueUsers    uint64 `json:"unique_users" example:"95"`
}

type MetricResponse struct {
	Success bool           `json:"success" example:"true"`
	Message string         `json:"message" example:"Metrics retrieved successfully"`
	Metrics []MetricResult `json:"metrics"`
}
