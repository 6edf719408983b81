package config

import (
	"strconv"
	"strings"
	"time"
)

// Attribute names read from the embedding script element
const (
	AttrEndpoint   = "data-endpoint"
	AttrTrackingID = "data-tracking-id"
	AttrBatchSize  = "data-batch-size"
	AttrInterval   = "data-interval"
	AttrDebug      = "data-debug"
)

// TrackerConfig is the per page view configuration resolved from the host page
type TrackerConfig struct {
	Endpoint      string
	TrackingID    string
	BatchSize     int
	FlushInterval time.Duration
	Debug         bool
}

// DefaultTrackerConfig returns the values used when the page supplies nothing
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		Endpoint:      "/analytics",
		TrackingID:    "default",
		BatchSize:     10,
		FlushInterval: 7000 * time.Millisecond,
		Debug:         false,
	}
}

// ResolveTracker reads the data-* attributes of the embedding element on top of
// the package defaults. It never fails: malformed values keep the default.
func ResolveTracker(attrs map[string]string) TrackerConfig {
	return DefaultTrackerConfig().WithAttributes(attrs)
}

// WithAttributes overrides c with whatever well-formed attributes are present.
func (c TrackerConfig) WithAttributes(attrs map[string]string) TrackerConfig {
	if v := strings.TrimSpace(attrs[AttrEndpoint]); v != "" {
		c.Endpoint = v
	}
	if v := strings.TrimSpace(attrs[AttrTrackingID]); v != "" {
		c.TrackingID = v
	}
	if n, ok := parsePositive(attrs[AttrBatchSize]); ok {
		c.BatchSize = n
	}
	if n, ok := parsePositive(attrs[AttrInterval]); ok {
		c.FlushInterval = time.Duration(n) * time.Millisecond
	}
	if v, ok := attrs[AttrDebug]; ok {
		c.Debug = v == "true"
	}
	return c
}

// parsePositive accepts a leading integer the way parseInt does ("25px" is 25)
// and rejects anything that does not start with a positive number.
func parsePositive(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	end := 0
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
