package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"kucukaslan/tracker/config"
	"kucukaslan/tracker/domain"

	"github.com/uptrace/go-clickhouse/ch"
)

var clickHouseDB *ch.DB

// InitClickHouse initializes the ClickHouse database connection
func InitClickHouse(cfg *config.ClickHouseConfig) error {
	dsn := cfg.GetClickHouseDSN()

	// native protocol, no TLS
	db := ch.Connect(
		ch.WithDSN(dsn),
		ch.WithInsecure(true),
	)

	ctx := context.Background()
	if err := InitEventsTable(ctx, db); err != nil {
		return fmt.Errorf("failed to initialize tracker_events table: %w", err)
	}

	clickHouseDB = db
	log.Println("ClickHouse connection established successfully")

	return nil
}

// CloseClickHouse closes the ClickHouse database connection
func CloseClickHouse() error {
	if clickHouseDB != nil {
		if err := clickHouseDB.Close(); err != nil {
			return fmt.Errorf("failed to close ClickHouse connection: %w", err)
		}
		log.Println("ClickHouse connection closed")
	}
	return nil
}

// InitEventsTable creates the tracker_events table if it doesn't exist. A
// redelivered payload keeps its event_id, so ReplacingMergeTree collapses it.
func InitEventsTable(ctx context.Context, db *ch.DB) error {
	_, err := db.NewCreateTable().
		Model((*Event)(nil)).
		Engine("ReplacingMergeTree(ingested_at)").
		Order("tracking_id, type, session_id, timestamp, event_id").
		IfNotExists().
		Exec(ctx)

	return err
}

// ClickHouseHealthCheck verifies that the ClickHouse connection is alive
func ClickHouseHealthCheck(ctx context.Context) error {
	if clickHouseDB == nil {
		return fmt.Errorf("ClickHouse connection is not initialized")
	}
	return clickHouseDB.Ping(ctx)
}

// GetClickHouseDB returns the ClickHouse database instance
func GetClickHouseDB() ClickHouseDB {
	return ClickHouseDB{clickHouseDB}
}

// Event is one outbound tracker payload as stored in ClickHouse. The full
// payload is kept as JSON next to the indexed identity columns.
type Event struct {
	ch.CHModel `ch:"table:tracker_events,partition:toYYYYMMDD(timestamp)"`
	EventID    string    `ch:"event_id"`
	Type       string    `ch:"type,lc"`
	TrackingID string    `ch:"tracking_id,lc"`
	SessionID  string    `ch:"session_id"`
	UserID     string    `ch:"user_id"`
	URL        string    `ch:"url"`
	TS         int64     `ch:"ts"`
	Timestamp  time.Time `ch:"timestamp"`
	Payload    string    `ch:"payload,type:String"`

	IngestedAt time.Time `ch:"ingested_at,default:now()"`
}

// EventColumnar: events in columnar format for batch inserts
type EventColumnar struct {
	ch.CHModel `ch:"table:tracker_events,partition:toYYYYMMDD(timestamp),columnar"`
	EventID    []string    `ch:"event_id"`
	Type       []string    `ch:"type,lc"`
	TrackingID []string    `ch:"tracking_id,lc"`
	SessionID  []string    `ch:"session_id"`
	UserID     []string    `ch:"user_id"`
	URL        []string    `ch:"url"`
	TS         []int64     `ch:"ts"`
	Timestamp  []time.Time `ch:"timestamp"`
	Payload    []string    `ch:"payload,type:String"`

	IngestedAt []time.Time `ch:"ingested_at,default:now()"`
}

// SaveEvents saves multiple payloads with one columnar insert
func (c ClickHouseDB) SaveEvents(ctx context.Context, payloads []domain.Payload) error {
	if c.DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	if len(payloads) == 0 {
		return fmt.Errorf("no events to insert")
	}

	columnarModel, err := toColumnar(payloads, time.Now())
	if err != nil {
		return err
	}

	_, err = c.DB.NewInsert().
		Model(columnarModel).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to columnar insert events: %w", err)
	}

	return nil
}

func toColumnar(payloads []domain.Payload, now time.Time) (*EventColumnar, error) {
	n := len(payloads)
	col := &EventColumnar{
		EventID:    make([]string, 0, n),
		Type:       make([]string, 0, n),
		TrackingID: make([]string, 0, n),
		SessionID:  make([]string, 0, n),
		UserID:     make([]string, 0, n),
		URL:        make([]string, 0, n),
		TS:         make([]int64, 0, n),
		Timestamp:  make([]time.Time, 0, n),
		Payload:    make([]string, 0, n),
		IngestedAt: make([]time.Time, 0, n),
	}
	for _, p := range payloads {
		event, err := mapPayloadToEvent(p)
		if err != nil {
			return nil, err
		}
		col.EventID = append(col.EventID, event.EventID)
		col.Type = append(col.Type, event.Type)
		col.TrackingID = append(col.TrackingID, event.TrackingID)
		col.SessionID = append(col.SessionID, event.SessionID)
		col.UserID = append(col.UserID, event.UserID)
		col.URL = append(col.URL, event.URL)
		col.TS = append(col.TS, event.TS)
		col.Timestamp = append(col.Timestamp, event.Timestamp)
		col.Payload = append(col.Payload, event.Payload)
		col.IngestedAt = append(col.IngestedAt, now)
	}
	return col, nil
}

func mapPayloadToEvent(payload domain.Payload) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize payload: %w", err)
	}

	ts := payloadMillis(payload)
	return &Event{
		EventID:    payloadString(payload, "event_id"),
		Type:       payloadString(payload, "type"),
		TrackingID: payloadString(payload, "tracking_id"),
		SessionID:  payloadString(payload, "session_id"),
		UserID:     payloadString(payload, "user_id"),
		URL:        payloadString(payload, "url"),
		TS:         ts,
		Timestamp:  time.UnixMilli(ts).UTC(),
		Payload:    string(raw),
	}, nil
}

func payloadString(p domain.Payload, key string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return ""
}

// payloadMillis reads ts whether it was set in process (int64) or decoded
// from JSON (float64).
func payloadMillis(p domain.Payload) int64 {
	switch v := p["ts"].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(math.Round(v))
	case json.Number:
		n, _ := v.Int64()
		return n
	}
	return 0
}

type MetricResult struct {
	Bucket         string `ch:"bucket"`
	TotalEvents    uint64 `ch:"total_events"`
	UniqueSessions uint64 `ch:"unique_sessions"`
	UniqueUsers    uint64 `ch:"unique_users"`
}

// metricGroupExpr maps an allowed group_by value to its SQL expression. The
// allowlist keeps user input out of the query text.
func metricGroupExpr(groupBy *string) string {
	if groupBy == nil {
		return ""
	}
	switch *groupBy {
	case "hour":
		return "toString(toStartOfHour(timestamp))"
	case "day":
		return "toString(toStartOfDay(timestamp))"
	case "week":
		return "toString(toStartOfWeek(timestamp))"
	case "month":
		return "toString(toStartOfMonth(timestamp))"
	case "type", "tracking_id", "session_id", "user_id", "url":
		return *groupBy
	}
	return ""
}

// GetMetrics retrieves aggregated counts from tracker_events
func (c ClickHouseDB) GetMetrics(ctx context.Context, request domain.MetricRequest) ([]MetricResult, error) {
	var results []MetricResult
	groupExpr := metricGroupExpr(request.GroupBy)

	// FINAL collapses redelivered rows before counting
	query := c.NewSelect().TableExpr("tracker_events FINAL")

	if groupExpr != "" {
		query = query.ColumnExpr("? AS bucket", ch.Safe(groupExpr))
	} else {
		query = query.ColumnExpr("'total' AS bucket")
	}
	query = query.
		ColumnExpr("count() AS total_events").
		ColumnExpr("uniqExact(session_id) AS unique_sessions").
		ColumnExpr("uniqExact(user_id) AS unique_users")

	if request.Type != nil && *request.Type != "" {
		query = query.Where("type = ?", *request.Type)
	}
	if request.TrackingID != nil && *request.TrackingID != "" {
		query = query.Where("tracking_id = ?", *request.TrackingID)
	}
	if request.From != nil {
		query = query.Where("timestamp >= ?", time.Unix(*request.From, 0))
	}
	if request.To != nil {
		query = query.Where("timestamp <= ?", time.Unix(*request.To, 0))
	}
	if groupExpr != "" {
		query = query.GroupExpr(groupExpr)
		query = query.OrderExpr("bucket ASC")
	}

	if err := query.Scan(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

type ClickHouseDB struct {
	*ch.DB
}
