package domain

import "fmt"

// SessionContext is the identity stamped on every outbound event.
type SessionContext struct {
	SessionID  string `json:"session_id"`
	UserID     string `json:"user_id"`
	TrackingID string `json:"tracking_id"`
}

// Stamp writes the identity and the current page URL into p, replacing any
// values captured earlier.
func (s SessionContext) Stamp(p Payload, url string) {
	p["session_id"] = s.SessionID
	p["user_id"] = s.UserID
	p["tracking_id"] = s.TrackingID
	p["url"] = url
}

// DedupKey is the key the ingestion side uses to drop repeated deliveries.
// A payload's event_id identifies it across retries. Payloads without one
// fall back to session, type and timestamp.
func DedupKey(p Payload) string {
	if id := str(p["event_id"]); id != "" {
		return id
	}
	return str(p["session_id"]) + "|" + str(p["type"]) + "|" + str(p["ts"])
}

func str(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
