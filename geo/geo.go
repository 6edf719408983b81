// Package geo performs the one-time, best-effort visitor location lookup
// attached to page_load.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DefaultURL is the public lookup service the page script used.
const DefaultURL = "https://ipapi.co/json/"

const unavailableMessage = "Unable to fetch location"

// Locator resolves the visitor's approximate location. It never fails: on
// any error it returns the Unavailable marker.
type Locator interface {
	Locate(ctx context.Context) map[string]any
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context) map[string]any

func (f LocatorFunc) Locate(ctx context.Context) map[string]any { return f(ctx) }

// Unavailable is the marker stored in page_load when the lookup failed.
func Unavailable() map[string]any {
	return map[string]any{"error": unavailableMessage}
}

// IsUnavailable reports whether loc is the failure marker.
func IsUnavailable(loc map[string]any) bool {
	msg, ok := loc["error"].(string)
	return ok && msg == unavailableMessage
}

type lookupResponse struct {
	CountryName string  `json:"country_name"`
	CountryCode string  `json:"country_code"`
	City        string  `json:"city"`
	Region      string  `json:"region"`
	Postal      string  `json:"postal"`
	IP          string  `json:"ip"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`

	// ipapi answers rate limiting with 200 and these fields
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// HTTPLocator queries an ipapi compatible JSON endpoint. An empty URL
// disables the lookup.
type HTTPLocator struct {
	URL       string
	Timeout   time.Duration
	UserAgent string
	Logger    *log.Logger
}

var _ Locator = (*HTTPLocator)(nil)

func (l *HTTPLocator) Locate(ctx context.Context) map[string]any {
	if l == nil || l.URL == "" {
		return Unavailable()
	}
	loc, err := l.lookup(ctx)
	if err != nil {
		l.logger().Println("GeoIP error:", err)
		return Unavailable()
	}
	return loc
}

func (l *HTTPLocator) lookup(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	agent := fiber.Get(l.URL)
	if l.Timeout > 0 {
		agent.Timeout(l.Timeout)
	}
	if l.UserAgent != "" {
		agent.UserAgent(l.UserAgent)
	}
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("location request failed: %w", errors.Join(errs...))
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return nil, fmt.Errorf("unexpected lookup status %d", code)
	}

	var resp lookupResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode location: %w", err)
	}
	if resp.Error {
		return nil, fmt.Errorf("location service refused: %s", resp.Reason)
	}

	return map[string]any{
		"country":      resp.CountryName,
		"country_code": resp.CountryCode,
		"city":         resp.City,
		"region":       resp.Region,
		"postal":       resp.Postal,
		"ip":           resp.IP,
		"latitude":     resp.Latitude,
		"longitude":    resp.Longitude,
	}, nil
}

func (l *HTTPLocator) logger() *log.Logger {
	if l.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return l.Logger
}
