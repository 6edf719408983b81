package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"kucukaslan/tracker/domain"

	"github.com/gofiber/fiber/v2"
)

// Transport delivers one payload and reports whether the endpoint accepted it.
type Transport interface {
	Send(ctx context.Context, payload domain.Payload) error
}

// Beacon is the unload primitive: it queues the payload for a best-effort
// attempt and returns at once. There is no result and no retry.
type Beacon interface {
	Beacon(payload domain.Payload) bool
}

// StatusError is a non-2xx answer from the ingestion endpoint.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Code)
}

// HTTPTransport POSTs JSON to Endpoint. Any 2xx status is success.
type HTTPTransport struct {
	Endpoint  string
	Timeout   time.Duration
	UserAgent string
}

var _ Transport = (*HTTPTransport)(nil)

func (t *HTTPTransport) Send(ctx context.Context, payload domain.Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	code, _, errs := newPost(t.Endpoint, body, t.Timeout, t.UserAgent).Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("failed to send event: %w", errors.Join(errs...))
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return &StatusError{Code: code}
	}
	return nil
}

// HTTPBeacon fires the POST on its own goroutine and never looks at the result.
type HTTPBeacon struct {
	Endpoint  string
	Timeout   time.Duration
	UserAgent string

	wg sync.WaitGroup
}

var _ Beacon = (*HTTPBeacon)(nil)

func (b *HTTPBeacon) Beacon(payload domain.Payload) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		return false
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		_, _, _ = newPost(b.Endpoint, body, b.Timeout, b.UserAgent).Bytes()
	}()
	return true
}

// Wait blocks until every beacon in flight finished or ctx is done.
func (b *HTTPBeacon) Wait(ctx context.Context) error {
	return WaitGroup(ctx, &b.wg)
}

// WaitGroup waits for wg or returns ctx.Err when ctx is done first.
func WaitGroup(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func newPost(endpoint string, body []byte, timeout time.Duration, userAgent string) *fiber.Agent {
	agent := fiber.Post(endpoint).
		Body(body).
		ContentType(fiber.MIMEApplicationJSON)
	if timeout > 0 {
		agent.Timeout(timeout)
	}
	if userAgent != "" {
		agent.UserAgent(userAgent)
	}
	return agent
}

// AsyncBeacon gives any Transport beacon semantics: one attempt on its own
// goroutine, bounded by Timeout, result ignored.
type AsyncBeacon struct {
	Transport Transport
	Timeout   time.Duration

	wg sync.WaitGroup
}

var _ Beacon = (*AsyncBeacon)(nil)

func (b *AsyncBeacon) Beacon(payload domain.Payload) bool {
	if b.Transport == nil {
		return false
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx := context.Background()
		if b.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, b.Timeout)
			defer cancel()
		}
		_ = b.Transport.Send(ctx, payload)
	}()
	return true
}

// Wait blocks until every beacon in flight finished or ctx is done.
func (b *AsyncBeacon) Wait(ctx context.Context) error {
	return WaitGroup(ctx, &b.wg)
}
