package validations

import (
	"errors"
	"testing"
	"time"

	"kucukaslan/tracker/domain"
	"kucukaslan/tracker/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func assertBadRequest(t *testing.T, err error, contains string) {
	t.Helper()
	var fe *fiber.Error
	if assert.True(t, errors.As(err, &fe), "expected *fiber.Error, got %v", err) {
		assert.Equal(t, fiber.StatusBadRequest, fe.Code)
		assert.Contains(t, fe.Message, contains)
	}
}

func TestValidatePageLoadRequest(t *testing.T) {
	assertBadRequest(t, ValidatePageLoadRequest(&domain.PageLoadRequest{}), "url is required")
	assertBadRequest(t, ValidatePageLoadRequest(&domain.PageLoadRequest{URL: "/relative"}), "absolute")

	req := &domain.PageLoadRequest{
		URL: "https://shop.example.com/",
		Nodes: []models.Node{{Tag: "div", Children: []models.Node{
			{Tag: "video", Attributes: map[string]string{"src": "a.mp4"}},
		}}},
	}
	assertBadRequest(t, ValidatePageLoadRequest(req), "nodes[0].children[0]: video nodes require a key")

	req.Nodes[0].Children[0].Key = "v1"
	assert.NoError(t, ValidatePageLoadRequest(req))
}

func TestValidateSignal(t *testing.T) {
	tests := []struct {
		name    string
		signal  models.Signal
		wantErr string
	}{
		{name: "click", signal: models.Signal{Type: "click", Target: &models.Node{Tag: "a"}}},
		{name: "click without target", signal: models.Signal{Type: "click"}, wantErr: "requires a target"},
		{name: "click target ancestor without tag", signal: models.Signal{Type: "click", Target: &models.Node{Tag: "span", Parent: &models.Node{}}}, wantErr: "target.parent: tag is required"},
		{name: "mousemove", signal: models.Signal{Type: "mousemove", X: 1}},
		{name: "scroll", signal: models.Signal{Type: "scroll", ScrollTop: 10, ScrollHeight: 100, ViewportHeight: 50}},
		{name: "negative scroll", signal: models.Signal{Type: "scroll", ScrollTop: -1}, wantErr: "negative"},
		{name: "beforeunload", signal: models.Signal{Type: "beforeunload"}},
		{name: "media", signal: models.Signal{Type: "timeupdate", VideoKey: "v1", CurrentTime: 3, Duration: 10}},
		{name: "media without key", signal: models.Signal{Type: "play"}, wantErr: "video_key"},
		{name: "navigate", signal: models.Signal{Type: "navigate", URL: "https://shop.example.com/cart"}},
		{name: "navigate relative", signal: models.Signal{Type: "navigate", URL: "/cart"}, wantErr: "absolute"},
		{name: "empty mutation", signal: models.Signal{Type: "mutation"}, wantErr: "requires nodes"},
		{name: "unknown", signal: models.Signal{Type: "keydown"}, wantErr: "unsupported signal type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignal(&tt.signal)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assertBadRequest(t, err, tt.wantErr)
		})
	}
}

func TestValidateSignalBatchRequest(t *testing.T) {
	assertBadRequest(t, ValidateSignalBatchRequest(&domain.SignalBatchRequest{}), "cannot be empty")
	err := ValidateSignalBatchRequest(&domain.SignalBatchRequest{Signals: []models.Signal{
		{Type: "online"},
		{Type: "keydown"},
	}})
	assertBadRequest(t, err, `signals[1]: unsupported signal type "keydown"`)
}

func TestValidateTrackRequests(t *testing.T) {
	assertBadRequest(t, ValidateCustomEventRequest(&domain.CustomEventRequest{}), "event_name")
	assertBadRequest(t, ValidateCustomEventRequest(&domain.CustomEventRequest{EventName: "x", Properties: map[string]any{" ": 1}}), "keys")
	assert.NoError(t, ValidateCustomEventRequest(&domain.CustomEventRequest{EventName: "x"}))

	assertBadRequest(t, ValidateProductViewRequest(&domain.ProductViewRequest{}), "product_id")
	assertBadRequest(t, ValidateProductViewRequest(&domain.ProductViewRequest{ProductID: "p", Price: -1}), "price")

	assertBadRequest(t, ValidatePurchaseRequest(&domain.PurchaseRequest{}), "order_id")
	assertBadRequest(t, ValidatePurchaseRequest(&domain.PurchaseRequest{OrderID: "o", Currency: "EURO"}), "currency")
	assert.NoError(t, ValidatePurchaseRequest(&domain.PurchaseRequest{OrderID: "o"}))

	assertBadRequest(t, ValidateCartAddRequest(&domain.CartAddRequest{}), "product_id")
	assert.NoError(t, ValidateCartAddRequest(&domain.CartAddRequest{ProductID: "p"}))
	assertBadRequest(t, ValidateCartRemoveRequest(&domain.CartRemoveRequest{}), "product_id")
	assertBadRequest(t, ValidateCheckoutStepRequest(&domain.CheckoutStepRequest{}), "step")
	assert.NoError(t, ValidateCheckoutStepRequest(&domain.CheckoutStepRequest{Step: 1}))
}

func TestValidateMetricRequest(t *testing.T) {
	i64 := func(v int64) *int64 { return &v }
	str := func(v string) *string { return &v }

	assert.NoError(t, ValidateMetricRequest(&domain.MetricRequest{}))
	assertBadRequest(t, ValidateMetricRequest(&domain.MetricRequest{From: i64(-1)}), "from must be")
	assertBadRequest(t, ValidateMetricRequest(&domain.MetricRequest{From: i64(time.Now().Add(time.Hour).Unix())}), "future")
	assertBadRequest(t, ValidateMetricRequest(&domain.MetricRequest{From: i64(20), To: i64(10)}), "greater")
	assertBadRequest(t, ValidateMetricRequest(&domain.MetricRequest{GroupBy: str("channel")}), "group_by")
	assert.NoError(t, ValidateMetricRequest(&domain.MetricRequest{GroupBy: str("day")}))
}
