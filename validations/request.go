package validations

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"kucukaslan/tracker/capture"
	"kucukaslan/tracker/domain"
	"kucukaslan/tracker/models"

	"github.com/gofiber/fiber/v2"
)

func ValidatePageLoadRequest(request *domain.PageLoadRequest) error {
	if strings.TrimSpace(request.URL) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "url is required")
	}
	u, err := url.Parse(request.URL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fiber.NewError(fiber.StatusBadRequest, "url must be an absolute URL")
	}
	for i := range request.Nodes {
		if err := validateNode(&request.Nodes[i], fmt.Sprintf("nodes[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

func ValidateSignal(signal *models.Signal) error {
	switch {
	case signal.Type == models.SignalNavigate:
		if u, err := url.Parse(signal.URL); err != nil || !u.IsAbs() {
			return fiber.NewError(fiber.StatusBadRequest, "navigate requires an absolute url")
		}
	case signal.Type == models.SignalMutation:
		if len(signal.Nodes) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "mutation requires nodes")
		}
		for i := range signal.Nodes {
			if err := validateNode(&signal.Nodes[i], fmt.Sprintf("nodes[%d]", i)); err != nil {
				return err
			}
		}
	case signal.IsMedia():
		if strings.TrimSpace(signal.VideoKey) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "video_key is required for media signals")
		}
		if signal.CurrentTime < 0 || signal.Duration < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "current_time and duration cannot be negative")
		}
	default:
		switch capture.SignalKind(signal.Type) {
		case capture.SignalClick, capture.SignalSubmit, capture.SignalFocusIn, capture.SignalInput:
			if signal.Target == nil {
				return fiber.NewError(fiber.StatusBadRequest, signal.Type+" requires a target")
			}
			return validateNode(signal.Target, "target")
		case capture.SignalScroll:
			if signal.ScrollTop < 0 || signal.ScrollHeight < 0 || signal.ViewportHeight < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "scroll geometry cannot be negative")
			}
		case capture.SignalMouseMove, capture.SignalVisibility, capture.SignalOnline,
			capture.SignalOffline, capture.SignalUnload:
		default:
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("unsupported signal type %q", signal.Type))
		}
	}
	return nil
}

func ValidateSignalBatchRequest(request *domain.SignalBatchRequest) error {
	if len(request.Signals) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "signals cannot be empty")
	}
	for i := range request.Signals {
		if err := ValidateSignal(&request.Signals[i]); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("signals[%d]: %s", i, message(err)))
		}
	}
	return nil
}

// validateNode requires a tag on every node of the tree and a key on videos
// so media signals can address them.
func validateNode(node *models.Node, path string) error {
	if strings.TrimSpace(node.Tag) == "" {
		return fiber.NewError(fiber.StatusBadRequest, path+": tag is required")
	}
	if strings.EqualFold(node.Tag, "video") && strings.TrimSpace(node.Key) == "" {
		return fiber.NewError(fiber.StatusBadRequest, path+": video nodes require a key")
	}
	if node.ValueLength < 0 {
		return fiber.NewError(fiber.StatusBadRequest, path+": value_length cannot be negative")
	}
	for i := range node.Children {
		if err := validateNode(&node.Children[i], fmt.Sprintf("%s.children[%d]", path, i)); err != nil {
			return err
		}
	}
	if node.Parent != nil {
		return validateNode(node.Parent, path+".parent")
	}
	return nil
}

func ValidateCustomEventRequest(request *domain.CustomEventRequest) error {
	if strings.TrimSpace(request.EventName) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "event_name is required")
	}
	for key := range request.Properties {
		if strings.TrimSpace(key) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "properties keys cannot be empty")
		}
	}
	return nil
}

func ValidateProductViewRequest(request *domain.ProductViewRequest) error {
	if strings.TrimSpace(request.ProductID) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "product_id is required")
	}
	if request.Price < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "price cannot be negative")
	}
	return nil
}

func ValidatePurchaseRequest(request *domain.PurchaseRequest) error {
	if strings.TrimSpace(request.OrderID) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "order_id is required")
	}
	if request.Total < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "total cannot be negative")
	}
	if c := request.Currency; c != "" && len(c) != 3 {
		return fiber.NewError(fiber.StatusBadRequest, "currency must be a 3 letter code")
	}
	return nil
}

func ValidateCartAddRequest(request *domain.CartAddRequest) error {
	if strings.TrimSpace(request.ProductID) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "product_id is required")
	}
	if request.Price < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "price cannot be negative")
	}
	return nil
}

func ValidateCartRemoveRequest(request *domain.CartRemoveRequest) error {
	if strings.TrimSpace(request.ProductID) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "product_id is required")
	}
	return nil
}

func ValidateCheckoutStepRequest(request *domain.CheckoutStepRequest) error {
	if request.Step <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "step must be a positive integer")
	}
	return nil
}

func ValidateMetricRequest(request *domain.MetricRequest) error {
	now := time.Now().UTC().Unix()
	if request.From != nil {
		if *request.From <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "from must be a positive integer")
		}
		if *request.From > now {
			return fiber.NewError(fiber.StatusBadRequest, "from cannot be in the future")
		}
	}
	if request.To != nil {
		if *request.To <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "to must be a positive integer")
		}
	}
	if request.From != nil && request.To != nil && *request.From > *request.To {
		return fiber.NewError(fiber.StatusBadRequest, "from cannot be greater than to")
	}
	if request.GroupBy != nil {
		switch strings.TrimSpace(*request.GroupBy) {
		case "hour", "day", "week", "month", "type", "tracking_id", "session_id", "user_id", "url":
		default:
			return fiber.NewError(fiber.StatusBadRequest, "group_by must be one of hour, day, week, month, type, tracking_id, session_id, user_id, url")
		}
	}
	return nil
}

func message(err error) string {
	if fe, ok := err.(*fiber.Error); ok {
		return fe.Message
	}
	return err.Error()
}
