package capture

import (
	"math"
	"strings"
	"sync"
)

// ScrollState is the document scroll geometry.
type ScrollState struct {
	ScrollTop      float64
	ScrollHeight   float64
	ViewportHeight float64
}

// Percent is scrollTop / (scrollHeight - viewportHeight) * 100, rounded and
// clamped to 0..100. ok is false when the page cannot scroll; such a sample
// has no depth and crosses no milestone.
func (s ScrollState) Percent() (percent int, ok bool) {
	docHeight := s.ScrollHeight - s.ViewportHeight
	if docHeight <= 0 {
		return 0, false
	}
	p := math.Round(s.ScrollTop / docHeight * 100)
	return int(math.Max(0, math.Min(100, p))), true
}

type Screen struct {
	Width           int `json:"width"`
	Height          int `json:"height"`
	AvailableWidth  int `json:"available_width"`
	AvailableHeight int `json:"available_height"`
	ColorDepth      int `json:"color_depth"`
}

type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Connection mirrors navigator.connection.
type Connection struct {
	EffectiveType string  `json:"effectiveType"`
	Downlink      float64 `json:"downlink"`
	RTT           int     `json:"rtt"`
	SaveData      bool    `json:"saveData"`
}

// Timing holds navigation timing marks in epoch milliseconds.
type Timing struct {
	NavigationStart          int64
	DomainLookupStart        int64
	DomainLookupEnd          int64
	ConnectStart             int64
	ConnectEnd               int64
	ResponseStart            int64
	ResponseEnd              int64
	DOMContentLoadedEventEnd int64
	LoadEventEnd             int64
}

// Facts are the static page and browser properties gathered at load.
type Facts struct {
	Referrer       string
	Title          string
	Screen         Screen
	Viewport       Viewport
	Platform       string
	UserAgent      string
	Language       string
	Timezone       string
	TouchEvents    bool
	MaxTouchPoints int
	Connection     *Connection
	Timing         *Timing
}

// Page is the live window/document state.
type Page interface {
	URL() string
	Title() string
	Facts() Facts
}

// MemPage is a Page whose state is pushed in by the agent or a test.
type MemPage struct {
	mu    sync.RWMutex
	url   string
	facts Facts
}

var _ Page = (*MemPage)(nil)

func NewMemPage(url string, facts Facts) *MemPage {
	return &MemPage{url: url, facts: facts}
}

func (p *MemPage) URL() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.url
}

func (p *MemPage) Title() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.facts.Title
}

func (p *MemPage) Facts() Facts {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.facts
}

// SetURL records an in-page navigation (history API).
func (p *MemPage) SetURL(url string) {
	p.mu.Lock()
	p.url = url
	p.mu.Unlock()
}

// OriginOf returns the scheme://host part of rawURL, or "" when it has none.
func OriginOf(rawURL string) string {
	scheme, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		return ""
	}
	host, _, _ := strings.Cut(rest, "/")
	host, _, _ = strings.Cut(host, "?")
	host, _, _ = strings.Cut(host, "#")
	return scheme + "://" + host
}
