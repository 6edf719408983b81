// Package models holds the JSON shapes the page bridge posts to the agent and
// their conversion into capture types.
package models

import (
	"fmt"
	"strings"

	"kucukaslan/tracker/capture"
)

// Node is a serialized DOM element. A click target carries its ancestor chain
// in Parent; inserted subtrees carry Children.
type Node struct {
	Key         string            `json:"key,omitempty" example:"video-1"`
	Tag         string            `json:"tag" example:"a"`
	ID          string            `json:"id,omitempty" example:"report-link"`
	Classes     []string          `json:"classes,omitempty" example:"download"`
	Attributes  map[string]string `json:"attributes,omitempty" swaggertype:"object,string" example:"href:/files/report.pdf"`
	Text        string            `json:"text,omitempty" example:"Annual report"`
	ValueLength int               `json:"value_length,omitempty" example:"0"`
	Parent      *Node             `json:"parent,omitempty"`
	Children    []Node            `json:"children,omitempty"`
}

// Element converts n, its ancestors and its descendants. A video tag becomes
// a capture.VideoNode so it can be tracked and driven by media signals.
func (n *Node) Element() capture.Element {
	if n == nil {
		return nil
	}
	el := n.build()
	if n.Parent != nil {
		parent := n.Parent.ancestor()
		parent.Append(el)
	}
	return el
}

// ancestor builds the parent chain only; siblings are not serialized.
func (n *Node) ancestor() *capture.Node {
	node := n.plain()
	if n.Parent != nil {
		n.Parent.ancestor().Append(node)
	}
	return node
}

func (n *Node) build() capture.Element {
	var (
		el   capture.Element
		base *capture.Node
	)
	if strings.EqualFold(n.Tag, "video") {
		v := capture.NewVideo(n.Key, n.Attributes["src"])
		base = v.Node
		n.fill(base)
		if cur := n.Attributes["currentSrc"]; cur != "" {
			v.SetSource(cur)
		}
		el = v
	} else {
		base = n.plain()
		el = base
	}
	for i := range n.Children {
		base.Append(n.Children[i].build())
	}
	return el
}

func (n *Node) plain() *capture.Node {
	node := &capture.Node{}
	n.fill(node)
	return node
}

func (n *Node) fill(node *capture.Node) {
	node.NodeKey = n.Key
	node.Tag = n.Tag
	node.Classes = n.Classes
	node.Content = n.Text
	node.ValueLen = n.ValueLength
	attrs := make(map[string]string, len(n.Attributes)+1)
	for k, v := range n.Attributes {
		attrs[k] = v
	}
	if n.ID != "" {
		attrs["id"] = n.ID
	}
	node.Attributes = attrs
}

// Facts is the static page information sent with a page load.
type Facts struct {
	Referrer       string              `json:"referrer" example:"https://www.google.com/"`
	Title          string              `json:"title" example:"Product 42"`
	Screen         capture.Screen      `json:"screen"`
	Viewport       capture.Viewport    `json:"viewport"`
	Platform       string              `json:"platform" example:"MacIntel"`
	UserAgent      string              `json:"user_agent" example:"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0)"`
	Language       string              `json:"language" example:"en-US"`
	Timezone       string              `json:"timezone" example:"Europe/Istanbul"`
	TouchEvents    bool                `json:"touch_events" example:"false"`
	MaxTouchPoints int                 `json:"max_touch_points" example:"0"`
	Connection     *capture.Connection `json:"connection,omitempty"`
	Timing         *Timing             `json:"timing,omitempty"`
}

// Timing is performance.timing in epoch milliseconds.
type Timing struct {
	NavigationStart          int64 `json:"navigationStart"`
	DomainLookupStart        int64 `json:"domainLookupStart"`
	DomainLookupEnd          int64 `json:"domainLookupEnd"`
	ConnectStart             int64 `json:"connectStart"`
	ConnectEnd               int64 `json:"connectEnd"`
	ResponseStart            int64 `json:"responseStart"`
	ResponseEnd              int64 `json:"responseEnd"`
	DOMContentLoadedEventEnd int64 `json:"domContentLoadedEventEnd"`
	LoadEventEnd             int64 `json:"loadEventEnd"`
}

func (f Facts) Capture() capture.Facts {
	out := capture.Facts{
		Referrer:       f.Referrer,
		Title:          f.Title,
		Screen:         f.Screen,
		Viewport:       f.Viewport,
		Platform:       f.Platform,
		UserAgent:      f.UserAgent,
		Language:       f.Language,
		Timezone:       f.Timezone,
		TouchEvents:    f.TouchEvents,
		MaxTouchPoints: f.MaxTouchPoints,
		Connection:     f.Connection,
	}
	if t := f.Timing; t != nil {
		out.Timing = &capture.Timing{
			NavigationStart:          t.NavigationStart,
			DomainLookupStart:        t.DomainLookupStart,
			DomainLookupEnd:          t.DomainLookupEnd,
			ConnectStart:             t.ConnectStart,
			ConnectEnd:               t.ConnectEnd,
			ResponseStart:            t.ResponseStart,
			ResponseEnd:              t.ResponseEnd,
			DOMContentLoadedEventEnd: t.DOMContentLoadedEventEnd,
			LoadEventEnd:             t.LoadEventEnd,
		}
	}
	return out
}

// Signal types that are not DOM listener signals.
const (
	SignalMutation = "mutation"
	SignalNavigate = "navigate"
)

// Signal is one raw browser event. Which fields matter depends on Type.
type Signal struct {
	Type           string  `json:"type" example:"click"`
	Target         *Node   `json:"target,omitempty"`
	X              float64 `json:"x,omitempty" example:"120"`
	Y              float64 `json:"y,omitempty" example:"340"`
	ScrollTop      float64 `json:"scroll_top,omitempty" example:"900"`
	ScrollHeight   float64 `json:"scroll_height,omitempty" example:"4000"`
	ViewportHeight float64 `json:"viewport_height,omitempty" example:"900"`
	Hidden         bool    `json:"hidden,omitempty" example:"false"`
	// media signals address a tracked video by key
	VideoKey    string  `json:"video_key,omitempty" example:"video-1"`
	CurrentTime float64 `json:"current_time,omitempty" example:"12.5"`
	Duration    float64 `json:"duration,omitempty" example:"60"`
	// mutation inserts Nodes, navigate moves the page to URL
	Nodes []Node `json:"nodes,omitempty"`
	URL   string `json:"url,omitempty"`
}

// IsMedia reports whether s is a video element event.
func (s Signal) IsMedia() bool {
	switch capture.MediaEvent(s.Type) {
	case capture.MediaPlay, capture.MediaPause, capture.MediaEnded, capture.MediaTimeUpdate:
		return true
	}
	return false
}

// Capture converts a DOM listener signal. Media, mutation and navigate
// signals are not registry signals and return an error here.
func (s Signal) Capture() (capture.Signal, error) {
	switch capture.SignalKind(s.Type) {
	case capture.SignalClick:
		return capture.Click{Target: s.Target.Element(), X: s.X, Y: s.Y}, nil
	case capture.SignalMouseMove:
		return capture.MouseMove{X: s.X, Y: s.Y}, nil
	case capture.SignalScroll:
		return capture.Scroll{State: s.ScrollState()}, nil
	case capture.SignalSubmit:
		return capture.Submit{Form: s.Target.Element()}, nil
	case capture.SignalFocusIn:
		return capture.FocusIn{Target: s.Target.Element()}, nil
	case capture.SignalInput:
		return capture.Input{Target: s.Target.Element()}, nil
	case capture.SignalVisibility:
		return capture.VisibilityChange{Hidden: s.Hidden}, nil
	case capture.SignalOnline:
		return capture.Online{}, nil
	case capture.SignalOffline:
		return capture.Offline{}, nil
	case capture.SignalUnload:
		return capture.Unload{}, nil
	}
	return nil, fmt.Errorf("unsupported signal type %q", s.Type)
}

func (s Signal) ScrollState() capture.ScrollState {
	return capture.ScrollState{
		ScrollTop:      s.ScrollTop,
		ScrollHeight:   s.ScrollHeight,
		ViewportHeight: s.ViewportHeight,
	}
}

// Elements converts the inserted nodes of a mutation signal.
func (s Signal) Elements() []capture.Element {
	out := make([]capture.Element, 0, len(s.Nodes))
	for i := range s.Nodes {
		out = append(out, s.Nodes[i].build())
	}
	return out
}
