package capture

// SignalKind names a raw browser signal.
type SignalKind string

const (
	SignalClick      SignalKind = "click"
	SignalMouseMove  SignalKind = "mousemove"
	SignalScroll     SignalKind = "scroll"
	SignalSubmit     SignalKind = "submit"
	SignalFocusIn    SignalKind = "focusin"
	SignalInput      SignalKind = "input"
	SignalVisibility SignalKind = "visibilitychange"
	SignalOnline     SignalKind = "online"
	SignalOffline    SignalKind = "offline"
	SignalUnload     SignalKind = "beforeunload"
)

// Signal is a raw browser event delivered to the registry.
type Signal interface {
	SignalKind() SignalKind
}

// Click is a click on Target at viewport coordinates X, Y.
type Click struct {
	Target Element
	X, Y   float64
}

// MouseMove is one raw pointer movement.
type MouseMove struct {
	X, Y float64
}

// Scroll carries the document scroll state at the time of the event.
type Scroll struct {
	State ScrollState
}

// Submit is a form submission.
type Submit struct {
	Form Element
}

// FocusIn is focus entering Target.
type FocusIn struct {
	Target Element
}

// Input is a value change on Target.
type Input struct {
	Target Element
}

// VisibilityChange reports the document's new hidden state.
type VisibilityChange struct {
	Hidden bool
}

type Online struct{}

type Offline struct{}

// Unload is the page being torn down.
type Unload struct{}

func (Click) SignalKind() SignalKind            { return SignalClick }
func (MouseMove) SignalKind() SignalKind        { return SignalMouseMove }
func (Scroll) SignalKind() SignalKind           { return SignalScroll }
func (Submit) SignalKind() SignalKind           { return SignalSubmit }
func (FocusIn) SignalKind() SignalKind          { return SignalFocusIn }
func (Input) SignalKind() SignalKind            { return SignalInput }
func (VisibilityChange) SignalKind() SignalKind { return SignalVisibility }
func (Online) SignalKind() SignalKind           { return SignalOnline }
func (Offline) SignalKind() SignalKind          { return SignalOffline }
func (Unload) SignalKind() SignalKind           { return SignalUnload }
