package capture

import (
	"regexp"
)

// Device classes reported in page_load.
const (
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
	DeviceDesktop = "Desktop"
)

var (
	mobileUA = regexp.MustCompile(`(?i)mobile|android|iphone|ipod|phone`)
	tabletUA = regexp.MustCompile(`(?i)tablet|ipad|kindle|silk`)
)

// ClassifyDevice applies the keyword rules first and only then the
// touch/width heuristics. touchEvents is 'ontouchstart' in window.
func ClassifyDevice(userAgent string, width int, touchEvents bool, maxTouchPoints int) string {
	if mobileUA.MatchString(userAgent) {
		return DeviceMobile
	}
	if tabletUA.MatchString(userAgent) || (touchEvents && width >= 768 && width < 1024) {
		return DeviceTablet
	}
	if touchEvents || maxTouchPoints > 0 {
		if width < 768 {
			return DeviceMobile
		}
		if width < 1024 {
			return DeviceTablet
		}
	}
	return DeviceDesktop
}

// ClassifyFacts classifies using the page facts.
func ClassifyFacts(f Facts) string {
	return ClassifyDevice(f.UserAgent, f.Viewport.Width, f.TouchEvents, f.MaxTouchPoints)
}
