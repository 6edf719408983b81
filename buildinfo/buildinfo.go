package buildinfo

import (
	"fmt"
	"os"
	"runtime"
	"time"
)

// Build information variables set via ldflags during compilation
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Name is the product token sent on outbound requests
const Name = "tracker-agent"

var startTime = time.Now()

// Info describes the running agent
type Info struct {
	Name      string        `json:"name" example:"tracker-agent"`
	Version   string        `json:"version" example:"v1.0.0"`
	Commit    string        `json:"commit" example:"abc123def456"`
	BuildDate string        `json:"buildDate" example:"2025-11-22T10:00:00Z"`
	GoVersion string        `json:"goVersion" example:"go1.25.4"`
	Platform  string        `json:"platform" example:"linux/amd64"`
	Hostname  string        `json:"hostname" example:"app-server-01"`
	StartedAt time.Time     `json:"startedAt" example:"2025-11-22T09:00:00Z"`
	Uptime    time.Duration `json:"uptime" swaggertype:"integer" example:"3600000000000"`
}

func GetInfo() Info {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	return Info{
		Name:      Name,
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Hostname:  hostname,
		StartedAt: startTime,
		Uptime:    time.Since(startTime),
	}
}

// String is the one line startup banner
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s, %s %s) on %s",
		i.Name, i.Version, i.Commit, i.BuildDate, i.GoVersion, i.Platform, i.Hostname)
}

// SetStartTime pins the uptime origin, main calls it first
func SetStartTime(t time.Time) {
	startTime = t
}

// UserAgent identifies the agent on transport, beacon and geolocation requests
func UserAgent() string {
	return Name + "/" + Version
}
