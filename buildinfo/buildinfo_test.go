package buildinfo

import (
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetInfo(t *testing.T) {
	started := time.Now().Add(-time.Minute)
	SetStartTime(started)

	info := GetInfo()
	assert.Equal(t, Name, info.Name)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.True(t, info.StartedAt.Equal(started))
	assert.GreaterOrEqual(t, info.Uptime, time.Minute)
	assert.NotEmpty(t, info.Hostname)
	assert.True(t, strings.HasPrefix(info.String(), Name+" "+Version))
}

func TestUserAgent(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "v1.2.3"
	assert.Equal(t, "tracker-agent/v1.2.3", UserAgent())
}
