package storage

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObjectPath(t *testing.T) {
	at := time.UnixMilli(1700000000000)

	got := ObjectPath(KindAPK, "dev-1", "weather.apk", at)
	assert.Equal(t, "apks/dev-1/1700000000000-weather.apk", got)

	got = ObjectPath(KindIcon, "dev-1", "icon.png", at)
	assert.Equal(t, "icons/dev-1/1700000000000-icon.png", got)
}

func TestObjectPathDistinctPerAttempt(t *testing.T) {
	first := ObjectPath(KindAPK, "dev-1", "weather.apk", time.UnixMilli(1))
	second := ObjectPath(KindAPK, "dev-1", "weather.apk", time.UnixMilli(2))
	assert.NotEqual(t, first, second)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"weather.apk", "weather.apk"},
		{"my app (1).apk", "my_app__1_.apk"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\x\app.apk`, "app.apk"},
		{"Ünïcode.apk", "_n_code.apk"},
		{"", "file"},
		{"///", "file"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeFilename(tt.in))
		})
	}
}
