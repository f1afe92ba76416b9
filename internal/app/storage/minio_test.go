package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContentType(t *testing.T) {
	cases := map[string]string{
		"banner.JPG":  "image/jpeg",
		"banner.jpeg": "image/jpeg",
		"logo.png":    "image/png",
		"anim.gif":    "image/gif",
		"photo.webp":  "image/webp",
		"brief.pdf":   "application/octet-stream",
		"noext":       "application/octet-stream",
	}
	for name, want := range cases {
		assert.Equal(t, want, contentType(name), name)
	}
	assert.True(t, IsImage("a.png"))
	assert.False(t, IsImage("a.exe"))
}

func TestObjectName(t *testing.T) {
	now := time.Unix(1700000000, 0)
	a := objectName(7, "Баннер.PNG", now)
	b := objectName(7, "Баннер.PNG", now)

	assert.Regexp(t, `^service_7_[0-9a-f]{8}_1700000000\.png$`, a)
	assert.NotEqual(t, a, b)
}
