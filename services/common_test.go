package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowedImage(t *testing.T) {
	assert.True(t, IsAllowedImage("tee.jpg"))
	assert.True(t, IsAllowedImage("tee.jpeg"))
	assert.True(t, IsAllowedImage("Photo.PNG"))
	assert.True(t, IsAllowedImage("pic.webp"))

	// no decoder for these, so they are not accepted at upload either
	assert.False(t, IsAllowedImage("scan.heic"))
	assert.False(t, IsAllowedImage("scan.heif"))

	assert.False(t, IsAllowedImage("notes.pdf"))
	assert.False(t, IsAllowedImage("shirt"))
}
