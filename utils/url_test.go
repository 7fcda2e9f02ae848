package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- 测试 URL 构造 ---

func TestBuildImageURL(t *testing.T) {
	assert.Equal(t,
		"http://localhost:8080/api/v1/images/abc123",
		BuildImageURL("http://localhost:8080", "abc123"))
}

func TestBuildThumbnailURL(t *testing.T) {
	assert.Equal(t,
		"http://localhost:8080/api/v1/images/abc123/thumbnail/200",
		BuildThumbnailURL("http://localhost:8080", "abc123", 200))
}

func TestBuildTemporaryLinkURL(t *testing.T) {
	assert.Equal(t,
		"https://img.example.com/links/9f1c2d",
		BuildTemporaryLinkURL("https://img.example.com", "9f1c2d"))
}
