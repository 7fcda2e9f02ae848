package utils

import "fmt"

// BuildImageURL Base URL for original images
func BuildImageURL(baseURL, identifier string) string {
	return fmt.Sprintf("%s/api/v1/images/%s", baseURL, identifier)
}

// BuildThumbnailURL URL for a derived thumbnail
func BuildThumbnailURL(baseURL, identifier string, height int) string {
	return fmt.Sprintf("%s/api/v1/images/%s/thumbnail/%d", baseURL, identifier, height)
}

// BuildTemporaryLinkURL Fully-qualified redemption URL for an expiring link
func BuildTemporaryLinkURL(baseURL, linkID string) string {
	return fmt.Sprintf("%s/links/%s", baseURL, linkID)
}
