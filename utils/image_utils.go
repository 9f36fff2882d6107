package utils

import (
	"fmt"
	"strings"
)

const publicStoragePrefix = "https://storage.googleapis.com/"

// PublicObjectURL is the unauthenticated URL of an object in a public-read bucket.
func PublicObjectURL(bucket, objectPath string) string {
	return publicStoragePrefix + bucket + "/" + strings.TrimPrefix(objectPath, "/")
}

// ExtractObjectPath extracts the storage object path from a public storage URL.
func ExtractObjectPath(url string) (string, error) {
	if !strings.HasPrefix(url, publicStoragePrefix) {
		return "", fmt.Errorf("invalid URL")
	}

	// Remove prefix and bucket name
	path := strings.TrimPrefix(url, publicStoragePrefix)
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", fmt.Errorf("invalid URL format")
	}

	return parts[1], nil
}
