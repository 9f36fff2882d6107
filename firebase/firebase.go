package firebase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"promoshow/utils"
)

// AppConfig identifies the Firebase project backing the promotion stores.
type AppConfig struct {
	ProjectID     string
	StorageBucket string
	// Credentials is either inline service-account JSON or a file path.
	Credentials string
}

// NewApp initializes the Firebase app used by both the document and blob stores.
func NewApp(ctx context.Context, cfg AppConfig, logger *zap.Logger) (*firebase.App, error) {
	logger = utils.OrNop(logger)
	var opts []option.ClientOption

	if cfg.Credentials != "" {
		if strings.HasPrefix(cfg.Credentials, "{") {
			logger.Info("using Firebase credentials from environment variable")
			opts = append(opts, option.WithCredentialsJSON([]byte(cfg.Credentials)))
		} else {
			logger.Info("using Firebase credentials from file", zap.String("path", cfg.Credentials))
			opts = append(opts, option.WithCredentialsFile(cfg.Credentials))
		}
	} else {
		logger.Warn("GOOGLE_APPLICATION_CREDENTIALS not set, using default credentials")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase init: %w", err)
	}

	logger.Info("firebase initialized", zap.String("project_id", cfg.ProjectID))
	return app, nil
}

var unsafeSegmentChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeFilename removes special characters from one path segment and limits length.
func sanitizeFilename(filename string) string {
	sanitized := unsafeSegmentChars.ReplaceAllString(filename, "_")

	if len(sanitized) > 100 {
		sanitized = sanitized[:100]
	}

	if sanitized == "" || sanitized == "." || sanitized == ".." {
		sanitized = "file"
	}

	return sanitized
}

// sanitizeObjectPath sanitizes every segment of an object key, dropping empty
// segments so that "a//b" and "/a/b" both become "a/b".
func sanitizeObjectPath(objectPath string) string {
	var segments []string
	for _, seg := range strings.Split(objectPath, "/") {
		if seg == "" {
			continue
		}
		segments = append(segments, sanitizeFilename(seg))
	}
	if len(segments) == 0 {
		return "file"
	}
	return strings.Join(segments, "/")
}
