package middleware

import (
	"context"
	"net/url"

	"github.com/soundshelf/soundshelf-backend/internal/uploads"
)

type contextKey string

const uploadResultKey contextKey = "uploadResult"

// WithUploadResult attaches the multipart intake outcome so the create
// handler can read the form fields and stored filename.
func WithUploadResult(ctx context.Context, result *uploads.Result) context.Context {
	return context.WithValue(ctx, uploadResultKey, result)
}

func UploadResultFromContext(ctx context.Context) (*uploads.Result, bool) {
	result, ok := ctx.Value(uploadResultKey).(*uploads.Result)
	return result, ok && result != nil
}

func FormValuesFromContext(ctx context.Context) url.Values {
	if result, ok := UploadResultFromContext(ctx); ok {
		return result.Fields
	}
	return url.Values{}
}

func UploadedFileFromContext(ctx context.Context) string {
	if result, ok := UploadResultFromContext(ctx); ok {
		return result.Filename
	}
	return ""
}
