package context

import (
	"context"
)

type contextKey string

var (
	requestIDKey contextKey = "request_id"
	themeKey     contextKey = "theme"
	csrfKey      contextKey = "csrf_token"
)

const DefaultTheme = "light"

func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

func SetTheme(ctx context.Context, theme string) context.Context {
	return context.WithValue(ctx, themeKey, theme)
}

// GetTheme returns the theme picked by the theme cookie, defaulting to light
func GetTheme(ctx context.Context) string {
	if theme, ok := ctx.Value(themeKey).(string); ok && theme != "" {
		return theme
	}
	return DefaultTheme
}

func SetCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfKey, token)
}

func GetCSRFToken(ctx context.Context) string {
	if token, ok := ctx.Value(csrfKey).(string); ok {
		return token
	}
	return ""
}
