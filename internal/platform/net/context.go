// Package net provides utilities for working with request contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const (
	keyUserID ctxKey = "user_id"
	keyLogin  ctxKey = "login"
)

// WithRequestID sets the chi request id so chimw.GetReqID can retrieve it
func WithRequestID(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, reqID)
}

// WithUser annotates context with the authenticated GitHub user id and login
func WithUser(ctx context.Context, userID, login string) context.Context {
	if userID != "" {
		ctx = context.WithValue(ctx, keyUserID, userID)
	}
	if login != "" {
		ctx = context.WithValue(ctx, keyLogin, login)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// UserID returns the authenticated user id on the context if present
func UserID(ctx context.Context) string {
	if v, ok := ctx.Value(keyUserID).(string); ok {
		return v
	}
	return ""
}

// Login returns the authenticated GitHub login on the context if present
func Login(ctx context.Context) string {
	if v, ok := ctx.Value(keyLogin).(string); ok {
		return v
	}
	return ""
}
