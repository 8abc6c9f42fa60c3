package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Environments(t *testing.T) {
	tests := []struct {
		env     string
		wantErr bool
	}{
		{"prod", false},
		{"local", false},
		{"dev", false},
		{"test", false},
		{"staging", true},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			l, err := NewLogger(tt.env)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && l == nil {
				t.Fatal("expected logger")
			}
		})
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger("prod", "loud"); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestFromContext_DefaultNop(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected nop logger")
	}
}

func TestWith_AddsFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := ContextWithLogger(context.Background(), zap.New(core))

	ctx = With(ctx, zap.String("index", "posts"))
	FromContext(ctx).Info("searched")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	if got := entries[0].ContextMap()["index"]; got != "posts" {
		t.Errorf("index field = %v", got)
	}
}
