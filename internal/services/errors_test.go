package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ampliflow/internal/services"
)

func TestWrapTagsWithMarker(t *testing.T) {
	cause := errors.New("boom")
	err := services.Wrap(services.ErrJoin, "variants", "pair variant calls", "barcode03", cause)

	if !errors.Is(err, services.ErrJoin) {
		t.Fatalf("error is not tagged: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost: %v", err)
	}
	for _, want := range []string{"variants", "pair variant calls", "barcode03"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("message missing %q: %v", want, err)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "stage", "op", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("nil marker should default to external tool: %v", err)
	}
}

func TestFatalClassification(t *testing.T) {
	cases := []struct {
		err   error
		fatal bool
	}{
		{services.Wrap(services.ErrResolution, "samples", "stat input", "", nil), true},
		{services.Wrap(services.ErrConfiguration, "taskgraph", "validate", "", nil), true},
		{services.Wrap(services.ErrJoin, "variants", "join", "", nil), false},
		{services.Wrap(services.ErrIncompleteSet, "report", "gather", "", nil), false},
		{services.Wrap(services.ErrPublish, "publish", "copy", "", nil), false},
	}
	for _, tc := range cases {
		if got := services.Fatal(tc.err); got != tc.fatal {
			t.Fatalf("Fatal(%v) = %v, want %v", tc.err, got, tc.fatal)
		}
	}
}

func TestContextAnnotations(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithStage(ctx, "compute")
	ctx = services.WithSample(ctx, "barcode01")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("run id = %q, %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "compute" {
		t.Fatalf("stage = %q, %v", stage, ok)
	}
	if sample, ok := services.SampleFromContext(ctx); !ok || sample != "barcode01" {
		t.Fatalf("sample = %q, %v", sample, ok)
	}

	if _, ok := services.RunIDFromContext(context.Background()); ok {
		t.Fatal("unannotated context should report absence")
	}
	if same := services.WithRunID(context.Background(), ""); same != context.Background() {
		t.Fatal("empty annotation should return the context unchanged")
	}
}
