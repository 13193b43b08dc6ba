package services_test

import (
	"errors"
	"strings"
	"testing"

	"reelforge/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrEncoding, "render", "encode", "ffmpeg exited", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrEncoding) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"render", "encode", "ffmpeg exited"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected default detail, got %q", err.Error())
	}
}

func TestFailureKindMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "ok"},
		{"resource", services.Wrap(services.ErrResource, "render", "probe", "missing", nil), "resource"},
		{"encoding", services.Wrap(services.ErrEncoding, "render", "encode", "", errors.New("exit 1")), "encoding"},
		{"config", services.Wrap(services.ErrConfiguration, "config", "", "bad", nil), "configuration"},
		{"unknown", errors.New("io"), "failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.FailureKind(tt.err); got != tt.want {
				t.Fatalf("FailureKind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	if services.IsFatal(nil) {
		t.Fatal("nil error must not be fatal")
	}
	if services.IsFatal(services.Wrap(services.ErrRenderBackend, "render", "fast path", "", nil)) {
		t.Fatal("render backend errors are recovered locally")
	}
	if services.IsFatal(services.Wrap(services.ErrInput, "captions", "", "empty narration", nil)) {
		t.Fatal("input errors degrade to captionless output")
	}
	if !services.IsFatal(services.Wrap(services.ErrResource, "render", "", "missing background", nil)) {
		t.Fatal("resource errors are fatal")
	}
}
