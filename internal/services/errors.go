package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")

	// ErrInput marks unusable narration text. The pipeline degrades to a
	// captionless render instead of failing.
	ErrInput = errors.New("input error")
	// ErrRenderBackend marks a failed or unreliable filter-graph attempt. It is
	// always recovered by the per-frame path.
	ErrRenderBackend = errors.New("render backend error")
	// ErrResource marks a missing or unreadable required asset.
	ErrResource = errors.New("resource error")
	// ErrEncoding marks an encoder or decoder failure.
	ErrEncoding = errors.New("encoding error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureKind maps an error to the stable label persisted in run history and
// shown by the CLI. A nil error reports "ok".
func FailureKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrResource), errors.Is(err, ErrNotFound):
		return "resource"
	case errors.Is(err, ErrEncoding):
		return "encoding"
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrValidation):
		return "configuration"
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrRenderBackend):
		return "render_backend"
	case errors.Is(err, ErrInput):
		return "input"
	default:
		return "failed"
	}
}

// IsFatal reports whether err must be surfaced to the caller rather than
// degraded locally.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrInput) && !errors.Is(err, ErrRenderBackend)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
