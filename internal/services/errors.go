package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrResolution marks a failure to turn the input directory into a
	// usable sample set. Fatal before any task is scheduled.
	ErrResolution = errors.New("resolution error")
	// ErrJoin marks a post-resolution keyed join that found no
	// counterpart for a known-valid sample id. Fatal to the owning
	// stage only.
	ErrJoin = errors.New("join error")
	// ErrIncompleteSet marks a collect-all stage whose dependency set
	// contains a failed or missing member.
	ErrIncompleteSet = errors.New("incomplete set")
	// ErrMergeConflict marks structurally incompatible merge inputs.
	ErrMergeConflict = errors.New("merge conflict")
	// ErrPublish marks a per-artifact publish failure. Reported, never
	// fatal to other artifacts.
	ErrPublish = errors.New("publish error")

	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether an error should abort the run before any task is
// scheduled, as opposed to failing a single sample branch or aggregate.
func Fatal(err error) bool {
	return errors.Is(err, ErrResolution) || errors.Is(err, ErrConfiguration)
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
