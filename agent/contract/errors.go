package contract

import "errors"

// Sentinels shared by the crew and the pipeline. Callers wrap them with
// %w and match with errors.Is.
var (
	ErrModelInvoke     = errors.New("chat model invoke failed")
	ErrSchemaViolation = errors.New("model response broke the expected schema")
	ErrPromptMissing   = errors.New("role prompt is missing")
	ErrValidation      = errors.New("request validation failed")
	ErrToolUnavailable = errors.New("tool is not available")
)
