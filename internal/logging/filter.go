// Package logging provides zerolog utilities for the agentdeck server,
// chiefly redaction of credentials that can leak through logged request
// payloads or probe script output.
package logging

import (
	"io"
	"regexp"

	"github.com/rs/zerolog"
)

// RedactedValue is the replacement string for sensitive data.
const RedactedValue = "[REDACTED]"

// sensitivePatterns match credential formats that have no business in a
// dashboard log: provider API keys, repository tokens, bearer headers, and
// generic key=value secret assignments.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-ant-api[a-zA-Z0-9_-]+`),
	regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`),
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{20,}`),
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_-]{20,}`),
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|secret|password|token)\s*[:=]\s*["']?[^\s"']{8,}["']?`),
}

// ContainsSensitiveData reports whether s matches any credential pattern.
func ContainsSensitiveData(s string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue replaces credential matches in value with
// RedactedValue.
func FilterSensitiveValue(value string) string {
	result := value
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// SensitiveDataHook flags log events whose message matches a credential
// pattern. Zerolog hooks cannot rewrite the message itself; actual
// redaction happens in FilteringWriter on the file path.
type SensitiveDataHook struct{}

// NewSensitiveDataHook creates the hook.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements zerolog.Hook.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// FilteringWriter redacts credential patterns from everything written
// through it. Log file writers are wrapped with it so secrets never reach
// disk even when they slip into a message or field.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter wraps w.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer. The reported length is the input length so
// callers do not see a short write when redaction shrinks the output.
func (fw *FilteringWriter) Write(p []byte) (int, error) {
	if _, err := fw.w.Write([]byte(FilterSensitiveValue(string(p)))); err != nil {
		return 0, err
	}
	return len(p), nil
}
