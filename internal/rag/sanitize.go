package rag

import (
	"regexp"
	"strings"
)

// thinkBlock matches internal scratch-reasoning some backends leak into
// their output, including the delimiting tags and everything between
// them, across newlines.
var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Sanitize strips reasoning blocks from raw model output and trims
// surrounding whitespace. Output with no such blocks is returned trimmed
// and otherwise unchanged.
func Sanitize(raw string) string {
	return strings.TrimSpace(thinkBlock.ReplaceAllString(raw, ""))
}
