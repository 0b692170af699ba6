// Package language classifies free text into the closed set of languages
// the service answers in.
//
// Classification never fails: the rest of the pipeline assumes a language
// is always resolvable, so any detection error, ambiguity, or unsupported
// result degrades to English instead of aborting the request.
package language

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Language is a supported language tag. The set is closed; values are
// stable identifiers used in index paths and API payloads.
type Language string

const (
	English Language = "english"
	Bangla  Language = "bangla"
)

// ErrUnsupported indicates a language parameter outside the supported set.
var ErrUnsupported = errors.New("unsupported language")

// Supported returns all languages the service can answer in.
func Supported() []Language {
	return []Language{English, Bangla}
}

// String returns the stable tag for l.
func (l Language) String() string {
	return string(l)
}

// Classify maps free text to a supported language. Bengali script maps to
// Bangla; everything else — including empty input, numeric-only input, and
// detector failures — maps to English.
func Classify(text string) Language {
	if strings.TrimSpace(text) == "" {
		return English
	}

	info := whatlanggo.Detect(text)
	if info.Lang == whatlanggo.Ben {
		return Bangla
	}
	return English
}

// Parse converts an API-supplied language parameter to a Language.
// Matching is case-insensitive; anything outside the supported set is a
// client error.
func Parse(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case English:
		return English, nil
	case Bangla:
		return Bangla, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupported, s)
	}
}
