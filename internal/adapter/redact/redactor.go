package redact

import "regexp"

// RedactedPlaceholder is the mask written over matched substrings.
const RedactedPlaceholder = "[REDACTED]"

// Redactor masks recognizable sensitive substrings in log text. Redact is a
// pure function of its input: the same text always produces byte-identical
// output, which is what makes reprocessing a redelivered message safe.
type Redactor struct {
	pattern     *regexp.Regexp
	replacement string
}

// phone numbers in the fictional 555 exchange, e.g. "call 555-1234"
var phonePrefix = regexp.MustCompile(`555-`)

// NewPhonePrefixRedactor masks the 555- phone prefix, turning
// "call 555-1234" into "call [REDACTED]-1234".
func NewPhonePrefixRedactor() *Redactor {
	return &Redactor{
		pattern:     phonePrefix,
		replacement: RedactedPlaceholder + "-",
	}
}

// New builds a Redactor for an arbitrary pattern.
func New(pattern, replacement string) (*Redactor, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Redactor{pattern: re, replacement: replacement}, nil
}

// Redact returns text with every pattern match replaced.
func (r *Redactor) Redact(text string) string {
	return r.pattern.ReplaceAllString(text, r.replacement)
}
