package batch

import "strings"

// DefaultPrefix is the literal roll-number prefix letter used by the portal.
const DefaultPrefix = 'b'

// DefaultIntakeCodes is the admission-year-to-batch table for the current
// academic cycle. Batch numbering tracks year of study, not intake year, so
// the whole table shifts by one every admission cycle and must be updated
// explicitly — it is versioned configuration, never inferred from the
// identifier format.
func DefaultIntakeCodes() map[string]string {
	return map[string]string{
		"25": "b1",
		"24": "b2",
		"23": "b3",
		"22": "b4",
	}
}

// Classifier maps roll-number-shaped identifiers to a batch identifier.
//
// Classifier instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Classifier struct {
	prefix      byte
	intakeCodes map[string]string
}

// NewClassifier builds a Classifier from a prefix letter and an explicit
// intake-code table. The table is copied; later mutation of the argument does
// not affect the classifier.
func NewClassifier(prefix byte, intakeCodes map[string]string) *Classifier {
	codes := make(map[string]string, len(intakeCodes))
	for code, b := range intakeCodes {
		codes[code] = b
	}
	return &Classifier{
		prefix:      lowerByte(prefix),
		intakeCodes: codes,
	}
}

// Classify derives the batch for a roll-number-shaped identifier.
//
// The identifier is lower-cased, must start with the configured prefix letter
// followed by a two-digit intake-year code, and the code must appear in the
// intake table. Anything else — empty input, short input, an unknown code —
// is unclassifiable and returns ok=false. Classify never panics and holds no
// state, so signup and login agree bit-for-bit.
func (c *Classifier) Classify(identifier string) (string, bool) {
	if c == nil {
		return "", false
	}

	id := strings.ToLower(strings.TrimSpace(identifier))
	if len(id) < 3 {
		return "", false
	}
	if id[0] != c.prefix {
		return "", false
	}

	code := id[1:3]
	if !isDigit(code[0]) || !isDigit(code[1]) {
		return "", false
	}

	b, ok := c.intakeCodes[code]
	return b, ok
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func lowerByte(ch byte) byte {
	if ch >= 'A' && ch <= 'Z' {
		return ch + ('a' - 'A')
	}
	return ch
}
