// Package answer decides whether free-text player input matches an
// accepted answer, tolerating spelling slips, stray punctuation and
// Norwegian letters typed without their diacritics.
package answer

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultThreshold is the edit-distance budget used when no option
// overrides it.
const DefaultThreshold = 2

// Options tune a single Check call.
type Options struct {
	// Threshold is the maximum edit distance accepted for short answers.
	// Longer answers get max(Threshold, len/5). Zero means DefaultThreshold.
	Threshold int

	// ExactMatch restricts matching to normalized equality, skipping the
	// substring and edit-distance steps.
	ExactMatch bool
}

// Result reports the outcome of one Check call. BestMatch and Distance
// are filled even when Correct is false, so callers can show the
// closest accepted answer as feedback.
type Result struct {
	Correct   bool
	Distance  int
	BestMatch string
}

var punctuation = strings.NewReplacer(
	".", "", ",", "", "!", "", "?", "", "'", "", "\"", "",
	"(", "", ")", "", "-", " ", ":", "", ";", "",
)

var national = strings.NewReplacer("æ", "ae", "ø", "o", "å", "aa")

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes text for comparison: lower-case, trimmed,
// internal whitespace collapsed, punctuation stripped, diacritics
// removed and the national letters folded to their unaccented forms.
func Normalize(s string) string {
	s = norm.NFC.String(strings.ToLower(s))
	s = punctuation.Replace(s)
	s = national.Replace(s)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	return strings.Join(strings.Fields(s), " ")
}

// Check compares the player's text against every accepted answer and
// returns the best candidate found.
//
// Per candidate, in order: exact normalized equality wins with distance
// zero; pure-digit inputs accept only equality, so "6" never matches
// "8"; a substring relationship within the length-delta threshold wins;
// otherwise the edit distance decides, with a budget that grows with
// candidate length.
//
// Postcondition: Result.BestMatch names the lowest-distance candidate
// even when no threshold was met; with no candidates, Result is zero.
func Check(text string, accepted []string, opts Options) Result {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	guess := Normalize(text)

	best := Result{Distance: -1}
	for _, raw := range accepted {
		candidate := Normalize(raw)

		if guess == candidate {
			return Result{Correct: true, Distance: 0, BestMatch: raw}
		}

		dist := levenshtein.ComputeDistance(guess, candidate)
		correct := false

		switch {
		case opts.ExactMatch:
			// Equality already checked.
		case pureDigits(guess) && pureDigits(candidate):
			// Numbers get no leniency.
		case substringMatch(guess, candidate, threshold):
			dist = lengthDelta(guess, candidate)
			correct = true
		case dist <= budget(threshold, candidate):
			correct = true
		}

		if best.Distance < 0 || dist < best.Distance {
			best = Result{Correct: correct, Distance: dist, BestMatch: raw}
		}
		if correct {
			return Result{Correct: true, Distance: dist, BestMatch: raw}
		}
	}

	if best.Distance < 0 {
		return Result{}
	}
	return best
}

// budget is the edit-distance allowance for a candidate: longer
// accepted answers tolerate proportionally more edits.
func budget(threshold int, candidate string) int {
	adaptive := len(candidate) / 5
	if adaptive > threshold {
		return adaptive
	}
	return threshold
}

// substringMatch reports whether one string contains the other with a
// small enough length difference. The allowance grows with the longer
// string so that a bare noun still matches an accepted answer carrying
// its article ("blomst" vs "en blomst").
func substringMatch(a, b string, threshold int) bool {
	if a == "" || b == "" {
		return false
	}
	if !strings.Contains(a, b) && !strings.Contains(b, a) {
		return false
	}
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	allowance := longer / 2
	if allowance < threshold {
		allowance = threshold
	}
	return lengthDelta(a, b) <= allowance
}

func lengthDelta(a, b string) int {
	d := len(a) - len(b)
	if d < 0 {
		return -d
	}
	return d
}

func pureDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
