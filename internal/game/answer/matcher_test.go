package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "PARIS", "paris"},
		{"trim and collapse", "  en   blomst ", "en blomst"},
		{"punctuation", "Hva, er det?!", "hva er det"},
		{"hyphen becomes space", "Aust-Agder", "aust agder"},
		{"ae", "blåbær", "blaabaer"},
		{"oslo fjord", "Oslofjorden", "oslofjorden"},
		{"o with stroke", "Bodø", "bodo"},
		{"accents stripped", "café", "cafe"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestCheck_Exact(t *testing.T) {
	res := Check("Paris", []string{"paris"}, Options{})
	assert.True(t, res.Correct)
	assert.Equal(t, 0, res.Distance)
	assert.Equal(t, "paris", res.BestMatch)
}

func TestCheck_NumericGuard(t *testing.T) {
	res := Check("6", []string{"8"}, Options{})
	assert.False(t, res.Correct, "numbers one edit apart must not match")

	res = Check("6", []string{"6", "60"}, Options{})
	assert.True(t, res.Correct)
	assert.Equal(t, "6", res.BestMatch)
	assert.Equal(t, 0, res.Distance)
}

func TestCheck_Substring(t *testing.T) {
	res := Check("blomst", []string{"en blomst"}, Options{})
	assert.True(t, res.Correct)

	// A fragment far shorter than the candidate is not enough.
	res = Check("b", []string{"en blomst"}, Options{})
	assert.False(t, res.Correct)
}

func TestCheck_Levenshtein(t *testing.T) {
	res := Check("blaaba", []string{"blåbær"}, Options{})
	assert.True(t, res.Correct)
	assert.Equal(t, "blåbær", res.BestMatch)

	res = Check("banan", []string{"eple"}, Options{})
	assert.False(t, res.Correct)
}

func TestCheck_LongAnswersTolerateMoreEdits(t *testing.T) {
	// Three edits: beyond the default threshold, inside the budget a
	// 24-char candidate earns.
	res := Check("dn fransk revolusjonn", []string{"den franske revolusjonen"}, Options{})
	assert.True(t, res.Correct)

	res = Check("kristiansand", []string{"kristiansund"}, Options{})
	assert.True(t, res.Correct, "one substitution within default threshold")

	res = Check("osl", []string{"oslofjordtunnelen"}, Options{})
	assert.False(t, res.Correct, "short guess against long candidate is rejected")
}

func TestCheck_BestMatchOnFailure(t *testing.T) {
	res := Check("oslo", []string{"bergen", "oslofjordtunnelen"}, Options{})
	assert.False(t, res.Correct)
	assert.NotEmpty(t, res.BestMatch)
	assert.Greater(t, res.Distance, 0)
}

func TestCheck_ExactMatchOption(t *testing.T) {
	opts := Options{ExactMatch: true}

	res := Check("paris", []string{"Paris"}, opts)
	assert.True(t, res.Correct, "normalization still applies under exact match")

	res = Check("pariss", []string{"Paris"}, opts)
	assert.False(t, res.Correct)

	res = Check("blomst", []string{"en blomst"}, opts)
	assert.False(t, res.Correct, "substring leniency is off under exact match")
}

func TestCheck_ThresholdOption(t *testing.T) {
	res := Check("abc", []string{"abcdef"}, Options{Threshold: 3})
	assert.True(t, res.Correct)

	res = Check("abx", []string{"abcdef"}, Options{Threshold: 1})
	assert.False(t, res.Correct)
}

func TestCheck_NoCandidates(t *testing.T) {
	res := Check("anything", nil, Options{})
	assert.False(t, res.Correct)
	assert.Empty(t, res.BestMatch)
}

func TestCheck_MultipleCandidatesPicksClosest(t *testing.T) {
	res := Check("trondhjem", []string{"oslo", "trondheim", "bergen"}, Options{})
	assert.True(t, res.Correct)
	assert.Equal(t, "trondheim", res.BestMatch)
}
