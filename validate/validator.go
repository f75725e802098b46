package validate

import (
	"fmt"
	"strings"

	"screensmith/shared"
)

// Validator checks raw agent output against a minimal structural contract:
// the trimmed text must start with Open and end with Close, case-insensitive.
// AltOpen is an alternative accepted start for the strict check (an HTML
// document may lead with a doctype declaration).
type Validator struct {
	Open    string
	Close   string
	AltOpen string
}

func NewValidator(open string, close string) *Validator {
	return &Validator{Open: open, Close: close}
}

func NewHTMLValidator() *Validator {
	return &Validator{Open: "<html", Close: "</html>", AltOpen: "<!doctype"}
}

// failurePhrases are conversational tells that the agent ignored the
// output-format instructions.
var failurePhrases = []string{
	"i'm sorry",
	"i am sorry",
	"i apologize",
	"i cannot",
	"i can't",
	"as an ai",
	"i'd be happy to",
}

// Validate runs the two-tier strategy: strict structural check first, then
// longest-span salvage. Content always carries the best available candidate,
// even on failure; Extracted marks the salvage path.
func (v *Validator) Validate(raw string) shared.ValidationResult {
	content := StripFence(raw)
	res := shared.ValidationResult{Content: content}

	if v.wellFormed(content) {
		res.Valid = true
		return res
	}

	if span, ok := v.extract(content); ok {
		return shared.ValidationResult{Valid: true, Content: span, Extracted: true}
	}

	res.Errors = v.diagnose(content)
	return res
}

func (v *Validator) wellFormed(s string) bool {
	t := strings.ToLower(strings.TrimSpace(s))
	if t == "" {
		return false
	}
	if !strings.HasSuffix(t, strings.ToLower(v.Close)) {
		return false
	}
	if strings.HasPrefix(t, strings.ToLower(v.Open)) {
		return true
	}
	return v.AltOpen != "" && strings.HasPrefix(t, strings.ToLower(v.AltOpen))
}

// extract finds the longest substring from the first opening marker to the
// last closing marker and accepts it only if it passes the strict check.
func (v *Validator) extract(s string) (string, bool) {
	lower := strings.ToLower(s)

	start := strings.Index(lower, strings.ToLower(v.Open))
	if v.AltOpen != "" {
		if alt := strings.Index(lower, strings.ToLower(v.AltOpen)); alt >= 0 && (start < 0 || alt < start) {
			start = alt
		}
	}
	end := strings.LastIndex(lower, strings.ToLower(v.Close))
	if start < 0 || end < 0 || end < start {
		return "", false
	}

	span := s[start : end+len(v.Close)]
	if !v.wellFormed(span) {
		return "", false
	}
	return span, true
}

func (v *Validator) diagnose(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{"empty output"}
	}

	var errs []string
	lower := strings.ToLower(s)

	hasOpen := strings.Contains(lower, strings.ToLower(v.Open)) ||
		(v.AltOpen != "" && strings.Contains(lower, strings.ToLower(v.AltOpen)))
	hasClose := strings.Contains(lower, strings.ToLower(v.Close))

	if !hasOpen {
		errs = append(errs, fmt.Sprintf("missing opening marker %q", v.Open))
	}
	if !hasClose {
		errs = append(errs, fmt.Sprintf("missing closing marker %q", v.Close))
	}
	if hasOpen && hasClose {
		errs = append(errs, fmt.Sprintf("no well-formed span between %q and %q", v.Open, v.Close))
	}
	for _, phrase := range failurePhrases {
		if strings.Contains(lower, phrase) {
			errs = append(errs, fmt.Sprintf("contains failure phrase %q", phrase))
		}
	}
	return errs
}

// StripFence removes a single outer markdown code fence, if the text both
// starts and ends with one. The inner text is returned byte-for-byte.
func StripFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	first := strings.IndexByte(t, '\n')
	last := strings.LastIndexByte(t, '\n')
	if first < 0 || last <= first {
		return t
	}
	if strings.TrimSpace(t[last+1:]) != "```" {
		return t
	}
	// Opening fence line may carry a language tag but nothing else.
	if strings.ContainsAny(strings.TrimSpace(t[3:first]), " \t`") {
		return t
	}
	return t[first+1 : last]
}
