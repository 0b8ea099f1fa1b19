// Package prompt screens chat messages before they are logged or forwarded.
// Nothing here rejects a message; callers decide what to do with a finding.
package prompt

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// PIIType names a kind of personal data found in a message
type PIIType string

const (
	PIITypeEmail      PIIType = "email"
	PIITypePhone      PIIType = "phone"
	PIITypeNationalID PIIType = "national_id"
	PIITypeCard       PIIType = "credit_card"
)

// PIIDetection is one match with its byte offsets
type PIIDetection struct {
	Type     PIIType
	StartPos int
	EndPos   int
}

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	// 13 to 19 digits, optionally grouped by spaces or dashes
	cardPattern = regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`)

	// cédula formats: 001-1234567-8, 8-123-4567, V-12345678
	nationalIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{3}-\d{7}-\d\b`),
		regexp.MustCompile(`\b\d{1,2}-\d{3,4}-\d{3,5}\b`),
		regexp.MustCompile(`\b[VEve]-?\d{6,9}\b`),
	}

	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+\d{1,3}[\s.-]?\(?\d{1,4}\)?[\s.-]?\d{3,4}[\s.-]?\d{3,4}`),
		regexp.MustCompile(`\(?\b\d{3}\)?[\s.-]\d{3}[\s.-]\d{4}\b`),
	}

	redactions = map[PIIType]string{
		PIITypeEmail:      "[EMAIL]",
		PIITypePhone:      "[TELEFONO]",
		PIITypeNationalID: "[CEDULA]",
		PIITypeCard:       "[TARJETA]",
	}
)

// DetectPII reports whether s contains any personal data
func DetectPII(s string) bool {
	return len(DetectAllPII(s)) > 0
}

// DetectAllPII returns non-overlapping detections ordered by position.
// When two patterns overlap the earlier, longer match wins.
func DetectAllPII(s string) []PIIDetection {
	var found []PIIDetection
	add := func(t PIIType, re *regexp.Regexp, accept func(string) bool) {
		for _, m := range re.FindAllStringIndex(s, -1) {
			if accept == nil || accept(s[m[0]:m[1]]) {
				found = append(found, PIIDetection{Type: t, StartPos: m[0], EndPos: m[1]})
			}
		}
	}

	add(PIITypeEmail, emailPattern, nil)
	add(PIITypeCard, cardPattern, luhnCheck)
	for _, re := range nationalIDPatterns {
		add(PIITypeNationalID, re, nil)
	}
	for _, re := range phonePatterns {
		add(PIITypePhone, re, nil)
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].StartPos != found[j].StartPos {
			return found[i].StartPos < found[j].StartPos
		}
		return found[i].EndPos > found[j].EndPos
	})

	out := found[:0]
	end := -1
	for _, d := range found {
		if d.StartPos < end {
			continue
		}
		out = append(out, d)
		end = d.EndPos
	}
	return out
}

// RedactPII replaces every detection with a placeholder
func RedactPII(s string) string {
	detections := DetectAllPII(s)
	if len(detections) == 0 {
		return s
	}

	var b strings.Builder
	last := 0
	for _, d := range detections {
		b.WriteString(s[last:d.StartPos])
		b.WriteString(redactions[d.Type])
		last = d.EndPos
	}
	b.WriteString(s[last:])
	return b.String()
}

// Preview redacts s and cuts it to at most n runes for logging
func Preview(s string, n int) string {
	s = strings.Join(strings.Fields(RedactPII(s)), " ")
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

// luhnCheck validates a card number using the Luhn algorithm
func luhnCheck(number string) bool {
	number = strings.NewReplacer(" ", "", "-", "").Replace(number)
	if len(number) < 13 || len(number) > 19 {
		return false
	}

	sum := 0
	second := false
	for i := len(number) - 1; i >= 0; i-- {
		digit := int(number[i] - '0')
		if second {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		second = !second
	}
	return sum%10 == 0
}
