// Package postcode normalises UK postcodes into the area prefixes used for
// instructor coverage matching.
package postcode

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	coverageOpen  = "["
	coverageClose = "]"
	coverageSep   = ","

	// Inward codes are always three characters.
	inwardLength = 3
	minFullCode  = 5
)

// Shifted digits on a UK keyboard are mapped back to the digit, separators are dropped.
var typoReplacer = strings.NewReplacer(
	" ", "",
	"-", "",
	"!", "1",
	"\"", "2",
	"£", "3",
	"$", "4",
	"%", "5",
	"^", "6",
	"&", "7",
	"*", "8",
	"(", "9",
	")", "0",
)

// DefaultWideAreaPattern matches rural areas where instructors travel further.
const DefaultWideAreaPattern = `^(AB|DD|DG|HS|IV|KW|PA|PH|TD|ZE|LD|SY|LL|TR)$`

// Small derives the area prefix of a postcode. Codes of five or more characters
// lose their inward part; shorter input is returned as typed, uppercased. With
// alpha set only the letters of the prefix are kept.
func Small(postcode string, alpha bool) string {
	cleaned := typoReplacer.Replace(strings.TrimSpace(postcode))
	if len([]rune(cleaned)) >= minFullCode {
		runes := []rune(cleaned)
		cleaned = string(runes[:len(runes)-inwardLength])
	}
	if alpha {
		cleaned = strings.Map(func(r rune) rune {
			if r < unicode.MaxASCII && unicode.IsLetter(r) {
				return r
			}
			return -1
		}, cleaned)
	}
	return strings.ToUpper(cleaned)
}

// CoverageToken wraps an area prefix the way it is stored in a coverage list.
func CoverageToken(area string) string {
	return coverageOpen + area + coverageClose
}

// BuildCoverage turns a list of areas into storage form, dropping blanks and duplicates.
func BuildCoverage(areas []string) string {
	seen := make(map[string]struct{}, len(areas))
	tokens := make([]string, 0, len(areas))
	for _, area := range areas {
		area = strings.Trim(strings.ToUpper(strings.TrimSpace(area)), coverageOpen+coverageClose)
		if area == "" {
			continue
		}
		if _, ok := seen[area]; ok {
			continue
		}
		seen[area] = struct{}{}
		tokens = append(tokens, CoverageToken(area))
	}
	return strings.Join(tokens, coverageSep)
}

// FormatCoverage renders a stored coverage list for display.
func FormatCoverage(stored string) string {
	display := strings.ReplaceAll(stored, coverageSep, coverageSep+" ")
	display = strings.ReplaceAll(display, coverageOpen, "")
	return strings.ReplaceAll(display, coverageClose, "")
}

// AreaMatcher reports whether a postcode falls in a wide-coverage area.
type AreaMatcher struct {
	pattern *regexp.Regexp
}

// NewAreaMatcher compiles pattern, falling back to DefaultWideAreaPattern when empty.
func NewAreaMatcher(pattern string) (*AreaMatcher, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultWideAreaPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &AreaMatcher{pattern: re}, nil
}

// Wide tests the alphabetic area letters of postcode against the pattern.
func (m *AreaMatcher) Wide(postcode string) bool {
	if m == nil || m.pattern == nil {
		return false
	}
	return m.pattern.MatchString(Small(postcode, true))
}
