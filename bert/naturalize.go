package bert

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/text/language"
)

var datePattern = regexp.MustCompile(`^[0-9]{4}(-[0-9]{2}(-[0-9]{2})?)?$`)

var monthNames = map[language.Base][12]string{
	mustBase(language.French): {
		"janvier", "février", "mars", "avril", "mai", "juin",
		"juillet", "août", "septembre", "octobre", "novembre", "décembre",
	},
	mustBase(language.English): {
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
}

var (
	supportedLocales = []language.Tag{language.French, language.English}
	supported        = language.NewMatcher(supportedLocales)
)

func mustBase(tag language.Tag) language.Base {
	b, _ := tag.Base()
	return b
}

// ParseLocale parses a BCP 47 tag such as "fr" or "en-GB".
func ParseLocale(s string) (language.Tag, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("parse locale %q: %w", s, err)
	}
	return tag, nil
}

// Naturalizer spells ISO dates out in a natural language.
type Naturalizer struct {
	locale language.Tag
	months [12]string
}

// NewNaturalizer creates a naturalizer for the closest supported locale.
// French and English month names are available; French is the fallback.
func NewNaturalizer(locale language.Tag) *Naturalizer {
	_, index, _ := supported.Match(locale)
	matched := supportedLocales[index]
	return &Naturalizer{locale: matched, months: monthNames[mustBase(matched)]}
}

// Locale returns the locale in use.
func (n *Naturalizer) Locale() language.Tag {
	return n.locale
}

// Naturalize renders "1909-01-03" as "3 janvier 1909" and "2023-09" as
// "septembre 2023". Years alone, malformed dates and anything else are
// returned unchanged.
func (n *Naturalizer) Naturalize(s string) string {
	if !datePattern.MatchString(s) {
		return s
	}
	if t, err := time.Parse("2006-01-02", s); err == nil && t.Year() > 0 {
		return strconv.Itoa(t.Day()) + " " + n.month(t) + " " + strconv.Itoa(t.Year())
	}
	if t, err := time.Parse("2006-01", s); err == nil && t.Year() > 0 {
		return n.month(t) + " " + strconv.Itoa(t.Year())
	}
	return s
}

func (n *Naturalizer) month(t time.Time) string {
	return n.months[t.Month()-1]
}
