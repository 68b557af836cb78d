package booking

import (
	"regexp"
	"strings"
)

var (
	numericDateRE = regexp.MustCompile(`(\d{1,2})/(\d{1,2})`)
	timeHintRE    = regexp.MustCompile(`(?i)(\d{1,2})\s*(am|pm|:)`)
	timeValueRE   = regexp.MustCompile(`(?i)\d{1,2}(:\d{2})?\s*(am|pm)`)
	emailRE       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

var weekdayAliases = []struct {
	substrings []string
	canonical  string
}{
	{[]string{"friday", "fri"}, "Friday"},
	{[]string{"saturday", "sat"}, "Saturday"},
	{[]string{"sunday", "sun"}, "Sunday"},
	{[]string{"monday", "mon"}, "Monday"},
	{[]string{"tuesday", "tue"}, "Tuesday"},
	{[]string{"wednesday", "wed"}, "Wednesday"},
	{[]string{"thursday", "thu"}, "Thursday"},
}

// parseDate accepts relative days, weekday names, or a slash-delimited
// numeric date. Empty result means unparseable.
func parseDate(input string) string {
	lower := strings.ToLower(input)

	if strings.Contains(lower, "today") {
		return "Today"
	}
	if strings.Contains(lower, "tomorrow") {
		return "Tomorrow"
	}
	for _, day := range weekdayAliases {
		for _, s := range day.substrings {
			if strings.Contains(lower, s) {
				return day.canonical
			}
		}
	}
	if numericDateRE.MatchString(input) {
		return strings.TrimSpace(input)
	}
	return ""
}

// parseTime accepts an hour with am/pm or a colon pattern. Empty
// result means unparseable.
func parseTime(input string) string {
	if !timeHintRE.MatchString(input) {
		return ""
	}
	if m := timeValueRE.FindString(input); m != "" {
		return m
	}
	return strings.TrimSpace(input)
}

func isValidEmail(email string) bool {
	return emailRE.MatchString(email)
}
