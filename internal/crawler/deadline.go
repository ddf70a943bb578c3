package crawler

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var (
	countdownRe = regexp.MustCompile(`(?i)D\s*-\s*(\d+)`)
	dDayRe      = regexp.MustCompile(`(?i)D\s*-?\s*day`)
	monthDayRe  = regexp.MustCompile(`(\d{1,2})\s*[./]\s*(\d{1,2})`)
	fullDateRe  = regexp.MustCompile(`(\d{4})\s*[-./]\s*(\d{1,2})\s*[-./]\s*(\d{1,2})`)
)

// ParseDeadline turns the listing's deadline label into YYYY-MM-DD relative
// to now. Labels without a fixed date ("상시채용", "채용시") and anything
// unrecognized yield "".
//
// Accepted forms: "D-5", "D-day", "~ 06/30(일)", "~06.30", "2024.06.30",
// "오늘마감" and "내일마감". A month/day already past this year is taken
// to mean next year.
func ParseDeadline(raw string, now time.Time) string {
	s := strings.TrimSpace(raw)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch {
	case s == "":
		return ""
	case strings.Contains(s, "오늘마감"):
		return today.Format(dateLayout)
	case strings.Contains(s, "내일마감"):
		return today.AddDate(0, 0, 1).Format(dateLayout)
	case strings.Contains(s, "상시"), strings.Contains(s, "채용시"):
		return ""
	case dDayRe.MatchString(s):
		return today.Format(dateLayout)
	}

	if m := countdownRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return ""
		}
		return today.AddDate(0, 0, n).Format(dateLayout)
	}

	if m := fullDateRe.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		d, ok := calendarDate(year, m[2], m[3], today.Location())
		if !ok {
			return ""
		}
		return d.Format(dateLayout)
	}

	if m := monthDayRe.FindStringSubmatch(s); m != nil {
		// A month/day already past (or missing this year, like 02/29) means
		// next year's date.
		d, ok := calendarDate(today.Year(), m[1], m[2], today.Location())
		if !ok || d.Before(today) {
			d, ok = calendarDate(today.Year()+1, m[1], m[2], today.Location())
		}
		if !ok {
			return ""
		}
		return d.Format(dateLayout)
	}
	return ""
}

// calendarDate rejects out of range values instead of letting time.Date
// normalize them (02/30 would otherwise become 03/02).
func calendarDate(year int, monthStr, dayStr string, loc *time.Location) (time.Time, bool) {
	month, _ := strconv.Atoi(monthStr)
	day, _ := strconv.Atoi(dayStr)
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if d.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return d, true
}
