package gridcalc

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/nfp"
)

// numberFormatSections splits a number-format code into up to four
// semicolon-separated sections (positive;negative;zero;text), the
// classification xuri/nfp's parser performs for excelize's own TEXT()/
// display-value formatting (see DESIGN.md). nfp.NewNumberFormatParser's
// section boundaries are used to decide how many sections the caller
// declared; the per-section token text is then re-scanned by this
// package's own token interpreter below, since TEXT() must also support
// locale-specific decimal/group symbols that the upstream parser does
// not localize.
func numberFormatSections(format string) []string {
	parser := nfp.NewNumberFormatParser()
	parsed := parser.Parse(format)
	if len(parsed) == 0 {
		return strings.Split(format, ";")
	}
	sections := make([]string, 0, len(parsed))
	for _, sec := range parsed {
		sections = append(sections, strings.TrimSpace(sec.Format))
	}
	if len(sections) == 0 {
		return strings.Split(format, ";")
	}
	return sections
}

// pickSection selects which of a split format's sections governs v,
// following the standard positive;negative;zero;text convention.
func pickSection(sections []string, v float64, isText bool) string {
	switch len(sections) {
	case 0:
		return "General"
	case 1:
		return sections[0]
	case 2:
		if v < 0 {
			return sections[1]
		}
		return sections[0]
	case 3:
		switch {
		case v < 0:
			return sections[1]
		case v == 0:
			return sections[2]
		default:
			return sections[0]
		}
	default:
		if isText {
			return sections[3]
		}
		switch {
		case v < 0:
			return sections[1]
		case v == 0:
			return sections[2]
		default:
			return sections[0]
		}
	}
}

// FormatNumber renders v as text under the given number-format code and
// locale (spec.md §4.8 — TEXT()). "General" falls back to the locale's
// default numeric stringification.
func FormatNumber(v float64, format string, loc *Locale) string {
	if format == "" || strings.EqualFold(format, "General") {
		return generalNumberText(v, loc)
	}
	sections := numberFormatSections(format)
	section := pickSection(sections, v, false)
	return applyNumericSection(v, section, loc)
}

// FormatDateTime renders t as text under the given number-format code
// and locale, for date/time-flavored format codes (spec.md §4.9).
func FormatDateTime(t time.Time, format string, loc *Locale) string {
	return applyDateSection(t, format, loc)
}

func generalNumberText(v float64, loc *Locale) string {
	text := strconv.FormatFloat(v, 'g', -1, 64)
	if loc != nil && loc.DecimalSeparator != "." {
		text = strings.ReplaceAll(text, ".", loc.DecimalSeparator)
	}
	return text
}

// applyNumericSection interprets one format section's tokens: "0" and
// "#" placeholders after the decimal point set the number of decimals,
// "," turns on grouping, and "%" scales by 100 and appends the percent
// symbol (spec.md §4.8). Other literal text in the section (currency
// signs, parentheses, quoted text) is not emitted, and a negative value
// always gets a leading minus sign, also under a negative section.
func applyNumericSection(v float64, section string, loc *Locale) string {
	if section == "" || strings.EqualFold(section, "General") {
		return generalNumberText(v, loc)
	}
	if isDateFormat(section) {
		return applyDateSection(epochToTime(v, loc), section, loc)
	}

	percent := strings.Contains(section, "%")
	grouped := strings.Contains(section, ",")
	decimals := countDecimalPlaceholders(section)

	scaled := v
	if percent {
		scaled *= 100
	}

	neg := scaled < 0
	if neg {
		scaled = -scaled
	}

	numText := strconv.FormatFloat(scaled, 'f', decimals, 64)
	if grouped {
		numText = groupThousands(numText, loc)
	} else if loc != nil && loc.DecimalSeparator != "." {
		numText = strings.ReplaceAll(numText, ".", loc.DecimalSeparator)
	}

	var sb strings.Builder
	if neg {
		sb.WriteString(minusSymbol(loc))
	}
	sb.WriteString(numText)
	if percent {
		sb.WriteString(percentSymbol(loc))
	}
	return sb.String()
}

func countDecimalPlaceholders(section string) int {
	dot := strings.IndexByte(section, '.')
	if dot < 0 {
		return 0
	}
	n := 0
	for i := dot + 1; i < len(section); i++ {
		if section[i] == '0' || section[i] == '#' {
			n++
			continue
		}
		break
	}
	return n
}

func groupThousands(numText string, loc *Locale) string {
	intPart, fracPart, hasFrac := strings.Cut(numText, ".")
	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}
	var grouped strings.Builder
	for i, c := range intPart {
		remaining := len(intPart) - i
		if i > 0 && remaining%3 == 0 {
			grouped.WriteString(groupSeparator(loc))
		}
		grouped.WriteRune(c)
	}
	out := grouped.String()
	if neg {
		out = "-" + out
	}
	if hasFrac {
		out += decimalSeparator(loc) + fracPart
	}
	return out
}

func decimalSeparator(loc *Locale) string {
	if loc == nil {
		return "."
	}
	return loc.DecimalSeparator
}

func groupSeparator(loc *Locale) string {
	if loc == nil {
		return ","
	}
	return loc.GroupSeparator
}

func percentSymbol(loc *Locale) string {
	if loc == nil {
		return "%"
	}
	return loc.PercentSymbol
}

func minusSymbol(loc *Locale) string {
	if loc == nil {
		return "-"
	}
	return loc.MinusSymbol
}

// isDateFormat reports whether a format section uses date/time tokens
// rather than numeric digit placeholders.
func isDateFormat(section string) bool {
	upper := strings.ToUpper(section)
	for _, tok := range []string{"YY", "MM", "DD", "HH", "SS", "AM/PM"} {
		if strings.Contains(upper, tok) {
			return true
		}
	}
	return false
}

// epochToTime converts a spreadsheet date serial number to a time.Time
// through serialToTime, so it follows the date functions' handling of
// the 1900 leap-year quirk recorded in DESIGN.md's Open Question
// decisions (serial 60, the fictitious 1900-02-29, comes out as
// 1900-03-01).
func epochToTime(serial float64, loc *Locale) time.Time {
	return serialToTime(serial, time.UTC)
}

// applyDateSection renders t under a date/time format section, using
// the locale's day/month name tables for spelled-out tokens.
func applyDateSection(t time.Time, section string, loc *Locale) string {
	var sb strings.Builder
	runes := []rune(section)
	for i := 0; i < len(runes); {
		switch {
		case matchToken(runes, i, "yyyy"):
			sb.WriteString(fmt.Sprintf("%04d", t.Year()))
			i += 4
		case matchToken(runes, i, "yy"):
			sb.WriteString(fmt.Sprintf("%02d", t.Year()%100))
			i += 2
		case matchToken(runes, i, "mmmm"):
			sb.WriteString(monthName(loc, int(t.Month())))
			i += 4
		case matchToken(runes, i, "mmm"):
			name := monthName(loc, int(t.Month()))
			if len(name) > 3 {
				name = name[:3]
			}
			sb.WriteString(name)
			i += 3
		case matchToken(runes, i, "mm"):
			sb.WriteString(fmt.Sprintf("%02d", t.Month()))
			i += 2
		case matchToken(runes, i, "dddd"):
			sb.WriteString(dayName(loc, int(t.Weekday())))
			i += 4
		case matchToken(runes, i, "ddd"):
			name := dayName(loc, int(t.Weekday()))
			if len(name) > 3 {
				name = name[:3]
			}
			sb.WriteString(name)
			i += 3
		case matchToken(runes, i, "dd"):
			sb.WriteString(fmt.Sprintf("%02d", t.Day()))
			i += 2
		case matchToken(runes, i, "hh"):
			sb.WriteString(fmt.Sprintf("%02d", t.Hour()))
			i += 2
		case matchToken(runes, i, "ss"):
			sb.WriteString(fmt.Sprintf("%02d", t.Second()))
			i += 2
		default:
			sb.WriteRune(runes[i])
			i++
		}
	}
	return sb.String()
}

func matchToken(runes []rune, i int, tok string) bool {
	lower := strings.ToLower(string(runes[i:min(i+len(tok), len(runes))]))
	return lower == tok
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func monthName(loc *Locale, month int) string {
	if loc == nil || month < 1 || month > 12 {
		return ""
	}
	return loc.MonthNames[month-1]
}

func dayName(loc *Locale, weekday int) string {
	if loc == nil || weekday < 0 || weekday > 6 {
		return ""
	}
	return loc.DayNames[weekday]
}
