package gridcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupLocaleBuiltins(t *testing.T) {
	assert.Equal(t, &EnglishLocale, LookupLocale("en"))
	assert.Equal(t, &SpanishLocale, LookupLocale("es"))
}

func TestLookupLocaleFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, &EnglishLocale, LookupLocale("xx"))
}

func TestSpanishLocaleUsesCommaDecimalSeparator(t *testing.T) {
	assert.Equal(t, ",", SpanishLocale.DecimalSeparator)
	assert.Equal(t, ".", SpanishLocale.GroupSeparator)
	assert.Equal(t, ";", SpanishLocale.ListSeparator)
}

func TestEnglishLocaleDayAndMonthNames(t *testing.T) {
	assert.Equal(t, "Sunday", EnglishLocale.DayNames[0])
	assert.Equal(t, "December", EnglishLocale.MonthNames[11])
}
