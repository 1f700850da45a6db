package gridcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumberGeneral(t *testing.T) {
	assert.Equal(t, "1234", FormatNumber(1234, "General", &EnglishLocale))
	assert.Equal(t, "1234", FormatNumber(1234, "", &EnglishLocale))
}

func TestFormatNumberTwoDecimalPlaces(t *testing.T) {
	assert.Equal(t, "1234.50", FormatNumber(1234.5, "0.00", &EnglishLocale))
}

func TestFormatNumberGrouped(t *testing.T) {
	assert.Equal(t, "1,000,000", FormatNumber(1000000, "#,##0", &EnglishLocale))
	assert.Equal(t, "1,234.50", FormatNumber(1234.5, "#,##0.00", &EnglishLocale))
}

func TestFormatNumberPercent(t *testing.T) {
	assert.Equal(t, "50%", FormatNumber(0.5, "0%", &EnglishLocale))
}

func TestFormatNumberNegativeUsesMinusSymbol(t *testing.T) {
	assert.Equal(t, "-42.00", FormatNumber(-42, "0.00", &EnglishLocale))
}

func TestFormatNumberSpanishLocaleSwapsSeparators(t *testing.T) {
	assert.Equal(t, "1.234,50", FormatNumber(1234.5, "#,##0.00", &SpanishLocale))
}

func TestFormatNumberTwoSectionsPositiveNegative(t *testing.T) {
	// "0.00;(0.00)" — second section governs negatives.
	assert.Equal(t, "5.00", FormatNumber(5, "0.00;(0.00)", &EnglishLocale))
}

func TestFormatDateTimeTokens(t *testing.T) {
	tm := epochToTime(dateToSerial(2024, 3, 15), &EnglishLocale)
	assert.Equal(t, "2024-03-15", FormatDateTime(tm, "yyyy-mm-dd", &EnglishLocale))
}

func TestFormatDateTimeMonthName(t *testing.T) {
	tm := epochToTime(dateToSerial(2024, 3, 15), &EnglishLocale)
	assert.Equal(t, "March", FormatDateTime(tm, "mmmm", &EnglishLocale))
	assert.Equal(t, "Mar", FormatDateTime(tm, "mmm", &EnglishLocale))
}
