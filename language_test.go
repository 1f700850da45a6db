package gridcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupLanguageBuiltins(t *testing.T) {
	assert.Same(t, EnglishLanguage, LookupLanguage("en"))
	assert.Same(t, SpanishLanguage, LookupLanguage("es"))
	assert.Same(t, EnglishLanguage, LookupLanguage("xx"))
}

func TestSpanishBooleanLiteralRoundTrip(t *testing.T) {
	v, ok := SpanishLanguage.BooleanLiteral("VERDADERO")
	require.True(t, ok)
	assert.True(t, v)
	assert.Equal(t, "VERDADERO", SpanishLanguage.BooleanText(true))

	v, ok = SpanishLanguage.BooleanLiteral("FALSO")
	require.True(t, ok)
	assert.False(t, v)
	assert.Equal(t, "FALSO", SpanishLanguage.BooleanText(false))
}

func TestBooleanLiteralCaseInsensitive(t *testing.T) {
	v, ok := EnglishLanguage.BooleanLiteral("true")
	require.True(t, ok)
	assert.True(t, v)
}

func TestErrorTokenTranslationRoundTrip(t *testing.T) {
	tok := SpanishLanguage.ErrorToken(ErrDiv0)
	assert.Equal(t, "#¡DIV/0!", tok)
	code, ok := SpanishLanguage.ErrorCodeForToken(tok)
	require.True(t, ok)
	assert.Equal(t, ErrDiv0, code)
}

func TestCanonicalFunctionUnknownToken(t *testing.T) {
	canon, ok := EnglishLanguage.CanonicalFunction("bogus")
	assert.False(t, ok)
	assert.Equal(t, "BOGUS", canon)
}

func TestTranslateFunctionDefaultsToCanonical(t *testing.T) {
	assert.Equal(t, "SUM", SpanishLanguage.TranslateFunction("SUM"))
}
