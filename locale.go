package gridcalc

import "golang.org/x/text/language"

// Locale carries the display symbols used when stringifying numbers and
// dates. It is an injected table (spec.md §1 — locale definitions are an
// external collaborator); this engine only consumes it.
type Locale struct {
	Tag language.Tag

	DecimalSeparator   string
	GroupSeparator     string
	ListSeparator      string
	PercentSymbol      string
	PlusSymbol         string
	MinusSymbol        string
	ExponentialSymbol  string
	InfinitySymbol     string
	NaNSymbol          string

	DayNames   [7]string
	MonthNames [12]string
}

// EnglishLocale is the built-in default, matching US English
// spreadsheet conventions.
var EnglishLocale = Locale{
	Tag:               language.AmericanEnglish,
	DecimalSeparator:  ".",
	GroupSeparator:    ",",
	ListSeparator:     ",",
	PercentSymbol:     "%",
	PlusSymbol:        "+",
	MinusSymbol:       "-",
	ExponentialSymbol: "E",
	InfinitySymbol:    "Infinity",
	NaNSymbol:         "NaN",
	DayNames: [7]string{
		"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
	},
	MonthNames: [12]string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
}

// SpanishLocale uses a comma decimal separator and a period group
// separator, matching Spanish spreadsheet conventions; the list
// separator becomes ";" since "," is now the decimal mark.
var SpanishLocale = Locale{
	Tag:               language.Spanish,
	DecimalSeparator:  ",",
	GroupSeparator:    ".",
	ListSeparator:     ";",
	PercentSymbol:     "%",
	PlusSymbol:        "+",
	MinusSymbol:       "-",
	ExponentialSymbol: "E",
	InfinitySymbol:    "Infinito",
	NaNSymbol:         "NaN",
	DayNames: [7]string{
		"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado",
	},
	MonthNames: [12]string{
		"enero", "febrero", "marzo", "abril", "mayo", "junio",
		"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
	},
}

// locales indexes the built-in locale table by id, mirroring how
// Language is looked up (see language.go).
var locales = map[string]*Locale{
	"en": &EnglishLocale,
	"es": &SpanishLocale,
}

// LookupLocale returns the built-in locale for id, or EnglishLocale if
// id is unrecognized.
func LookupLocale(id string) *Locale {
	if l, ok := locales[id]; ok {
		return l
	}
	return &EnglishLocale
}
