package voice

import (
	"testing"

	"golang.org/x/text/language"
)

func TestMatchLanguage(t *testing.T) {
	supported := []language.Tag{
		language.English,
		language.MustParse("en-GB"),
		language.German,
		language.MustParse("de-CH-1901"),
	}

	tests := []struct {
		tag       string
		wantAvail LanguageAvailability
		wantMatch string
	}{
		{tag: "en", wantAvail: LanguageAvailable, wantMatch: "en"},
		{tag: "en-US", wantAvail: LanguageAvailable, wantMatch: "en"},
		{tag: "en-GB", wantAvail: LanguageCountryAvailable, wantMatch: "en-GB"},
		{tag: "de-AT", wantAvail: LanguageAvailable, wantMatch: "de"},
		{tag: "de-CH", wantAvail: LanguageCountryAvailable, wantMatch: "de-CH-1901"},
		{tag: "de-CH-1901", wantAvail: LanguageCountryVariantAvailable, wantMatch: "de-CH-1901"},
		{tag: "fr", wantAvail: LanguageNotSupported, wantMatch: "und"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			match, avail := MatchLanguage(supported, language.MustParse(tt.tag))
			if avail != tt.wantAvail {
				t.Errorf("MatchLanguage(%s) availability = %v, want %v", tt.tag, avail, tt.wantAvail)
			}
			if match.String() != tt.wantMatch {
				t.Errorf("MatchLanguage(%s) match = %s, want %s", tt.tag, match, tt.wantMatch)
			}
		})
	}
}

func TestMatchLanguageUndetermined(t *testing.T) {
	_, avail := MatchLanguage([]language.Tag{language.English}, language.Und)
	if avail != LanguageNotSupported {
		t.Errorf("Expected undetermined language to be unsupported, got %v", avail)
	}
}

func TestLanguageAvailabilitySupported(t *testing.T) {
	tests := []struct {
		avail LanguageAvailability
		want  bool
	}{
		{LanguageNotSupported, false},
		{LanguageMissingData, false},
		{LanguageAvailable, true},
		{LanguageCountryAvailable, true},
		{LanguageCountryVariantAvailable, true},
	}

	for _, tt := range tests {
		if got := tt.avail.Supported(); got != tt.want {
			t.Errorf("%v.Supported() = %v, want %v", tt.avail, got, tt.want)
		}
	}
}
