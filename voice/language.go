package voice

import "golang.org/x/text/language"

// MatchLanguage reports how well a set of supported tags covers tag, and
// the supported tag that matched best. A base language match without the
// requested region is LanguageAvailable.
func MatchLanguage(supported []language.Tag, tag language.Tag) (language.Tag, LanguageAvailability) {
	if tag == language.Und {
		return language.Und, LanguageNotSupported
	}

	base, conf := tag.Base()
	if conf == language.No {
		return language.Und, LanguageNotSupported
	}
	region, regionConf := tag.Region()

	match := language.Und
	best := LanguageNotSupported
	for _, s := range supported {
		sb, _ := s.Base()
		if sb != base {
			continue
		}
		if best < LanguageAvailable {
			match, best = s, LanguageAvailable
		}
		if regionConf != language.Exact {
			continue
		}
		sr, srConf := s.Region()
		if srConf != language.Exact || sr != region {
			continue
		}
		if s == tag && len(tag.Variants()) > 0 {
			return s, LanguageCountryVariantAvailable
		}
		if best < LanguageCountryAvailable {
			match, best = s, LanguageCountryAvailable
		}
	}

	return match, best
}
