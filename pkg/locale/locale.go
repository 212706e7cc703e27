package locale

import "unicode"

// Supported locale tags. Detection only ever resolves to one of these;
// lookups for anything else walk the fallback chain.
const (
	ZhCN = "zh-CN"
	ZhTW = "zh-TW"
	EnUS = "en-US"
	EnGB = "en-GB"
	JaJP = "ja-JP"
	KoKR = "ko-KR"
)

// Detect resolves the authoritative locale of a message from its script.
// The request's locale field is only a hint; what the user actually typed
// wins. Kana is checked before Han because Japanese text mixes both.
func Detect(text, hint string) string {
	var han, kana, hangul, latin int
	for _, r := range text {
		switch {
		case unicode.In(r, unicode.Hiragana, unicode.Katakana):
			kana++
		case unicode.Is(unicode.Hangul, r):
			hangul++
		case unicode.Is(unicode.Han, r):
			han++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}

	switch {
	case kana > 0:
		return JaJP
	case hangul > 0:
		return KoKR
	case han > 0:
		if hint == ZhTW {
			return ZhTW
		}
		return ZhCN
	case latin > 0:
		if hint == EnGB {
			return EnGB
		}
		return EnUS
	}

	if hint != "" {
		return hint
	}
	return EnUS
}

// fallbackChains: exact locale first, then the same-language alternate
// region, then a fixed cross-language tail.
var fallbackChains = map[string][]string{
	ZhCN: {ZhCN, ZhTW, EnUS},
	ZhTW: {ZhTW, ZhCN, EnUS},
	EnUS: {EnUS, EnGB, ZhCN},
	EnGB: {EnGB, EnUS, ZhCN},
	JaJP: {JaJP, EnUS, ZhCN},
	KoKR: {KoKR, EnUS, ZhCN},
}

// FallbackChain returns the ordered list of locales to try for lookups.
func FallbackChain(loc string) []string {
	if chain, ok := fallbackChains[loc]; ok {
		return chain
	}
	return []string{loc, EnUS, ZhCN}
}

// IsChinese reports whether the locale is a Chinese variant. Used to pick
// the language directive sent to providers.
func IsChinese(loc string) bool {
	return loc == ZhCN || loc == ZhTW
}
