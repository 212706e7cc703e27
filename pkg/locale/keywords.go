package locale

import "strings"

// concernKeywords trigger long-term memory capture. A user turn mentioning
// any of these marks the session as carrying a durable concern.
var concernKeywords = map[string][]string{
	ZhCN: {
		"失眠", "睡不着", "焦虑", "抑郁", "压力", "恐慌", "自责",
		"孤独", "想哭", "失恋", "离婚", "裁员", "失业", "想不开",
	},
	EnUS: {
		"insomnia", "anxiety", "anxious", "depressed", "depression", "stress",
		"panic", "lonely", "grief", "breakup", "divorce", "laid off", "burnout",
	},
}

// ConcernKeywords returns the capture triggers for a locale, walking the
// fallback chain so every locale resolves to a non-empty list.
func ConcernKeywords(loc string) []string {
	for _, tier := range FallbackChain(loc) {
		if kws, ok := concernKeywords[tier]; ok {
			return kws
		}
	}
	return concernKeywords[EnUS]
}

// MatchConcerns returns the distinct concern keywords present in the text,
// in table order.
func MatchConcerns(loc, text string) []string {
	var matched []string
	for _, kw := range ConcernKeywords(loc) {
		if containsFold(text, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// keywordThemes maps concern keywords to summary themes for the
// keyword-frequency summarization fallback.
var keywordThemes = map[string]map[string]string{
	ZhCN: {
		"失眠": "睡眠困扰", "睡不着": "睡眠困扰", "熬夜": "睡眠困扰",
		"焦虑": "焦虑情绪", "紧张": "焦虑情绪", "恐慌": "焦虑情绪",
		"压力": "压力负荷", "加班": "压力负荷", "考试": "压力负荷",
		"抑郁": "情绪低落", "难过": "情绪低落", "想哭": "情绪低落",
		"孤独": "人际联结", "失恋": "人际联结", "离婚": "人际联结",
	},
	EnUS: {
		"insomnia": "sleep trouble", "sleep": "sleep trouble",
		"anxiety": "anxious mood", "anxious": "anxious mood", "panic": "anxious mood",
		"stress": "stress load", "deadline": "stress load", "overtime": "stress load",
		"depressed": "low mood", "sad": "low mood", "hopeless": "low mood",
		"lonely": "connection", "breakup": "connection", "divorce": "connection",
	},
}

// ThemeFor maps a single keyword to its summary theme, falling back to the
// keyword itself when no mapping exists.
func ThemeFor(loc, keyword string) string {
	for _, tier := range FallbackChain(loc) {
		if themes, ok := keywordThemes[tier]; ok {
			if theme, found := themes[strings.ToLower(keyword)]; found {
				return theme
			}
		}
	}
	return keyword
}

// ThemeKeywords returns every mapped keyword for a locale tier, used by the
// frequency counting fallback summarizer.
func ThemeKeywords(loc string) map[string]string {
	merged := make(map[string]string)
	// Walk the chain back-to-front so the closest tier wins on collision.
	chain := FallbackChain(loc)
	for i := len(chain) - 1; i >= 0; i-- {
		for kw, theme := range keywordThemes[chain[i]] {
			merged[kw] = theme
		}
	}
	return merged
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
