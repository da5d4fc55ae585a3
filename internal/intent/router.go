package intent

import "strings"

// Classification is the routing decision for one inbound message.
type Classification struct {
	IsNewsQuery bool
	HorizonDays int
}

// The keyword tables are data, not code: deployments serving another locale
// swap the tables without touching the matching logic.

// currencyKeywords mark a message as being about the tracked asset.
var currencyKeywords = []string{
	"比特币", "btc", "bitcoin",
}

// newsKeywords combined with a currency keyword mark a news query.
var newsKeywords = []string{
	"新闻", "消息", "最新", "热点", "趋势",
	"news", "update", "latest", "hot", "trend",
}

// horizonRule maps a literal phrase to a day count.
type horizonRule struct {
	phrase string
	days   int
}

// horizonRules is an ordered list; ordering matters only for same-index
// matches (see Horizon).
var horizonRules = []horizonRule{
	{"3天", 3}, {"三天", 3}, {"3 days", 3}, {"three days", 3},
	{"一周", 7}, {"7天", 7}, {"a week", 7}, {"7 days", 7}, {"one week", 7},
	{"两周", 14}, {"14天", 14}, {"two weeks", 14}, {"14 days", 14},
	{"30天", 30}, {"一个月", 30}, {"30 days", 30}, {"a month", 30}, {"one month", 30},
}

// Classify routes a free-text message. News intent requires a currency
// keyword plus a news keyword; everything else falls through to general
// chat (the prediction endpoint routes prediction queries separately).
func Classify(message string) Classification {
	return Classification{
		IsNewsQuery: IsNewsQuery(message),
		HorizonDays: Horizon(message),
	}
}

func IsNewsQuery(message string) bool {
	lower := strings.ToLower(message)
	if !containsAny(lower, currencyKeywords) {
		return false
	}
	return containsAny(lower, newsKeywords)
}

// Horizon extracts the requested day count. The phrase occurring earliest
// in the message wins; when two phrases start at the same index the longer
// (more specific) one wins. This makes the tie-break deterministic instead
// of depending on rule order. Default is 7 when nothing matches.
func Horizon(message string) int {
	lower := strings.ToLower(message)

	bestIdx := -1
	bestLen := 0
	bestDays := 7
	for _, rule := range horizonRules {
		idx := strings.Index(lower, rule.phrase)
		if idx < 0 {
			continue
		}
		if bestIdx == -1 || idx < bestIdx || (idx == bestIdx && len(rule.phrase) > bestLen) {
			bestIdx = idx
			bestLen = len(rule.phrase)
			bestDays = rule.days
		}
	}
	return bestDays
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
