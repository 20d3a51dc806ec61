package alerts

// Trigger maps a lowercase trigger word to a strategic event category.
// Several triggers may share a category.
type Trigger struct {
	Word     string
	Category string
}

// StrategicTriggers is the default trigger table, in evaluation order.
// Matching is plain substring containment over lower-cased article text,
// so "release" matches inside "prereleased". Downstream consumers expect
// one alert per (article, trigger) pair, duplicates included.
var StrategicTriggers = []Trigger{
	{"partnership", "Partnership/Alliance"},
	{"acquisition", "Merger/Acquisition"},
	{"acquire", "Merger/Acquisition"},
	{"merger", "Merger/Acquisition"},
	{"launch", "Product Launch"},
	{"release", "Product Launch"},
	{"unveil", "Product Launch"},
	{"lawsuit", "Legal/Regulatory"},
	{"investigation", "Legal/Regulatory"},
	{"regulatory", "Legal/Regulatory"},
	{"funding", "Financial"},
	{"investment", "Financial"},
}
