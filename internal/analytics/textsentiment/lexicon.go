package textsentiment

// lexicon maps lower-cased words to AFINN-style polarity weights in [-5, 5].
var lexicon = map[string]int{
	// positive
	"amazing":       4,
	"awesome":       4,
	"beautiful":     3,
	"best":          3,
	"brilliant":     4,
	"clean":         2,
	"comfortable":   2,
	"cool":          1,
	"delightful":    3,
	"engaging":      2,
	"enjoy":         2,
	"enjoyed":       2,
	"enjoyable":     2,
	"excellent":     3,
	"excited":       3,
	"exciting":      3,
	"fantastic":     4,
	"favorite":      2,
	"fun":           4,
	"glad":          3,
	"good":          3,
	"great":         3,
	"happy":         3,
	"helpful":       2,
	"impressed":     3,
	"impressive":    3,
	"informative":   2,
	"inspiring":     3,
	"interesting":   2,
	"like":          2,
	"liked":         2,
	"love":          3,
	"loved":         3,
	"lovely":        3,
	"nice":          3,
	"organized":     2,
	"outstanding":   5,
	"perfect":       3,
	"pleasant":      3,
	"pleased":       3,
	"recommend":     2,
	"recommended":   2,
	"satisfied":     2,
	"smooth":        2,
	"superb":        5,
	"thank":         2,
	"thanks":        2,
	"useful":        2,
	"valuable":      2,
	"welcoming":     2,
	"wonderful":     4,
	"worth":         2,
	"worthwhile":    2,

	// negative
	"annoying":      -2,
	"awful":         -3,
	"bad":           -3,
	"boring":        -2,
	"broken":        -1,
	"cancelled":     -1,
	"chaotic":       -2,
	"cold":          -1,
	"complain":      -2,
	"confusing":     -2,
	"crowded":       -2,
	"delay":         -1,
	"delayed":       -1,
	"dirty":         -2,
	"disappointed":  -2,
	"disappointing": -2,
	"disorganized":  -2,
	"dull":          -2,
	"expensive":     -2,
	"fail":          -2,
	"failed":        -2,
	"hate":          -3,
	"hated":         -3,
	"horrible":      -3,
	"late":          -1,
	"lame":          -2,
	"loud":          -1,
	"mediocre":      -2,
	"mess":          -2,
	"messy":         -2,
	"miss":          -2,
	"noisy":         -1,
	"overpriced":    -3,
	"poor":          -2,
	"problem":       -2,
	"problems":      -2,
	"rude":          -2,
	"sad":           -2,
	"slow":          -2,
	"terrible":      -3,
	"unhappy":       -2,
	"amateurish":    -2,
	"useless":       -2,
	"waste":         -1,
	"wasted":        -2,
	"worse":         -3,
	"worst":         -3,
	"wrong":         -2,
}

// stopWords are dropped before term ranking. Tokens of three characters or
// fewer are filtered separately, so only longer function words appear here.
var stopWords = map[string]struct{}{
	"about":   {},
	"after":   {},
	"again":   {},
	"also":    {},
	"because": {},
	"been":    {},
	"before":  {},
	"being":   {},
	"could":   {},
	"didn't":  {},
	"does":    {},
	"doesn't": {},
	"don't":   {},
	"during":  {},
	"each":    {},
	"even":    {},
	"from":    {},
	"have":    {},
	"here":    {},
	"into":    {},
	"just":    {},
	"more":    {},
	"most":    {},
	"much":    {},
	"only":    {},
	"other":   {},
	"over":    {},
	"really":  {},
	"should":  {},
	"some":    {},
	"such":    {},
	"than":    {},
	"that":    {},
	"their":   {},
	"them":    {},
	"then":    {},
	"there":   {},
	"these":   {},
	"they":    {},
	"this":    {},
	"those":   {},
	"very":    {},
	"were":    {},
	"what":    {},
	"when":    {},
	"where":   {},
	"which":   {},
	"while":   {},
	"will":    {},
	"with":    {},
	"would":   {},
	"your":    {},
}

// IsStopWord reports whether the lower-cased token is a stop word.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}
