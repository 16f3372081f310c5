// Package spell corrects likely typos in user queries before retrieval.
//
// The corrector is a SymSpell-style lookup over a static frequency
// dictionary: deletions of every dictionary term up to the edit-distance
// threshold are precalculated once, so correcting a token is a handful of
// map lookups instead of a scan. Tokens matching the protected-term
// whitelist (brand names, acronyms) are passed through untouched, and a
// token with no suggestion within the threshold is kept as typed: the
// normalizer fails open and never blocks a query.
package spell

import (
	"strings"
	"unicode"

	"go.uber.org/zap"
)

const defaultPrefixLength = 7

type Config struct {
	DictionaryPath  string
	MaxEditDistance int
	PrefixLength    int
	Whitelist       []string
}

type Corrector struct {
	maxEdit   int
	prefixLen int
	whitelist map[string]struct{}
	words     map[string]int64
	index     map[string][]string // delete variant -> dictionary terms
	logger    *zap.Logger
}

// New loads the frequency dictionary and builds the delete index.
// A missing or empty dictionary is a fatal condition for the process.
func New(cfg Config, logger *zap.Logger) (*Corrector, error) {
	words, err := loadDictionary(cfg.DictionaryPath)
	if err != nil {
		return nil, err
	}

	maxEdit := cfg.MaxEditDistance
	if maxEdit <= 0 {
		maxEdit = 2
	}
	prefixLen := cfg.PrefixLength
	if prefixLen <= 0 {
		prefixLen = defaultPrefixLength
	}

	c := &Corrector{
		maxEdit:   maxEdit,
		prefixLen: prefixLen,
		whitelist: make(map[string]struct{}, len(cfg.Whitelist)),
		words:     words,
		index:     make(map[string][]string),
		logger:    logger,
	}
	for _, term := range cfg.Whitelist {
		c.whitelist[strings.ToLower(term)] = struct{}{}
	}
	for term := range words {
		for _, v := range deletes(prefix(term, prefixLen), maxEdit) {
			c.index[v] = append(c.index[v], term)
		}
	}

	logger.Info("spelling dictionary loaded",
		zap.String("path", cfg.DictionaryPath),
		zap.Int("terms", len(words)),
		zap.Int("whitelist_terms", len(c.whitelist)),
	)

	return c, nil
}

// Normalize corrects each whitespace token of raw. Whitelisted terms are
// preserved as typed; for everything else the best dictionary suggestion
// within the edit-distance threshold is substituted. When the result
// differs from the input the change is logged.
func (c *Corrector) Normalize(raw string) string {
	tokens := strings.Fields(raw)
	corrected := make([]string, len(tokens))
	for i, tok := range tokens {
		corrected[i] = c.correctToken(tok)
	}

	out := strings.Join(corrected, " ")
	if !strings.EqualFold(out, raw) {
		c.logger.Info("query corrected",
			zap.String("from", raw),
			zap.String("to", out),
		)
	}
	return out
}

func (c *Corrector) correctToken(tok string) string {
	if _, ok := c.whitelist[strings.ToLower(tok)]; ok {
		return tok
	}

	lead, core, trail := splitAffixes(tok)
	if core == "" {
		return tok
	}
	if _, ok := c.whitelist[strings.ToLower(core)]; ok {
		return tok
	}

	lower := strings.ToLower(core)
	if _, known := c.words[lower]; known {
		return tok
	}
	if hasDigit(core) {
		return tok
	}

	suggestion, found := c.lookup(lower)
	if !found || suggestion == lower {
		return tok
	}

	return lead + matchCase(core, suggestion) + trail
}

// lookup finds the dictionary term closest to token: smallest edit
// distance wins, frequency breaks ties.
func (c *Corrector) lookup(token string) (string, bool) {
	bestTerm := ""
	bestDist := c.maxEdit + 1
	var bestFreq int64

	consider := func(term string) {
		d := editDistance(token, term, c.maxEdit)
		if d > c.maxEdit {
			return
		}
		freq := c.words[term]
		if d < bestDist || (d == bestDist && freq > bestFreq) {
			bestTerm, bestDist, bestFreq = term, d, freq
		}
	}

	for _, v := range deletes(prefix(token, c.prefixLen), c.maxEdit) {
		for _, term := range c.index[v] {
			consider(term)
		}
	}

	return bestTerm, bestTerm != ""
}

// splitAffixes strips non-letter runes from both ends of a token so that
// punctuation survives correction ("you?" -> "you" + "?").
func splitAffixes(tok string) (lead, core, trail string) {
	runes := []rune(tok)
	start, end := 0, len(runes)
	for start < end && !unicode.IsLetter(runes[start]) {
		start++
	}
	for end > start && !unicode.IsLetter(runes[end-1]) {
		end--
	}
	return string(runes[:start]), string(runes[start:end]), string(runes[end:])
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// matchCase carries an uppercase first letter of the original token over
// to the suggestion.
func matchCase(original, suggestion string) string {
	or := []rune(original)
	sr := []rune(suggestion)
	if len(or) > 0 && len(sr) > 0 && unicode.IsUpper(or[0]) {
		sr[0] = unicode.ToUpper(sr[0])
	}
	return string(sr)
}
