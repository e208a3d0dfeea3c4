// Package extract surfaces NPC names and inventory items from narrative text.
// The heuristics are lossy by design: false positives and negatives are
// expected, and callers treat every proposal as advisory.
package extract

import "strings"

// maxNameLen bounds proposed NPC names; anything longer is narration, not a name.
const maxNameLen = 20

// maxItemLen bounds proposed item labels.
const maxItemLen = 30

// attributionVerbs mark dialogue attribution, e.g. `Mara said "..."`.
var attributionVerbs = []string{"says", "said", "asked", "replied", "shouted", "whispered"}

// nameStoplist holds pronouns that can never be NPC names.
var nameStoplist = map[string]bool{
	"you":  true,
	"i":    true,
	"we":   true,
	"they": true,
}

// itemIndicators are the acquisition phrases that introduce an item label.
var itemIndicators = []string{
	"found a ", "found an ", "picked up a ", "picked up an ",
	"discovered a ", "discovered an ", "obtained a ", "obtained an ",
	"received a ", "received an ", "given a ", "given an ",
}

// NPCNames scans narrative text for dialogue attribution and returns proposed
// NPC names, deduplicated case-insensitively within the call. It never fails;
// text with no dialogue yields nil.
func NPCNames(text string) []string {
	var proposed []string
	seen := make(map[string]bool)

	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" || len(name) >= maxNameLen {
			return
		}
		lower := strings.ToLower(name)
		if nameStoplist[lower] || seen[lower] {
			return
		}
		seen[lower] = true
		proposed = append(proposed, name)
	}

	for _, line := range strings.Split(text, "\n") {
		if !strings.ContainsAny(line, `"'`) {
			continue
		}

		// Everything before the first quotation mark is the attribution.
		lead := line
		if i := strings.IndexAny(lead, `"`); i >= 0 {
			lead = lead[:i]
		}
		if i := strings.IndexAny(lead, `'`); i >= 0 {
			lead = lead[:i]
		}
		lead = strings.TrimSpace(lead)

		// Colon-delimited speaker: `Mara: "Get down!"`
		if name, _, ok := strings.Cut(lead, ":"); ok {
			add(name)
		}

		// Verb attribution: `Mara said, "Get down!"`
		for _, verb := range attributionVerbs {
			if before, _, ok := strings.Cut(lead, verb); ok {
				words := strings.Fields(before)
				if len(words) > 0 {
					add(strings.Trim(words[len(words)-1], ",."))
				}
			}
		}
	}

	return proposed
}

// Items scans narrative text for acquisition phrases and returns proposed item
// labels not already present in have. Labels are lowercased; comparison against
// have is case-insensitive. Re-scanning the same text against the updated
// inventory yields nothing, so extraction is idempotent.
func Items(text string, have []string) []string {
	owned := make(map[string]bool, len(have))
	for _, item := range have {
		owned[strings.ToLower(item)] = true
	}

	var proposed []string
	lower := strings.ToLower(text)

	for _, indicator := range itemIndicators {
		rest := lower
		for {
			i := strings.Index(rest, indicator)
			if i < 0 {
				break
			}
			rest = rest[i+len(indicator):]
			label := clauseStart(rest)
			if label != "" && len(label) < maxItemLen && !owned[label] {
				owned[label] = true
				proposed = append(proposed, label)
			}
		}
	}

	return proposed
}

// clauseStart returns the text up to the next sentence or clause boundary.
func clauseStart(s string) string {
	if i := strings.IndexAny(s, ".,\n"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
