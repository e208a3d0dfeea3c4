// Package character holds the character-creation catalogs and helpers.
package character

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var Genders = []string{
	"Male",
	"Female",
	"Non-Binary",
	"Agender",
	"Bigender",
	"Genderfluid",
	"Genderqueer",
	"Demiboy",
	"Demigirl",
	"Androgynous",
	"Two-Spirit",
	"Neutrois",
	"Polygender",
	"Third Gender",
	"Xenogender",
	"Questioning",
}

var Backgrounds = []string{
	"Elementary School Teacher",
	"Movie Star",
	"Construction Worker",
	"Cardiologist",
	"Hedge Fund Specialist",
	"Career Politician",
	"Theoretical Physicist",
	"Stay-at-home Mom",
	"Mid-level Software Engineer",
	"Beet Farmer",
	"Manager of a struggling paper company",
	"High School Librarian",
	"Escape Room Designer",
	"Used Car Salesperson",
}

var PositiveTraits = []string{
	"Resourceful",
	"Brave",
	"Charismatic",
	"Strategic",
	"Cunning",
	"Resilient",
	"Empathetic",
	"Optimistic",
	"Tinkerer",
	"Sharp-Eyed",
}

var NeutralTraits = []string{
	"Lone Wolf",
	"Sarcastic",
	"Risk-Taker",
	"Suspicious",
	"Pragmatic",
	"Obsessive",
	"Daydreamer",
	"Stubborn",
	"Rule-Breaker",
}

var NegativeTraits = []string{
	"Hot-Tempered",
	"Reckless",
	"Gullible",
	"Forgetful",
	"Anxious",
	"Greedy",
	"Self-Destructive",
	"Cowardly",
	"Arrogant",
}

var titleCaser = cases.Title(language.AmericanEnglish)

// Title renders a catalog entry or trait string in title case for display.
func Title(s string) string {
	return titleCaser.String(s)
}

// JoinTraits builds the stored trait triplet from one pick per catalog.
func JoinTraits(positive, neutral, negative string) string {
	return fmt.Sprintf("%s, %s, %s", positive, neutral, negative)
}

// SplitTraits is the inverse of JoinTraits, tolerating missing entries.
func SplitTraits(traits string) []string {
	parts := strings.Split(traits, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
