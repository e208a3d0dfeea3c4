package character

import (
	"reflect"
	"testing"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"beet farmer", "Beet Farmer"},
		{"LONE WOLF", "Lone Wolf"},
		{"non-binary", "Non-Binary"},
	}
	for _, tt := range tests {
		if got := Title(tt.input); got != tt.expected {
			t.Errorf("Title(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestJoinSplitTraits(t *testing.T) {
	joined := JoinTraits("Brave", "Sarcastic", "Greedy")
	if joined != "Brave, Sarcastic, Greedy" {
		t.Fatalf("unexpected joined traits: %q", joined)
	}

	split := SplitTraits(joined)
	if !reflect.DeepEqual(split, []string{"Brave", "Sarcastic", "Greedy"}) {
		t.Errorf("unexpected split traits: %v", split)
	}
}

func TestSplitTraitsToleratesGaps(t *testing.T) {
	split := SplitTraits("Brave, , Greedy,")
	if !reflect.DeepEqual(split, []string{"Brave", "Greedy"}) {
		t.Errorf("unexpected split traits: %v", split)
	}
}

func TestCatalogsNonEmpty(t *testing.T) {
	for name, catalog := range map[string][]string{
		"genders":     Genders,
		"backgrounds": Backgrounds,
		"positive":    PositiveTraits,
		"neutral":     NeutralTraits,
		"negative":    NegativeTraits,
	} {
		if len(catalog) == 0 {
			t.Errorf("catalog %s is empty", name)
		}
	}
}
