package prompts

import (
	"strings"
	"testing"

	"echoes/pkg/state"
)

func TestEventsBlock(t *testing.T) {
	t.Run("empty yields placeholder", func(t *testing.T) {
		if got := EventsBlock(nil); got != NoEventsPrompt {
			t.Errorf("expected %q, got %q", NoEventsPrompt, got)
		}
	})

	t.Run("events render in given order", func(t *testing.T) {
		events := []state.Event{
			{Round: 2, Description: "A storm rolls in.", PlayerAction: "seek shelter"},
			{Round: 3, Description: "You find a bunker.", PlayerAction: "open the hatch"},
		}
		got := EventsBlock(events)
		first := strings.Index(got, "**Round 2:**")
		second := strings.Index(got, "**Round 3:**")
		if first < 0 || second < 0 || second < first {
			t.Errorf("expected rounds 2 then 3 in order, got %q", got)
		}
		if !strings.Contains(got, "Player Choice: seek shelter") {
			t.Errorf("expected player choice line, got %q", got)
		}
	})
}

func TestNPCsBlock(t *testing.T) {
	if got := NPCsBlock(nil); got != NoNPCsPrompt {
		t.Errorf("expected %q, got %q", NoNPCsPrompt, got)
	}

	npcs := []state.NPC{
		{Name: "Mara", Relationship: "neutral", Description: "Met during round 2"},
	}
	got := NPCsBlock(npcs)
	if !strings.Contains(got, "- Mara: neutral - Met during round 2") {
		t.Errorf("unexpected NPC line: %q", got)
	}
}

func TestJournal(t *testing.T) {
	if got := Journal(nil); got != NoEventsJournal {
		t.Errorf("expected %q, got %q", NoEventsJournal, got)
	}

	events := []state.Event{
		{Round: 1, Description: "You wake in the dust.", PlayerAction: "begin the adventure"},
	}
	got := Journal(events)
	if !strings.Contains(got, "=== RECENT EVENTS ===") {
		t.Errorf("expected journal header, got %q", got)
	}
	if !strings.Contains(got, "Your action: begin the adventure") {
		t.Errorf("expected action line, got %q", got)
	}
}

func TestInventoryView(t *testing.T) {
	if got := InventoryView(nil); got != EmptyInventory {
		t.Errorf("expected %q, got %q", EmptyInventory, got)
	}

	got := InventoryView([]string{"rusty knife", "old map"})
	if !strings.Contains(got, "1. rusty knife") || !strings.Contains(got, "2. old map") {
		t.Errorf("expected numbered list, got %q", got)
	}
}

func TestCharactersView(t *testing.T) {
	if got := CharactersView(nil); got != NoCharacters {
		t.Errorf("expected %q, got %q", NoCharacters, got)
	}

	got := CharactersView([]state.NPC{
		{Name: "Mara", Relationship: "friendly", Description: "A scout from the ridge."},
	})
	if !strings.Contains(got, "Mara (friendly)") {
		t.Errorf("expected character entry, got %q", got)
	}
}
