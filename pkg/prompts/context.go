package prompts

import (
	"fmt"
	"strings"

	"echoes/pkg/state"
)

// Fixed placeholder sentences for empty context blocks.
const (
	NoEventsPrompt  = "No previous events."
	NoNPCsPrompt    = "No established NPC relationships yet."
	NoEventsJournal = "No events recorded yet."
	EmptyInventory  = "Your inventory is empty."
	NoCharacters    = "You haven't met any notable characters yet."
)

// DefaultEventWindow bounds the recent-events block on generation calls.
const DefaultEventWindow = 5

// JournalEventWindow bounds the journal view.
const JournalEventWindow = 10

// EventsBlock renders recent events for a generation prompt, one block per
// event in ascending round order. Empty input yields the fixed placeholder.
func EventsBlock(events []state.Event) string {
	if len(events) == 0 {
		return NoEventsPrompt
	}
	var sb strings.Builder
	for _, ev := range events {
		fmt.Fprintf(&sb, "\n**********\n **Round %d:**\n %s \n Player Choice: %s\n", ev.Round, ev.Description, ev.PlayerAction)
	}
	return sb.String()
}

// NPCsBlock renders known NPC relationships for a generation prompt, one line
// per NPC in storage order. Empty input yields the fixed placeholder.
func NPCsBlock(npcs []state.NPC) string {
	if len(npcs) == 0 {
		return NoNPCsPrompt
	}
	var sb strings.Builder
	for _, npc := range npcs {
		fmt.Fprintf(&sb, "- %s: %s - %s\n", npc.Name, npc.Relationship, npc.Description)
	}
	return sb.String()
}

// Journal renders recent events for the player-facing journal view, most
// recent last.
func Journal(events []state.Event) string {
	if len(events) == 0 {
		return NoEventsJournal
	}
	var sb strings.Builder
	sb.WriteString("=== RECENT EVENTS ===\n")
	for _, ev := range events {
		fmt.Fprintf(&sb, "\nRound %d:\n%s\nYour action: %s\n", ev.Round, ev.Description, ev.PlayerAction)
	}
	return sb.String()
}

// InventoryView renders the numbered inventory list for display.
func InventoryView(items []string) string {
	if len(items) == 0 {
		return EmptyInventory
	}
	var sb strings.Builder
	sb.WriteString("=== INVENTORY ===\n")
	for i, item := range items {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, item)
	}
	return sb.String()
}

// CharactersView renders the met-characters list for display.
func CharactersView(npcs []state.NPC) string {
	if len(npcs) == 0 {
		return NoCharacters
	}
	var sb strings.Builder
	sb.WriteString("=== CHARACTERS YOU'VE MET ===\n")
	for _, npc := range npcs {
		fmt.Fprintf(&sb, "\n%s (%s)\n%s\n", npc.Name, npc.Relationship, npc.Description)
	}
	return sb.String()
}
