// Package command parses terminal input into a closed set of game commands.
// Anything that doesn't match a known command is a free-text story action.
package command

import "strings"

// Kind identifies a player command.
type Kind int

const (
	// Action is the default: the input is a free-text story action.
	Action Kind = iota
	Inventory
	Journal
	Characters
	Help
	Quit
)

func (k Kind) String() string {
	switch k {
	case Inventory:
		return "inventory"
	case Journal:
		return "journal"
	case Characters:
		return "characters"
	case Help:
		return "help"
	case Quit:
		return "quit"
	default:
		return "action"
	}
}

// Parse classifies player input. Matching is case-insensitive and accepts both
// the single-letter and full-word forms.
func Parse(input string) Kind {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "i", "inventory":
		return Inventory
	case "j", "journal":
		return Journal
	case "c", "characters":
		return Characters
	case "h", "help":
		return Help
	case "q", "quit", "exit":
		return Quit
	default:
		return Action
	}
}

// HelpText is shown for the help command.
const HelpText = `=== GAME HELP ===

COMMANDS:
- I or inventory: Check your inventory
- J or journal: View your recent events
- C or characters: See characters you've met
- H or help: Display this help text
- Q or quit: End the game

GAMEPLAY:
- Type your actions or choices to progress the story
- Be creative with your responses
- Your choices affect the story and relationships

The world is yours to explore. Good luck!`
