package state

import (
	"time"

	"github.com/google/uuid"
)

// Player is a created character. Exactly one active GameState exists per player.
type Player struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Gender      string    `json:"gender,omitempty"`
	Background  string    `json:"background"`
	Traits      string    `json:"traits"` // comma-joined triplet: positive, neutral, negative
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	GameID      int64     `json:"game_id"` // attached game_state row
}

// GameState is the mutable per-game record. The premise is written once at game
// start; situation and summary are replaced every round.
type GameState struct {
	ID        int64     `json:"id"`
	PlayerID  int64     `json:"player_id"`
	SessionID uuid.UUID `json:"session_id"`
	Round     int       `json:"current_round"` // >= 1, monotonically non-decreasing
	Situation string    `json:"current_situation,omitempty"`
	Premise   string    `json:"story_premise,omitempty"`
	Summary   string    `json:"current_summary,omitempty"`
}

// Event is one round's narrative and the action that produced it. Events are
// append-only, one per round.
type Event struct {
	ID           int64     `json:"id"`
	GameID       int64     `json:"game_id"`
	Round        int       `json:"round"`
	Description  string    `json:"description"`
	PlayerAction string    `json:"player_action"`
	Timestamp    time.Time `json:"timestamp"`
}

// NPC is a character surfaced from the narrative. Names are unique per game,
// compared case-insensitively.
type NPC struct {
	ID            int64  `json:"id"`
	GameID        int64  `json:"game_id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Relationship  string `json:"relationship"` // e.g. "hostile", "neutral", "friendly"
	FirstMetRound int    `json:"first_met_round"`
}

// RelationshipNeutral is the relationship assigned to newly discovered NPCs.
const RelationshipNeutral = "neutral"

// GameStateUpdate is a partial update of a GameState row. Nil fields are left
// unchanged.
type GameStateUpdate struct {
	Round     *int
	Situation *string
	Premise   *string
	Summary   *string
}

// NPCUpdate is a partial update of an NPC row. Nil fields are left unchanged.
type NPCUpdate struct {
	Description  *string
	Relationship *string
}
