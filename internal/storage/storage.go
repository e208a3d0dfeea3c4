package storage

import (
	"context"

	"echoes/pkg/state"
)

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the store connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the store connection
	Close() error
}

// Storage is the durable mapping from game entities to disk. All writes commit
// immediately; there are no multi-entity transactions, and callers tolerate a
// missing game-state row by treating it as an uninitialized game.
type Storage interface {
	HealthChecker
	Closer

	// CreatePlayer inserts a player with an attached game state and an empty
	// inventory, and returns the player with its game id populated.
	CreatePlayer(ctx context.Context, name, gender, background, traits, description string) (*state.Player, error)

	// GetPlayer retrieves a player by id, including its game id.
	GetPlayer(ctx context.Context, id int64) (*state.Player, error)

	// GetGameState retrieves a game state. A missing row is not an error: it
	// returns round 1 with empty narrative fields.
	GetGameState(ctx context.Context, gameID int64) (*state.GameState, error)

	// UpdateGameState applies a partial update; nil fields are left unchanged.
	UpdateGameState(ctx context.Context, gameID int64, upd state.GameStateUpdate) error

	// AppendEvent records one round's narrative and player action.
	AppendEvent(ctx context.Context, gameID int64, round int, description, playerAction string) error

	// RecentEvents returns up to limit events ordered by ascending round.
	RecentEvents(ctx context.Context, gameID int64, limit int) ([]state.Event, error)

	// AllEvents returns every event for a game ordered by ascending round.
	AllEvents(ctx context.Context, gameID int64) ([]state.Event, error)

	// AddNPC records a newly met NPC. Name dedup is the caller's concern.
	AddNPC(ctx context.Context, npc state.NPC) error

	// UpdateNPC applies a partial update; nil fields are left unchanged.
	UpdateNPC(ctx context.Context, id int64, upd state.NPCUpdate) error

	// ListNPCs returns all NPCs for a game in storage order.
	ListNPCs(ctx context.Context, gameID int64) ([]state.NPC, error)

	// Inventory returns the ordered item list for a game.
	Inventory(ctx context.Context, gameID int64) ([]string, error)

	// ReplaceInventory overwrites the ordered item list for a game.
	ReplaceInventory(ctx context.Context, gameID int64, items []string) error
}
