package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"echoes/pkg/state"
)

// MockStorage is an in-memory implementation of Storage for testing.
type MockStorage struct {
	mu sync.Mutex

	players     map[int64]*state.Player
	games       map[int64]*state.GameState
	events      map[int64][]state.Event
	npcs        map[int64][]state.NPC
	inventories map[int64][]string
	nextID      int64

	// PingErr, when set, is returned by Ping.
	PingErr error
}

var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		players:     make(map[int64]*state.Player),
		games:       make(map[int64]*state.GameState),
		events:      make(map[int64][]state.Event),
		npcs:        make(map[int64][]state.NPC),
		inventories: make(map[int64][]string),
		nextID:      1,
	}
}

func (m *MockStorage) Ping(ctx context.Context) error { return m.PingErr }
func (m *MockStorage) Close() error                   { return nil }

func (m *MockStorage) CreatePlayer(ctx context.Context, name, gender, background, traits, description string) (*state.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	playerID := m.nextID
	m.nextID++
	gameID := m.nextID
	m.nextID++

	m.games[gameID] = &state.GameState{
		ID:        gameID,
		PlayerID:  playerID,
		SessionID: uuid.New(),
		Round:     1,
	}
	m.inventories[gameID] = []string{}

	p := &state.Player{
		ID:          playerID,
		Name:        name,
		Gender:      gender,
		Background:  background,
		Traits:      traits,
		Description: description,
		CreatedAt:   time.Now(),
		GameID:      gameID,
	}
	m.players[playerID] = p

	copied := *p
	return &copied, nil
}

func (m *MockStorage) GetPlayer(ctx context.Context, id int64) (*state.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[id]
	if !ok {
		return nil, fmt.Errorf("player %d not found", id)
	}
	copied := *p
	return &copied, nil
}

func (m *MockStorage) GetGameState(ctx context.Context, gameID int64) (*state.GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	gs, ok := m.games[gameID]
	if !ok {
		return &state.GameState{ID: gameID, Round: 1}, nil
	}
	copied := *gs
	return &copied, nil
}

func (m *MockStorage) UpdateGameState(ctx context.Context, gameID int64, upd state.GameStateUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	gs, ok := m.games[gameID]
	if !ok {
		gs = &state.GameState{ID: gameID, Round: 1}
		m.games[gameID] = gs
	}
	if upd.Round != nil {
		gs.Round = *upd.Round
	}
	if upd.Situation != nil {
		gs.Situation = *upd.Situation
	}
	if upd.Premise != nil {
		gs.Premise = *upd.Premise
	}
	if upd.Summary != nil {
		gs.Summary = *upd.Summary
	}
	return nil
}

func (m *MockStorage) AppendEvent(ctx context.Context, gameID int64, round int, description, playerAction string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.events[gameID] = append(m.events[gameID], state.Event{
		ID:           id,
		GameID:       gameID,
		Round:        round,
		Description:  description,
		PlayerAction: playerAction,
		Timestamp:    time.Now(),
	})
	return nil
}

func (m *MockStorage) RecentEvents(ctx context.Context, gameID int64, limit int) ([]state.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := m.events[gameID]
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	return append([]state.Event(nil), events...), nil
}

func (m *MockStorage) AllEvents(ctx context.Context, gameID int64) ([]state.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]state.Event(nil), m.events[gameID]...), nil
}

func (m *MockStorage) AddNPC(ctx context.Context, npc state.NPC) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	npc.ID = m.nextID
	m.nextID++
	if npc.Relationship == "" {
		npc.Relationship = state.RelationshipNeutral
	}
	m.npcs[npc.GameID] = append(m.npcs[npc.GameID], npc)
	return nil
}

func (m *MockStorage) UpdateNPC(ctx context.Context, id int64, upd state.NPCUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for gameID, npcs := range m.npcs {
		for i := range npcs {
			if npcs[i].ID != id {
				continue
			}
			if upd.Description != nil {
				npcs[i].Description = *upd.Description
			}
			if upd.Relationship != nil {
				npcs[i].Relationship = *upd.Relationship
			}
			m.npcs[gameID] = npcs
			return nil
		}
	}
	return fmt.Errorf("npc %d not found", id)
}

func (m *MockStorage) ListNPCs(ctx context.Context, gameID int64) ([]state.NPC, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]state.NPC(nil), m.npcs[gameID]...), nil
}

func (m *MockStorage) Inventory(ctx context.Context, gameID int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.inventories[gameID]...), nil
}

func (m *MockStorage) ReplaceInventory(ctx context.Context, gameID int64, items []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inventories[gameID] = append([]string(nil), items...)
	return nil
}
