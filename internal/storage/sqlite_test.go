package storage

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"echoes/pkg/state"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "game.db"), logger)
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := NewSQLiteStorage("  ", logger); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestCreatePlayer(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	p, err := s.CreatePlayer(ctx, "Ada", "Female", "Beet Farmer", "Brave, Sarcastic, Greedy", "A farmer turned scavenger.")
	if err != nil {
		t.Fatalf("create player: %v", err)
	}
	if p.ID == 0 || p.GameID == 0 {
		t.Fatalf("expected ids to be assigned, got player=%d game=%d", p.ID, p.GameID)
	}
	if p.Name != "Ada" || p.Gender != "Female" || p.Background != "Beet Farmer" {
		t.Errorf("unexpected player fields: %+v", p)
	}

	// Creation attaches a game state and an empty inventory.
	gs, err := s.GetGameState(ctx, p.GameID)
	if err != nil {
		t.Fatalf("get game state: %v", err)
	}
	if gs.Round != 1 {
		t.Errorf("expected round 1, got %d", gs.Round)
	}
	if gs.SessionID == uuid.Nil {
		t.Error("expected session id to be set")
	}
	items, err := s.Inventory(ctx, p.GameID)
	if err != nil {
		t.Fatalf("get inventory: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty inventory, got %v", items)
	}
}

func TestCreatePlayer_EmptyName(t *testing.T) {
	s := newTestStorage(t)
	if _, err := s.CreatePlayer(context.Background(), "  ", "", "bg", "t", "d"); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestGetGameState_MissingRow(t *testing.T) {
	s := newTestStorage(t)

	gs, err := s.GetGameState(context.Background(), 999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gs.Round != 1 || gs.Premise != "" || gs.Situation != "" || gs.Summary != "" {
		t.Errorf("expected fresh round-1 state, got %+v", gs)
	}
}

func TestUpdateGameState_PartialUpdate(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	p, err := s.CreatePlayer(ctx, "Ada", "", "bg", "t", "d")
	if err != nil {
		t.Fatalf("create player: %v", err)
	}

	round := 3
	premise := "the world after the flood"
	if err := s.UpdateGameState(ctx, p.GameID, state.GameStateUpdate{Round: &round, Premise: &premise}); err != nil {
		t.Fatalf("update: %v", err)
	}

	situation := "you stand at the gate"
	if err := s.UpdateGameState(ctx, p.GameID, state.GameStateUpdate{Situation: &situation}); err != nil {
		t.Fatalf("update: %v", err)
	}

	gs, err := s.GetGameState(ctx, p.GameID)
	if err != nil {
		t.Fatalf("get game state: %v", err)
	}
	if gs.Round != 3 {
		t.Errorf("expected round 3 preserved across partial update, got %d", gs.Round)
	}
	if gs.Premise != premise {
		t.Errorf("expected premise preserved, got %q", gs.Premise)
	}
	if gs.Situation != situation {
		t.Errorf("expected situation %q, got %q", situation, gs.Situation)
	}

	// A no-op update changes nothing.
	if err := s.UpdateGameState(ctx, p.GameID, state.GameStateUpdate{}); err != nil {
		t.Fatalf("empty update: %v", err)
	}
}

func TestEvents_OrderAndWindow(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	p, err := s.CreatePlayer(ctx, "Ada", "", "bg", "t", "d")
	if err != nil {
		t.Fatalf("create player: %v", err)
	}

	for round := 1; round <= 7; round++ {
		if err := s.AppendEvent(ctx, p.GameID, round, "narration", "action"); err != nil {
			t.Fatalf("append event %d: %v", round, err)
		}
	}

	recent, err := s.RecentEvents(ctx, p.GameID, 5)
	if err != nil {
		t.Fatalf("recent events: %v", err)
	}
	if len(recent) != 5 {
		t.Fatalf("expected 5 events, got %d", len(recent))
	}
	// The window holds the newest rounds in ascending order.
	for i, ev := range recent {
		if ev.Round != i+3 {
			t.Errorf("expected round %d at index %d, got %d", i+3, i, ev.Round)
		}
	}

	all, err := s.AllEvents(ctx, p.GameID)
	if err != nil {
		t.Fatalf("all events: %v", err)
	}
	if len(all) != 7 {
		t.Fatalf("expected 7 events, got %d", len(all))
	}
	for i, ev := range all {
		if ev.Round != i+1 {
			t.Errorf("expected ascending rounds, got %d at index %d", ev.Round, i)
		}
	}
}

func TestNPCs(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	p, err := s.CreatePlayer(ctx, "Ada", "", "bg", "t", "d")
	if err != nil {
		t.Fatalf("create player: %v", err)
	}

	err = s.AddNPC(ctx, state.NPC{GameID: p.GameID, Name: "Mara", Description: "Met during round 2", FirstMetRound: 2})
	if err != nil {
		t.Fatalf("add npc: %v", err)
	}

	npcs, err := s.ListNPCs(ctx, p.GameID)
	if err != nil {
		t.Fatalf("list npcs: %v", err)
	}
	if len(npcs) != 1 {
		t.Fatalf("expected 1 npc, got %d", len(npcs))
	}
	if npcs[0].Relationship != state.RelationshipNeutral {
		t.Errorf("expected default relationship, got %q", npcs[0].Relationship)
	}

	rel := "friendly"
	if err := s.UpdateNPC(ctx, npcs[0].ID, state.NPCUpdate{Relationship: &rel}); err != nil {
		t.Fatalf("update npc: %v", err)
	}
	npcs, err = s.ListNPCs(ctx, p.GameID)
	if err != nil {
		t.Fatalf("list npcs: %v", err)
	}
	if npcs[0].Relationship != "friendly" {
		t.Errorf("expected updated relationship, got %q", npcs[0].Relationship)
	}
	if npcs[0].Description != "Met during round 2" {
		t.Errorf("expected description preserved, got %q", npcs[0].Description)
	}
}

func TestInventoryRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	p, err := s.CreatePlayer(ctx, "Ada", "", "bg", "t", "d")
	if err != nil {
		t.Fatalf("create player: %v", err)
	}

	items := []string{"rusty knife", "old map"}
	if err := s.ReplaceInventory(ctx, p.GameID, items); err != nil {
		t.Fatalf("replace inventory: %v", err)
	}

	got, err := s.Inventory(ctx, p.GameID)
	if err != nil {
		t.Fatalf("get inventory: %v", err)
	}
	if !reflect.DeepEqual(got, items) {
		t.Errorf("expected %v, got %v", items, got)
	}
}

func TestAddMissingColumns_LegacySchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	// Seed a database created before the premise, summary, and session
	// columns existed.
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE game_state (
		id INTEGER PRIMARY KEY,
		player_id INTEGER,
		current_round INTEGER DEFAULT 1,
		current_situation TEXT
	)`)
	if err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO game_state (player_id, current_round, current_situation) VALUES (1, 4, 'old save')`); err != nil {
		t.Fatalf("seed legacy row: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close seed db: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := NewSQLiteStorage(path, logger)
	if err != nil {
		t.Fatalf("open storage over legacy db: %v", err)
	}
	defer func() {
		_ = s.Close()
	}()

	gs, err := s.GetGameState(context.Background(), 1)
	if err != nil {
		t.Fatalf("get legacy game state: %v", err)
	}
	if gs.Round != 4 || gs.Situation != "old save" {
		t.Errorf("expected legacy row preserved, got %+v", gs)
	}
	if gs.Premise != "" || gs.Summary != "" {
		t.Errorf("expected added columns to read as empty, got %+v", gs)
	}

	// Reopening must not fail on already-added columns.
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	s2, err := NewSQLiteStorage(path, logger)
	if err != nil {
		t.Fatalf("reopen storage: %v", err)
	}
	_ = s2.Close()
}
