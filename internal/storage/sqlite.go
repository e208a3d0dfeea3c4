package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"echoes/pkg/state"
)

// SQLiteStorage implements Storage on a file-backed SQLite database.
type SQLiteStorage struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ensure SQLiteStorage implements Storage interface
var _ Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens (or creates) the database at path and brings the
// schema up to date. Schema evolution is additive-only: new nullable columns
// are appended to existing tables without rewriting rows.
func NewSQLiteStorage(path string, logger *slog.Logger) (*SQLiteStorage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	s := &SQLiteStorage{db: db, logger: logger}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.addMissingColumns(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database", "error", err)
		return err
	}
	return nil
}

func (s *SQLiteStorage) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS player (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			gender TEXT,
			background TEXT NOT NULL,
			traits TEXT NOT NULL,
			description TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS game_state (
			id INTEGER PRIMARY KEY,
			player_id INTEGER,
			current_round INTEGER DEFAULT 1,
			current_situation TEXT,
			story_premise TEXT,
			current_summary TEXT,
			FOREIGN KEY (player_id) REFERENCES player(id)
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY,
			game_id INTEGER,
			round INTEGER,
			description TEXT,
			player_action TEXT,
			timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (game_id) REFERENCES game_state(id)
		)`,
		`CREATE TABLE IF NOT EXISTS npcs (
			id INTEGER PRIMARY KEY,
			game_id INTEGER,
			name TEXT,
			description TEXT,
			relationship TEXT DEFAULT 'neutral',
			first_met_round INTEGER,
			FOREIGN KEY (game_id) REFERENCES game_state(id)
		)`,
		`CREATE TABLE IF NOT EXISTS inventory (
			id INTEGER PRIMARY KEY,
			game_id INTEGER,
			items TEXT,
			FOREIGN KEY (game_id) REFERENCES game_state(id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// addMissingColumns appends nullable columns introduced after the initial
// schema. Existing rows keep null values; readers treat null as absent.
func (s *SQLiteStorage) addMissingColumns() error {
	wanted := map[string]string{
		"story_premise":   "TEXT",
		"current_summary": "TEXT",
		"session_id":      "TEXT",
	}

	rows, err := s.db.Query(`PRAGMA table_info(game_state)`)
	if err != nil {
		return fmt.Errorf("inspect game_state schema: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	existing := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("scan game_state schema: %w", err)
		}
		existing[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect game_state schema: %w", err)
	}

	for name, colType := range wanted {
		if existing[name] {
			continue
		}
		s.logger.Info("Adding column to game_state table", "column", name)
		if _, err := s.db.Exec(fmt.Sprintf("ALTER TABLE game_state ADD COLUMN %s %s", name, colType)); err != nil {
			return fmt.Errorf("add column %s: %w", name, err)
		}
	}
	return nil
}

func (s *SQLiteStorage) CreatePlayer(ctx context.Context, name, gender, background, traits, description string) (*state.Player, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("player name is required")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO player (name, gender, background, traits, description) VALUES (?, ?, ?, ?, ?)`,
		name, gender, background, traits, description)
	if err != nil {
		return nil, fmt.Errorf("insert player: %w", err)
	}
	playerID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("player id: %w", err)
	}

	sessionID := uuid.New()
	res, err = s.db.ExecContext(ctx,
		`INSERT INTO game_state (player_id, session_id) VALUES (?, ?)`,
		playerID, sessionID.String())
	if err != nil {
		return nil, fmt.Errorf("insert game state: %w", err)
	}
	gameID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("game id: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO inventory (game_id, items) VALUES (?, ?)`,
		gameID, "[]"); err != nil {
		return nil, fmt.Errorf("insert inventory: %w", err)
	}

	return s.GetPlayer(ctx, playerID)
}

func (s *SQLiteStorage) GetPlayer(ctx context.Context, id int64) (*state.Player, error) {
	var (
		p         state.Player
		gender    sql.NullString
		desc      sql.NullString
		createdAt sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, gender, background, traits, description, created_at FROM player WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &gender, &p.Background, &p.Traits, &desc, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("get player %d: %w", id, err)
	}
	p.Gender = gender.String
	p.Description = desc.String
	if createdAt.Valid {
		if t, err := time.Parse("2006-01-02 15:04:05", createdAt.String); err == nil {
			p.CreatedAt = t
		}
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM game_state WHERE player_id = ?`, id).Scan(&p.GameID)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("get game id for player %d: %w", id, err)
	}
	return &p, nil
}

func (s *SQLiteStorage) GetGameState(ctx context.Context, gameID int64) (*state.GameState, error) {
	var (
		gs        state.GameState
		playerID  sql.NullInt64
		situation sql.NullString
		premise   sql.NullString
		summary   sql.NullString
		sessionID sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, player_id, current_round, current_situation, story_premise, current_summary, session_id
		 FROM game_state WHERE id = ?`, gameID).
		Scan(&gs.ID, &playerID, &gs.Round, &situation, &premise, &summary, &sessionID)
	if err == sql.ErrNoRows {
		// An absent row means the game was never initialized; hand back a
		// fresh round-1 state rather than an error.
		return &state.GameState{ID: gameID, Round: 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game state %d: %w", gameID, err)
	}

	gs.PlayerID = playerID.Int64
	gs.Situation = situation.String
	gs.Premise = premise.String
	gs.Summary = summary.String
	if sessionID.Valid {
		if id, err := uuid.Parse(sessionID.String); err == nil {
			gs.SessionID = id
		}
	}
	return &gs, nil
}

func (s *SQLiteStorage) UpdateGameState(ctx context.Context, gameID int64, upd state.GameStateUpdate) error {
	var (
		sets   []string
		params []any
	)
	if upd.Round != nil {
		sets = append(sets, "current_round = ?")
		params = append(params, *upd.Round)
	}
	if upd.Situation != nil {
		sets = append(sets, "current_situation = ?")
		params = append(params, *upd.Situation)
	}
	if upd.Premise != nil {
		sets = append(sets, "story_premise = ?")
		params = append(params, *upd.Premise)
	}
	if upd.Summary != nil {
		sets = append(sets, "current_summary = ?")
		params = append(params, *upd.Summary)
	}
	if len(sets) == 0 {
		return nil
	}

	params = append(params, gameID)
	query := fmt.Sprintf("UPDATE game_state SET %s WHERE id = ?", strings.Join(sets, ", "))
	if _, err := s.db.ExecContext(ctx, query, params...); err != nil {
		return fmt.Errorf("update game state %d: %w", gameID, err)
	}
	return nil
}

func (s *SQLiteStorage) AppendEvent(ctx context.Context, gameID int64, round int, description, playerAction string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (game_id, round, description, player_action) VALUES (?, ?, ?, ?)`,
		gameID, round, description, playerAction)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) RecentEvents(ctx context.Context, gameID int64, limit int) ([]state.Event, error) {
	// Take the newest rows, then flip them back into chronological order.
	return s.queryEvents(ctx,
		`SELECT id, game_id, round, description, player_action, timestamp FROM (
			SELECT id, game_id, round, description, player_action, timestamp
			FROM events WHERE game_id = ? ORDER BY round DESC, id DESC LIMIT ?
		 ) ORDER BY round ASC, id ASC`, gameID, limit)
}

func (s *SQLiteStorage) AllEvents(ctx context.Context, gameID int64) ([]state.Event, error) {
	return s.queryEvents(ctx,
		`SELECT id, game_id, round, description, player_action, timestamp
		 FROM events WHERE game_id = ? ORDER BY round ASC`, gameID)
}

func (s *SQLiteStorage) queryEvents(ctx context.Context, query string, args ...any) ([]state.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var events []state.Event
	for rows.Next() {
		var (
			ev        state.Event
			desc      sql.NullString
			action    sql.NullString
			timestamp sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.GameID, &ev.Round, &desc, &action, &timestamp); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Description = desc.String
		ev.PlayerAction = action.String
		if timestamp.Valid {
			if t, err := time.Parse("2006-01-02 15:04:05", timestamp.String); err == nil {
				ev.Timestamp = t
			}
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func (s *SQLiteStorage) AddNPC(ctx context.Context, npc state.NPC) error {
	if npc.Relationship == "" {
		npc.Relationship = state.RelationshipNeutral
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO npcs (game_id, name, description, relationship, first_met_round) VALUES (?, ?, ?, ?, ?)`,
		npc.GameID, npc.Name, npc.Description, npc.Relationship, npc.FirstMetRound)
	if err != nil {
		return fmt.Errorf("add npc: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) UpdateNPC(ctx context.Context, id int64, upd state.NPCUpdate) error {
	var (
		sets   []string
		params []any
	)
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		params = append(params, *upd.Description)
	}
	if upd.Relationship != nil {
		sets = append(sets, "relationship = ?")
		params = append(params, *upd.Relationship)
	}
	if len(sets) == 0 {
		return nil
	}

	params = append(params, id)
	query := fmt.Sprintf("UPDATE npcs SET %s WHERE id = ?", strings.Join(sets, ", "))
	if _, err := s.db.ExecContext(ctx, query, params...); err != nil {
		return fmt.Errorf("update npc %d: %w", id, err)
	}
	return nil
}

func (s *SQLiteStorage) ListNPCs(ctx context.Context, gameID int64) ([]state.NPC, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_id, name, description, relationship, first_met_round
		 FROM npcs WHERE game_id = ?`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list npcs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var npcs []state.NPC
	for rows.Next() {
		var (
			npc  state.NPC
			desc sql.NullString
			rel  sql.NullString
		)
		if err := rows.Scan(&npc.ID, &npc.GameID, &npc.Name, &desc, &rel, &npc.FirstMetRound); err != nil {
			return nil, fmt.Errorf("scan npc: %w", err)
		}
		npc.Description = desc.String
		npc.Relationship = rel.String
		npcs = append(npcs, npc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate npcs: %w", err)
	}
	return npcs, nil
}

func (s *SQLiteStorage) Inventory(ctx context.Context, gameID int64) ([]string, error) {
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT items FROM inventory WHERE game_id = ?`, gameID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		return nil, nil
	}

	var items []string
	if err := json.Unmarshal([]byte(raw.String), &items); err != nil {
		return nil, fmt.Errorf("unmarshal inventory: %w", err)
	}
	return items, nil
}

func (s *SQLiteStorage) ReplaceInventory(ctx context.Context, gameID int64, items []string) error {
	if items == nil {
		items = []string{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal inventory: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE inventory SET items = ? WHERE game_id = ?`, string(encoded), gameID); err != nil {
		return fmt.Errorf("replace inventory: %w", err)
	}
	return nil
}
