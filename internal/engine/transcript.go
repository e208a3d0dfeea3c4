package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"echoes/pkg/state"
)

var unsafeNameChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// transcriptFilename builds a filesystem-safe name from the player name and a
// timestamp.
func transcriptFilename(playerName string, now time.Time) string {
	name := strings.ToLower(strings.TrimSpace(playerName))
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeNameChars.ReplaceAllString(name, "")
	if name == "" {
		name = "adventurer"
	}
	return fmt.Sprintf("%s_%d.txt", name, now.Unix())
}

// ExportTranscript writes the full adventure log for a game to the logs
// directory and returns the file path. The transcript is derived entirely from
// the stored events table, so it reflects exactly what was committed round by
// round.
func (e *Engine) ExportTranscript(ctx context.Context, player *state.Player) (string, error) {
	events, err := e.store.AllEvents(ctx, player.GameID)
	if err != nil {
		return "", fmt.Errorf("read events for transcript: %w", err)
	}

	if err := os.MkdirAll(e.logsDir, 0o755); err != nil {
		return "", fmt.Errorf("create logs dir: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== ADVENTURE LOG: %s ===\n\n", player.Name)
	fmt.Fprintf(&sb, "Background: %s\n", player.Background)
	fmt.Fprintf(&sb, "Traits: %s\n\n", player.Traits)
	fmt.Fprintf(&sb, "%s\n\n", player.Description)
	sb.WriteString("=== THE JOURNEY ===\n\n")

	for _, ev := range events {
		fmt.Fprintf(&sb, "--- Round %d ---\n\n", ev.Round)
		fmt.Fprintf(&sb, "%s\n\n", ev.Description)
		fmt.Fprintf(&sb, "Your action: %s\n\n", ev.PlayerAction)
	}

	path := filepath.Join(e.logsDir, transcriptFilename(player.Name, time.Now()))
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}
