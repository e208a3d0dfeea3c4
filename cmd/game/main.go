// Echoes of the New World: a post-apocalyptic text adventure driven by an LLM
// narrator. Character creation runs on plain stdin; the round loop runs in a
// Bubble Tea UI.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"echoes/internal/config"
	"echoes/internal/engine"
	"echoes/internal/logger"
	"echoes/internal/services"
	"echoes/internal/storage"
	"echoes/pkg/character"
	"echoes/pkg/prompts"
	"echoes/pkg/state"
)

var titleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("86")).
	Bold(true)

const titleBanner = `
    ╔════════════════════════════════════════════════════════════╗
    ║                                                            ║
    ║   POST-APOCALYPTIC CHRONICLES: ECHOES OF THE NEW WORLD     ║
    ║                                                            ║
    ╚════════════════════════════════════════════════════════════╝
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "\nAn error occurred: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// The UI owns the terminal, so logs go to a file.
	logFile, err := os.OpenFile(filepath.Join(cfg.DataDir, "game.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() {
		_ = logFile.Close()
	}()
	log := logger.Setup(cfg, logFile)

	log.Info("Starting Echoes of the New World",
		"environment", cfg.Environment,
		"model_name", cfg.ModelName,
		"data_dir", cfg.DataDir)

	if err := prompts.EnsureDefaults(cfg.PromptsDir()); err != nil {
		return err
	}

	store, err := storage.NewSQLiteStorage(cfg.DBPath(), log)
	if err != nil {
		return fmt.Errorf("open game database: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		return err
	}

	llm := services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.ModelName, cfg.Temperature, cfg.MaxTokens, log)
	eng := engine.New(store, llm, log, cfg.PromptsDir(), cfg.LogsDir())

	fmt.Println(titleStyle.Render(titleBanner))
	fmt.Println("In a world ravaged by climate disaster, your story begins...")

	player, err := createCharacter(eng, store)
	if err != nil {
		return err
	}

	opening, err := eng.StartGame(context.Background(), player)
	if err != nil {
		return fmt.Errorf("start game: %w", err)
	}

	ui := NewGameUI(eng, store, player, opening)
	p := tea.NewProgram(ui, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("run UI: %w", err)
	}
	if m, ok := finalModel.(*GameUI); ok && m.err != nil {
		return m.err
	}

	epilogue, transcriptPath, err := eng.EndGame(context.Background(), player)
	if err != nil {
		logger.WithError(log, err).Error("End game failed")
	}

	fmt.Println("\n=== EPILOGUE ===")
	fmt.Println(epilogue)
	if transcriptPath != "" {
		fmt.Printf("\nYour adventure has been saved to: %s\n", transcriptPath)
	}
	fmt.Println("\nThank you for playing!")
	return nil
}

// createCharacter walks the player through name entry and numbered catalog
// selections on plain stdin, then generates and stores the character.
func createCharacter(eng *engine.Engine, store storage.Storage) (*state.Player, error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("\n=== CHARACTER CREATION ===")
	fmt.Println("Let's create your character for this post-apocalyptic adventure.")

	var name string
	for name == "" {
		fmt.Print("\nWhat is your character's name? ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("read name: %w", err)
		}
		name = strings.TrimSpace(line)
		if name == "" {
			fmt.Println("You must enter a name.")
		}
	}

	gender, err := pickFromCatalog(reader, "Select your character's gender:", character.Genders)
	if err != nil {
		return nil, err
	}
	background, err := pickFromCatalog(reader, "Select your character's background:", character.Backgrounds)
	if err != nil {
		return nil, err
	}

	fmt.Println("\nSelect your character's primary personality traits.")
	positive, err := pickFromCatalog(reader, "Positive Traits:", character.PositiveTraits)
	if err != nil {
		return nil, err
	}
	neutral, err := pickFromCatalog(reader, "Neutral Traits:", character.NeutralTraits)
	if err != nil {
		return nil, err
	}
	negative, err := pickFromCatalog(reader, "Negative Traits:", character.NegativeTraits)
	if err != nil {
		return nil, err
	}

	traits := character.JoinTraits(positive, neutral, negative)
	fmt.Printf("\nYour character's traits are: %s\n", character.Title(traits))

	fmt.Println("\nGenerating your character description...")
	description, err := eng.GenerateCharacterDescription(context.Background(), name, gender, background, traits)
	if err != nil {
		return nil, fmt.Errorf("generate character description: %w", err)
	}

	player, err := store.CreatePlayer(context.Background(), name, gender, background, traits, description)
	if err != nil {
		return nil, fmt.Errorf("create player: %w", err)
	}

	fmt.Println("\n=== YOUR CHARACTER ===")
	fmt.Printf("\nName: %s\n", player.Name)
	fmt.Printf("Gender: %s\n", player.Gender)
	fmt.Printf("Background: %s\n", character.Title(player.Background))
	fmt.Println("Traits:")
	for _, trait := range character.SplitTraits(player.Traits) {
		fmt.Printf("  - %s\n", character.Title(trait))
	}
	fmt.Printf("\nDescription:\n%s\n", player.Description)
	fmt.Print("\nPress Enter to begin your adventure...")
	if _, err := reader.ReadString('\n'); err != nil {
		return nil, fmt.Errorf("read confirmation: %w", err)
	}

	return player, nil
}

// pickFromCatalog prints a numbered list and keeps asking until it gets a
// valid selection.
func pickFromCatalog(reader *bufio.Reader, heading string, options []string) (string, error) {
	fmt.Println("\n" + heading)
	for i, option := range options {
		fmt.Printf("%d. %s\n", i+1, option)
	}

	for {
		fmt.Printf("\nEnter a number (1-%d): ", len(options))
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("read selection: %w", err)
		}
		choice, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || choice < 1 || choice > len(options) {
			fmt.Println("Please enter a valid number.")
			continue
		}
		return options[choice-1], nil
	}
}
