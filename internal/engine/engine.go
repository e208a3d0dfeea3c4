// Package engine drives story progression: premise generation at game start,
// the per-round action/narration cycle, and the end-of-game epilogue and
// transcript export.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"echoes/internal/services"
	"echoes/internal/storage"
	"echoes/pkg/extract"
	"echoes/pkg/prompts"
	"echoes/pkg/state"
)

const (
	// openingAction labels the synthetic first event of every game.
	openingAction = "begin the adventure"

	writerSystemPrompt     = "You are a writer who is an expert at creating engaging stories."
	summarizerSystemPrompt = "You are a writer who is an expert at summarizing complex narratives in a concise and engaging way."

	premiseMaxTokens = 2000
	segmentMaxTokens = 2000
	summaryMaxTokens = 1000
)

// Engine orchestrates the round lifecycle. All persistence is synchronous;
// a round's writes complete before the next round's context is assembled.
type Engine struct {
	store      storage.Storage
	llm        services.LLMService
	logger     *slog.Logger
	promptsDir string
	logsDir    string
}

// RoundResult is what one completed round hands back to the terminal loop.
type RoundResult struct {
	Round     int
	Narrative string
	NewItems  []string
	NewNPCs   []string
}

func New(store storage.Storage, llm services.LLMService, logger *slog.Logger, promptsDir, logsDir string) *Engine {
	return &Engine{
		store:      store,
		llm:        llm,
		logger:     logger,
		promptsDir: promptsDir,
		logsDir:    logsDir,
	}
}

// GenerateCharacterDescription produces the character description from the
// creation template. A template placeholder without a substitution is a hard
// error; templates are operator configuration, not user input.
func (e *Engine) GenerateCharacterDescription(ctx context.Context, name, gender, background, traits string) (string, error) {
	template, err := prompts.Load(filepath.Join(e.promptsDir, prompts.CharacterPromptFile), prompts.DefaultCharacterTemplate)
	if err != nil {
		return "", err
	}
	prompt, err := prompts.Render(template, map[string]string{
		"name":       name,
		"gender":     gender,
		"background": background,
		"traits":     traits,
	})
	if err != nil {
		return "", fmt.Errorf("character template: %w", err)
	}
	return e.generate(ctx, prompt, writerSystemPrompt, 0)
}

// StartGame generates the story premise and opening narration for a fresh
// game. The premise is written once; it seeds the initial situation and
// summary, and the opening is recorded as the round-1 event.
func (e *Engine) StartGame(ctx context.Context, player *state.Player) (*RoundResult, error) {
	gs, err := e.store.GetGameState(ctx, player.GameID)
	if err != nil {
		return nil, err
	}
	if gs.Premise != "" {
		return nil, fmt.Errorf("game %d already has a premise", player.GameID)
	}

	premise, err := e.generatePremise(ctx, player.Description)
	if err != nil {
		return nil, err
	}

	round := 1
	if err := e.store.UpdateGameState(ctx, player.GameID, state.GameStateUpdate{
		Round:     &round,
		Situation: &premise,
		Premise:   &premise,
		Summary:   &premise,
	}); err != nil {
		return nil, err
	}

	opening, err := e.generateSegment(ctx, player.Description, premise, premise, nil, nil, openingAction)
	if err != nil {
		return nil, err
	}
	if err := e.store.AppendEvent(ctx, player.GameID, round, opening, openingAction); err != nil {
		return nil, err
	}

	newNPCs, newItems := e.extractEntities(ctx, player.GameID, round, opening)

	e.logger.Info("Game started", "game_id", player.GameID, "player", player.Name)
	return &RoundResult{
		Round:     round,
		Narrative: opening,
		NewItems:  newItems,
		NewNPCs:   newNPCs,
	}, nil
}

// ProcessAction advances the game one round: it assembles context from the
// store, generates the next narrative segment and an updated running summary,
// persists both along with the incremented round counter, records the event,
// and runs entity extraction over the new text. Generation failures degrade to
// a fallback narration; the round always completes and is always recorded.
func (e *Engine) ProcessAction(ctx context.Context, player *state.Player, action string) (*RoundResult, error) {
	gs, err := e.store.GetGameState(ctx, player.GameID)
	if err != nil {
		return nil, err
	}
	round := gs.Round + 1

	recent, err := e.store.RecentEvents(ctx, player.GameID, prompts.DefaultEventWindow)
	if err != nil {
		return nil, err
	}
	npcs, err := e.store.ListNPCs(ctx, player.GameID)
	if err != nil {
		return nil, err
	}

	segment, err := e.generateSegment(ctx, player.Description, gs.Premise, gs.Situation, recent, npcs, action)
	if err != nil {
		return nil, err
	}
	summary, err := e.generateSummary(ctx, player.Description, gs.Premise, gs.Summary, recent, npcs, action)
	if err != nil {
		return nil, err
	}

	if err := e.store.UpdateGameState(ctx, player.GameID, state.GameStateUpdate{
		Round:     &round,
		Situation: &segment,
		Summary:   &summary,
	}); err != nil {
		return nil, err
	}
	if err := e.store.AppendEvent(ctx, player.GameID, round, segment, action); err != nil {
		return nil, err
	}

	newNPCs, newItems := e.extractEntities(ctx, player.GameID, round, segment)

	return &RoundResult{
		Round:     round,
		Narrative: segment,
		NewItems:  newItems,
		NewNPCs:   newNPCs,
	}, nil
}

// EndGame generates the epilogue and exports the adventure transcript. The
// epilogue prompt deliberately carries only the player's name; the narrow
// contract is preserved as-is.
func (e *Engine) EndGame(ctx context.Context, player *state.Player) (string, string, error) {
	epilogue, err := e.generate(ctx, fmt.Sprintf("%s's ", player.Name), "", 0)
	if err != nil {
		epilogue = services.FallbackResponse
	}

	path, err := e.ExportTranscript(ctx, player)
	if err != nil {
		return epilogue, "", err
	}

	e.logger.Info("Game ended", "game_id", player.GameID, "transcript", path)
	return epilogue, path, nil
}

// generate calls the LLM boundary and propagates its error; each caller
// decides whether to degrade to the fallback, keep prior state, or fail.
func (e *Engine) generate(ctx context.Context, prompt, systemPrompt string, maxTokens int) (string, error) {
	text, err := e.llm.GenerateText(ctx, services.GenerateRequest{
		Prompt:       prompt,
		SystemPrompt: systemPrompt,
		MaxTokens:    maxTokens,
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

func (e *Engine) generatePremise(ctx context.Context, characterInfo string) (string, error) {
	prompt, err := prompts.Render(prompts.DefaultPremiseTemplate, map[string]string{
		"character_info": characterInfo,
	})
	if err != nil {
		return "", fmt.Errorf("premise template: %w", err)
	}
	text, err := e.generate(ctx, prompt, writerSystemPrompt, premiseMaxTokens)
	if err != nil {
		e.logger.Warn("Premise generation failed, using fallback", "error", err)
		return services.FallbackResponse, nil
	}
	return text, nil
}

// generateSegment produces the next narrative segment. Template errors are
// hard failures since templates are operator configuration; generation errors
// degrade to the fallback narration.
func (e *Engine) generateSegment(ctx context.Context, characterInfo, premise, situation string, recent []state.Event, npcs []state.NPC, action string) (string, error) {
	template, err := prompts.Load(filepath.Join(e.promptsDir, prompts.StoryPromptFile), prompts.DefaultStoryTemplate)
	if err != nil {
		return "", err
	}

	summary := situation
	if summary == "" {
		summary = "Starting your journey in the wasteland."
	}
	prompt, err := prompts.Render(template, map[string]string{
		"character_info":    characterInfo,
		"story_premise":     premise,
		"summary":           summary,
		"recent_events":     prompts.EventsBlock(recent),
		"npc_relationships": prompts.NPCsBlock(npcs),
		"player_response":   action,
	})
	if err != nil {
		return "", fmt.Errorf("story template: %w", err)
	}

	systemPrompt, err := prompts.Load(filepath.Join(e.promptsDir, prompts.SystemPromptFile), prompts.DefaultSystemPrompt)
	if err != nil {
		return "", err
	}

	text, err := e.generate(ctx, prompt, systemPrompt, segmentMaxTokens)
	if err != nil {
		e.logger.Warn("Segment generation failed, using fallback", "error", err)
		return services.FallbackResponse, nil
	}
	return text, nil
}

// generateSummary regenerates the running summary. On generation failure the
// previous summary is kept rather than cleared.
func (e *Engine) generateSummary(ctx context.Context, characterInfo, premise, currentSummary string, recent []state.Event, npcs []state.NPC, action string) (string, error) {
	template, err := prompts.Load(filepath.Join(e.promptsDir, prompts.SummaryPromptFile), prompts.DefaultSummaryTemplate)
	if err != nil {
		return "", err
	}

	if currentSummary == "" {
		currentSummary = "The story is just beginning."
	}
	prompt, err := prompts.Render(template, map[string]string{
		"story_premise":         premise,
		"character_description": characterInfo,
		"current_summary":       currentSummary,
		"recent_events":         prompts.EventsBlock(recent),
		"npc_relationships":     prompts.NPCsBlock(npcs),
		"player_action":         action,
	})
	if err != nil {
		return "", fmt.Errorf("summary template: %w", err)
	}

	text, err := e.generate(ctx, prompt, summarizerSystemPrompt, summaryMaxTokens)
	if err != nil {
		e.logger.Warn("Summary generation failed, keeping previous summary", "error", err)
		return currentSummary, nil
	}
	return text, nil
}

// extractEntities runs the lossy NPC and item heuristics over new narrative
// text. It never fails the round; extraction errors are logged and dropped.
func (e *Engine) extractEntities(ctx context.Context, gameID int64, round int, text string) (newNPCs, newItems []string) {
	existing, err := e.store.ListNPCs(ctx, gameID)
	if err != nil {
		e.logger.Warn("NPC lookup failed during extraction", "error", err)
		existing = nil
	}
	known := make(map[string]bool, len(existing))
	for _, npc := range existing {
		known[strings.ToLower(npc.Name)] = true
	}

	for _, name := range extract.NPCNames(text) {
		if known[strings.ToLower(name)] {
			continue
		}
		known[strings.ToLower(name)] = true
		err := e.store.AddNPC(ctx, state.NPC{
			GameID:        gameID,
			Name:          name,
			Description:   fmt.Sprintf("Met during round %d", round),
			Relationship:  state.RelationshipNeutral,
			FirstMetRound: round,
		})
		if err != nil {
			e.logger.Warn("Failed to record NPC", "name", name, "error", err)
			continue
		}
		newNPCs = append(newNPCs, name)
	}

	items, err := e.store.Inventory(ctx, gameID)
	if err != nil {
		e.logger.Warn("Inventory lookup failed during extraction", "error", err)
		return newNPCs, nil
	}
	newItems = extract.Items(text, items)
	if len(newItems) > 0 {
		if err := e.store.ReplaceInventory(ctx, gameID, append(items, newItems...)); err != nil {
			e.logger.Warn("Failed to update inventory", "error", err)
			return newNPCs, nil
		}
	}
	return newNPCs, newItems
}
