// Package prompts holds the prompt templates fed to the LLM and the context
// assembly that turns persisted game rows into template inputs.
//
// Templates are operator-editable text files with {placeholder} substitution.
// A missing file falls back to the built-in default; an unresolved placeholder
// is a hard error, because templates are configuration rather than user input.
package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Template file names under the prompts directory.
const (
	SystemPromptFile    = "system_prompt.txt"
	CharacterPromptFile = "character_creation.txt"
	StoryPromptFile     = "story_generation.txt"
	SummaryPromptFile   = "story_summary.txt"
)

// DefaultSystemPrompt frames every story-generation call.
const DefaultSystemPrompt = `You are the Game Master for a post-apocalyptic text adventure game set in a world ravaged by climate disaster.
Your role is to create an immersive, engaging narrative experience for the player.

Follow these guidelines:
1. Create vivid descriptions of the post-apocalyptic world
2. Develop interesting NPCs with distinct personalities
3. Present meaningful choices to the player
4. Maintain consistency with previous events and player choices
5. Adapt the story based on the player's character and decisions
6. Keep the tone consistent with a climate disaster setting

The world is harsh but not without hope. Resources are scarce, and survival is difficult.
Communities have formed, some cooperative, others exploitative.
Nature has been transformed - some areas are barren, others overtaken by mutated flora.

Always end your responses with 2-3 clear options for the player, or prompt them for their next action.`

// DefaultCharacterTemplate generates the character description at creation time.
const DefaultCharacterTemplate = `Based on the following information about a player character in a post-apocalyptic world after a climate disaster, create a brief character description (2-3 paragraphs).

Name: {name}
Gender: {gender}
Background: {background}
Personality Traits: {traits}

The description should include:
1. How they've survived in this harsh world
2. What skills or knowledge they have from their background
3. How their personality traits influence their approach to survival
4. A hint at what they might be seeking or hoping for in this world

Keep the tone consistent with a climate disaster setting, but allow for personal hope and motivation.`

// DefaultStoryTemplate generates each round's narrative segment.
const DefaultStoryTemplate = `Continue the post-apocalyptic adventure with the following context:

Character: {character_info}

Story Premise: {story_premise}

Current Situation: {summary}

Recent Events:
{recent_events}

NPC Relationships:
{npc_relationships}

Generate the next segment of the story (about 2-3 paragraphs) based on the player's last action: "{player_response}"

Then, present 2-3 clear options for what the player could do next, or ask them what they want to do.

Make sure your response:
1. Acknowledges and builds upon the player's choice
2. Advances the story in a meaningful way
3. Introduces interesting challenges, discoveries, or character interactions
4. Maintains consistency with the established world and previous events
5. Reflects the tone of a climate-disaster post-apocalyptic setting`

// DefaultSummaryTemplate regenerates the running story summary each round.
const DefaultSummaryTemplate = `Summarize the story so far, incorporating the recent events. Create a cohesive narrative that captures the key elements of the story.

Story Premise:
{story_premise}

Character Description:
{character_description}

Current Summary:
{current_summary}

Recent Events:
{recent_events}

NPC Relationships:
{npc_relationships}

Latest Player Action:
{player_action}

Create a comprehensive summary of the story so far:`

// DefaultPremiseTemplate generates the story premise from the character
// description once at game start.
const DefaultPremiseTemplate = `Create the premise for a post-apocalyptic survival story, set in a world ravaged by climate disaster, starring the following character:

{character_info}

Describe the world they wake into, the immediate stakes, and a thread of hope worth pursuing. Keep it to 2-3 paragraphs.`

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// Render substitutes {placeholder} tokens in the template with values from
// vars. Every placeholder in the template must have a value; a placeholder
// without one fails the whole render. Substitution is a single pass over the
// template, so brace tokens inside substituted values are passed through as
// literal text rather than re-interpreted.
func Render(template string, vars map[string]string) (string, error) {
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if _, ok := vars[m[1]]; !ok {
			return "", fmt.Errorf("template placeholder %s has no substitution", m[0])
		}
	}
	rendered := placeholderPattern.ReplaceAllStringFunc(template, func(m string) string {
		return vars[strings.Trim(m, "{}")]
	})
	return rendered, nil
}

// Load reads a template file, falling back to the built-in default when the
// file does not exist. Any other read error is returned.
func Load(path string, fallback string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fallback, nil
		}
		return "", fmt.Errorf("read template %s: %w", path, err)
	}
	return string(data), nil
}

// EnsureDefaults writes the built-in templates into dir for any template file
// that does not already exist, so operators have editable copies on disk.
func EnsureDefaults(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prompts dir: %w", err)
	}
	defaults := map[string]string{
		SystemPromptFile:    DefaultSystemPrompt,
		CharacterPromptFile: DefaultCharacterTemplate,
		StoryPromptFile:     DefaultStoryTemplate,
		SummaryPromptFile:   DefaultSummaryTemplate,
	}
	for name, content := range defaults {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("stat template %s: %w", path, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write template %s: %w", path, err)
		}
	}
	return nil
}
