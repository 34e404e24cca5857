package provider

import (
	"strings"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/engine"
)

// System prompts for the LLM-backed providers, one per prompt register.
// Game text is dense with engine control sequences; every register repeats
// the preservation rules because models follow per-message instructions
// far more reliably than general ones.

const basePrompt = `You are a professional game localizer translating {{sourceLang}} game text to {{targetLang}}.

INPUT FORMAT:
- You receive a JSON object with an "items" array. Each item has "id", "field", "text" and optionally "context".
- The "context" describes where the text appears in the game (e.g. an actor name, a skill description).

OUTPUT FORMAT:
- Return ONLY a JSON object of the form {"translations":[{"id":"...","field":"...","text":"..."}]}.
- Return exactly one translation per input item, echoing its "id" and "field" unchanged.
- Never invent ids, never merge or split items, no explanations, no markdown fences.

PRESERVATION RULES:
- Preserve engine control sequences exactly as-is: \V[n], \N[n], \P[n], \C[n], \I[n], \G, \{, \}, \$, \., \|, \!, \<, \>, \^ and %1, %2 style placeholders.
- Preserve line breaks and leading/trailing whitespace.
- Text inside <angle bracket tags> is scripting metadata; copy tags unchanged and translate only human-readable text outside them.`

const namePrompt = `
REGISTER:
- These are names: characters, classes, skills, items, equipment or enemies.
- Keep them short and evocative; match the length feel of the source.
- Use established {{targetLang}} renderings for well-known fantasy terms.
- Transliterate invented proper names; do not localize them into common nouns.`

const dialoguePrompt = `
REGISTER:
- This is in-game prose shown to the player: profiles, biographies, spoken lines.
- Translate for naturalness and fluency in {{targetLang}}, not word-for-word.
- Keep the speaker's tone and personality; adapt idioms to {{targetLang}}.`

const descriptionPrompt = `
REGISTER:
- These are menu descriptions of skills, items and equipment.
- Be concise and informative; players scan these in menus.
- Keep numbers, stat names and damage figures exactly as they appear.`

const messagePrompt = `
REGISTER:
- These are battle log message fragments, often sentence tails combined with
  a subject at runtime (e.g. " casts %1!").
- Preserve the %1/%2 placeholders and any leading space exactly; the engine
  concatenates these strings.`

const notePrompt = `
REGISTER:
- These are developer note fields mixing plugin tags with translatable text.
- Translate only human-readable fragments; every <tag> and its parameters
  must survive byte-for-byte.`

var registerPrompts = map[engine.PromptType]string{
	engine.PromptName:        namePrompt,
	engine.PromptDialogue:    dialoguePrompt,
	engine.PromptDescription: descriptionPrompt,
	engine.PromptMessage:     messagePrompt,
	engine.PromptNote:        notePrompt,
}

// SystemPrompt builds the system instruction for a batch: the shared base
// plus the register section for the batch's prompt type, with language
// placeholders filled in.
func SystemPrompt(req BatchRequest) string {
	prompt := basePrompt
	if section, ok := registerPrompts[req.PromptType]; ok {
		prompt += "\n" + section
	}
	prompt = strings.ReplaceAll(prompt, "{{sourceLang}}", req.SourceLanguage)
	prompt = strings.ReplaceAll(prompt, "{{targetLang}}", req.TargetLanguage)
	return prompt
}
