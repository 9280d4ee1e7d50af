package prompts

// ============================================================================
// Tutorial Generation Prompts
// ============================================================================

// TutorialSystemPrompt defines the role and output contract for tutorial generation.
const TutorialSystemPrompt = `You write short, practical software tutorials from screen recordings.

Rules:
- Reply with a single JSON object and nothing else.
- Shape: {"title": string, "category": string, "description": string, "steps": [string, ...]}
- 6 to 10 steps. Each step is one imperative sentence under 80 characters.
- Steps are in the order a viewer performs them.
- The title is a short noun phrase, e.g. "Browser Dark Mode Setup".`

// TutorialUserPrompt is formatted with the recording's original filename.
const TutorialUserPrompt = `The screen recording is named %q.
Infer the most likely task shown in it and write the tutorial.`

// KeyCheckPrompt is sent by the API-key smoke test.
const KeyCheckPrompt = "Say 'API key is working!' in 5 words max"
