package ai

import "context"

// TextGenerator generates text from a system prompt and user prompt.
// Any chat-completion provider (DeepSeek, OpenRouter, self-hosted vLLM)
// implements this interface.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
