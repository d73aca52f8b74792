package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tradenavi/orchestrator/internal/adapter/llm"
)

const (
	// titleMaxRunes caps the stored title length.
	titleMaxRunes = 50
	// titleContextRunes caps how much of the AI response goes into the
	// title prompt.
	titleContextRunes = 500
	// titleFallbackRunes is the user-message prefix used when generation
	// fails.
	titleFallbackRunes = 30
)

// generateSessionTitle asks the LLM for a short session title based on
// the first exchange. Never fails: any problem falls back to a prefix of
// the user message.
func (s *Service) generateSessionTitle(ctx context.Context, userMessage, aiResponse string) string {
	temperature := 0.3
	maxTokens := 100
	resp, err := s.llmClient.CreateChatCompletion(ctx, &llm.ChatCompletionRequest{
		Model: s.config.TitleModel,
		Messages: []llm.ChatMessage{
			{Role: "user", Content: titlePrompt(userMessage, aiResponse)},
		},
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		log.Printf("WARN: session title generation failed: %v", err)
		return fallbackTitle(userMessage)
	}

	title := ""
	if len(resp.Choices) > 0 && resp.Choices[0].Message != nil {
		title = strings.TrimSpace(resp.Choices[0].Message.Content)
	}
	if title == "" {
		return fallbackTitle(userMessage)
	}

	title = strings.Trim(title, `"`)
	title = strings.Trim(title, `'`)

	if runes := []rune(title); len(runes) > titleMaxRunes {
		title = string(runes[:titleMaxRunes-3]) + "..."
	}
	return title
}

func titlePrompt(userMessage, aiResponse string) string {
	excerpt := aiResponse
	if runes := []rune(aiResponse); len(runes) > titleContextRunes {
		excerpt = string(runes[:titleContextRunes])
	}
	return fmt.Sprintf(`다음 대화를 기반으로 짧고 명확한 세션 제목을 생성해주세요.

사용자 질문: %s
AI 응답: %s...

요구사항:
1. 한국어로 작성
2. 최대 50자 이내
3. 대화의 핵심 주제를 포함
4. 명사형으로 종결
5. 특수문자나 이모지 사용 금지

예시:
- "HSCode 8471.30 관련 관세율 문의"
- "미국 수출 규제 현황 질문"
- "중국 무역 정책 변화 논의"

제목만 응답하세요:`, userMessage, excerpt)
}

// fallbackTitle is the user-message prefix used whenever title
// generation cannot produce anything usable.
func fallbackTitle(userMessage string) string {
	runes := []rune(userMessage)
	if len(runes) <= titleFallbackRunes {
		return strings.TrimSpace(userMessage)
	}
	return strings.TrimSpace(string(runes[:titleFallbackRunes])) + "..."
}
