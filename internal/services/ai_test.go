package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAIService(t *testing.T, content string, status int) *AIService {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, openai.GPT4o, req.Model)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error": {"message": "rate limited", "type": "requests"}}`))
			return
		}
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:     "chatcmpl-test",
			Object: "chat.completion",
			Model:  openai.GPT4o,
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: content,
				},
				FinishReason: openai.FinishReasonStop,
			}},
		})
	}))
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	return NewAIServiceWithConfig(cfg)
}

func TestAIService_GenerateTasksFromText(t *testing.T) {
	content := "```json\n[{\"title\": \"Позвонить маме\", \"description\": \"\", \"priority\": \"высокий\", \"deadline\": \"2030-01-02T18:00:00Z\"}]\n```"
	svc := newTestAIService(t, content, http.StatusOK)

	tasks, err := svc.GenerateTasksFromText(context.Background(), "завтра позвонить маме")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Позвонить маме", tasks[0].Title)
	assert.Equal(t, "высокий", tasks[0].Priority)
	require.NotNil(t, tasks[0].Deadline)
	assert.Equal(t, 2030, tasks[0].Deadline.Year())
}

func TestAIService_Errors(t *testing.T) {
	_, err := newTestAIService(t, "not json", http.StatusOK).GenerateTasksFromText(context.Background(), "x")
	assert.ErrorContains(t, err, "failed to parse AI response")

	_, err = newTestAIService(t, "", http.StatusTooManyRequests).GenerateTasksFromText(context.Background(), "x")
	assert.ErrorContains(t, err, "OpenAI API error")
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, "[]", stripCodeFence("```json\n[]\n```"))
	assert.Equal(t, "[]", stripCodeFence("  []  "))
}
