package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const deepSeekBaseURL = "https://api.deepseek.com/v1"

type chatMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// deepSeekClient forwards a conversation plus diagnosis context to the
// DeepSeek chat-completions API (OpenAI wire format). One attempt per
// call; no retry.
type deepSeekClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func newDeepSeekClient(apiKey string) *deepSeekClient {
	return &deepSeekClient{
		apiKey:  apiKey,
		baseURL: deepSeekBaseURL,
		model:   "deepseek-chat",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (d *deepSeekClient) Complete(ctx context.Context, messages []chatMessage, diag *DiagnosisResult) (string, error) {
	type providerMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	payload := make([]providerMessage, 0, len(messages)+1)
	payload = append(payload, providerMessage{Role: "system", Content: expertSystemPrompt(diag)})
	for _, m := range messages {
		payload = append(payload, providerMessage{Role: m.Role, Content: m.Content})
	}

	body := map[string]interface{}{
		"model":       d.model,
		"messages":    payload,
		"temperature": 0.7,
		"max_tokens":  1000,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", errSynthesis, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errSynthesis, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errSynthesis, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", errSynthesis, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: provider error (status %d): %s", errSynthesis, resp.StatusCode, string(respBytes))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &completion); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", errSynthesis, err)
	}
	if completion.Error.Message != "" {
		return "", fmt.Errorf("%w: provider error: %s", errSynthesis, completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion from provider", errSynthesis)
	}
	return completion.Choices[0].Message.Content, nil
}

func expertSystemPrompt(diag *DiagnosisResult) string {
	analysis := "null"
	if diag != nil {
		if b, err := json.Marshal(diag); err == nil {
			analysis = string(b)
		}
	}
	return fmt.Sprintf(`You are an expert plant disease assistant. Here is the current plant analysis: %s.
Based on this analysis, provide detailed information about:
1. The identified disease and its symptoms
2. Prevention methods specific to this disease
3. Treatment options, both chemical and biological
4. Long-term care recommendations

Keep your responses focused on practical advice that a plant owner can implement. Be specific, and say so when you are not certain.`, analysis)
}
