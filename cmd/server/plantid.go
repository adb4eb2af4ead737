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

const plantAPIBaseURL = "https://api.plant.id/v2"

// plantClassifier calls the plant.id health-assessment API with inline
// base64 image data and returns the provider's disease predictions.
type plantClassifier struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func newPlantClassifier(apiKey string) *plantClassifier {
	return &plantClassifier{
		apiKey:  apiKey,
		baseURL: plantAPIBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *plantClassifier) Classify(ctx context.Context, imageData string) ([]rawPrediction, error) {
	body := map[string]interface{}{
		"images":          []string{imageData},
		"modifiers":       []string{"similar_images"},
		"disease_details": []string{"description", "treatment"},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", errClassification, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/health_assessment", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errClassification, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errClassification, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", errClassification, err)
	}

	if resp.StatusCode != http.StatusOK {
		// Error bodies carry a message field when they are JSON at all.
		var provider struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(respBytes, &provider) == nil && provider.Message != "" {
			return nil, fmt.Errorf("%w: provider error (status %d): %s", errClassification, resp.StatusCode, provider.Message)
		}
		return nil, fmt.Errorf("%w: provider error (status %d): %s", errClassification, resp.StatusCode, string(respBytes))
	}

	// Known envelopes: plant.id nests predictions under
	// health_assessment.diseases; other providers return a flat
	// predictions array. Both resolve here, once.
	var envelope struct {
		HealthAssessment struct {
			Diseases []rawPrediction `json:"diseases"`
		} `json:"health_assessment"`
		Predictions []rawPrediction `json:"predictions"`
	}
	if err := json.Unmarshal(respBytes, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", errClassification, err)
	}

	switch {
	case envelope.HealthAssessment.Diseases != nil:
		return envelope.HealthAssessment.Diseases, nil
	case envelope.Predictions != nil:
		return envelope.Predictions, nil
	default:
		return nil, fmt.Errorf("%w: no prediction array in provider response", errClassification)
	}
}
