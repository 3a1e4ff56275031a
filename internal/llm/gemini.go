// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// Gemini generation settings. Temperature is pinned low: answers must stay
// close to cited sources rather than improvise.
const (
	defaultModel       = "gemini-3-pro-preview"
	defaultTemperature = 0.1
)

// GeminiClient is the Streamer backed by the Google GenAI SDK.
// It owns a lazily created chat handle that carries the remote
// conversation context between turns.
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
	system      string

	mu   sync.Mutex
	chat *genai.Chat

	// Client-side limiter; the API has its own quota but a runaway resend
	// loop should be stopped before it leaves the process.
	limiter *rate.Limiter
}

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	APIKey            string
	Model             string  // default: gemini-3-pro-preview
	Temperature       float64 // default: 0.1
	System            string  // system instruction, sent once per handle
	RequestsPerSecond float64 // outbound rate cap, default: 2
}

// NewGeminiClient creates the Gemini collaborator. A missing API key is a
// configuration error: fatal here, never retried.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		system:      cfg.System,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 2),
	}, nil
}

// SendStreaming implements Streamer. Fragments are delivered in production
// order; an SDK error aborts the sequence.
func (g *GeminiClient) SendStreaming(ctx context.Context, parts []Part, fn StreamCallback) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	chat, err := g.handle(ctx)
	if err != nil {
		return err
	}

	sdkParts := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.IsMedia() {
			sdkParts = append(sdkParts, genai.Part{
				InlineData: &genai.Blob{Data: p.Data, MIMEType: p.MIMEType},
			})
			continue
		}
		sdkParts = append(sdkParts, genai.Part{Text: p.Text})
	}

	for resp, err := range chat.SendMessageStream(ctx, sdkParts...) {
		if err != nil {
			return fmt.Errorf("gemini stream: %w", err)
		}
		text := resp.Text()
		if text == "" {
			continue
		}
		if err := fn(text); err != nil {
			return err
		}
	}

	return nil
}

// Reset implements Streamer: the handle is dropped and the next send
// creates a fresh one, resetting the remote conversation context.
func (g *GeminiClient) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.chat = nil
}

// handle returns the current chat handle, creating it if needed.
func (g *GeminiClient) handle(ctx context.Context) (*genai.Chat, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.chat != nil {
		return g.chat, nil
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	}
	if g.system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(g.system, genai.RoleUser)
	}

	chat, err := g.client.Chats.Create(ctx, g.model, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat handle: %w", err)
	}

	g.chat = chat
	return chat, nil
}
