// Package openai реализует адаптер LLM провайдера для OpenAI-совместимых API
// (OpenAI, DeepSeek, Zai).
//
// Работает только через интерфейс llm.Provider.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/ilkoid/airename/pkg/config"
	"github.com/ilkoid/airename/pkg/llm"
	"github.com/ilkoid/airename/pkg/utils"
)

// Client реализует интерфейс llm.Provider для OpenAI-совместимых API.
//
// Поддерживает:
//   - Базовую генерацию текста
//   - Vision запросы (изображения как data URI)
//   - Ограничение частоты запросов (rate_limit, запросов в минуту)
type Client struct {
	api      *openai.Client
	defaults llm.GenerateOptions
	limiter  *rate.Limiter
}

var _ llm.Provider = (*Client)(nil)

// NewClient создает OpenAI клиент на основе конфигурации модели.
//
// Все настройки из конфигурации, никакого хардкода.
func NewClient(modelDef config.ModelDef) *Client {
	cfg := openai.DefaultConfig(modelDef.APIKey)
	if modelDef.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(modelDef.BaseURL, "/")
	}
	if modelDef.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: modelDef.Timeout}
	}

	c := &Client{
		api: openai.NewClientWithConfig(cfg),
		defaults: llm.GenerateOptions{
			Model:       modelDef.ModelName,
			Temperature: modelDef.Temperature,
			MaxTokens:   modelDef.MaxTokens,
		},
	}

	// rate_limit в запросах/минуту → rate.Limit в запросах/секунду
	if modelDef.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(float64(modelDef.RateLimit)/60.0), 1)
	}

	return c
}

// Generate выполняет один запрос chat completion и возвращает ответ модели.
//
// Ошибки HTTP и транспорта приводятся к *llm.APIError, пустой ответ
// к llm.ErrEmptyResponse.
func (c *Client) Generate(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (llm.Message, error) {
	startTime := time.Now()
	params := c.defaults.Apply(opts...)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return llm.Message{}, fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	openaiMsgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		openaiMsgs[i] = mapToOpenAI(m)
	}

	req := openai.ChatCompletionRequest{
		Model:       params.Model,
		Messages:    openaiMsgs,
		MaxTokens:   params.MaxTokens,
		Temperature: float32(params.Temperature),
	}

	utils.Debug("LLM request started",
		"model", params.Model,
		"messages_count", len(messages))

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		utils.Error("LLM API request failed",
			"error", err,
			"model", params.Model,
			"duration_ms", time.Since(startTime).Milliseconds())
		return llm.Message{}, mapError(err)
	}

	if len(resp.Choices) == 0 {
		return llm.Message{}, fmt.Errorf("no choices in response: %w", llm.ErrEmptyResponse)
	}

	choice := resp.Choices[0].Message
	if strings.TrimSpace(choice.Content) == "" {
		return llm.Message{}, fmt.Errorf("blank content: %w", llm.ErrEmptyResponse)
	}

	utils.Info("LLM response received",
		"model", params.Model,
		"content_length", len(choice.Content),
		"duration_ms", time.Since(startTime).Milliseconds())

	return llm.Message{
		Role:    llm.Role(choice.Role),
		Content: choice.Content,
	}, nil
}

// mapError приводит ошибки SDK к *llm.APIError.
func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &llm.APIError{
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Err:        err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := http.StatusText(reqErr.HTTPStatusCode)
		if len(reqErr.Body) > 0 {
			msg = strings.TrimSpace(string(reqErr.Body))
		}
		return &llm.APIError{
			StatusCode: reqErr.HTTPStatusCode,
			Message:    msg,
			Err:        err,
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return &llm.APIError{Message: err.Error(), Err: err}
}

// mapToOpenAI конвертирует внутреннее сообщение в формат SDK.
// Если есть картинки, создаётся MultiContent.
func mapToOpenAI(m llm.Message) openai.ChatCompletionMessage {
	msg := openai.ChatCompletionMessage{
		Role: string(m.Role),
	}

	if len(m.Images) == 0 {
		msg.Content = m.Content
		return msg
	}

	parts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: m.Content,
		},
	}

	for _, imgURL := range m.Images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    imgURL,
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}

	msg.MultiContent = parts
	return msg
}
