// Package naming получает от LLM описательное имя файла по его содержимому.
//
// Цепочка: обрезка контента → промпт → один chat completion →
// трёхступенчатый разбор ответа → очистка имени → fallback на исходное имя.
package naming

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilkoid/airename/pkg/config"
	"github.com/ilkoid/airename/pkg/factory"
	"github.com/ilkoid/airename/pkg/llm"
	"github.com/ilkoid/airename/pkg/prompt"
	"github.com/ilkoid/airename/pkg/utils"
)

// Suggestion — результат именования одного файла.
type Suggestion struct {
	Name    string // Очищенное имя без расширения
	Summary string // Краткое описание, если модель его вернула
	Tier    Tier   // Каким способом разобран ответ
	Raw     string // Исходный ответ модели
}

// Client — клиент модели именования.
type Client struct {
	provider llm.Provider
	model    config.ModelDef
	cfg      config.NamingConfig
	prompt   *prompt.PromptFile
}

// ClientOption настраивает Client.
type ClientOption func(*Client)

// WithPrompt заменяет встроенный промпт.
func WithPrompt(pf *prompt.PromptFile) ClientOption {
	return func(c *Client) {
		if pf != nil {
			c.prompt = pf
		}
	}
}

// New создаёт клиент поверх готового провайдера.
func New(provider llm.Provider, model config.ModelDef, cfg config.NamingConfig, opts ...ClientOption) *Client {
	c := &Client{
		provider: provider,
		model:    model,
		cfg:      cfg.GetDefaults(),
		prompt:   DefaultPrompt(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig собирает клиент по конфигурации приложения:
// модель naming по умолчанию, промпт из app.prompts_dir.
func NewFromConfig(cfg *config.AppConfig) (*Client, error) {
	model, ok := cfg.GetNamingModel("")
	if !ok {
		return nil, fmt.Errorf("naming model %q is not defined", cfg.Models.DefaultNaming)
	}

	provider, err := factory.NewLLMProvider(model)
	if err != nil {
		return nil, err
	}

	pf := LoadPrompt(cfg.App.PromptsDir, cfg.Naming.PromptFile)
	return New(provider, model, cfg.Naming, WithPrompt(pf)), nil
}

// SuggestOption — параметры одного запроса.
type SuggestOption func(*suggestOptions)

type suggestOptions struct {
	images   []string
	category string
}

// WithImage прикладывает изображение (data URI) для vision-модели.
func WithImage(dataURI string) SuggestOption {
	return func(o *suggestOptions) {
		if dataURI != "" {
			o.images = append(o.images, dataURI)
		}
	}
}

// WithCategory передаёт модели подсказку о типе документа.
func WithCategory(category string) SuggestOption {
	return func(o *suggestOptions) {
		o.category = category
	}
}

// Configured проверяет, что ключ и адрес заданы.
// Ключ-заглушка вида "your_..._here" считается незаданным.
func (c *Client) Configured() error {
	key := strings.TrimSpace(c.model.APIKey)
	if key == "" || strings.HasPrefix(strings.ToLower(key), "your_") {
		return &ConfigurationError{Field: "api_key"}
	}
	if strings.TrimSpace(c.model.BaseURL) == "" {
		return &ConfigurationError{Field: "base_url"}
	}
	return nil
}

// Suggest возвращает очищенное имя файла без расширения.
func (c *Client) Suggest(ctx context.Context, content, originalName string, opts ...SuggestOption) (string, error) {
	s, err := c.Describe(ctx, content, originalName, opts...)
	if err != nil {
		return "", err
	}
	return s.Name, nil
}

// Describe выполняет запрос и возвращает имя вместе с кратким описанием.
//
// Ошибки: *ConfigurationError (ключ/адрес не заданы), *UpstreamError
// (не-2xx, транспорт, пустой ответ). Непригодный ответ модели ошибкой
// не считается: имя откатывается к исходному без расширения.
func (c *Client) Describe(ctx context.Context, content, originalName string, opts ...SuggestOption) (Suggestion, error) {
	if err := c.Configured(); err != nil {
		requestsTotal.WithLabelValues(outcomeConfig).Inc()
		return Suggestion{}, err
	}

	var so suggestOptions
	for _, opt := range opts {
		opt(&so)
	}

	messages, genOpts, err := c.buildRequest(content, originalName, so)
	if err != nil {
		return Suggestion{}, err
	}

	start := time.Now()
	resp, err := c.provider.Generate(ctx, messages, genOpts...)
	requestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		uerr := toUpstreamError(err)
		if errors.Is(uerr, ErrInvalidCredentials) {
			requestsTotal.WithLabelValues(outcomeUnauthorized).Inc()
		} else {
			requestsTotal.WithLabelValues(outcomeUpstream).Inc()
		}
		utils.Error("Naming request failed", "file", originalName, "error", uerr)
		return Suggestion{}, uerr
	}
	requestsTotal.WithLabelValues(outcomeOK).Inc()

	title, summary, tier := ParseReply(resp.Content)
	name := Sanitize(title, c.cfg.MaxTitleLength)
	if len([]rune(name)) < c.cfg.MinTitleLength || ValidateName(name) != nil {
		utils.Warn("Unusable name in model reply, keeping original",
			"file", originalName, "tier", string(tier), "candidate", title)
		name = StripExtension(originalName)
		tier = TierFallback
	}
	parseTierTotal.WithLabelValues(string(tier)).Inc()

	utils.Info("Name suggested", "file", originalName, "name", name, "tier", string(tier))

	return Suggestion{
		Name:    name,
		Summary: strings.TrimSpace(summary),
		Tier:    tier,
		Raw:     resp.Content,
	}, nil
}

// buildRequest рендерит промпт и параметры генерации.
func (c *Client) buildRequest(content, originalName string, so suggestOptions) ([]llm.Message, []llm.GenerateOption, error) {
	data := promptData{
		OriginalName: originalName,
		Content:      utils.TruncateRunes(content, c.cfg.MaxContentChars),
		Category:     so.category,
	}

	rendered, err := c.prompt.RenderMessages(data)
	if err != nil {
		return nil, nil, fmt.Errorf("render naming prompt: %w", err)
	}

	messages := make([]llm.Message, len(rendered))
	for i, m := range rendered {
		messages[i] = llm.Message{Role: llm.Role(m.Role), Content: m.Content}
	}

	if len(so.images) > 0 {
		for i := len(messages) - 1; i >= 0; i-- {
			if messages[i].Role == llm.RoleUser {
				messages[i].Images = so.images
				break
			}
		}
	}

	var genOpts []llm.GenerateOption
	if pc := c.prompt.Config; pc.Model != "" {
		genOpts = append(genOpts, llm.WithModel(pc.Model))
	}
	if pc := c.prompt.Config; pc.MaxTokens > 0 {
		genOpts = append(genOpts, llm.WithMaxTokens(pc.MaxTokens))
	}
	if pc := c.prompt.Config; pc.Temperature > 0 {
		genOpts = append(genOpts, llm.WithTemperature(pc.Temperature))
	}

	return messages, genOpts, nil
}

// toUpstreamError приводит ошибку провайдера к *UpstreamError.
func toUpstreamError(err error) error {
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = "unknown error"
		}
		return &UpstreamError{StatusCode: apiErr.StatusCode, Message: msg, Err: err}
	}

	if errors.Is(err, llm.ErrEmptyResponse) {
		return &UpstreamError{Message: "empty completion", Err: err}
	}

	return &UpstreamError{Message: err.Error(), Err: err}
}
