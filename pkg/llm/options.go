package llm

// GenerateOptions — параметры генерации.
// Значения по умолчанию берутся из config.yaml, опции переопределяют их на вызов.
type GenerateOptions struct {
	// Model — идентификатор модели в API
	Model string

	// Temperature — степень случайности (0.0 детерминированно, 1.0 случайно)
	Temperature float64

	// MaxTokens ограничивает длину ответа
	MaxTokens int
}

// GenerateOption — функциональная опция для GenerateOptions.
type GenerateOption func(*GenerateOptions)

// WithModel переопределяет модель.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithTemperature переопределяет temperature.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithMaxTokens переопределяет лимит токенов ответа.
func WithMaxTokens(tokens int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = tokens
	}
}

// Apply применяет опции поверх базовых значений.
func (o GenerateOptions) Apply(opts ...GenerateOption) GenerateOptions {
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
