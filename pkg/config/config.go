package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig — корневая структура конфигурации.
// Она зеркалит структуру config.yaml.
type AppConfig struct {
	Models          ModelsConfig    `yaml:"models"`
	Naming          NamingConfig    `yaml:"naming"`
	Limits          LimitsConfig    `yaml:"limits"`
	Session         SessionConfig   `yaml:"session"`
	History         HistoryConfig   `yaml:"history"`
	Archive         ArchiveConfig   `yaml:"archive"`
	S3              S3Config        `yaml:"s3"`
	Server          ServerConfig    `yaml:"server"`
	ImageProcessing ImageProcConfig `yaml:"image_processing"`
	App             AppSpecific     `yaml:"app"`
}

// ModelsConfig — настройки AI моделей.
type ModelsConfig struct {
	DefaultNaming string              `yaml:"default_naming"` // Алиас модели для генерации имён (например, "deepseek-chat")
	Definitions   map[string]ModelDef `yaml:"definitions"`    // Словарь определений моделей
}

// ModelDef — параметры конкретной модели.
type ModelDef struct {
	Provider    string        `yaml:"provider"`   // "deepseek", "openai", "zai"
	ModelName   string        `yaml:"model_name"` // Реальное имя в API
	APIKey      string        `yaml:"api_key"`    // Поддерживает ${VAR}
	BaseURL     string        `yaml:"base_url"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`    // "60s", "1m"; 0 — дефолт транспорта
	RateLimit   int           `yaml:"rate_limit"` // Запросов в минуту, 0 — без ограничения
}

// NamingConfig — настройки генерации имён.
type NamingConfig struct {
	MaxContentChars int    `yaml:"max_content_chars"` // Жёсткая обрезка контента в символах
	MinTitleLength  int    `yaml:"min_title_length"`
	MaxTitleLength  int    `yaml:"max_title_length"`
	Vision          bool   `yaml:"vision"`      // Прикладывать картинку к запросу
	PromptFile      string `yaml:"prompt_file"` // Относительно app.prompts_dir
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *NamingConfig) GetDefaults() NamingConfig {
	result := *c

	if result.MaxContentChars == 0 {
		result.MaxContentChars = 3000
	}
	if result.MinTitleLength == 0 {
		result.MinTitleLength = 2
	}
	if result.MaxTitleLength == 0 {
		result.MaxTitleLength = 80
	}

	return result
}

// LimitsConfig — ограничения на приём файлов.
type LimitsConfig struct {
	MaxFiles      int `yaml:"max_files"`        // Файлов в одной сессии
	MaxFileSizeMB int `yaml:"max_file_size_mb"` // МиБ на файл
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *LimitsConfig) GetDefaults() LimitsConfig {
	result := *c

	if result.MaxFiles == 0 {
		result.MaxFiles = 10
	}
	if result.MaxFileSizeMB == 0 {
		result.MaxFileSizeMB = 200
	}

	return result
}

// MaxFileSize возвращает лимит размера файла в байтах.
func (c LimitsConfig) MaxFileSize() int64 {
	return int64(c.MaxFileSizeMB) << 20
}

// SessionConfig — настройки пакетной обработки.
type SessionConfig struct {
	ItemDelay time.Duration `yaml:"item_delay"` // Пауза между файлами
	TTL       time.Duration `yaml:"ttl"`        // Время жизни сессии на сервере
	MaxActive int           `yaml:"max_active"` // Максимум сессий в кэше сервера
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *SessionConfig) GetDefaults() SessionConfig {
	result := *c

	if result.ItemDelay == 0 {
		result.ItemDelay = time.Second
	}
	if result.TTL == 0 {
		result.TTL = 2 * time.Hour
	}
	if result.MaxActive == 0 {
		result.MaxActive = 128
	}

	return result
}

// HistoryConfig — настройки хранилища истории.
type HistoryConfig struct {
	Backend      string `yaml:"backend"` // memory | sqlite | s3
	Key          string `yaml:"key"`
	MaxBatches   int    `yaml:"max_batches"`
	WindowHours  int    `yaml:"window_hours"` // Окно просмотра по умолчанию
	SQLitePath   string `yaml:"sqlite_path"`
	S3Prefix     string `yaml:"s3_prefix"`
	ExportPrefix string `yaml:"export_prefix"`
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *HistoryConfig) GetDefaults() HistoryConfig {
	result := *c

	if result.Backend == "" {
		result.Backend = "sqlite"
	}
	if result.Key == "" {
		result.Key = "intellirename_history"
	}
	if result.MaxBatches == 0 {
		result.MaxBatches = 50
	}
	if result.WindowHours == 0 {
		result.WindowHours = 24
	}
	if result.SQLitePath == "" {
		result.SQLitePath = "airename.db"
	}
	if result.S3Prefix == "" {
		result.S3Prefix = "history/"
	}
	if result.ExportPrefix == "" {
		result.ExportPrefix = "irAiRename_history_"
	}

	return result
}

// Window возвращает окно просмотра истории.
func (c HistoryConfig) Window() time.Duration {
	return time.Duration(c.WindowHours) * time.Hour
}

// ArchiveConfig — настройки выгрузки архива.
type ArchiveConfig struct {
	Prefix    string `yaml:"prefix"`
	OutputDir string `yaml:"output_dir"`
	PublishS3 bool   `yaml:"publish_s3"`
	S3Prefix  string `yaml:"s3_prefix"`
	Location  string `yaml:"location"` // Часовой пояс для имени архива и метаданных
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *ArchiveConfig) GetDefaults() ArchiveConfig {
	result := *c

	if result.Prefix == "" {
		result.Prefix = "irAiRename"
	}
	if result.OutputDir == "" {
		result.OutputDir = "."
	}
	if result.S3Prefix == "" {
		result.S3Prefix = "archives/"
	}
	if result.Location == "" {
		result.Location = "Local"
	}

	return result
}

// S3Config — настройки объектного хранилища.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"` // Поддерживает ${VAR}
	SecretKey string `yaml:"secret_key"` // Поддерживает ${VAR}
	UseSSL    bool   `yaml:"use_ssl"`
}

// Enabled сообщает, настроено ли хранилище.
func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// ServerConfig — настройки HTTP API.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *ServerConfig) GetDefaults() ServerConfig {
	result := *c

	if result.Addr == "" {
		result.Addr = ":8000"
	}
	if result.ReadTimeout == 0 {
		result.ReadTimeout = 5 * time.Minute
	}
	if result.WriteTimeout == 0 {
		result.WriteTimeout = 10 * time.Minute
	}
	if result.ShutdownTimeout == 0 {
		result.ShutdownTimeout = 15 * time.Second
	}

	return result
}

// ImageProcConfig — настройки обработки изображений.
type ImageProcConfig struct {
	MaxWidth int `yaml:"max_width"`
	Quality  int `yaml:"quality"`
}

// AppSpecific — общие настройки приложения.
type AppSpecific struct {
	Debug      bool   `yaml:"debug"`
	PromptsDir string `yaml:"prompts_dir"`
	LogDir     string `yaml:"log_dir"`
}

// Default возвращает конфигурацию без файла: одна модель deepseek-chat,
// ключ берётся из окружения.
func Default() *AppConfig {
	cfg := &AppConfig{
		Models: ModelsConfig{
			DefaultNaming: "deepseek-chat",
			Definitions: map[string]ModelDef{
				"deepseek-chat": {
					Provider:    "deepseek",
					ModelName:   "deepseek-chat",
					BaseURL:     "https://api.deepseek.com",
					MaxTokens:   2000,
					Temperature: 0.7,
				},
			},
		},
		History: HistoryConfig{Backend: "memory"},
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую структуру.
func Load(path string) (*AppConfig, error) {
	// 1. Проверяем существование файла
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	// 2. Читаем файл целиком
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(rawBytes)
}

// Parse разбирает YAML из памяти. ${VAR} заменяются значениями окружения.
func Parse(rawBytes []byte) (*AppConfig, error) {
	contentWithEnv := os.ExpandEnv(string(rawBytes))

	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	c.Naming = c.Naming.GetDefaults()
	c.Limits = c.Limits.GetDefaults()
	c.Session = c.Session.GetDefaults()
	c.History = c.History.GetDefaults()
	c.Archive = c.Archive.GetDefaults()
	c.Server = c.Server.GetDefaults()

	if c.ImageProcessing.MaxWidth == 0 {
		c.ImageProcessing.MaxWidth = 800
	}
	if c.ImageProcessing.Quality == 0 {
		c.ImageProcessing.Quality = 85
	}
	if c.App.LogDir == "" {
		c.App.LogDir = "."
	}
	if c.App.PromptsDir == "" {
		c.App.PromptsDir = "prompts"
	}
}

// applyEnv применяет переопределения из окружения. Читается один раз при старте.
func (c *AppConfig) applyEnv() {
	name := c.Models.DefaultNaming
	if def, ok := c.Models.Definitions[name]; ok {
		if key := os.Getenv("AIRENAME_API_KEY"); key != "" {
			def.APIKey = key
		}
		if url := os.Getenv("AIRENAME_BASE_URL"); url != "" {
			def.BaseURL = url
		}
		c.Models.Definitions[name] = def
	}

	if raw := os.Getenv("AIRENAME_MAX_FILES"); raw != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n > 0 {
			c.Limits.MaxFiles = n
		}
	}
}

// validate проверяет обязательные поля.
func (c *AppConfig) validate() error {
	if c.Models.DefaultNaming == "" {
		return fmt.Errorf("models.default_naming is required")
	}
	if _, ok := c.Models.Definitions[c.Models.DefaultNaming]; !ok {
		return fmt.Errorf("default_naming model '%s' is not defined in definitions", c.Models.DefaultNaming)
	}

	switch c.History.Backend {
	case "memory", "sqlite":
	case "s3":
		if !c.S3.Enabled() {
			return fmt.Errorf("history.backend=s3 requires s3.endpoint and s3.bucket")
		}
	default:
		return fmt.Errorf("unknown history.backend: %s", c.History.Backend)
	}

	if c.Archive.PublishS3 && !c.S3.Enabled() {
		return fmt.Errorf("archive.publish_s3 requires s3.endpoint and s3.bucket")
	}
	if _, err := c.Archive.LoadLocation(); err != nil {
		return fmt.Errorf("archive.location: %w", err)
	}

	return nil
}

// LoadLocation возвращает часовой пояс для форматирования времени.
func (c ArchiveConfig) LoadLocation() (*time.Location, error) {
	if c.Location == "" || c.Location == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Location)
}

// GetNamingModel возвращает конфигурацию модели по умолчанию или по имени.
func (c *AppConfig) GetNamingModel(name string) (ModelDef, bool) {
	if name == "" {
		name = c.Models.DefaultNaming
	}
	m, ok := c.Models.Definitions[name]
	return m, ok
}
