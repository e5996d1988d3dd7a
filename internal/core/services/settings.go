package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driven"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir          = "data.dir"
	keyNutritionFile    = "data.nutrition_file"
	keySurveyFile       = "data.survey_file"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedModelDir    = "embedding.model_dir"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMTemperature   = "llm.temperature"
	keyLLMMaxTokens     = "llm.max_tokens"
	keyIndexBackend     = "index.backend"
	keyIndexPath        = "index.path"
	keyIndexCollection  = "index.collection"
	keyIndexDSN         = "index.dsn"
	keyIndexBatchSize   = "index.batch_size"
	keyChatContextDocs  = "chat.max_context_docs"
	keyChatMaxDistance  = "chat.max_distance"
	keyScopeDomain      = "scope.domain_terms"
	keyScopeForeign     = "scope.foreign_terms"
	keyScopeGeneral     = "scope.general_topics"
	keyServerPort       = "server.port"
	keyServerOrigins    = "server.allowed_origins"
	keyServerRateLimit  = "server.rate_limit"
	keyServerRateBurst  = "server.rate_burst"
	keyServerReqTimeout = "server.request_timeout"
)

// envOverrides maps environment variables onto config keys.
// The environment wins over the config file.
var envOverrides = []struct {
	env string
	key string
}{
	{"UBUZIMA_DATA_DIR", keyDataDir},
	{"UBUZIMA_EMBEDDING_PROVIDER", keyEmbedProvider},
	{"UBUZIMA_EMBEDDING_MODEL", keyEmbedModel},
	{"UBUZIMA_LLM_PROVIDER", keyLLMProvider},
	{"UBUZIMA_LLM_MODEL", keyLLMModel},
	{"UBUZIMA_VECTOR_BACKEND", keyIndexBackend},
	{"UBUZIMA_DB_PATH", keyIndexPath},
	{"UBUZIMA_PG_DSN", keyIndexDSN},
	{"PORT", keyServerPort},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// The aiValidator parameter is optional (can be nil).
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// SetEnvLookup replaces the environment lookup. Used by tests.
func (s *SettingsService) SetEnvLookup(getenv func(string) string) {
	s.getenv = getenv
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Data: domain.DataSettings{
			Dir:           s.getString(keyDataDir, d.Data.Dir),
			NutritionFile: s.getString(keyNutritionFile, d.Data.NutritionFile),
			SurveyFile:    s.getString(keySurveyFile, d.Data.SurveyFile),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			BaseURL:  s.getString(keyEmbedBaseURL, ""),
			ModelDir: s.getString(keyEmbedModelDir, d.Embedding.ModelDir),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, d.LLM.Provider),
			BaseURL:     s.getString(keyLLMBaseURL, ""),
			Temperature: s.getFloat(keyLLMTemperature, d.LLM.Temperature),
			MaxTokens:   s.getInt(keyLLMMaxTokens, d.LLM.MaxTokens),
		},
		Index: domain.IndexSettings{
			Backend:    domain.VectorBackend(s.getString(keyIndexBackend, d.Index.Backend.String())),
			Path:       s.getString(keyIndexPath, d.Index.Path),
			Collection: s.getString(keyIndexCollection, d.Index.Collection),
			DSN:        s.getString(keyIndexDSN, ""),
			BatchSize:  s.getInt(keyIndexBatchSize, d.Index.BatchSize),
		},
		Chat: domain.ChatSettings{
			MaxContextDocs: s.getInt(keyChatContextDocs, d.Chat.MaxContextDocs),
			MaxDistance:    s.getFloat(keyChatMaxDistance, d.Chat.MaxDistance),
		},
		Scope: domain.ScopeRules{
			DomainTerms:   s.getStringSlice(keyScopeDomain, d.Scope.DomainTerms),
			ForeignTerms:  s.getStringSlice(keyScopeForeign, d.Scope.ForeignTerms),
			GeneralTopics: s.getStringSlice(keyScopeGeneral, d.Scope.GeneralTopics),
		},
		Server: domain.ServerSettings{
			Port:           s.getInt(keyServerPort, d.Server.Port),
			AllowedOrigins: s.getStringSlice(keyServerOrigins, d.Server.AllowedOrigins),
			RateLimit:      s.getFloat(keyServerRateLimit, d.Server.RateLimit),
			RateBurst:      s.getInt(keyServerRateBurst, d.Server.RateBurst),
			RequestTimeout: s.getDuration(keyServerReqTimeout, d.Server.RequestTimeout),
		},
	}

	// Models default per provider, so a provider switch picks a matching model.
	settings.Embedding.Model = s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	settings.LLM.Model = s.getString(keyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])

	settings.Embedding.APIKey = s.apiKey(keyEmbedAPIKey, settings.Embedding.Provider)
	settings.LLM.APIKey = s.apiKey(keyLLMAPIKey, settings.LLM.Provider)

	if settings.LLM.Provider.IsLocal() && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = domain.DefaultOllamaBaseURL
	}
	if settings.Embedding.Provider == domain.AIProviderOllama && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = domain.DefaultOllamaBaseURL
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyDataDir, settings.Data.Dir},
		{keyNutritionFile, settings.Data.NutritionFile},
		{keySurveyFile, settings.Data.SurveyFile},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedModelDir, settings.Embedding.ModelDir},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMTemperature, settings.LLM.Temperature},
		{keyLLMMaxTokens, settings.LLM.MaxTokens},
		{keyIndexBackend, settings.Index.Backend.String()},
		{keyIndexPath, settings.Index.Path},
		{keyIndexCollection, settings.Index.Collection},
		{keyIndexDSN, settings.Index.DSN},
		{keyIndexBatchSize, settings.Index.BatchSize},
		{keyChatContextDocs, settings.Chat.MaxContextDocs},
		{keyChatMaxDistance, settings.Chat.MaxDistance},
		{keyServerPort, settings.Server.Port},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Only persist keys that were explicitly given.
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.SupportsEmbeddings() {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	if provider == domain.AIProviderOllama {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = domain.DefaultOllamaBaseURL
		}
	} else {
		settings.Embedding.BaseURL = ""
	}
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.SupportsLLM() {
		return fmt.Errorf("provider %s does not support generation", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = domain.DefaultOllamaBaseURL
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.LLM.BaseURL = ""
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that current settings can construct the service.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.
// Environment overrides are consulted first.

func (s *SettingsService) env(key string) string {
	for _, o := range envOverrides {
		if o.key == key {
			return strings.TrimSpace(s.getenv(o.env))
		}
	}
	return ""
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if v := s.env(key); v != "" {
		return v
	}
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if v := s.env(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetStringSlice(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.getString(key, "")
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(strings.ToLower(val))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

// apiKey prefers the provider's well-known environment variable.
func (s *SettingsService) apiKey(key string, provider domain.AIProvider) string {
	if env := domain.APIKeyEnv(provider); env != "" {
		if v := strings.TrimSpace(s.getenv(env)); v != "" {
			return v
		}
	}
	return s.configStore.GetString(key)
}

func modelOrDefault(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}
