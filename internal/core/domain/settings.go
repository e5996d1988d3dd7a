package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderHugot runs a sentence-transformers model in-process.
	AIProviderHugot AIProvider = "hugot"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGroq is the Groq cloud API (OpenAI compatible).
	AIProviderGroq AIProvider = "groq"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderHugot, AIProviderOllama, AIProviderOpenAI, AIProviderGroq, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderGroq || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHugot
}

// SupportsEmbeddings returns true if the provider can produce embeddings.
func (p AIProvider) SupportsEmbeddings() bool {
	for _, e := range AllEmbeddingProviders() {
		if e == p {
			return true
		}
	}
	return false
}

// SupportsLLM returns true if the provider can generate text.
func (p AIProvider) SupportsLLM() bool {
	for _, l := range AllLLMProviders() {
		if l == p {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderHugot:
		return "Hugot (in-process)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderGroq:
		return "Groq (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// VectorBackend identifies where the vector collection is stored.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendSQLite stores vectors in a local SQLite file.
	VectorBackendSQLite VectorBackend = "sqlite"

	// VectorBackendPgvector stores vectors in PostgreSQL with the pgvector extension.
	VectorBackendPgvector VectorBackend = "pgvector"

	// VectorBackendMemory keeps vectors in process memory only.
	VectorBackendMemory VectorBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendSQLite, VectorBackendPgvector, VectorBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b VectorBackend) Description() string {
	switch b {
	case VectorBackendSQLite:
		return "SQLite (local file)"
	case VectorBackendPgvector:
		return "PostgreSQL + pgvector"
	case VectorBackendMemory:
		return "In-memory (not persisted)"
	default:
		return unknownDescription
	}
}

// DataSettings locates the source datasets.
type DataSettings struct {
	// Dir is the directory holding the CSV exports.
	Dir string

	// NutritionFile is the nutrition indicators file name within Dir.
	NutritionFile string

	// SurveyFile is the survey catalogue file name within Dir.
	SurveyFile string
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// ModelDir is where local models are downloaded (for Hugot).
	ModelDir string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible APIs).
	BaseURL string

	// APIKey is the API key (for Groq/OpenAI/Anthropic).
	APIKey string

	// Temperature controls randomness of answers.
	Temperature float64

	// MaxTokens caps the length of a generated answer.
	MaxTokens int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.SupportsLLM() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// IndexSettings configures the vector collection.
type IndexSettings struct {
	// Backend selects the vector store implementation.
	Backend VectorBackend

	// Path is the directory for file-based backends.
	Path string

	// Collection names the vector collection.
	Collection string

	// DSN is the PostgreSQL connection string (for pgvector).
	DSN string

	// BatchSize is how many documents are embedded and written per batch.
	BatchSize int
}

// ChatSettings configures the answer composer.
type ChatSettings struct {
	// MaxContextDocs is the default number of documents retrieved per question.
	MaxContextDocs int

	// MaxDistance drops retrieved documents farther than this cosine distance.
	// Zero disables the cutoff.
	MaxDistance float64
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	// Port is the TCP port to listen on.
	Port int

	// AllowedOrigins lists CORS origins. A leading "*." matches any subdomain.
	AllowedOrigins []string

	// RateLimit is the sustained number of /chat requests per second. Zero disables limiting.
	RateLimit float64

	// RateBurst is the maximum burst of /chat requests.
	RateBurst int

	// RequestTimeout bounds the time spent serving one request.
	RequestTimeout time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	Data      DataSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Index     IndexSettings
	Chat      ChatSettings
	Scope     ScopeRules
	Server    ServerSettings
}

// Default setting values.
const (
	DefaultDataDir         = "./data"
	DefaultNutritionFile   = "nutrition_indicators_rwa.csv"
	DefaultSurveyFile      = "search-10-09-25-050154.csv"
	DefaultIndexPath       = "./vectordb"
	DefaultCollection      = "nisr_rwanda_data"
	DefaultBatchSize       = 100
	MaxBatchSize           = 1000
	DefaultTemperature     = 0.1
	DefaultMaxTokens       = 500
	DefaultPort            = 8000
	DefaultRequestTimeout  = 60 * time.Second
	DefaultRateLimit       = 5.0
	DefaultRateBurst       = 10
	DefaultOllamaBaseURL   = "http://localhost:11434"
	DefaultGroqBaseURL     = "https://api.groq.com/openai/v1"
	DefaultModelDir        = "./models"
	DefaultEmbeddingModel  = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultLLMModel        = "llama-3.1-70b-versatile"
	DefaultEmbeddingVendor = AIProviderHugot
	DefaultLLMVendor       = AIProviderGroq
)

// DefaultAppSettings returns settings with sensible defaults.
// The LLM API key is left empty; it must come from the environment or config file.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Data: DataSettings{
			Dir:           DefaultDataDir,
			NutritionFile: DefaultNutritionFile,
			SurveyFile:    DefaultSurveyFile,
		},
		Embedding: EmbeddingSettings{
			Provider: DefaultEmbeddingVendor,
			Model:    DefaultEmbeddingModel,
			ModelDir: DefaultModelDir,
		},
		LLM: LLMSettings{
			Provider:    DefaultLLMVendor,
			Model:       DefaultLLMModel,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		Index: IndexSettings{
			Backend:    VectorBackendSQLite,
			Path:       DefaultIndexPath,
			Collection: DefaultCollection,
			BatchSize:  DefaultBatchSize,
		},
		Chat: ChatSettings{
			MaxContextDocs: DefaultContextDocs,
		},
		Scope: DefaultScopeRules(),
		Server: ServerSettings{
			Port:           DefaultPort,
			AllowedOrigins: []string{"http://localhost:3000", "https://*.vercel.app"},
			RateLimit:      DefaultRateLimit,
			RateBurst:      DefaultRateBurst,
			RequestTimeout: DefaultRequestTimeout,
		},
	}
}

// Validate checks settings needed to construct the full service.
// Every failure wraps ErrConfig.
func (s AppSettings) Validate() error {
	if err := s.ValidateRetrieval(); err != nil {
		return err
	}
	if !s.LLM.Provider.SupportsLLM() {
		return fmt.Errorf("%w: llm provider %q does not support generation", ErrConfig, s.LLM.Provider)
	}
	if !s.LLM.IsConfigured() {
		return fmt.Errorf("%w: %s must be set for %s", ErrConfig, APIKeyEnv(s.LLM.Provider), s.LLM.Provider)
	}
	if s.LLM.Temperature < 0 || s.LLM.Temperature > 2 {
		return fmt.Errorf("%w: llm temperature %.2f out of range [0, 2]", ErrConfig, s.LLM.Temperature)
	}
	if s.LLM.MaxTokens <= 0 {
		return fmt.Errorf("%w: llm max_tokens must be positive", ErrConfig)
	}
	return nil
}

// ValidateRetrieval checks everything except the LLM, which indexing and
// raw search never touch.
func (s AppSettings) ValidateRetrieval() error {
	if !s.Embedding.Provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: embedding provider %q does not support embeddings", ErrConfig, s.Embedding.Provider)
	}
	if !s.Embedding.IsConfigured() {
		return fmt.Errorf("%w: API key required for %s embeddings", ErrConfig, s.Embedding.Provider)
	}
	if !s.Index.Backend.IsValid() {
		return fmt.Errorf("%w: unknown vector backend %q", ErrConfig, s.Index.Backend)
	}
	if s.Index.Backend == VectorBackendPgvector && s.Index.DSN == "" {
		return fmt.Errorf("%w: pgvector backend requires a DSN", ErrConfig)
	}
	if s.Index.Collection == "" {
		return fmt.Errorf("%w: collection name is empty", ErrConfig)
	}
	if s.Index.BatchSize < 1 || s.Index.BatchSize > MaxBatchSize {
		return fmt.Errorf("%w: batch size %d out of range [1, %d]", ErrConfig, s.Index.BatchSize, MaxBatchSize)
	}
	if s.Chat.MaxContextDocs < MinContextDocs || s.Chat.MaxContextDocs > MaxContextDocs {
		return fmt.Errorf("%w: max_context_docs %d out of range [%d, %d]",
			ErrConfig, s.Chat.MaxContextDocs, MinContextDocs, MaxContextDocs)
	}
	if s.Chat.MaxDistance < 0 || s.Chat.MaxDistance > 2 {
		return fmt.Errorf("%w: max_distance %.2f out of range [0, 2]", ErrConfig, s.Chat.MaxDistance)
	}
	if s.Server.Port < 1 || s.Server.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrConfig, s.Server.Port)
	}
	return nil
}

// APIKeyEnv returns the environment variable holding the provider's API key.
func APIKeyEnv(p AIProvider) string {
	switch p {
	case AIProviderGroq:
		return "GROQ_API_KEY"
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderHugot,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGroq,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// AllVectorBackends returns every supported vector backend.
func AllVectorBackends() []VectorBackend {
	return []VectorBackend{
		VectorBackendSQLite,
		VectorBackendPgvector,
		VectorBackendMemory,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderHugot:  "sentence-transformers/all-MiniLM-L6-v2",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGroq:      "llama-3.1-70b-versatile",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Local sentence-transformers models
		"sentence-transformers/all-MiniLM-L6-v2": 384,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
