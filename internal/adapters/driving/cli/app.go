package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/custodia-labs/ubuzima/internal/adapters/driven/ai"
	"github.com/custodia-labs/ubuzima/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ubuzima/internal/adapters/driven/dataset/csvfile"
	"github.com/custodia-labs/ubuzima/internal/adapters/driven/storage"
	"github.com/custodia-labs/ubuzima/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driven"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driving"
	"github.com/custodia-labs/ubuzima/internal/core/services"
	"github.com/custodia-labs/ubuzima/internal/logger"
)

// appLevel is how much of the pipeline a command needs.
type appLevel int

const (
	// levelRetrieval wires datasets, embeddings and the vector store.
	levelRetrieval appLevel = iota

	// levelAnswers also wires the LLM and the answer composer.
	levelAnswers
)

// datasetWatcher reports changes to the source files.
type datasetWatcher interface {
	Watch(ctx context.Context, debounce time.Duration, onChange func()) error
}

// app holds the services built for one process.
type app struct {
	level    appLevel
	settings *domain.AppSettings
	dataset  driving.DatasetService
	index    driving.IndexService
	chat     driving.ChatService
	watcher  datasetWatcher
	closers  []func() error
}

// Close releases every adapter in reverse order of creation.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

var (
	// settingsService is created on first use from --config.
	settingsService driving.SettingsService

	// appFactory builds the app; tests replace it.
	appFactory = newApp

	current *app
)

// loadSettingsService returns the settings service, opening the config file on first use.
// With --no-config settings come from defaults and the environment, and saves are discarded.
func loadSettingsService() (driving.SettingsService, error) {
	if settingsService != nil {
		return settingsService, nil
	}

	var store driven.ConfigStore
	switch {
	case noConfig:
		store = memory.NewConfigStore()
	case cfgFile != "":
		fs, err := file.NewConfigStoreFromFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("opening config: %w", err)
		}
		store = fs
	default:
		fs, err := file.NewConfigStore("")
		if err != nil {
			return nil, fmt.Errorf("opening config: %w", err)
		}
		store = fs
	}

	settingsService = services.NewSettingsService(store, ai.NewConfigValidator())
	return settingsService, nil
}

// loadApp returns the shared app, building it on first use.
func loadApp(ctx context.Context, level appLevel) (*app, error) {
	if current != nil && current.level >= level {
		return current, nil
	}

	svc, err := loadSettingsService()
	if err != nil {
		return nil, err
	}
	settings, err := svc.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	a, err := appFactory(ctx, settings, level)
	if err != nil {
		return nil, err
	}
	closeApp()
	current = a
	return a, nil
}

// closeApp releases the shared app, if any.
func closeApp() {
	if current == nil {
		return
	}
	if err := current.Close(); err != nil {
		logger.Warn("closing services: %v", err)
	}
	current = nil
}

// newApp wires adapters into services for the given level.
func newApp(ctx context.Context, settings *domain.AppSettings, level appLevel) (*app, error) {
	validate := settings.ValidateRetrieval
	if level >= levelAnswers {
		validate = settings.Validate
	}
	if err := validate(); err != nil {
		return nil, err
	}

	a := &app{level: level, settings: settings}

	reader := csvfile.NewReader(settings.Data.Dir, settings.Data.NutritionFile, settings.Data.SurveyFile)
	a.watcher = reader
	a.dataset = services.NewDatasetService(reader, services.NewDocumentBuilder())

	logger.Info("Embedding with %s (%s)", settings.Embedding.Provider, settings.Embedding.Model)
	embedder, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	a.closers = append(a.closers, embedder.Close)

	logger.Info("Opening %s vector store", settings.Index.Backend)
	store, err := storage.OpenVectorStore(ctx, settings.Index)
	if err != nil {
		a.Close() //nolint:errcheck // already failing
		return nil, err
	}
	a.closers = append(a.closers, store.Close)

	index := services.NewIndexService(store, embedder, settings.Index.BatchSize)
	index.SetMaxDistance(settings.Chat.MaxDistance)
	a.index = index

	if level < levelAnswers {
		return a, nil
	}

	logger.Info("Generating with %s (%s)", settings.LLM.Provider, settings.LLM.Model)
	llm, err := ai.CreateLLMService(&settings.LLM)
	if err != nil {
		a.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	a.closers = append(a.closers, llm.Close)

	chat := services.NewChatService(services.NewScopeFilter(settings.Scope), index, llm, services.ChatConfig{
		DefaultContextDocs: settings.Chat.MaxContextDocs,
		Temperature:        settings.LLM.Temperature,
		MaxTokens:          settings.LLM.MaxTokens,
	})
	if prompts, err := file.NewPromptStore(promptDir()); err != nil {
		logger.Warn("Using built-in prompts: %v", err)
	} else {
		chat.SetPromptStore(prompts)
	}
	a.chat = chat

	return a, nil
}

// promptDir keeps prompts next to an explicit config file.
func promptDir() string {
	if cfgFile == "" || noConfig {
		return ""
	}
	return filepath.Join(filepath.Dir(cfgFile), "prompts")
}
