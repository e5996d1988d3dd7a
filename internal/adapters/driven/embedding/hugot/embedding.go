// Package hugot provides an in-process embedding service that runs
// sentence-transformers ONNX models with the hugot Go backend.
// No network access is needed once the model is on disk.
package hugot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/custodia-labs/ubuzima/internal/core/domain"
	"github.com/custodia-labs/ubuzima/internal/core/ports/driven"
	"github.com/custodia-labs/ubuzima/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = domain.DefaultEmbeddingModel
	DefaultModelDir   = domain.DefaultModelDir
	DefaultDimensions = 384 // all-MiniLM-L6-v2

	pipelineName = "ubuzima-embedder"
	onnxFilePath = "onnx/model.onnx"
)

// Config holds configuration for the hugot embedding service.
type Config struct {
	// Model is the Hugging Face model name (default: sentence-transformers/all-MiniLM-L6-v2).
	Model string

	// ModelDir is where models are cached (default: ./models).
	ModelDir string

	// Dimensions is the embedding vector size. Zero looks the model up
	// in the known model table.
	Dimensions int

	// Download allows fetching the model when it is not on disk.
	Download bool
}

// EmbeddingService generates embeddings in process.
type EmbeddingService struct {
	mu         sync.Mutex
	session    *hugot.Session
	pipeline   *pipelines.FeatureExtractionPipeline
	model      string
	dimensions int
}

// NewEmbeddingService loads the model, downloading it first if allowed.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.ModelDir == "" {
		cfg.ModelDir = DefaultModelDir
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = domain.EmbeddingDimensions()[cfg.Model]
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	modelPath, err := prepareModel(cfg.Model, cfg.ModelDir, cfg.Download)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("%w: create hugot session: %w", domain.ErrEmbeddingUnavailable, err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      pipelineName,
	})
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			logger.Warn("hugot session cleanup failed: %v", destroyErr)
		}
		return nil, fmt.Errorf("%w: load %s: %w", domain.ErrEmbeddingUnavailable, cfg.Model, err)
	}

	return &EmbeddingService{
		session:    session,
		pipeline:   pipeline,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch runs the pipeline over all texts at once.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipeline == nil {
		return nil, fmt.Errorf("%w: hugot embedder is closed", domain.ErrEmbeddingUnavailable)
	}

	result, err := s.pipeline.RunPipeline(texts)
	if err != nil {
		return nil, fmt.Errorf("run embedding pipeline: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("hugot returned %d embeddings for %d inputs", len(result.Embeddings), len(texts))
	}
	for _, e := range result.Embeddings {
		if len(e) != s.dimensions {
			return nil, fmt.Errorf("%w: model %s returned %d dims, expected %d",
				domain.ErrEmbeddingMismatch, s.model, len(e), s.dimensions)
		}
	}
	return result.Embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping reports whether the model is loaded.
func (s *EmbeddingService) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipeline == nil {
		return fmt.Errorf("%w: hugot embedder is closed", domain.ErrEmbeddingUnavailable)
	}
	return nil
}

// Close destroys the hugot session.
func (s *EmbeddingService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	err := s.session.Destroy()
	s.session = nil
	s.pipeline = nil
	return err
}

// localPath is where a model is cached inside dir.
func localPath(model, dir string) string {
	return filepath.Join(dir, strings.ReplaceAll(model, "/", "_"))
}

// prepareModel returns the on-disk model path, downloading when allowed.
func prepareModel(model, dir string, download bool) (string, error) {
	path := localPath(model, dir)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat model: %w", err)
	}

	if !download {
		return "", fmt.Errorf("%w: model %s not found in %s; run 'ubuzima index' with downloads enabled",
			domain.ErrEmbeddingUnavailable, model, dir)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create model directory: %w", err)
	}
	logger.Info("Downloading embedding model %s to %s", model, dir)

	opts := hugot.NewDownloadOptions()
	opts.OnnxFilePath = onnxFilePath
	downloaded, err := hugot.DownloadModel(model, dir, opts)
	if err != nil {
		return "", fmt.Errorf("%w: download %s: %w", domain.ErrEmbeddingUnavailable, model, err)
	}
	return downloaded, nil
}
