package storage

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"taskboard/internal/core/domain"
	"taskboard/internal/core/port"
	tel "taskboard/internal/core/telemetry"
)

const DefaultKey = "todoApp"

const schemaURL = "state.schema.json"

//go:embed state.schema.json
var schemaSource []byte

var stateSchema = compileSchema()

func compileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaSource)); err != nil {
		panic(fmt.Sprintf("load state schema: %v", err))
	}

	return compiler.MustCompile(schemaURL)
}

// LocalStorage persists the whole application state as one JSON document
// under a single key. It never reports failures to its caller: they are
// logged, and a blob that cannot be read back counts as absent.
type LocalStorage struct {
	repo      port.StateRepository
	key       string
	logger    *zap.Logger
	telemetry port.Telemetry
	metrics   *tel.AppMetrics
}

var _ port.Persistence = (*LocalStorage)(nil)

type Option func(*LocalStorage)

func WithKey(key string) Option {
	return func(s *LocalStorage) {
		if key != "" {
			s.key = key
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *LocalStorage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithTelemetry(t port.Telemetry) Option {
	return func(s *LocalStorage) {
		if t != nil {
			s.telemetry = t
		}
	}
}

func WithMetrics(m *tel.AppMetrics) Option {
	return func(s *LocalStorage) {
		s.metrics = m
	}
}

func NewLocalStorage(repo port.StateRepository, opts ...Option) *LocalStorage {
	s := &LocalStorage{
		repo:      repo,
		key:       DefaultKey,
		logger:    zap.NewNop(),
		telemetry: tel.NewNoOpProbe(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *LocalStorage) Key() string {
	return s.key
}

func (s *LocalStorage) Save(ctx context.Context, state *domain.State) {
	if state == nil {
		state = domain.NewState()
	}

	data, err := json.Marshal(state)
	if err != nil {
		s.logger.Error("Error saving to local storage", zap.String("key", s.key), zap.Error(err))
		s.telemetry.RecordError(ctx, "storage.save", err, map[string]interface{}{"key": s.key})
		return
	}

	if err := s.repo.Put(ctx, s.key, data); err != nil {
		s.logger.Error("Error saving to local storage", zap.String("key", s.key), zap.Error(err))
		s.telemetry.RecordError(ctx, "storage.save", err, map[string]interface{}{"key": s.key})
		return
	}

	if s.metrics != nil {
		s.metrics.SetStoredCounts(state.ProjectCount(), state.TodoCount())
	}

	s.logger.Debug("State saved",
		zap.String("key", s.key),
		zap.Int("bytes", len(data)),
		zap.Int("projects", state.ProjectCount()),
	)
}

func (s *LocalStorage) Load(ctx context.Context) *domain.State {
	data, err := s.repo.Get(ctx, s.key)
	if errors.Is(err, port.ErrStateNotFound) {
		s.logger.Debug("No stored state", zap.String("key", s.key))
		return nil
	}
	if err != nil {
		s.logger.Error("Error loading from local storage", zap.String("key", s.key), zap.Error(err))
		s.telemetry.RecordError(ctx, "storage.load", err, map[string]interface{}{"key": s.key})
		return nil
	}

	state, err := decodeState(data)
	if err != nil {
		s.logger.Error("Discarding unreadable stored state", zap.String("key", s.key), zap.Error(err))
		s.telemetry.RecordError(ctx, "storage.decode", err, map[string]interface{}{"key": s.key})
		return nil
	}

	if s.metrics != nil {
		s.metrics.SetStoredCounts(state.ProjectCount(), state.TodoCount())
	}

	return state
}

func (s *LocalStorage) Clear(ctx context.Context) {
	if err := s.repo.Delete(ctx, s.key); err != nil {
		s.logger.Error("Error clearing local storage", zap.String("key", s.key), zap.Error(err))
		return
	}

	if s.metrics != nil {
		s.metrics.SetStoredCounts(0, 0)
	}
}

func (s *LocalStorage) Exists(ctx context.Context) bool {
	ok, err := s.repo.Has(ctx, s.key)
	if err != nil {
		s.logger.Error("Error checking local storage", zap.String("key", s.key), zap.Error(err))
		return false
	}

	return ok
}

// Raw returns the stored document without decoding it.
func (s *LocalStorage) Raw(ctx context.Context) ([]byte, error) {
	return s.repo.Get(ctx, s.key)
}

func decodeState(data []byte) (*domain.State, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}

	if err := stateSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema violation: %w", err)
	}

	var state domain.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}

	return &state, nil
}
