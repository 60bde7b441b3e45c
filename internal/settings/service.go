// Package settings keeps the small set of app-wide preferences, currently
// only the interface language.
package settings

import (
	"context"
	"log/slog"
	"sync"

	"sentinela/internal/storage"
	dErrors "sentinela/pkg/domain-errors"
)

// Language is an interface language tag.
type Language string

const (
	LanguagePortuguese Language = "pt"
	LanguageEnglish    Language = "en"
)

// DefaultLanguage applies when no preference has ever been saved.
const DefaultLanguage = LanguagePortuguese

func (l Language) IsValid() bool {
	return l == LanguagePortuguese || l == LanguageEnglish
}

// Service owns the persisted preferences.
type Service struct {
	mu       sync.RWMutex
	language Language

	store  *storage.Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService loads the saved language, falling back to the default when the
// snapshot is missing, corrupt, or holds an unknown tag.
func NewService(ctx context.Context, store *storage.Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "settings service requires a store")
	}
	s := &Service{
		language: DefaultLanguage,
		store:    store,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	var saved Language
	if err := store.Load(ctx, storage.KeyLanguage, &saved); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load language")
	}
	if saved.IsValid() {
		s.language = saved
	} else if saved != "" {
		s.logger.WarnContext(ctx, "ignoring unknown saved language", "language", string(saved))
	}
	return s, nil
}

// Language returns the current interface language.
func (s *Service) Language(_ context.Context) Language {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// SetLanguage persists and applies a new interface language.
func (s *Service) SetLanguage(ctx context.Context, lang Language) error {
	if !lang.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unsupported language")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(ctx, storage.KeyLanguage, lang); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "persist language")
	}
	s.language = lang
	return nil
}
