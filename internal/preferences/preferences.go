// Package preferences stores the language and theme choices. Both are kept as bare
// strings under their keys, not JSON.
package preferences

import (
	"context"
	"strings"

	"github.com/okestore/storefront-sync/pkg/enums"
	pkgerrors "github.com/okestore/storefront-sync/pkg/errors"
	"github.com/okestore/storefront-sync/pkg/localstore"
)

const DefaultTheme = "cosmic"

type Preferences struct {
	Language enums.Language `json:"language"`
	Theme    string         `json:"theme"`
}

type Store struct {
	store localstore.Store
}

func New(store localstore.Store) *Store {
	return &Store{store: store}
}

// Get returns the saved preferences, with defaults for anything unset.
func (s *Store) Get(ctx context.Context) (Preferences, error) {
	lang, _, err := s.store.Get(ctx, localstore.KeyLanguage)
	if err != nil {
		return Preferences{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read language")
	}
	theme, ok, err := s.store.Get(ctx, localstore.KeyTheme)
	if err != nil {
		return Preferences{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read theme")
	}
	if !ok || strings.TrimSpace(theme) == "" {
		theme = DefaultTheme
	}
	return Preferences{Language: enums.ParseLanguage(lang), Theme: theme}, nil
}

func (s *Store) SetLanguage(ctx context.Context, lang enums.Language) error {
	if !lang.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "language must be en or hi")
	}
	if err := s.store.Set(ctx, localstore.KeyLanguage, string(lang)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save language")
	}
	return nil
}

func (s *Store) SetTheme(ctx context.Context, theme string) error {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "theme is required")
	}
	if err := s.store.Set(ctx, localstore.KeyTheme, theme); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save theme")
	}
	return nil
}
