package preferences

import (
	"context"
	"testing"

	"github.com/okestore/storefront-sync/pkg/enums"
	"github.com/okestore/storefront-sync/pkg/localstore"
)

func TestDefaults(t *testing.T) {
	prefs, err := New(localstore.NewMemory()).Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if prefs.Language != enums.LanguageEnglish || prefs.Theme != DefaultTheme {
		t.Fatalf("unexpected defaults %+v", prefs)
	}
}

func TestSetAndGet(t *testing.T) {
	ctx := context.Background()
	mem := localstore.NewMemory()
	s := New(mem)

	if err := s.SetLanguage(ctx, enums.LanguageHindi); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}
	if err := s.SetTheme(ctx, "sunrise"); err != nil {
		t.Fatalf("SetTheme: %v", err)
	}
	if err := s.SetLanguage(ctx, "fr"); err == nil {
		t.Fatal("expected unsupported language to fail")
	}

	raw, _, _ := mem.Get(ctx, localstore.KeyLanguage)
	if raw != "hi" {
		t.Fatalf("language must be stored bare, got %q", raw)
	}
	prefs, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if prefs.Language != enums.LanguageHindi || prefs.Theme != "sunrise" {
		t.Fatalf("unexpected prefs %+v", prefs)
	}
}

func TestUnknownStoredLanguageFallsBack(t *testing.T) {
	ctx := context.Background()
	mem := localstore.NewMemory()
	_ = mem.Set(ctx, localstore.KeyLanguage, "xx")
	prefs, _ := New(mem).Get(ctx)
	if prefs.Language != enums.LanguageEnglish {
		t.Fatalf("expected fallback to en, got %q", prefs.Language)
	}
}
