package social

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/okestore/storefront-sync/pkg/errors"
	"github.com/okestore/storefront-sync/pkg/localstore"
	"github.com/okestore/storefront-sync/pkg/models"
)

func TestPostLifecycle(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	svc, err := NewService(localstore.NewMemory(), nil, func() time.Time { return created })
	require.NoError(t, err)

	post, err := svc.Create(ctx, models.SocialPost{Content: "Navratri sale", Platforms: []string{"instagram"}})
	require.NoError(t, err)
	assert.Regexp(t, `^sm-`, post.ID)

	post.Content = "Navratri sale extended"
	post.CreatedAt = "tampered"
	updated, err := svc.Update(ctx, post)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-05T00:00:00Z", updated.CreatedAt)
	assert.Equal(t, "Navratri sale extended", svc.List(ctx)[0].Content)

	_, err = svc.Update(ctx, models.SocialPost{ID: "sm-missing", Content: "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, svc.Delete(ctx, post.ID))
	require.NoError(t, svc.Delete(ctx, post.ID))
	assert.Empty(t, svc.List(ctx))
}

func TestCreateRequiresContent(t *testing.T) {
	svc, err := NewService(localstore.NewMemory(), nil, nil)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), models.SocialPost{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
