package services

import (
	"context"
	"errors"
	"testing"

	"studycapture/application/ports"
	"studycapture/domain/core/entities"
	appErrors "studycapture/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTopicRegistry_ResolveOrCreate(t *testing.T) {
	ctx := context.Background()
	metrics := &recordingMetrics{}
	reg := NewTopicRegistry(newTestStore(t), metrics, zap.NewNop())

	first, created, err := reg.ResolveOrCreate(ctx, "Water Conservation", "Environmental Science")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Environmental Science", first.Subject)

	again, created, err := reg.ResolveOrCreate(ctx, "Water Conservation", "Engineering")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "Environmental Science", again.Subject, "existing topic keeps its subject")

	other, created, err := reg.ResolveOrCreate(ctx, "water conservation", "Environmental Science")
	require.NoError(t, err)
	assert.True(t, created, "lookup is case-sensitive")
	assert.NotEqual(t, first.ID, other.ID)

	known, err := reg.KnownTopics(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Water Conservation", "water conservation"}, entities.TopicNames(known))
	assert.Equal(t, 2, metrics.topicsCreated)
}

func TestTopicRegistry_Failures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk I/O error")

	t.Run("list fails", func(t *testing.T) {
		store := new(MockStore)
		store.On("ListTopics", mock.Anything).Return(nil, boom)

		_, err := NewTopicRegistry(store, nil, zap.NewNop()).KnownTopics(ctx)
		require.Error(t, err)
		assert.True(t, appErrors.IsType(err, appErrors.ErrorTypeTopicResolution))
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, "LIST_TOPICS", appErrors.GetAppError(err).Code)
	})

	t.Run("lookup fails", func(t *testing.T) {
		store := new(MockStore)
		store.On("FindTopicByName", mock.Anything, "Genetics").Return(nil, boom)

		_, _, err := NewTopicRegistry(store, nil, zap.NewNop()).ResolveOrCreate(ctx, "Genetics", "Biology")
		require.Error(t, err)
		assert.True(t, appErrors.IsType(err, appErrors.ErrorTypeTopicResolution))
		store.AssertNotCalled(t, "CreateTopic", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("create fails", func(t *testing.T) {
		store := new(MockStore)
		store.On("FindTopicByName", mock.Anything, "Genetics").Return(nil, ports.ErrNotFound)
		store.On("CreateTopic", mock.Anything, "Genetics", "Biology").Return(nil, boom)

		_, created, err := NewTopicRegistry(store, nil, zap.NewNop()).ResolveOrCreate(ctx, "Genetics", "Biology")
		require.Error(t, err)
		assert.False(t, created)
		assert.ErrorIs(t, err, boom)
		store.AssertExpectations(t)
	})
}
