package services

import (
	"context"
	"errors"

	"studycapture/application/ports"
	"studycapture/domain/core/entities"
	appErrors "studycapture/pkg/errors"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// TopicRegistry resolves topic names to durable ids, creating topics on
// first use. Lookup is exact and case-sensitive.
type TopicRegistry struct {
	repo    ports.TopicRepository
	metrics ports.Metrics
	logger  *zap.Logger
}

func NewTopicRegistry(repo ports.TopicRepository, metrics ports.Metrics, logger *zap.Logger) *TopicRegistry {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &TopicRegistry{repo: repo, metrics: metrics, logger: logger}
}

// KnownTopics returns every topic ordered by name.
func (r *TopicRegistry) KnownTopics(ctx context.Context) ([]entities.Topic, error) {
	topics, err := r.repo.ListTopics(ctx)
	if err != nil {
		return nil, appErrors.NewTopicResolutionError("*", err).WithCode("LIST_TOPICS")
	}
	return topics, nil
}

// ResolveOrCreate returns the topic named name, creating it under subject if
// it does not exist. created reports whether this call inserted it. An
// existing topic keeps its original subject.
func (r *TopicRegistry) ResolveOrCreate(ctx context.Context, name, subject string) (topic *entities.Topic, created bool, err error) {
	ctx, span := tracer.Start(ctx, "TopicRegistry.ResolveOrCreate")
	defer span.End()
	span.SetAttributes(attribute.String("topic", name))

	existing, err := r.repo.FindTopicByName(ctx, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return nil, false, appErrors.NewTopicResolutionError(name, err)
	}

	topic, err = r.repo.CreateTopic(ctx, name, subject)
	if err != nil {
		return nil, false, appErrors.NewTopicResolutionError(name, err)
	}

	r.logger.Info("created topic",
		zap.String("topic", name),
		zap.String("subject", subject),
		zap.Int64("topic_id", int64(topic.ID)),
	)
	r.metrics.TopicCreated()
	span.SetAttributes(attribute.Bool("created", true))
	return topic, true, nil
}
