package services

import (
	"context"

	"studycapture/application/ports"
	"studycapture/domain/core/entities"
	domainservices "studycapture/domain/services"
	appErrors "studycapture/pkg/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("studycapture/application/services")

// Classifier maps a passage to a subject and topic. It asks the generative
// model first and falls back to keyword buckets on any failure, so Classify
// itself never fails.
type Classifier struct {
	generator   ports.TextGenerator
	fallback    *domainservices.FallbackClassifier
	temperature float64
	metrics     ports.Metrics
	logger      *zap.Logger
}

// NewClassifier creates a classifier. A nil generator means every passage
// goes straight to the keyword buckets.
func NewClassifier(
	generator ports.TextGenerator,
	fallback *domainservices.FallbackClassifier,
	temperature float64,
	metrics ports.Metrics,
	logger *zap.Logger,
) *Classifier {
	if fallback == nil {
		fallback = domainservices.NewFallbackClassifier(nil)
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Classifier{
		generator:   generator,
		fallback:    fallback,
		temperature: temperature,
		metrics:     metrics,
		logger:      logger,
	}
}

// Classify returns the classification for text given the ordered names of
// topics already in the registry.
func (c *Classifier) Classify(ctx context.Context, text string, knownTopics []string) entities.ClassificationResult {
	ctx, span := tracer.Start(ctx, "Classifier.Classify")
	defer span.End()
	span.SetAttributes(attribute.Int("known_topics", len(knownTopics)))

	res, err := c.classifyWithModel(ctx, text, knownTopics)
	if err != nil {
		c.logger.Warn("model classification failed, using keyword fallback", zap.Error(err))
		span.RecordError(err)
		res = c.fallback.Classify(text, knownTopics)
	}

	span.SetAttributes(
		attribute.String("classification.path", string(res.Path)),
		attribute.String("classification.subject", res.Subject),
		attribute.String("classification.topic", res.Topic),
	)
	c.metrics.ClassificationCompleted(res.Path)
	return res
}

func (c *Classifier) classifyWithModel(ctx context.Context, text string, knownTopics []string) (entities.ClassificationResult, error) {
	if c.generator == nil {
		return entities.ClassificationResult{}, appErrors.NewClassificationError("no model configured", nil)
	}

	ctx, span := tracer.Start(ctx, "Classifier.model")
	defer span.End()
	span.SetAttributes(attribute.String("llm.provider", c.generator.Name()))

	reply, err := c.generator.Complete(ctx, ports.CompletionRequest{
		System:      classificationSystemPrompt,
		Prompt:      buildClassificationPrompt(text, knownTopics),
		Temperature: c.temperature,
	})
	if err != nil {
		span.SetStatus(codes.Error, "model call failed")
		return entities.ClassificationResult{}, appErrors.NewClassificationError("model call failed", err)
	}

	res, err := parseClassification(reply)
	if err != nil {
		span.SetStatus(codes.Error, "unusable reply")
		c.logger.Debug("unusable model reply", zap.String("reply", truncate(reply, 200)))
		return entities.ClassificationResult{}, appErrors.NewClassificationError("unusable model reply", err)
	}
	return res, nil
}
