package services

import (
	"strings"
	"testing"

	"studycapture/domain/core/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeModelOutput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading prose", "Sure! Here you go: {\"a\":1} hope it helps", `{"a":1}`},
		{"nested braces", `x {"a":{"b":2}} y`, `{"a":{"b":2}}`},
		{"no braces", "no json here", "no json here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeModelOutput(tt.raw))
		})
	}
}

func TestParseClassification(t *testing.T) {
	t.Run("keywords as string", func(t *testing.T) {
		res, err := parseClassification(`{"subject":"Biology","topic":"Genetics","create_new":true,"keywords":"dna, genes , ,heredity"}`)
		require.NoError(t, err)
		assert.Equal(t, entities.ClassificationResult{
			Subject:   "Biology",
			Topic:     "Genetics",
			CreateNew: true,
			Keywords:  []string{"dna", "genes", "heredity"},
			Path:      entities.PathModel,
		}, res)
	})

	t.Run("keywords as array inside fence", func(t *testing.T) {
		res, err := parseClassification("```json\n{\"subject\":\" Physics \",\"topic\":\"Optics\",\"create_new\":false,\"keywords\":[\"lens\",\"light\"]}\n```")
		require.NoError(t, err)
		assert.Equal(t, "Physics", res.Subject)
		assert.Equal(t, []string{"lens", "light"}, res.Keywords)
		assert.False(t, res.CreateNew)
	})

	invalid := []struct {
		name string
		raw  string
		msg  string
	}{
		{"not json", "I think this is biology", "not a JSON object"},
		{"missing subject", `{"topic":"t","create_new":true,"keywords":"a"}`, `"subject"`},
		{"missing create_new", `{"subject":"s","topic":"t","keywords":"a"}`, `"create_new"`},
		{"null keywords", `{"subject":"s","topic":"t","create_new":true,"keywords":null}`, `"keywords"`},
		{"create_new as string", `{"subject":"s","topic":"t","create_new":"yes","keywords":"a"}`, "wrong type"},
		{"keywords as number", `{"subject":"s","topic":"t","create_new":true,"keywords":3}`, "string or a list"},
		{"blank topic", `{"subject":"s","topic":"  ","create_new":true,"keywords":"a"}`, "empty subject or topic"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseClassification(tt.raw)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestBuildClassificationPrompt(t *testing.T) {
	t.Run("no known topics", func(t *testing.T) {
		p := buildClassificationPrompt("Photosynthesis converts light.", nil)
		assert.Contains(t, p, "Topics already in the system: None")
		assert.Contains(t, p, "Photosynthesis converts light.")
	})

	t.Run("known topics and truncation", func(t *testing.T) {
		long := strings.Repeat("é", maxPromptText+50)
		p := buildClassificationPrompt(long, []string{"Algebra", "Water Conservation"})
		assert.Contains(t, p, "Topics already in the system: Algebra, Water Conservation")
		assert.Contains(t, p, strings.Repeat("é", maxPromptText))
		assert.NotContains(t, p, strings.Repeat("é", maxPromptText+1))
	})
}
