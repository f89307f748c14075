package services

import (
	"testing"

	"studycapture/domain/core/entities"

	"github.com/stretchr/testify/assert"
)

func TestFallbackClassifier_Classify(t *testing.T) {
	c := NewFallbackClassifier(nil)

	tests := []struct {
		name    string
		text    string
		subject string
		topic   string
	}{
		{"rainwater", "Rainwater harvesting reduces urban runoff", "Environmental Science", "Water Conservation"},
		{"climate", "Global warming raises sea levels and the climate shifts", "Environmental Science", "Climate Change"},
		{"renewable", "Solar panels convert sunlight", "Environmental Science", "Renewable Energy"},
		{"sustainability", "Pollution control matters", "Environmental Science", "Sustainability"},
		{"environment beats engineering", "Civil engineering for water storage", "Environmental Science", "Water Conservation"},
		{"engineering", "Mechanical linkages transmit torque", "Engineering", "General Engineering"},
		{"web dev", "Python backend frameworks", "Computer Science", "Web Development"},
		{"machine learning", "A neural network algorithm", "Computer Science", "Machine Learning"},
		{"programming", "Recursion in programming languages", "Computer Science", "Programming"},
		{"math", "The quadratic equation has two roots", "Mathematics", "General Math"},
		{"physics", "Momentum is conserved", "Physics", "General Physics"},
		{"chemistry", "A molecule of benzene", "Chemistry", "General Chemistry"},
		{"biology", "DNA replication", "Biology", "General Biology"},
		{"agriculture", "Crop rotation keeps fields productive", "Agriculture", "Farming & Crops"},
		{"business", "Startup founders study marketing", "Business", "General Business"},
		{"medicine", "The patient received treatment", "Medicine", "General Medicine"},
		{"nothing", "Once upon a time", DefaultSubject, DefaultTopic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text, nil)

			assert.Equal(t, tt.subject, got.Subject)
			assert.Equal(t, tt.topic, got.Topic)
			assert.False(t, got.CreateNew)
			assert.Equal(t, entities.PathFallback, got.Path)
		})
	}
}

func TestFallbackClassifier_UsesFirstKnownTopic(t *testing.T) {
	c := NewFallbackClassifier(nil)

	got := c.Classify("Rainwater harvesting reduces urban runoff", []string{"Algebra", "Water Conservation"})

	assert.Equal(t, "Environmental Science", got.Subject)
	assert.Equal(t, "Algebra", got.Topic)
	assert.False(t, got.CreateNew)
}

func TestFallbackClassifier_CustomBuckets(t *testing.T) {
	c := NewFallbackClassifier([]Bucket{
		{Subject: "Music", Triggers: []string{"chord"}, Topic: "Harmony"},
	})

	assert.Equal(t, "Music", c.Classify("A minor chord", nil).Subject)
	assert.Equal(t, DefaultSubject, c.Classify("water", nil).Subject)
}

func TestFallbackKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "punctuation stripped",
			text: "Rainwater harvesting reduces urban runoff.",
			want: []string{"Rainwater", "harvesting", "reduces", "urban", "runoff"},
		},
		{
			name: "short tokens dropped",
			text: "a cat is on the mat",
			want: []string{"study", "notes"},
		},
		{
			name: "at most five",
			text: "alpha1 bravo2 charlie delta4 echo55 foxtrot golf77",
			want: []string{"alpha1", "bravo2", "charlie", "delta4", "echo55"},
		},
		{
			name: "only first ten tokens",
			text: "a b c d e f g h i j elephant",
			want: []string{"study", "notes"},
		},
		{
			name: "trailing punctuation does not count toward length",
			text: "tree! house, rivers",
			want: []string{"house", "rivers"},
		},
		{
			name: "empty",
			text: "",
			want: []string{"study", "notes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FallbackKeywords(tt.text))
		})
	}
}
