// Package services holds domain logic that needs no I/O.
package services

import (
	"strings"
	"unicode/utf8"

	"studycapture/domain/core/entities"
)

const (
	DefaultSubject = "General Studies"
	DefaultTopic   = "Study Notes"
)

// DefaultKeywords is used when no token of the text qualifies as a keyword.
var DefaultKeywords = []string{"study", "notes"}

// TopicRule refines a bucket's topic when any of its triggers matches.
type TopicRule struct {
	Triggers []string
	Topic    string
}

// Bucket maps a set of trigger terms to a subject. Topic is used when no
// rule matches.
type Bucket struct {
	Subject  string
	Triggers []string
	Rules    []TopicRule
	Topic    string
}

// DefaultBuckets is the ordered rule table. Earlier buckets win, so text
// mentioning both water and engineering is filed under Environmental Science.
var DefaultBuckets = []Bucket{
	{
		Subject:  "Environmental Science",
		Triggers: []string{"water", "harvesting", "rainwater", "conservation", "sustainability", "climate", "environment", "ecosystem", "pollution", "renewable", "solar", "wind"},
		Rules: []TopicRule{
			{Triggers: []string{"water", "harvesting", "rainwater"}, Topic: "Water Conservation"},
			{Triggers: []string{"climate", "warming", "carbon"}, Topic: "Climate Change"},
			{Triggers: []string{"solar", "wind", "renewable"}, Topic: "Renewable Energy"},
		},
		Topic: "Sustainability",
	},
	{
		Subject:  "Engineering",
		Triggers: []string{"engineering", "design", "structure", "construction", "circuit", "mechanical", "electrical"},
		Topic:    "General Engineering",
	},
	{
		Subject:  "Computer Science",
		Triggers: []string{"algorithm", "code", "programming", "software", "computer", "database", "javascript", "python", "api"},
		Rules: []TopicRule{
			{Triggers: []string{"web", "html", "css", "frontend", "backend"}, Topic: "Web Development"},
			{Triggers: []string{"machine learning", "ai", "neural", "model"}, Topic: "Machine Learning"},
		},
		Topic: "Programming",
	},
	{
		Subject:  "Mathematics",
		Triggers: []string{"math", "equation", "theorem", "calculate", "algebra", "calculus", "geometry"},
		Topic:    "General Math",
	},
	{
		Subject:  "Physics",
		Triggers: []string{"physics", "force", "energy", "quantum", "velocity", "momentum"},
		Topic:    "General Physics",
	},
	{
		Subject:  "Chemistry",
		Triggers: []string{"chemistry", "molecule", "reaction", "atom", "compound", "element"},
		Topic:    "General Chemistry",
	},
	{
		Subject:  "Biology",
		Triggers: []string{"biology", "cell", "dna", "organism", "genetics", "protein"},
		Topic:    "General Biology",
	},
	{
		Subject:  "Agriculture",
		Triggers: []string{"agriculture", "farming", "crop", "soil", "harvest", "livestock", "irrigation"},
		Topic:    "Farming & Crops",
	},
	{
		Subject:  "Business",
		Triggers: []string{"business", "marketing", "management", "finance", "entrepreneur", "startup"},
		Topic:    "General Business",
	},
	{
		Subject:  "Medicine",
		Triggers: []string{"medicine", "health", "disease", "treatment", "patient", "medical", "anatomy"},
		Topic:    "General Medicine",
	},
}

// FallbackClassifier classifies text by substring matching against an
// ordered bucket table. It never fails.
type FallbackClassifier struct {
	buckets []Bucket
}

// NewFallbackClassifier returns a classifier over buckets, or over
// DefaultBuckets when buckets is empty.
func NewFallbackClassifier(buckets []Bucket) *FallbackClassifier {
	if len(buckets) == 0 {
		buckets = DefaultBuckets
	}
	return &FallbackClassifier{buckets: buckets}
}

// Classify files text under the first matching bucket. When knownTopics is
// non-empty its first entry replaces the bucket topic. CreateNew is always
// false.
func (c *FallbackClassifier) Classify(text string, knownTopics []string) entities.ClassificationResult {
	subject, topic := c.match(strings.ToLower(text))
	if len(knownTopics) > 0 {
		topic = knownTopics[0]
	}
	return entities.ClassificationResult{
		Subject:   subject,
		Topic:     topic,
		CreateNew: false,
		Keywords:  FallbackKeywords(text),
		Path:      entities.PathFallback,
	}
}

func (c *FallbackClassifier) match(lower string) (string, string) {
	for _, b := range c.buckets {
		if !containsAny(lower, b.Triggers) {
			continue
		}
		for _, r := range b.Rules {
			if containsAny(lower, r.Triggers) {
				return b.Subject, r.Topic
			}
		}
		return b.Subject, b.Topic
	}
	return DefaultSubject, DefaultTopic
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// FallbackKeywords derives up to five keywords from the first ten
// whitespace-separated tokens of text: surrounding ".,!?" is stripped and
// only tokens longer than four characters are kept.
func FallbackKeywords(text string) []string {
	tokens := strings.Fields(text)
	if len(tokens) > 10 {
		tokens = tokens[:10]
	}

	keywords := make([]string, 0, 5)
	for _, tok := range tokens {
		tok = strings.Trim(tok, ".,!?")
		if utf8.RuneCountInString(tok) <= 4 {
			continue
		}
		keywords = append(keywords, tok)
		if len(keywords) == 5 {
			break
		}
	}
	if len(keywords) == 0 {
		return append([]string(nil), DefaultKeywords...)
	}
	return keywords
}
