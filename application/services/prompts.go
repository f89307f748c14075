package services

import (
	"fmt"
	"strings"
)

// maxPromptText is how much of a passage the model sees. The full text is
// still persisted.
const maxPromptText = 1000

const classificationSystemPrompt = "You are an expert study assistant that classifies academic content. " +
	"You MUST respond with ONLY valid JSON - no other text, explanations, or markdown."

const classificationPromptTemplate = `Classify the passage below into an academic subject and a specific topic.

STEP 1 - Subject:
Pick the academic field the passage belongs to. Typical subjects:
- Environmental Science (sustainability, climate, water, pollution, ecosystems)
- Engineering (civil, mechanical, electrical, chemical, environmental)
- Computer Science (programming, algorithms, AI, data structures, software)
- Mathematics (algebra, calculus, statistics, geometry)
- Physics (mechanics, thermodynamics, electromagnetism, quantum)
- Chemistry (organic, inorganic, biochemistry, reactions)
- Biology (anatomy, genetics, ecology, microbiology)
- Social Sciences (psychology, sociology, economics, political science)
- Business (management, marketing, finance, entrepreneurship)
- Medicine (anatomy, pharmacology, diseases, treatments)
- Agriculture (farming, crops, soil science, livestock)
- Architecture (building design, urban planning, structures)
Use "General Studies" when nothing fits.

STEP 2 - Topic:
Name the specific topic within the subject, for example:
- Environmental Science: Water Conservation, Climate Change, Renewable Energy
- Computer Science: Web Development, Machine Learning, Databases
- Biology: Cell Biology, Genetics, Ecosystems

STEP 3 - Reuse existing topics:
Topics already in the system: %s
If one of them means nearly the same thing, set "create_new" to false and use its exact name.
Otherwise set "create_new" to true and give a clear new topic name.

STEP 4 - Keywords:
List 3-5 key terms for the main concepts, comma-separated.

Passage:
%s

Reply with ONLY this JSON object (no markdown, no code fences, no commentary):
{
  "subject": "the academic subject",
  "topic": "the specific topic",
  "create_new": false,
  "keywords": "keyword1, keyword2, keyword3"
}`

// buildClassificationPrompt embeds the known topic names and the truncated
// passage in the user prompt.
func buildClassificationPrompt(text string, knownTopics []string) string {
	known := "None"
	if len(knownTopics) > 0 {
		known = strings.Join(knownTopics, ", ")
	}
	return fmt.Sprintf(classificationPromptTemplate, known, truncate(text, maxPromptText))
}
