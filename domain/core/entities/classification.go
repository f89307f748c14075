package entities

// ClassificationPath records which classifier produced a result.
type ClassificationPath string

const (
	PathModel    ClassificationPath = "model"
	PathFallback ClassificationPath = "fallback"
)

// ClassificationResult is the transient output of classifying a passage.
// CreateNew is advisory: topic resolution always looks the name up first.
type ClassificationResult struct {
	Subject   string
	Topic     string
	CreateNew bool
	Keywords  []string
	Path      ClassificationPath
}
