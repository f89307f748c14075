package entities

// TopicID is the durable identifier the local store assigns to a topic.
type TopicID int64

// Topic is an entry in the append-only subject/topic taxonomy. Name is the
// unique, case-sensitive lookup key; Subject is a free-text label shared by
// many topics.
type Topic struct {
	ID      TopicID `json:"id"`
	Name    string  `json:"name"`
	Subject string  `json:"subject"`
}

// TopicWithCount pairs a topic with the number of notes filed under it.
type TopicWithCount struct {
	Topic
	NoteCount int `json:"note_count"`
}

// TopicNames returns the names of topics in their given order.
func TopicNames(topics []Topic) []string {
	names := make([]string, 0, len(topics))
	for _, t := range topics {
		names = append(names, t.Name)
	}
	return names
}
