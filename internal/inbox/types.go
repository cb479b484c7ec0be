package inbox

// Message is a single message in an agent's inbox. Timestamp is an RFC3339
// string. Read starts false and is flipped true only by ConsumeUnread, never
// reset.
type Message struct {
	From      string `json:"from"`
	Timestamp string `json:"timestamp"`
	Content   string `json:"content"`
	Read      bool   `json:"read"`
}
