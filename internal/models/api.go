package models

// SessionView is the read-only snapshot of a session returned by the API.
type SessionView struct {
	ID         string    `json:"id"`
	State      string    `json:"state"`
	Paper      *Paper    `json:"paper,omitempty"`
	Transcript []Message `json:"transcript"`
}

// UploadResult reports the outcome of a successful paper upload.
type UploadResult struct {
	Filename string `json:"filename"`
	Chars    int    `json:"chars"`
	// Warning carries the advisory size message when the extracted text is
	// above the warning threshold but within the hard limit.
	Warning string `json:"warning,omitempty"`
}

// ChatRequest is one user turn submitted to a session.
type ChatRequest struct {
	Content string `json:"content"`
}

// ChatResponse returns the assistant reply for a turn. When the backend call
// failed, Reply carries the error-bearing assistant message and Failed is true;
// the turn is still part of the transcript.
type ChatResponse struct {
	Reply  Message `json:"reply"`
	Failed bool    `json:"failed,omitempty"`
}

// FindMatch is one passage hit from the find-in-paper index.
type FindMatch struct {
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}

// FindResponse is the response for a find-in-paper query.
type FindResponse struct {
	Query   string       `json:"query"`
	Matches []*FindMatch `json:"matches"`
	Total   int          `json:"total"`
	// AutoFuzzy indicates fuzzy matching was automatically enabled because
	// the exact query returned nothing.
	AutoFuzzy bool `json:"auto_fuzzy,omitempty"`
}
