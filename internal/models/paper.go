package models

import "time"

// Paper holds the extracted text of an uploaded document. Text is set once
// per upload and never mutated; replacing the paper replaces the whole value.
type Paper struct {
	Filename   string    `json:"filename"`
	Text       string    `json:"-"`
	Chars      int       `json:"chars"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// PaperChunk is a word-window slice of the paper text, used by the
// find-in-paper index.
type PaperChunk struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	ChunkIndex int    `json:"chunk_index"`
}
