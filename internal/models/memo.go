// Package models defines the domain types for memos.
package models

import (
	"slices"
	"time"
)

// Memo is one journal entry parsed from a single line of a daily file.
type Memo struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	TimeString string    `json:"time_string"`
	Tags       []string  `json:"tags"`
	FilePath   string    `json:"file_path"`
	// LineNumber is 1-based; -1 means the memo has not been located on disk yet.
	LineNumber int    `json:"line_number"`
	RawText    string `json:"raw_text"`
	DateString string `json:"date_string"`
}

// HasTag reports whether tag is one of the memo's tags.
func (m Memo) HasTag(tag string) bool {
	return slices.Contains(m.Tags, tag)
}

// Clone returns a copy that shares no slices with m.
func (m Memo) Clone() Memo {
	m.Tags = slices.Clone(m.Tags)
	if m.Tags == nil {
		m.Tags = []string{}
	}
	return m
}
