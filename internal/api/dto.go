package api

import (
	"github.com/starford/memos/internal/index"
	"github.com/starford/memos/internal/memoservice"
	"github.com/starford/memos/internal/models"
	"github.com/starford/memos/internal/tagconfig"
)

// CreateMemoRequest is the request body for creating a memo.
type CreateMemoRequest struct {
	Content string   `json:"content" example:"午餐 25 元" validate:"required"`
	Tags    []string `json:"tags,omitempty" example:"idea,work"`
	// Group selects a quick-tag group by keyword or label.
	Group   string `json:"group,omitempty" example:"记账"`
	AutoTag bool   `json:"auto_tag,omitempty"`
}

// UpdateMemoRequest is the request body for updating a memo.
type UpdateMemoRequest struct {
	Content string   `json:"content" example:"updated text" validate:"required"`
	Tags    []string `json:"tags" example:"idea"`
}

// ClassifyRequest is the request body for a classification preview.
type ClassifyRequest struct {
	Text  string `json:"text" example:"深蹲 50 个" validate:"required"`
	Group string `json:"group,omitempty"`
}

// ClassifyResponse lists the tags that would be appended.
type ClassifyResponse struct {
	Tags []string `json:"tags" validate:"required"`
}

// Memo is the memo response type (aliased from the domain layer).
type Memo = models.Memo

// MemoListResponse is one page of memos (aliased from the domain layer).
type MemoListResponse = memoservice.Page

// DateGroup is one journal date with its memos.
type DateGroup = index.DateGroup

// MemosByDateResponse wraps memos grouped by date.
type MemosByDateResponse struct {
	Dates []DateGroup `json:"dates" validate:"required"`
}

// TagsResponse lists distinct tags.
type TagsResponse struct {
	Tags []string `json:"tags" validate:"required"`
}

// QuickTagsResponse lists configured quick-tag groups.
type QuickTagsResponse struct {
	Groups []tagconfig.QuickTag `json:"groups" validate:"required"`
}

// StatsResponse summarizes the journal.
type StatsResponse = index.Stats
