// Package parser decodes journal lines into memos and encodes memos back into
// lines.
//
// Two line shapes are recognized:
//
//	- HH:MM [#tag ...] content     timestamped memo
//	- #tag [#tag ...] content      tag-only memo, accepted only when one of the
//	                               tags belongs to a configured quick-tag group
//
// Every other line is ordinary prose and is skipped.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/memos/internal/models"
)

var (
	timedRe   = regexp.MustCompile(`^-\s*(\d{2}:\d{2})\s+(.+)$`)
	tagOnlyRe = regexp.MustCompile(`^-\s+(#\S+.*)$`)
	tagRe     = regexp.MustCompile(`#([^\s#]+)`)
	spaceRe   = regexp.MustCompile(`\s+`)
	taskRe    = regexp.MustCompile(`(?i)^(TODO|DONE|DOING|NOW|LATER|WAITING|CANCELLED)\s+`)
)

// LineContext is the provenance of a line being decoded.
type LineContext struct {
	FilePath   string
	LineNumber int
	// DateString is the canonical YYYY-MM-DD date of the owning file.
	DateString string
	// Keywords is the set of quick-tag keywords that make a tag-only line a memo.
	Keywords map[string]struct{}
	// Location is used to build timestamps; nil means time.Local.
	Location *time.Location
}

// ExtractTags returns every #tag in text in order of appearance, without the
// leading '#'. Duplicates are kept.
func ExtractTags(text string) []string {
	matches := tagRe.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// RemoveTags deletes the first occurrence of each #tag from text and
// normalizes whitespace.
func RemoveTags(text string, tags []string) string {
	for _, tag := range tags {
		text = strings.TrimSpace(strings.Replace(text, "#"+tag, "", 1))
	}
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// Decode parses a single line. It returns false when the line is not a memo.
func Decode(line string, ctx LineContext) (models.Memo, bool) {
	if m := timedRe.FindStringSubmatch(line); m != nil {
		timeString, rest := m[1], m[2]
		tags := ExtractTags(rest)
		hour, _ := strconv.Atoi(timeString[:2])
		minute, _ := strconv.Atoi(timeString[3:])
		ts, ok := timestamp(ctx, hour, minute)
		if !ok {
			return models.Memo{}, false
		}
		return newMemo(ctx, line, RemoveTags(rest, tags), timeString, tags, ts), true
	}

	if m := tagOnlyRe.FindStringSubmatch(line); m != nil {
		rest := m[1]
		tags := ExtractTags(rest)
		if !anyKnown(tags, ctx.Keywords) {
			return models.Memo{}, false
		}
		ts, ok := timestamp(ctx, 0, 0)
		if !ok {
			return models.Memo{}, false
		}
		return newMemo(ctx, line, RemoveTags(rest, tags), "", tags, ts), true
	}

	return models.Memo{}, false
}

// Encode renders a memo line. Empty segments are omitted so that an empty
// timeString yields the tag-only shape.
func Encode(timeString string, tags []string, content string) string {
	segments := []string{"-"}
	if timeString != "" {
		segments = append(segments, timeString)
	}
	for _, tag := range tags {
		segments = append(segments, "#"+tag)
	}
	if content != "" {
		segments = append(segments, content)
	}
	return strings.Join(segments, " ")
}

// TaskMarker returns the Logseq task keyword content starts with, upper-cased,
// or "" when there is none.
func TaskMarker(content string) string {
	m := taskRe.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

// DecodeDocument decodes every memo line of a journal file. Line numbers are
// 1-based and frontmatter lines are never memos.
func DecodeDocument(data []byte, ctx LineContext) []models.Memo {
	lines := strings.Split(string(data), "\n")
	start := frontmatterEnd(lines)

	var out []models.Memo
	for i := start; i < len(lines); i++ {
		line := strings.TrimSuffix(lines[i], "\r")
		lc := ctx
		lc.LineNumber = i + 1
		if memo, ok := Decode(line, lc); ok {
			out = append(out, memo)
		}
	}
	return out
}

func newMemo(ctx LineContext, line, content, timeString string, tags []string, ts time.Time) models.Memo {
	return models.Memo{
		ID:         uuid.NewString(),
		Content:    content,
		Timestamp:  ts,
		TimeString: timeString,
		Tags:       tags,
		FilePath:   ctx.FilePath,
		LineNumber: ctx.LineNumber,
		RawText:    line,
		DateString: ctx.DateString,
	}
}

func timestamp(ctx LineContext, hour, minute int) (time.Time, bool) {
	loc := ctx.Location
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation("2006-01-02", ctx.DateString, loc)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), true
}

func anyKnown(tags []string, keywords map[string]struct{}) bool {
	for _, t := range tags {
		if _, ok := keywords[t]; ok {
			return true
		}
	}
	return false
}
