// Package classify suggests tags for raw memo text from keyword tables and
// the active quick-tag group.
package classify

import (
	"slices"
	"strings"
	"unicode"

	"github.com/starford/memos/internal/tagconfig"
)

// Engine holds the keyword tables and quick-tag groups.
type Engine struct {
	// Smart triggers only fire when the text contains a digit (amounts).
	Smart  tagconfig.KeywordTable
	Habit  tagconfig.KeywordTable
	Groups []tagconfig.QuickTag
}

// New creates an engine.
func New(smart, habit tagconfig.KeywordTable, groups []tagconfig.QuickTag) *Engine {
	return &Engine{Smart: smart, Habit: habit, Groups: groups}
}

// MatchSmart returns the first smart tag triggered by text. Text without any
// digit never matches.
func (e *Engine) MatchSmart(text string) (string, bool) {
	if !strings.ContainsFunc(text, unicode.IsDigit) {
		return "", false
	}
	return e.Smart.FirstMatch(text)
}

// MatchHabit returns the first habit tag triggered by text.
func (e *Engine) MatchHabit(text string) (string, bool) {
	return e.Habit.FirstMatch(text)
}

// AutoTags returns the tags to append to text, in order: smart match, habit
// match, then the active group's keyword. Tags already written in text as
// "#tag" are not repeated.
func (e *Engine) AutoTags(text string, active *tagconfig.QuickTag) []string {
	var tags []string
	has := func(tag string) bool {
		return strings.Contains(text, "#"+tag) || slices.Contains(tags, tag)
	}

	if tag, ok := e.MatchSmart(text); ok && !has(tag) {
		tags = append(tags, tag)
	}
	if tag, ok := e.MatchHabit(text); ok && !has(tag) {
		tags = append(tags, tag)
	}
	if kw, ok := e.GroupKeyword(text, active, tags); ok {
		tags = append(tags, kw)
	}
	return tags
}

// GroupKeyword returns the canonical keyword of active unless one of its
// member keywords is already written in text as "#keyword" or is in added.
func (e *Engine) GroupKeyword(text string, active *tagconfig.QuickTag, added []string) (string, bool) {
	if active == nil || len(active.Keywords) == 0 {
		return "", false
	}
	for _, k := range active.Keywords {
		if strings.Contains(text, "#"+k) || slices.Contains(added, k) {
			return "", false
		}
	}
	return active.Keyword, true
}

// GroupFor resolves a quick-tag group by any member keyword or its label.
// A leading "#" is ignored.
func (e *Engine) GroupFor(name string) (*tagconfig.QuickTag, bool) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "#")
	if name == "" {
		return nil, false
	}
	for i := range e.Groups {
		g := &e.Groups[i]
		if g.Label == name || g.Has(name) {
			return g, true
		}
	}
	return nil, false
}

// Annotate appends the auto tags to text as " #tag" tokens.
func (e *Engine) Annotate(text string, active *tagconfig.QuickTag) string {
	tags := e.AutoTags(text, active)
	if len(tags) == 0 {
		return text
	}
	var b strings.Builder
	b.WriteString(text)
	if text != "" && !strings.HasSuffix(text, " ") {
		b.WriteByte(' ')
	}
	for i, t := range tags {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("#" + t)
	}
	return b.String()
}
