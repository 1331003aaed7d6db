// Package tagconfig parses the user-authored quick-tag groups and keyword
// trigger tables into typed structures.
package tagconfig

import (
	"encoding/json"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// QuickTag is a group of equivalent tag keywords selectable as one shortcut.
type QuickTag struct {
	// Keywords is never empty; Keywords[0] is the canonical tag.
	Keywords []string `json:"keywords"`
	Keyword  string   `json:"keyword"`
	Label    string   `json:"label"`
}

// Has reports whether tag is a member of the group.
func (q QuickTag) Has(tag string) bool {
	for _, k := range q.Keywords {
		if k == tag {
			return true
		}
	}
	return false
}

// ParseQuickTags parses the compact group syntax:
//
//	keyword[+keyword...][|label], ...
//
// Blank groups and groups without any keyword are dropped.
func ParseQuickTags(s string) []QuickTag {
	var out []QuickTag
	for _, group := range strings.Split(s, ",") {
		group = strings.TrimSpace(group)
		if group == "" {
			continue
		}
		spec, label, _ := strings.Cut(group, "|")

		var keywords []string
		for _, kw := range strings.Split(spec, "+") {
			kw = strings.TrimPrefix(strings.TrimSpace(kw), "#")
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) == 0 {
			continue
		}

		label = strings.TrimSpace(label)
		if label == "" {
			label = keywords[0]
		}
		out = append(out, QuickTag{
			Keywords: keywords,
			Keyword:  keywords[0],
			Label:    label,
		})
	}
	return out
}

// FormatQuickTags serializes groups back into the compact syntax.
func FormatQuickTags(groups []QuickTag) string {
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		if len(g.Keywords) == 0 {
			continue
		}
		p := strings.Join(g.Keywords, "+")
		if g.Label != "" && g.Label != g.Keywords[0] {
			p += "|" + g.Label
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, ",")
}

// KeywordSet returns the union of every member keyword of groups.
func KeywordSet(groups []QuickTag) map[string]struct{} {
	set := make(map[string]struct{})
	for _, g := range groups {
		for _, k := range g.Keywords {
			set[k] = struct{}{}
		}
	}
	return set
}

// KeywordTable maps a tag to its trigger substrings, iterating in the order
// the tags were written.
type KeywordTable struct {
	m        *orderedmap.OrderedMap[string, []string]
	fallback bool
}

// Entry is one tag and its triggers.
type Entry struct {
	Tag      string
	Triggers []string
}

// NewKeywordTable builds a table from entries, preserving their order.
func NewKeywordTable(entries ...Entry) KeywordTable {
	m := orderedmap.New[string, []string]()
	for _, e := range entries {
		m.Set(e.Tag, e.Triggers)
	}
	return KeywordTable{m: m}
}

// ParseKeywordTable decodes a JSON object of tag -> trigger list. Any parse
// failure or wrong shape yields an empty table with Fallback set.
func ParseKeywordTable(s string) KeywordTable {
	if strings.TrimSpace(s) == "" {
		return KeywordTable{}
	}
	m := orderedmap.New[string, []string]()
	if err := json.Unmarshal([]byte(s), m); err != nil {
		return KeywordTable{fallback: true}
	}
	return KeywordTable{m: m}
}

// Fallback reports whether the table is the empty result of a failed parse.
func (t KeywordTable) Fallback() bool { return t.fallback }

// Len returns the number of tags in the table.
func (t KeywordTable) Len() int {
	if t.m == nil {
		return 0
	}
	return t.m.Len()
}

// Entries returns the table contents in order.
func (t KeywordTable) Entries() []Entry {
	if t.m == nil {
		return nil
	}
	out := make([]Entry, 0, t.m.Len())
	for p := t.m.Oldest(); p != nil; p = p.Next() {
		out = append(out, Entry{Tag: p.Key, Triggers: p.Value})
	}
	return out
}

// FirstMatch returns the first tag, in table order, having a trigger that is
// a substring of text. Empty triggers never match.
func (t KeywordTable) FirstMatch(text string) (string, bool) {
	if t.m == nil {
		return "", false
	}
	for p := t.m.Oldest(); p != nil; p = p.Next() {
		for _, trigger := range p.Value {
			if trigger != "" && strings.Contains(text, trigger) {
				return p.Key, true
			}
		}
	}
	return "", false
}
