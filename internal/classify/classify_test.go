package classify

import (
	"reflect"
	"testing"

	"github.com/starford/memos/internal/tagconfig"
)

func testEngine() *Engine {
	return New(
		tagconfig.ParseKeywordTable(`{"cy": ["餐", "饭"], "gw": ["买"]}`),
		tagconfig.ParseKeywordTable(`{"sp": ["深蹲", "跑步"], "reading": ["读书"]}`),
		tagconfig.ParseQuickTags("记账+消费+支出|记账, idea|灵感"),
	)
}

func TestMatchSmart_DigitGate(t *testing.T) {
	e := New(tagconfig.ParseKeywordTable(`{"cy": ["餐"]}`), tagconfig.KeywordTable{}, nil)

	if tag, ok := e.MatchSmart("今天吃了一顿大餐"); ok {
		t.Errorf("no digits: got %q, want no match", tag)
	}
	if tag, ok := e.MatchSmart("午餐10元"); !ok || tag != "cy" {
		t.Errorf("MatchSmart = %q, %v; want cy", tag, ok)
	}
}

func TestMatchHabit_NoDigitGate(t *testing.T) {
	e := New(tagconfig.KeywordTable{}, tagconfig.ParseKeywordTable(`{"sp": ["深蹲"]}`), nil)

	for _, text := range []string{"深蹲50个", "深蹲"} {
		if tag, ok := e.MatchHabit(text); !ok || tag != "sp" {
			t.Errorf("MatchHabit(%q) = %q, %v; want sp", text, tag, ok)
		}
	}
}

func TestMatch_FirstInTableOrder(t *testing.T) {
	e := New(tagconfig.ParseKeywordTable(`{"gw": ["买"], "cy": ["饭"]}`), tagconfig.KeywordTable{}, nil)
	if tag, _ := e.MatchSmart("买饭 12"); tag != "gw" {
		t.Errorf("tag = %q, want gw", tag)
	}
}

func TestMatch_FallbackTableNeverMatches(t *testing.T) {
	e := New(tagconfig.ParseKeywordTable(`{not json`), tagconfig.ParseKeywordTable(`[1,2]`), nil)
	if _, ok := e.MatchSmart("午餐10元"); ok {
		t.Error("malformed smart table should not match")
	}
	if _, ok := e.MatchHabit("深蹲"); ok {
		t.Error("malformed habit table should not match")
	}
}

func TestAutoTags(t *testing.T) {
	e := testEngine()
	group, _ := e.GroupFor("记账")

	tests := []struct {
		name   string
		text   string
		active *tagconfig.QuickTag
		want   []string
	}{
		{"smart then habit then group", "午饭15 跑步", group, []string{"cy", "sp", "记账"}},
		{"no digit skips smart", "午饭 跑步", nil, []string{"sp"}},
		{"smart already written", "午饭15 #cy", nil, nil},
		{"group member already written", "买菜 30 #消费", group, []string{"gw"}},
		{"nothing matches", "hello", nil, nil},
		{"group only", "hello", group, []string{"记账"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.AutoTags(tt.text, tt.active)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AutoTags(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestAutoTags_GroupMemberAddedByMatch(t *testing.T) {
	e := New(
		tagconfig.ParseKeywordTable(`{"cy": ["餐"]}`),
		tagconfig.KeywordTable{},
		tagconfig.ParseQuickTags("jz+cy|记账"),
	)
	group, _ := e.GroupFor("jz")
	got := e.AutoTags("午餐10元", group)
	if !reflect.DeepEqual(got, []string{"cy"}) {
		t.Errorf("AutoTags = %v, want [cy]", got)
	}
}

func TestGroupFor(t *testing.T) {
	e := testEngine()
	for _, name := range []string{"记账", "消费", "#支出"} {
		g, ok := e.GroupFor(name)
		if !ok || g.Keyword != "记账" {
			t.Errorf("GroupFor(%q) = %+v, %v", name, g, ok)
		}
	}
	if g, ok := e.GroupFor("灵感"); !ok || g.Keyword != "idea" {
		t.Errorf("GroupFor by label = %+v, %v", g, ok)
	}
	if _, ok := e.GroupFor("unknown"); ok {
		t.Error("unknown group should not resolve")
	}
	if _, ok := e.GroupFor(""); ok {
		t.Error("empty name should not resolve")
	}
}

func TestAnnotate(t *testing.T) {
	e := New(
		tagconfig.ParseKeywordTable(DefaultSmartKeywords),
		tagconfig.ParseKeywordTable(DefaultHabitKeywords),
		nil,
	)
	tests := map[string]string{
		"午餐10元":      "午餐10元 #cy",
		"跑步5公里 ":     "跑步5公里 #sp",
		"晚饭20 然后读书":  "晚饭20 然后读书 #cy #reading",
		"nothing here": "nothing here",
	}
	for in, want := range tests {
		if got := e.Annotate(in, nil); got != want {
			t.Errorf("Annotate(%q) = %q, want %q", in, got, want)
		}
	}
}
