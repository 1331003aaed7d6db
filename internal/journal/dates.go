package journal

import (
	"path"
	"regexp"
	"strings"
	"time"
)

// CanonicalDateLayout is the locale-independent date form memos carry.
const CanonicalDateLayout = "2006-01-02"

var fileDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})\.md$`),
	regexp.MustCompile(`^(\d{4})_(\d{2})_(\d{2})\.md$`),
	regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})\.md$`),
}

// ParseDateFromFileName extracts the canonical YYYY-MM-DD date from a journal
// file name. YYYY-MM-DD.md, YYYY_MM_DD.md and YYYYMMDD.md are accepted.
func ParseDateFromFileName(name string) (string, bool) {
	for _, re := range fileDatePatterns {
		if m := re.FindStringSubmatch(name); m != nil {
			return m[1] + "-" + m[2] + "-" + m[3], true
		}
	}
	return "", false
}

// momentTokens converts the moment-style tokens used by the settings surface
// to Go layout fragments. Longer tokens come first so they win.
var momentTokens = strings.NewReplacer(
	"YYYY", "2006",
	"YY", "06",
	"MM", "01",
	"M", "1",
	"DD", "02",
	"D", "2",
	"HH", "15",
	"mm", "04",
)

// GoLayout converts a moment-style format such as "YYYY-MM-DD" into a Go
// time layout.
func GoLayout(format string) string {
	if format == "" {
		return CanonicalDateLayout
	}
	return momentTokens.Replace(format)
}

// IsJournalPath reports whether p is a Markdown file directly inside folder,
// the only files ParseAll reads. Paths are relative to the vault root.
func IsJournalPath(folder, p string) bool {
	p = path.Clean(strings.ReplaceAll(p, `\`, "/"))
	folder = path.Clean(strings.ReplaceAll(folder, `\`, "/"))
	if path.Ext(p) != ".md" {
		return false
	}
	return path.Dir(p) == folder
}

// canonicalDate renders t as YYYY-MM-DD.
func canonicalDate(t time.Time) string {
	return t.Format(CanonicalDateLayout)
}
