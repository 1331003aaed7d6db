package journal

import "testing"

func TestParseDateFromFileName(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"2024-01-05.md", "2024-01-05", true},
		{"2024_01_05.md", "2024-01-05", true},
		{"20240105.md", "2024-01-05", true},
		{"notes.md", "", false},
		{"2024-01-05.txt", "", false},
		{"2024-1-5.md", "", false},
		{"x2024-01-05.md", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseDateFromFileName(tt.name)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseDateFromFileName(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestGoLayout(t *testing.T) {
	tests := map[string]string{
		"":           "2006-01-02",
		"YYYY-MM-DD": "2006-01-02",
		"YYYY_MM_DD": "2006_01_02",
		"YYYYMMDD":   "20060102",
		"YY.M.D":     "06.1.2",
	}
	for in, want := range tests {
		if got := GoLayout(in); got != want {
			t.Errorf("GoLayout(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsJournalPath(t *testing.T) {
	tests := []struct {
		folder, path string
		want         bool
	}{
		{"journals", "journals/2024-01-05.md", true},
		{"journals", "journals/archive/2024-01-05.md", false},
		{"daily/notes", "daily/notes/2024-01-05.md", true},
		{"daily/notes", "daily/2024-01-05.md", false},
		{"journals", "journals/notes.txt", false},
		{"journals", "pages/2024-01-05.md", false},
		{"journals", "journals-old/2024-01-05.md", false},
		{"journals/", `journals\2024-01-05.md`, true},
		{".", "2024-01-05.md", true},
		{".", "../2024-01-05.md", false},
		{".", "pages/2024-01-05.md", false},
	}
	for _, tt := range tests {
		if got := IsJournalPath(tt.folder, tt.path); got != tt.want {
			t.Errorf("IsJournalPath(%q, %q) = %v, want %v", tt.folder, tt.path, got, tt.want)
		}
	}
}
