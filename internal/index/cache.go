package index

import (
	"sort"

	"github.com/starford/memos/internal/journal"
	"github.com/starford/memos/internal/models"
)

type cacheState int

const (
	stateInvalid cacheState = iota
	stateValid
)

// cache is either Invalid (empty) or Valid with every memo of the journal
// folder. Callers hold Index.mu.
type cache struct {
	state  cacheState
	byDate map[string][]models.Memo
	// flat is sorted by timestamp descending, stable on parse order.
	flat []models.Memo
	byID map[string]int
}

func (c *cache) valid() bool { return c.state == stateValid }

func (c *cache) reset() {
	*c = cache{}
}

// fill replaces the contents with files and marks the cache valid.
func (c *cache) fill(files []journal.FileMemos) {
	byDate := make(map[string][]models.Memo, len(files))
	var flat []models.Memo
	for _, f := range files {
		byDate[f.DateString] = append(byDate[f.DateString], f.Memos...)
		flat = append(flat, f.Memos...)
	}
	sort.SliceStable(flat, func(i, j int) bool {
		return flat[i].Timestamp.After(flat[j].Timestamp)
	})

	byID := make(map[string]int, len(flat))
	for i, m := range flat {
		byID[m.ID] = i
	}

	c.state = stateValid
	c.byDate = byDate
	c.flat = flat
	c.byID = byID
}
