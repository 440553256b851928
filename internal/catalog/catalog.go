package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// DefaultModel is used for catalog entries that do not name a backend model.
const DefaultModel = "flux"

// FreeStyleName is the distinguished free-form entry. It carries no prompt
// prefix and always sorts first so users see it before the themed styles.
const FreeStyleName = "סגנון חופשי"

// unrankedSentinel pushes entries without a popularity rank to the end of
// rank-ordered listings.
const unrankedSentinel = int(^uint32(0) >> 1)

// Style is an immutable catalog entry.
type Style struct {
	Name           string `json:"name"`
	PromptPrefix   string `json:"prompt_prefix"`
	Model          string `json:"model,omitempty"`
	PopularityRank *int   `json:"popularity_rank,omitempty"`
}

// Order selects the secondary sort key for styles after the free-form entry.
type Order int

const (
	OrderAlphabetical Order = iota
	OrderPopularity
)

// ParseOrder maps a configuration token to an Order. Anything other than
// "popularity" reads as alphabetical.
func ParseOrder(s string) Order {
	if strings.EqualFold(strings.TrimSpace(s), "popularity") {
		return OrderPopularity
	}
	return OrderAlphabetical
}

type stylesDocument struct {
	Styles []Style `json:"styles"`
}

// Catalog holds the style list loaded from a JSON document. It is loaded
// once and treated as immutable for the life of the process.
type Catalog struct {
	path  string
	order Order

	once    sync.Once
	loadErr error
	styles  []Style
	byName  map[string]Style
}

// New prepares a catalog reading from path. The file is not touched until
// the first call to Styles or Lookup.
func New(path string, order Order) *Catalog {
	return &Catalog{path: path, order: order}
}

func (c *Catalog) load() {
	c.once.Do(func() {
		raw, err := os.ReadFile(c.path)
		if err != nil {
			c.loadErr = fmt.Errorf("catalog: read %s: %w", c.path, err)
			return
		}
		var doc stylesDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			c.loadErr = fmt.Errorf("catalog: parse %s: %w", c.path, err)
			return
		}
		styles := make([]Style, 0, len(doc.Styles))
		byName := make(map[string]Style, len(doc.Styles))
		for _, s := range doc.Styles {
			s.Name = strings.TrimSpace(s.Name)
			if s.Name == "" {
				continue
			}
			if s.Model == "" {
				s.Model = DefaultModel
			}
			if _, dup := byName[s.Name]; dup {
				c.loadErr = fmt.Errorf("catalog: duplicate style name %q", s.Name)
				return
			}
			byName[s.Name] = s
			styles = append(styles, s)
		}
		c.styles = SortStyles(styles, c.order)
		c.byName = byName
	})
}

// Styles returns the sorted style list.
func (c *Catalog) Styles() ([]Style, error) {
	c.load()
	if c.loadErr != nil {
		return nil, c.loadErr
	}
	out := make([]Style, len(c.styles))
	copy(out, c.styles)
	return out, nil
}

// Lookup resolves a style by its unique display name.
func (c *Catalog) Lookup(name string) (Style, bool) {
	c.load()
	if c.loadErr != nil {
		return Style{}, false
	}
	s, ok := c.byName[strings.TrimSpace(name)]
	return s, ok
}

// SortStyles orders styles for display: the free-form style first, the rest
// by the requested secondary key. Rank ties keep their input order.
func SortStyles(styles []Style, order Order) []Style {
	sorted := make([]Style, len(styles))
	copy(sorted, styles)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Name == FreeStyleName {
			return b.Name != FreeStyleName
		}
		if b.Name == FreeStyleName {
			return false
		}
		if order == OrderPopularity {
			return rankOf(a) < rankOf(b)
		}
		return a.Name < b.Name
	})
	return sorted
}

func rankOf(s Style) int {
	if s.PopularityRank == nil {
		return unrankedSentinel
	}
	return *s.PopularityRank
}
