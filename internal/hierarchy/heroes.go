package hierarchy

import (
	"sort"

	"github.com/vinodismyname/sellerscope/internal/reports"
	"github.com/vinodismyname/sellerscope/internal/table"
)

// DefaultHeroCount is how many children per parent are flagged as heroes.
const DefaultHeroCount = 3

type childSales struct {
	sessions, sales, units float64
}

func salesByASIN(br *table.Table) map[string]childSales {
	out := make(map[string]childSales)
	if br == nil {
		return out
	}
	for _, rec := range br.Records {
		asin := rec.Str(reports.ColChildASIN)
		if asin == "" {
			continue
		}
		out[asin] = childSales{
			sessions: rec.Float(reports.ColSessions),
			sales:    rec.Float(reports.ColOrderedSales),
			units:    rec.Float(reports.ColUnitsOrdered),
		}
	}
	return out
}

// DetectHeroes ranks each group's children by Business Report sales and flags
// the top n as heroes. Group totals are recomputed from the report, so
// calling it twice yields the same state. Children absent from the report
// count as zero sales; children without an ASIN are never heroes.
func DetectHeroes(h *Hierarchy, br *table.Table, n int) {
	if h == nil {
		return
	}
	if n <= 0 {
		n = DefaultHeroCount
	}
	lookup := salesByASIN(br)
	for _, g := range h.Groups() {
		g.TotalSessions, g.TotalSales, g.TotalUnits = 0, 0, 0
		ranked := make([]*ASINInfo, 0, len(g.Children))
		for _, c := range g.Children {
			c.IsHero = false
			s := lookup[c.ASIN]
			g.TotalSessions += s.sessions
			g.TotalSales += s.sales
			g.TotalUnits += s.units
			if c.ASIN != "" {
				ranked = append(ranked, c)
			}
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			return lookup[ranked[i].ASIN].sales > lookup[ranked[j].ASIN].sales
		})
		if len(ranked) > n {
			ranked = ranked[:n]
		}
		g.HeroASINs = make([]string, 0, len(ranked))
		for _, c := range ranked {
			c.IsHero = true
			g.HeroASINs = append(g.HeroASINs, c.ASIN)
		}
	}
}

// AllASINs lists every child ASIN in hierarchy order.
func (h *Hierarchy) AllASINs() []string {
	var out []string
	for _, g := range h.Groups() {
		for _, c := range g.Children {
			if c.ASIN != "" {
				out = append(out, c.ASIN)
			}
		}
	}
	return out
}

// HeroASINs lists every flagged hero.
func (h *Hierarchy) HeroASINs() []string {
	var out []string
	for _, g := range h.Groups() {
		out = append(out, g.HeroASINs...)
	}
	return out
}

// ParentOf returns the key of the group that holds asin.
func (h *Hierarchy) ParentOf(asin string) (string, bool) {
	for _, g := range h.Groups() {
		if g.hasChild(asin) {
			return g.Key, true
		}
	}
	return "", false
}

// ParentASINs lists the parent ASIN of every group that has one.
func (h *Hierarchy) ParentASINs() []string {
	var out []string
	for _, g := range h.Groups() {
		if g.ParentASIN != "" {
			out = append(out, g.ParentASIN)
		}
	}
	return out
}

// ASINToSKU maps child ASINs to their SKUs.
func (h *Hierarchy) ASINToSKU() map[string]string {
	out := make(map[string]string)
	for _, g := range h.Groups() {
		for _, c := range g.Children {
			if c.ASIN != "" && c.SKU != "" {
				out[c.ASIN] = c.SKU
			}
		}
	}
	return out
}

// SKUToASIN maps child SKUs to their ASINs.
func (h *Hierarchy) SKUToASIN() map[string]string {
	out := make(map[string]string)
	for k, v := range h.ASINToSKU() {
		out[v] = k
	}
	return out
}

// ParentSummary is one row of the parent-level overview.
type ParentSummary struct {
	Key            string   `json:"parent_key"`
	ParentASIN     string   `json:"parent_asin,omitempty"`
	Title          string   `json:"title"`
	VariationTheme string   `json:"variation_theme"`
	ChildCount     int      `json:"child_count"`
	HeroASINs      []string `json:"hero_asins"`
	TotalSessions  float64  `json:"total_sessions"`
	TotalSales     float64  `json:"total_sales"`
	TotalUnits     float64  `json:"total_units"`
}

// Summary lists the groups by total sales, highest first.
func (h *Hierarchy) Summary() []ParentSummary {
	groups := h.Groups()
	out := make([]ParentSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, ParentSummary{
			Key:            g.Key,
			ParentASIN:     g.ParentASIN,
			Title:          truncate(g.Title, 50, "..."),
			VariationTheme: g.VariationTheme,
			ChildCount:     len(g.Children),
			HeroASINs:      append([]string(nil), g.HeroASINs...),
			TotalSessions:  g.TotalSessions,
			TotalSales:     g.TotalSales,
			TotalUnits:     g.TotalUnits,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalSales > out[j].TotalSales })
	return out
}

// ChildSummary is one row of the child-level listing.
type ChildSummary struct {
	ParentKey string `json:"parent_key"`
	ASIN      string `json:"asin"`
	SKU       string `json:"sku"`
	Title     string `json:"title"`
	Colour    string `json:"colour,omitempty"`
	Size      string `json:"size,omitempty"`
	IsHero    bool   `json:"is_hero"`
}

// Children flattens every group's children in hierarchy order.
func (h *Hierarchy) Children() []ChildSummary {
	var out []ChildSummary
	for _, g := range h.Groups() {
		for _, c := range g.Children {
			out = append(out, ChildSummary{
				ParentKey: g.Key,
				ASIN:      c.ASIN,
				SKU:       c.SKU,
				Title:     truncate(c.Title, 50, "..."),
				Colour:    c.Colour,
				Size:      c.Size,
				IsHero:    c.IsHero,
			})
		}
	}
	return out
}
