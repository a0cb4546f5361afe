// Package hierarchy groups catalog items into parent products with their
// variation children and flags each parent's hero children by sales.
package hierarchy

import (
	"strings"

	"github.com/vinodismyname/sellerscope/internal/reports"
	"github.com/vinodismyname/sellerscope/internal/table"
)

// Role is an item's place in a variation family.
type Role string

const (
	RoleParent     Role = "Parent"
	RoleChild      Role = "Child"
	RoleStandalone Role = "Standalone"
)

// ASINInfo is one catalog item.
type ASINInfo struct {
	ASIN           string `json:"asin"`
	SKU            string `json:"sku"`
	Title          string `json:"title"`
	Brand          string `json:"brand,omitempty"`
	Role           Role   `json:"role"`
	ParentSKU      string `json:"parent_sku,omitempty"`
	VariationTheme string `json:"variation_theme,omitempty"`
	Colour         string `json:"colour,omitempty"`
	Size           string `json:"size,omitempty"`
	IsHero         bool   `json:"is_hero"`
}

// ParentGroup owns the children of one parent product. HeroASINs names a
// subset of Children; the flag itself lives on each child.
type ParentGroup struct {
	Key            string      `json:"key"`
	ParentASIN     string      `json:"parent_asin,omitempty"`
	Title          string      `json:"title"`
	VariationTheme string      `json:"variation_theme"`
	Children       []*ASINInfo `json:"children"`
	HeroASINs      []string    `json:"hero_asins"`
	TotalSessions  float64     `json:"total_sessions"`
	TotalSales     float64     `json:"total_sales"`
	TotalUnits     float64     `json:"total_units"`
}

func (g *ParentGroup) hasChild(asin string) bool {
	for _, c := range g.Children {
		if c.ASIN == asin {
			return true
		}
	}
	return false
}

// Hierarchy maps parent keys to groups and remembers insertion order.
type Hierarchy struct {
	order  []string
	groups map[string]*ParentGroup
}

// New returns an empty hierarchy.
func New() *Hierarchy {
	return &Hierarchy{groups: make(map[string]*ParentGroup)}
}

// Add inserts g unless its key is taken. It reports whether g was added.
func (h *Hierarchy) Add(g *ParentGroup) bool {
	if _, ok := h.groups[g.Key]; ok {
		return false
	}
	h.groups[g.Key] = g
	h.order = append(h.order, g.Key)
	return true
}

// Get returns the group stored under key.
func (h *Hierarchy) Get(key string) (*ParentGroup, bool) {
	if h == nil {
		return nil, false
	}
	g, ok := h.groups[key]
	return g, ok
}

// Len is the number of parent groups.
func (h *Hierarchy) Len() int {
	if h == nil {
		return 0
	}
	return len(h.order)
}

// Groups returns every group in insertion order.
func (h *Hierarchy) Groups() []*ParentGroup {
	if h == nil {
		return nil
	}
	out := make([]*ParentGroup, 0, len(h.order))
	for _, k := range h.order {
		out = append(out, h.groups[k])
	}
	return out
}

func clrItem(rec table.Record, role Role) *ASINInfo {
	return &ASINInfo{
		ASIN:           rec.Str(reports.ColCLRProductID),
		SKU:            rec.Str(reports.ColCLRSKU),
		Title:          rec.Str(reports.ColCLRItemName),
		Brand:          rec.Str(reports.ColCLRBrandName),
		Role:           role,
		ParentSKU:      rec.Str(reports.ColCLRParentSKU),
		VariationTheme: rec.Str(reports.ColCLRVariationTheme),
		Colour:         rec.Str(reports.ColCLRColour),
		Size:           rec.Str(reports.ColCLRSize),
	}
}

func parentage(rec table.Record) string {
	return strings.TrimSpace(rec.Str(reports.ColCLRParentageLevel))
}

// FromCategoryListing builds the hierarchy from a Category Listing Report.
// Parent rows open groups, child rows join the group named by their parent
// SKU, and rows with neither a parentage level nor a parent SKU become
// singleton groups keyed by their own SKU. Rows that reference a parent SKU
// that is not in the report are not grouped; they are returned as orphans.
func FromCategoryListing(t *table.Table) (*Hierarchy, []ASINInfo) {
	h := New()
	if t == nil {
		return h, nil
	}
	for _, rec := range t.Records {
		if !strings.EqualFold(parentage(rec), string(RoleParent)) {
			continue
		}
		h.Add(&ParentGroup{
			Key:            rec.Str(reports.ColCLRSKU),
			ParentASIN:     rec.Str(reports.ColCLRProductID),
			Title:          rec.Str(reports.ColCLRItemName),
			VariationTheme: rec.Str(reports.ColCLRVariationTheme),
		})
	}

	var orphans []ASINInfo
	for _, rec := range t.Records {
		level := parentage(rec)
		parentSKU := rec.Str(reports.ColCLRParentSKU)
		switch {
		case strings.EqualFold(level, string(RoleChild)):
			if g, ok := h.Get(parentSKU); ok && parentSKU != "" {
				g.Children = append(g.Children, clrItem(rec, RoleChild))
				continue
			}
			orphans = append(orphans, *clrItem(rec, RoleChild))
		case level == "" && parentSKU == "":
			sku := rec.Str(reports.ColCLRSKU)
			if sku == "" {
				continue
			}
			item := clrItem(rec, RoleStandalone)
			item.VariationTheme = ""
			h.Add(&ParentGroup{
				Key:            sku,
				ParentASIN:     item.ASIN,
				Title:          item.Title,
				VariationTheme: string(RoleStandalone),
				Children:       []*ASINInfo{item},
			})
		case level == "":
			orphans = append(orphans, *clrItem(rec, RoleChild))
		}
	}
	return h, orphans
}

// FromBusinessReport infers the hierarchy from the parent/child ASIN columns
// when no listing report is available. Rows without a parent ASIN are skipped.
func FromBusinessReport(t *table.Table) *Hierarchy {
	h := New()
	if t == nil {
		return h
	}
	for _, rec := range t.Records {
		parent := rec.Str(reports.ColParentASIN)
		if parent == "" {
			continue
		}
		g, ok := h.Get(parent)
		if !ok {
			g = &ParentGroup{
				Key:            parent,
				ParentASIN:     parent,
				Title:          truncate(rec.Str(reports.ColTitle), 50, ""),
				VariationTheme: "Unknown",
			}
			h.Add(g)
		}
		child := rec.Str(reports.ColChildASIN)
		if !g.hasChild(child) {
			g.Children = append(g.Children, &ASINInfo{
				ASIN:      child,
				SKU:       rec.Str(reports.ColSKU),
				Title:     rec.Str(reports.ColTitle),
				Role:      RoleChild,
				ParentSKU: parent,
			})
		}
		g.TotalSales += rec.Float(reports.ColOrderedSales)
		g.TotalSessions += rec.Float(reports.ColSessions)
		g.TotalUnits += rec.Float(reports.ColUnitsOrdered)
	}
	return h
}

func truncate(s string, n int, suffix string) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + suffix
}
