// Package ppc models the advertising bulk workbook as typed sheets and rows
// and derives campaign, keyword and search-term views from it.
package ppc

import (
	"strings"

	"github.com/vinodismyname/sellerscope/internal/table"
)

// SheetKind is the closed set of bulk workbook sheets the analyzer reads.
type SheetKind int

const (
	SponsoredProducts SheetKind = iota
	SponsoredBrands
	SponsoredDisplay
	SPSearchTerms
	SBSearchTerms
)

var sheetNames = []string{
	SponsoredProducts: "Sponsored Products Campaigns",
	SponsoredBrands:   "Sponsored Brands Campaigns",
	SponsoredDisplay:  "Sponsored Display Campaigns",
	SPSearchTerms:     "SP Search Term Report",
	SBSearchTerms:     "SB Search Term Report",
}

// SheetKinds lists every sheet kind in workbook order.
var SheetKinds = []SheetKind{SponsoredProducts, SponsoredBrands, SponsoredDisplay, SPSearchTerms, SBSearchTerms}

// SheetKindFromName maps an exact workbook sheet name to its kind. Any other
// name is reported as unknown and must be ignored by the caller.
func SheetKindFromName(name string) (SheetKind, bool) {
	name = strings.TrimSpace(name)
	for _, k := range SheetKinds {
		if sheetNames[k] == name {
			return k, true
		}
	}
	return 0, false
}

func (k SheetKind) String() string {
	if int(k) < len(sheetNames) {
		return sheetNames[k]
	}
	return "unknown"
}

// AdType is the short ad-product code for campaign sheets ("SP", "SB", "SD").
func (k SheetKind) AdType() string {
	switch k {
	case SponsoredProducts, SPSearchTerms:
		return "SP"
	case SponsoredBrands, SBSearchTerms:
		return "SB"
	case SponsoredDisplay:
		return "SD"
	}
	return ""
}

// IsCampaignSheet reports whether the sheet holds mixed entity rows.
func (k SheetKind) IsCampaignSheet() bool {
	return k == SponsoredProducts || k == SponsoredBrands || k == SponsoredDisplay
}

func (k SheetKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// EntityType discriminates bulk rows. It is decided once when a row is built.
type EntityType int

const (
	EntityOther EntityType = iota
	EntityCampaign
	EntityAdGroup
	EntityKeyword
	EntityProductTargeting
	EntityProductAd
	EntityNegativeKeyword
	EntityNegativeProductTargeting
	EntityBiddingAdjustment
)

var entityLabels = map[string]EntityType{
	"campaign":                            EntityCampaign,
	"ad group":                            EntityAdGroup,
	"keyword":                             EntityKeyword,
	"product targeting":                   EntityProductTargeting,
	"product ad":                          EntityProductAd,
	"negative keyword":                    EntityNegativeKeyword,
	"campaign negative keyword":           EntityNegativeKeyword,
	"negative product targeting":          EntityNegativeProductTargeting,
	"campaign negative product targeting": EntityNegativeProductTargeting,
	"bidding adjustment":                  EntityBiddingAdjustment,
}

// ParseEntityType maps the bulk "Entity" cell to its discriminator.
func ParseEntityType(s string) EntityType {
	if e, ok := entityLabels[strings.ToLower(strings.TrimSpace(s))]; ok {
		return e
	}
	return EntityOther
}

func (e EntityType) String() string {
	switch e {
	case EntityCampaign:
		return "Campaign"
	case EntityAdGroup:
		return "Ad Group"
	case EntityKeyword:
		return "Keyword"
	case EntityProductTargeting:
		return "Product Targeting"
	case EntityProductAd:
		return "Product Ad"
	case EntityNegativeKeyword:
		return "Negative Keyword"
	case EntityNegativeProductTargeting:
		return "Negative Product Targeting"
	case EntityBiddingAdjustment:
		return "Bidding Adjustment"
	}
	return "Other"
}

func (e EntityType) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// Bulk workbook column names.
const (
	ColEntity          = "Entity"
	ColCampaignID      = "Campaign ID"
	ColAdGroupID       = "Ad Group ID"
	ColCampaignName    = "Campaign Name"
	ColCampaignNameInf = "Campaign Name (Informational only)"
	ColAdGroupName     = "Ad Group Name"
	ColAdGroupNameInf  = "Ad Group Name (Informational only)"
	ColState           = "State"
	ColTargetingType   = "Targeting Type"
	ColBiddingStrategy = "Bidding Strategy"
	ColKeywordText     = "Keyword Text"
	ColMatchType       = "Match Type"
	ColTargetExpr      = "Product Targeting Expression"
	ColASIN            = "ASIN"
	ColASINInf         = "ASIN (Informational only)"
	ColSKU             = "SKU"
	ColSearchTerm      = "Customer Search Term"

	ColImpressions = "Impressions"
	ColClicks      = "Clicks"
	ColSpend       = "Spend"
	ColSales       = "Sales"
	ColOrders      = "Orders"
	ColUnits       = "Units"
	ColBid         = "Bid"
	ColDailyBudget = "Daily Budget"
	ColDefaultBid  = "Ad Group Default Bid"
	ColPercentage  = "Percentage"
	ColCTR         = "Click-through Rate"
	ColCVR         = "Conversion Rate"
	ColACoS        = "ACOS"
	ColCPC         = "CPC"
	ColROAS        = "ROAS"
)

// NumericColumns are coerced to numbers when present on any sheet.
var NumericColumns = []string{
	ColImpressions, ColClicks, ColSpend, ColSales, ColOrders, ColUnits,
	ColBid, ColDailyBudget, ColDefaultBid, ColPercentage,
	ColCTR, ColCVR, ColACoS, ColCPC, ColROAS,
}

// Row is one typed bulk workbook row.
type Row struct {
	Entity          EntityType `json:"entity"`
	CampaignID      string     `json:"campaign_id,omitempty"`
	CampaignName    string     `json:"campaign_name,omitempty"`
	AdGroupID       string     `json:"ad_group_id,omitempty"`
	AdGroupName     string     `json:"ad_group_name,omitempty"`
	State           string     `json:"state,omitempty"`
	TargetingType   string     `json:"targeting_type,omitempty"`
	BiddingStrategy string     `json:"bidding_strategy,omitempty"`
	Keyword         string     `json:"keyword,omitempty"`
	MatchType       string     `json:"match_type,omitempty"`
	TargetExpr      string     `json:"target_expression,omitempty"`
	ASIN            string     `json:"asin,omitempty"`
	SKU             string     `json:"sku,omitempty"`
	SearchTerm      string     `json:"search_term,omitempty"`

	DailyBudget float64 `json:"daily_budget"`
	Bid         float64 `json:"bid"`
	DefaultBid  float64 `json:"default_bid"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Spend       float64 `json:"spend"`
	Sales       float64 `json:"sales"`
	Orders      float64 `json:"orders"`
	Units       float64 `json:"units"`
	CTR         float64 `json:"ctr"`
	CVR         float64 `json:"cvr"`
	ACoS        float64 `json:"acos"`
	ROAS        float64 `json:"roas"`
	CPC         float64 `json:"cpc"`
}

func firstText(rec table.Record, cols ...string) string {
	for _, c := range cols {
		if v := rec.Str(c); v != "" {
			return v
		}
	}
	return ""
}

// RowFromRecord builds a typed row from a normalized bulk record.
func RowFromRecord(rec table.Record) Row {
	return Row{
		Entity:          ParseEntityType(rec.Str(ColEntity)),
		CampaignID:      rec.Str(ColCampaignID),
		CampaignName:    firstText(rec, ColCampaignName, ColCampaignNameInf),
		AdGroupID:       rec.Str(ColAdGroupID),
		AdGroupName:     firstText(rec, ColAdGroupName, ColAdGroupNameInf),
		State:           rec.Str(ColState),
		TargetingType:   rec.Str(ColTargetingType),
		BiddingStrategy: rec.Str(ColBiddingStrategy),
		Keyword:         rec.Str(ColKeywordText),
		MatchType:       rec.Str(ColMatchType),
		TargetExpr:      rec.Str(ColTargetExpr),
		ASIN:            firstText(rec, ColASIN, ColASINInf),
		SKU:             rec.Str(ColSKU),
		SearchTerm:      rec.Str(ColSearchTerm),
		DailyBudget:     rec.Float(ColDailyBudget),
		Bid:             rec.Float(ColBid),
		DefaultBid:      rec.Float(ColDefaultBid),
		Impressions:     rec.Float(ColImpressions),
		Clicks:          rec.Float(ColClicks),
		Spend:           rec.Float(ColSpend),
		Sales:           rec.Float(ColSales),
		Orders:          rec.Float(ColOrders),
		Units:           rec.Float(ColUnits),
		CTR:             rec.Float(ColCTR),
		CVR:             rec.Float(ColCVR),
		ACoS:            rec.Float(ColACoS),
		ROAS:            rec.Float(ColROAS),
		CPC:             rec.Float(ColCPC),
	}
}

// Sheet is one recognised workbook sheet: the normalized table plus typed rows.
type Sheet struct {
	Kind  SheetKind
	Table *table.Table
	Rows  []Row
}

// NewSheet types every record of t.
func NewSheet(kind SheetKind, t *table.Table) *Sheet {
	s := &Sheet{Kind: kind, Table: t}
	if t == nil {
		return s
	}
	s.Rows = make([]Row, 0, len(t.Records))
	for _, rec := range t.Records {
		s.Rows = append(s.Rows, RowFromRecord(rec))
	}
	return s
}

// Entities returns the rows whose entity is one of types, in sheet order.
func (s *Sheet) Entities(types ...EntityType) []Row {
	if s == nil {
		return nil
	}
	var out []Row
	for _, r := range s.Rows {
		for _, t := range types {
			if r.Entity == t {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// Bulk is the typed advertising workbook: at most one sheet per kind.
type Bulk struct {
	sheets map[SheetKind]*Sheet
}

// NewBulk returns an empty workbook model.
func NewBulk() *Bulk {
	return &Bulk{sheets: make(map[SheetKind]*Sheet)}
}

// Set stores s, replacing any sheet of the same kind.
func (b *Bulk) Set(s *Sheet) {
	b.sheets[s.Kind] = s
}

// Sheet returns the sheet of the given kind when present.
func (b *Bulk) Sheet(kind SheetKind) (*Sheet, bool) {
	if b == nil {
		return nil, false
	}
	s, ok := b.sheets[kind]
	return s, ok
}

// Kinds lists present sheet kinds in workbook order.
func (b *Bulk) Kinds() []SheetKind {
	if b == nil {
		return nil
	}
	var out []SheetKind
	for _, k := range SheetKinds {
		if _, ok := b.sheets[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Empty reports whether no recognised sheet was loaded.
func (b *Bulk) Empty() bool {
	return b == nil || len(b.sheets) == 0
}

// CampaignSheets returns the present campaign sheets in workbook order.
func (b *Bulk) CampaignSheets() []*Sheet {
	var out []*Sheet
	for _, k := range b.Kinds() {
		if k.IsCampaignSheet() {
			out = append(out, b.sheets[k])
		}
	}
	return out
}

// SearchTermRows concatenates the SP and SB search term sheets.
func (b *Bulk) SearchTermRows() []Row {
	var out []Row
	for _, k := range []SheetKind{SPSearchTerms, SBSearchTerms} {
		if s, ok := b.Sheet(k); ok {
			out = append(out, s.Rows...)
		}
	}
	return out
}
