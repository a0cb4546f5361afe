package reports

// Column names downstream components read from normalized tables.
const (
	ColSearchQuery       = "Search Query"
	ColSearchQueryVolume = "Search Query Volume"
	ColSearchQueryScore  = "Search Query Score"

	ColParentASIN   = "(Parent) ASIN"
	ColChildASIN    = "(Child) ASIN"
	ColTitle        = "Title"
	ColSKU          = "SKU"
	ColSessions     = "Sessions - Total"
	ColUnitsOrdered = "Units Ordered"
	ColOrderedSales = "Ordered Product Sales"
	ColBuyBoxPct    = "Featured Offer (Buy Box) Percentage"
	ColUnitSessPct  = "Unit Session Percentage"

	ColInvASIN         = "asin"
	ColInvSKU          = "sku"
	ColInvAvailable    = "available"
	ColInvDaysOfSupply = "days-of-supply"
	ColInvHealth       = "fba-inventory-level-health-status"
	ColInvShippedT30   = "units-shipped-t30"
	ColInvAge0To90     = "inv-age-0-to-90-days"
	ColInvAge181To270  = "inv-age-181-to-270-days"
	ColInvStorageFee   = "estimated-storage-cost-next-month"

	// Aged inventory surcharge columns share this prefix, one per age band.
	ColInvAgedSurchargePrefix = "estimated-ais-"

	ColCOGSASIN = "ASIN"
	ColCOGSCost = "Cost"

	ColFeeASIN        = "asin"
	ColFeeYourPrice   = "your-price"
	ColFeeReferral    = "estimated-referral-fee-per-unit"
	ColFeeFulfillment = "expected-domestic-fulfilment-fee-per-unit"

	ColReturnASIN     = "ASIN"
	ColReturnQty      = "Return quantity"
	ColReturnRefunded = "Refunded amount"

	ColCLRStatus         = "Status"
	ColCLRSKU            = "SKU"
	ColCLRItemName       = "Item Name"
	ColCLRBrandName      = "Brand Name"
	ColCLRProductID      = "Product Id"
	ColCLRColour         = "Colour"
	ColCLRSize           = "Size"
	ColCLRParentageLevel = "Parentage Level"
	ColCLRParentSKU      = "Parent SKU"
	ColCLRVariationTheme = "Variation Theme"
)

// InventoryAgedColumns are the age buckets beyond 90 days.
var InventoryAgedColumns = []string{
	"inv-age-91-to-180-days", "inv-age-181-to-270-days", "inv-age-271-to-365-days",
	"inv-age-366-to-455-days", "inv-age-456-plus-days",
}

// SQPCountColumn names an SQP funnel column for a view prefix ("Brand"/"ASIN"),
// e.g. SQPCountColumn("Purchases", "Brand") = "Purchases: Brand Count".
func SQPCountColumn(stage, prefix string) string {
	return stage + ": " + prefix + " Count"
}

// SQPShareColumn names an SQP share column, e.g. "Impressions: Brand Share %".
func SQPShareColumn(stage, prefix string) string {
	return stage + ": " + prefix + " Share %"
}

// SQPTotalColumn names an SQP market-total column, e.g. "Purchases: Total Count".
func SQPTotalColumn(stage string) string {
	return stage + ": Total Count"
}
