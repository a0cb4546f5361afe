package reports

import (
	"io"

	"github.com/vinodismyname/sellerscope/internal/table"
)

var businessNumeric = []string{
	ColSessions, "Page Views - Total", "Page Views - Total - B2B",
	ColUnitsOrdered, "Units Ordered - B2B",
	"Total Order Items", "Total Order Items - B2B",
	"Session Percentage - Total", "Session Percentage - Total - B2B",
	"Page Views Percentage - Total", "Page Views Percentage - Total - B2B",
	ColBuyBoxPct, "Featured Offer (Buy Box) Percentage - B2B",
	ColUnitSessPct, "Unit Session Percentage - B2B",
	ColOrderedSales, "Ordered Product Sales - B2B",
}

// ParseBusinessReport parses the Detail Page Sales and Traffic export.
func ParseBusinessReport(r io.Reader) (*table.Table, error) {
	t, err := parseCSV(r, columnSpec{numeric: businessNumeric})
	return t, parseErr(KindBusinessReport, err)
}

var inventoryNumeric = []string{
	ColInvAvailable, "pending-removal-quantity",
	ColInvAge0To90, "inv-age-91-to-180-days",
	ColInvAge181To270, "inv-age-271-to-365-days",
	"inv-age-366-to-455-days", "inv-age-456-plus-days",
	"units-shipped-t7", ColInvShippedT30, "units-shipped-t60", "units-shipped-t90",
	ColInvDaysOfSupply, "estimated-excess-quantity",
	"weeks-of-cover-t30", "weeks-of-cover-t90",
	"sell-through", ColInvStorageFee,
	"inbound-quantity", "inbound-working", "inbound-shipped", "inbound-received",
	"your-price", "sales-price", "lowest-price-new-plus-shipping",
	"lowest-price-used", "featuredoffer-price",
}

// ParseInventory parses the FBA inventory health export.
func ParseInventory(r io.Reader) (*table.Table, error) {
	t, err := parseCSV(r, columnSpec{numeric: inventoryNumeric, contains: []string{ColInvAgedSurchargePrefix}})
	return t, parseErr(KindInventory, err)
}

var cogsNumeric = []string{
	ColCOGSCost, "ShippingCostPerOrder", "SurchargeForShippingAbroad", "Value_of_unsellable_returns",
}

// ParseCOGS parses a per-ASIN/SKU cost sheet.
func ParseCOGS(r io.Reader) (*table.Table, error) {
	t, err := parseCSV(r, columnSpec{numeric: cogsNumeric})
	return t, parseErr(KindCOGS, err)
}

var feeNumeric = []string{
	ColFeeYourPrice, "sales-price",
	"estimated-fee-total", ColFeeReferral,
	"estimated-variable-closing-fee", ColFeeFulfillment,
}

// ParseFeeReport parses the FBA and referral fee preview export. Every
// per-marketplace EFN fulfilment fee column is coerced as well.
func ParseFeeReport(r io.Reader) (*table.Table, error) {
	spec := columnSpec{numeric: feeNumeric, contains: []string{"expected-efn-fulfilment-fee"}}
	t, err := parseCSV(r, spec)
	return t, parseErr(KindFeeReport, err)
}
