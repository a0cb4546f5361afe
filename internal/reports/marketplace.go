package reports

import "strings"

// Marketplace describes an Amazon storefront.
type Marketplace struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Domain   string `json:"domain"`
}

var marketplaces = map[string]Marketplace{
	"US": {Code: "US", Name: "United States", Currency: "USD", Domain: "amazon.com"},
	"CA": {Code: "CA", Name: "Canada", Currency: "CAD", Domain: "amazon.ca"},
	"UK": {Code: "UK", Name: "United Kingdom", Currency: "GBP", Domain: "amazon.co.uk"},
	"DE": {Code: "DE", Name: "Germany", Currency: "EUR", Domain: "amazon.de"},
	"FR": {Code: "FR", Name: "France", Currency: "EUR", Domain: "amazon.fr"},
	"IT": {Code: "IT", Name: "Italy", Currency: "EUR", Domain: "amazon.it"},
	"ES": {Code: "ES", Name: "Spain", Currency: "EUR", Domain: "amazon.es"},
	"MX": {Code: "MX", Name: "Mexico", Currency: "MXN", Domain: "amazon.com.mx"},
	"AU": {Code: "AU", Name: "Australia", Currency: "AUD", Domain: "amazon.com.au"},
	"JP": {Code: "JP", Name: "Japan", Currency: "JPY", Domain: "amazon.co.jp"},
}

// LookupMarketplace resolves a marketplace code, falling back to US.
func LookupMarketplace(code string) Marketplace {
	if m, ok := marketplaces[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return m
	}
	return marketplaces["US"]
}

// KnownMarketplace reports whether code names a supported storefront.
func KnownMarketplace(code string) bool {
	_, ok := marketplaces[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}
