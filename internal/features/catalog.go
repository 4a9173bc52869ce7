// Package features implements per-user, per-tenant feature access control:
// the immutable feature catalog, the sparse override store, preset templates
// and the draft/baseline editing model used by the admin console.
package features

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Catalog groups. Basic features default to enabled for a fresh user,
// advanced features default to disabled.
const (
	GroupBasic    = "basic"
	GroupAdvanced = "advanced"
)

// CatalogItem is one recognised feature. The catalog is reference data:
// it changes only via deployment, never at runtime.
type CatalogItem struct {
	FeatureKey     string `json:"featureKey"`
	Label          string `json:"label"`
	Group          string `json:"group"`
	Description    string `json:"description"`
	DefaultEnabled bool   `json:"defaultEnabled"`
}

// basicKeys covers daily pump-station accounting: meter readings, stock
// dips, non-fuel revenue, money movement and the daily close.
var basicKeys = []string{
	"dashboard",
	"fuel_products",
	"tank_nozzle",
	"daily_sale_rate",
	"sale_entry",
	"tank_dips",
	"day_opening_stock",
	"lub_sale",
	"ne_pol_sales",
	"swipe",
	"recovery",
	"expenses",
	"denominations",
	"credit_customer_balance",
	"credit_customers",
	"credit_sale",
	"statement_generation",
	"day_settlement",
	"shift_sheet_entry",
	"print_templates",
}

// advancedKeys covers procurement, reporting, HR and auxiliary workflows.
var advancedKeys = []string{
	"vendors",
	"liquid_purchase",
	"lubs_purchase",
	"vendor_transactions",
	"business_crdr_transactions",
	"reports",
	"credit_limit_reports",
	"interest_transactions",
	"attendance",
	"duty_pay",
	"duty_pay_shift",
	"sales_officer",
	"generated_invoices",
	"generate_sale_invoice",
	"expiry_items",
	"pump_settings",
	"swipe_machines",
	"tank_transfers",
	"tank_dips_report",
	"today_sales",
	"lubricants",
	"employees",
	"expense_types",
	"business_parties",
	"guest_entry",
	"day_assignings",
	"employee_cash_recovery",
	"stock_report",
	"lub_loss",
	"lubs_stock",
	"minimum_stock",
	"sheet_records",
	"day_cash_report",
	"tanker_sale",
	"guest_sales",
	"credit_requests",
	"feedback",
}

var (
	catalogItems []CatalogItem
	catalogIndex map[string]CatalogItem
)

func init() {
	titler := cases.Title(language.English)
	add := func(keys []string, group string, defaultEnabled bool) {
		for _, key := range keys {
			item := CatalogItem{
				FeatureKey:     key,
				Label:          titler.String(strings.ReplaceAll(key, "_", " ")),
				Group:          group,
				DefaultEnabled: defaultEnabled,
			}
			catalogItems = append(catalogItems, item)
			catalogIndex[key] = item
		}
	}
	catalogIndex = make(map[string]CatalogItem, len(basicKeys)+len(advancedKeys))
	add(basicKeys, GroupBasic, true)
	add(advancedKeys, GroupAdvanced, false)
}

// Catalog returns all catalog items ordered by group then insertion order.
// Callers receive a copy and may not mutate the catalog.
func Catalog() []CatalogItem {
	out := make([]CatalogItem, len(catalogItems))
	copy(out, catalogItems)
	return out
}

// CatalogLookup resolves a feature key against the catalog.
func CatalogLookup(key string) (CatalogItem, bool) {
	item, ok := catalogIndex[key]
	return item, ok
}

// CatalogSize reports the number of recognised features.
func CatalogSize() int {
	return len(catalogItems)
}
