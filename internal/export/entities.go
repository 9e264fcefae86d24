package export

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Entity is one ledger record kind the exporter knows how to query: the
// registry tag doubles as the sheet name, Table names the driver-side table,
// and DateFiltered marks transaction tables that accept a TxnDate range.
type Entity struct {
	Kind         string
	Table        string
	DateFiltered bool
	AllData      bool // member of the "export all" set
}

// entities is the fixed mapping from entity tag to query target. Order here
// is sheet order for multi-entity exports.
var entities = []Entity{
	{Kind: "ChartOfAccounts", Table: "Account", AllData: true},
	{Kind: "Class", Table: "Class", AllData: true},
	{Kind: "Item", Table: "Item", AllData: true},
	{Kind: "Customers", Table: "Customer"},
	{Kind: "Suppliers", Table: "Vendor"},
	{Kind: "Bill", Table: "Bill", DateFiltered: true, AllData: true},
	{Kind: "Invoice", Table: "Invoice", DateFiltered: true, AllData: true},
	{Kind: "InvoiceLine", Table: "InvoiceLine", DateFiltered: true},
	{Kind: "ReceivePaymentLine", Table: "ReceivePaymentLine", DateFiltered: true, AllData: true},
	{Kind: "BillPaymentCheckLine", Table: "BillPaymentCheckLine", DateFiltered: true, AllData: true},
	{Kind: "BillPaymentCreditCardLine", Table: "BillPaymentCreditCardLine", DateFiltered: true, AllData: true},
	{Kind: "CreditMemoLinkedTxn", Table: "CreditMemoLinkedTxn", DateFiltered: true},
	{Kind: "VendorCreditLinkedTxn", Table: "VendorCreditLinkedTxn", DateFiltered: true},
	{Kind: "Journal", Table: "JournalEntry", DateFiltered: true},
}

func init() {
	seen := make(map[string]bool, len(entities))

	for _, e := range entities {
		if e.Kind == "" || e.Table == "" {
			panic(fmt.Sprintf("export: incomplete entity registration %+v", e))
		}

		if seen[strings.ToLower(e.Kind)] {
			panic(fmt.Sprintf("export: duplicate entity %s", e.Kind))
		}

		seen[strings.ToLower(e.Kind)] = true
	}
}

// All returns every registered entity in sheet order.
func All() []Entity {
	return entities
}

// AllData returns the entity set written by a full export.
func AllData() []Entity {
	return lo.Filter(entities, func(e Entity, _ int) bool {
		return e.AllData
	})
}

// Lookup resolves an entity tag case-insensitively.
func Lookup(kind string) (Entity, bool) {
	for _, e := range entities {
		if strings.EqualFold(e.Kind, kind) {
			return e, true
		}
	}

	return Entity{}, false
}

// Kinds returns the registered tags, for command help and error text.
func Kinds() []string {
	return lo.Map(entities, func(e Entity, _ int) string {
		return e.Kind
	})
}
