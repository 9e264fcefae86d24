package export

import (
	"github.com/MMC-CONVERT2505/reckonex/internal/domain"
)

// AccountsTable shapes accounts fetched over the structured protocol into
// an exportable table. Absent fields stay NULL cells.
func AccountsTable(accounts []*domain.Account) *domain.Table {
	table := &domain.Table{
		Name:    "Accounts",
		Columns: []string{"Name", "AccountType", "AccountNumber", "ListID"},
	}

	for _, account := range accounts {
		row := domain.Row{
			"Name":        account.Name,
			"AccountType": string(account.Type),
			"ListID":      account.ListID,
		}
		if account.HasNumber() {
			row["AccountNumber"] = account.Number
		}

		table.Rows = append(table.Rows, row)
	}

	return table
}

// InvoicesTable shapes invoices fetched over the structured protocol into
// an exportable table.
func InvoicesTable(invoices []*domain.Invoice) *domain.Table {
	table := &domain.Table{
		Name:    "Invoices",
		Columns: []string{"TxnID", "RefNumber", "Customer", "TxnDate", "BalanceRemaining"},
	}

	for _, invoice := range invoices {
		table.Rows = append(table.Rows, domain.Row{
			"TxnID":            invoice.TxnID,
			"RefNumber":        invoice.RefNumber,
			"Customer":         invoice.CustomerName,
			"TxnDate":          invoice.TxnDate,
			"BalanceRemaining": invoice.BalanceRemaining,
		})
	}

	return table
}
