package domain

// AccountType is the ledger category of a chart-of-accounts entry, as
// reported by the accounting application.
type AccountType string

const (
	AccountTypeBank               AccountType = "Bank"
	AccountTypeCreditCard         AccountType = "CreditCard"
	AccountTypeAccountsPayable    AccountType = "AccountsPayable"
	AccountTypeAccountsReceivable AccountType = "AccountsReceivable"
)

// Account is a chart-of-accounts entry. ListID identifies the record and
// EditSequence is the optimistic-concurrency token required to modify it.
// Number is empty when the account has no account number assigned.
type Account struct {
	ListID       string      `xml:"ListID"`
	EditSequence string      `xml:"EditSequence"`
	Name         string      `xml:"Name"`
	Type         AccountType `xml:"AccountType"`
	Number       string      `xml:"AccountNumber"`
}

// HasNumber reports whether the account already carries an account number.
func (a *Account) HasNumber() bool {
	return a.Number != ""
}

// Invoice is the projection of an invoice returned by the structured
// request protocol.
type Invoice struct {
	TxnID            string `xml:"TxnID"`
	RefNumber        string `xml:"RefNumber"`
	CustomerName     string `xml:"CustomerRef>FullName"`
	TxnDate          string `xml:"TxnDate"`
	BalanceRemaining string `xml:"BalanceRemaining"`
}

// Row maps a column name to a cell value. A column absent from the map is a
// NULL cell.
type Row map[string]string

// Table is an ordered tabular result set: one fetched entity, or one sheet
// of an export workbook. Column order follows the source's field order.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// Cell returns the value at (row, column) and whether it is non-NULL.
func (t *Table) Cell(row int, column string) (string, bool) {
	if row < 0 || row >= len(t.Rows) {
		return "", false
	}

	v, ok := t.Rows[row][column]
	return v, ok
}

// Empty reports whether the table holds no rows.
func (t *Table) Empty() bool {
	return len(t.Rows) == 0
}
