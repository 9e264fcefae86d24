// Package qbxml speaks the structured request/response protocol of the
// accounting application: versioned XML request envelopes submitted through
// a COM request processor, one query or modify operation per document.
package qbxml

import (
	"encoding/xml"
	"fmt"

	"github.com/MMC-CONVERT2505/reckonex/internal/domain"
)

// DefaultVersion is used when version detection against the session fails.
const DefaultVersion = "6.1"

type request struct {
	XMLName xml.Name `xml:"QBXML"`
	Msgs    messages `xml:"QBXMLMsgsRq"`
}

type messages struct {
	OnError      string          `xml:"onError,attr"`
	AccountQuery *accountQueryRq `xml:"AccountQueryRq"`
	AccountMod   *accountModRq   `xml:"AccountModRq"`
	InvoiceQuery *invoiceQueryRq `xml:"InvoiceQueryRq"`
}

type accountQueryRq struct {
	RequestID    int    `xml:"requestID,attr"`
	ActiveStatus string `xml:"ActiveStatus"`
}

type accountModRq struct {
	RequestID int        `xml:"requestID,attr"`
	Mod       AccountMod `xml:"AccountMod"`
}

// AccountMod is one modify operation against a chart-of-accounts entry. The
// EditSequence must come from a prior query of the same account.
type AccountMod struct {
	ListID        string             `xml:"ListID"`
	EditSequence  string             `xml:"EditSequence"`
	Name          string             `xml:"Name"`
	AccountType   domain.AccountType `xml:"AccountType"`
	AccountNumber string             `xml:"AccountNumber"`
}

type invoiceQueryRq struct {
	RequestID        int  `xml:"requestID,attr"`
	MaxReturned      int  `xml:"MaxReturned"`
	IncludeLineItems bool `xml:"IncludeLineItems"`
}

// BuildAccountQuery builds a chart-of-accounts query envelope. ActiveStatus
// is always All so the numbering engine sees inactive accounts too.
func BuildAccountQuery(version string, requestID int) (string, error) {
	return marshalRequest(version, messages{
		AccountQuery: &accountQueryRq{
			RequestID:    requestID,
			ActiveStatus: "All",
		},
	})
}

// BuildAccountMod builds a modify envelope for a single account.
func BuildAccountMod(version string, requestID int, mod AccountMod) (string, error) {
	return marshalRequest(version, messages{
		AccountMod: &accountModRq{
			RequestID: requestID,
			Mod:       mod,
		},
	})
}

// BuildInvoiceQuery builds an invoice query envelope capped at maxReturned
// results, with line items included.
func BuildInvoiceQuery(version string, requestID int, maxReturned int) (string, error) {
	return marshalRequest(version, messages{
		InvoiceQuery: &invoiceQueryRq{
			RequestID:        requestID,
			MaxReturned:      maxReturned,
			IncludeLineItems: true,
		},
	})
}

func marshalRequest(version string, msgs messages) (string, error) {
	msgs.OnError = "stopOnError"

	body, err := xml.MarshalIndent(request{Msgs: msgs}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	header := fmt.Sprintf("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<?qbxml version=%q?>\n", version)

	return header + string(body), nil
}

type response struct {
	XMLName xml.Name `xml:"QBXML"`
	Msgs    struct {
		AccountQuery *accountQueryRs `xml:"AccountQueryRs"`
		AccountMod   *accountModRs   `xml:"AccountModRs"`
		InvoiceQuery *invoiceQueryRs `xml:"InvoiceQueryRs"`
	} `xml:"QBXMLMsgsRs"`
}

type status struct {
	Code     string `xml:"statusCode,attr"`
	Severity string `xml:"statusSeverity,attr"`
	Message  string `xml:"statusMessage,attr"`
}

// queryErr treats only severity Error as fatal: a query matching zero
// records reports a warning status, which must yield zero rows, not an
// error.
func (s status) queryErr() error {
	if s.Severity == "Error" {
		return fmt.Errorf("query failed with status %s: %s", s.Code, s.Message)
	}

	return nil
}

// modErr is stricter than queryErr: any non-zero status fails the modify.
func (s status) modErr() error {
	if s.Code != "" && s.Code != "0" {
		return fmt.Errorf("modify failed with status %s: %s", s.Code, s.Message)
	}

	return nil
}

type accountQueryRs struct {
	status
	Accounts []*domain.Account `xml:"AccountRet"`
}

type accountModRs struct {
	status
	Account *domain.Account `xml:"AccountRet"`
}

type invoiceQueryRs struct {
	status
	Invoices []*domain.Invoice `xml:"InvoiceRet"`
}

// ParseAccountQueryResponse extracts the AccountRet elements from a query
// response. A response with no matches yields an empty slice.
func ParseAccountQueryResponse(raw string) ([]*domain.Account, error) {
	resp, err := unmarshalResponse(raw)
	if err != nil {
		return nil, err
	}

	rs := resp.Msgs.AccountQuery
	if rs == nil {
		return nil, fmt.Errorf("response contains no AccountQueryRs")
	}

	if err := rs.queryErr(); err != nil {
		return nil, err
	}

	return rs.Accounts, nil
}

// ParseAccountModResponse checks the status of a modify response.
func ParseAccountModResponse(raw string) error {
	resp, err := unmarshalResponse(raw)
	if err != nil {
		return err
	}

	rs := resp.Msgs.AccountMod
	if rs == nil {
		return fmt.Errorf("response contains no AccountModRs")
	}

	return rs.modErr()
}

// ParseInvoiceQueryResponse extracts the InvoiceRet elements from a query
// response.
func ParseInvoiceQueryResponse(raw string) ([]*domain.Invoice, error) {
	resp, err := unmarshalResponse(raw)
	if err != nil {
		return nil, err
	}

	rs := resp.Msgs.InvoiceQuery
	if rs == nil {
		return nil, fmt.Errorf("response contains no InvoiceQueryRs")
	}

	if err := rs.queryErr(); err != nil {
		return nil, err
	}

	return rs.Invoices, nil
}

func unmarshalResponse(raw string) (*response, error) {
	var resp response
	if err := xml.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &resp, nil
}
