package qbxml

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/MMC-CONVERT2505/reckonex/internal/domain"
)

// DefaultAppName is the application name announced to the accounting
// application when opening a connection.
const DefaultAppName = "Reckon Data Tool"

// ErrNoRequestProcessor is returned when no compatible request processor
// endpoint revision could be instantiated.
var ErrNoRequestProcessor = errors.New("no compatible request processor version found")

// RequestProcessor is the session API of the accounting application's SDK.
// The production implementation drives the COM component; tests substitute
// a stub.
type RequestProcessor interface {
	OpenConnection(appID, appName string) error
	BeginSession(companyFile string) (string, error)
	VersionsForSession(ticket string) ([]string, error)
	ProcessRequest(ticket, request string) (string, error)
	EndSession(ticket string) error
	CloseConnection() error
}

// Session is one open conversation with the accounting application. It is
// not safe for concurrent use and is scoped to a single job: open, query,
// close.
type Session struct {
	rp        RequestProcessor
	ticket    string
	version   string
	requestID int
}

// NewSession opens a connection and begins a session, then detects the
// protocol version to use. Version detection failure is non-fatal: the
// session falls back to DefaultVersion.
func NewSession(ctx context.Context, rp RequestProcessor, appName string) (*Session, error) {
	if appName == "" {
		appName = DefaultAppName
	}

	if err := rp.OpenConnection("", appName); err != nil {
		_ = rp.CloseConnection()
		return nil, fmt.Errorf("open connection: %w", err)
	}

	ticket, err := rp.BeginSession("")
	if err != nil {
		_ = rp.CloseConnection()
		return nil, fmt.Errorf("begin session: %w", err)
	}

	s := &Session{
		rp:      rp,
		ticket:  ticket,
		version: detectVersion(ctx, rp, ticket),
	}

	zerolog.Ctx(ctx).Debug().
		Str("session.version", s.version).
		Msg("opened session")

	return s, nil
}

func detectVersion(ctx context.Context, rp RequestProcessor, ticket string) string {
	versions, err := rp.VersionsForSession(ticket)
	if err != nil || len(versions) == 0 {
		zerolog.Ctx(ctx).Warn().
			Err(err).
			Str("session.version", DefaultVersion).
			Msg("protocol version detection failed, using default")

		return DefaultVersion
	}

	return versions[len(versions)-1]
}

// Version returns the protocol version negotiated for this session.
func (s *Session) Version() string {
	return s.version
}

// Close ends the session and closes the connection.
func (s *Session) Close() error {
	if err := s.rp.EndSession(s.ticket); err != nil {
		_ = s.rp.CloseConnection()
		return fmt.Errorf("end session: %w", err)
	}

	if err := s.rp.CloseConnection(); err != nil {
		return fmt.Errorf("close connection: %w", err)
	}

	return nil
}

// nextRequestID issues the per-document numeric request id.
func (s *Session) nextRequestID() int {
	s.requestID++
	return s.requestID
}

// Accounts fetches the full chart of accounts, inactive entries included.
func (s *Session) Accounts(ctx context.Context) ([]*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req, err := BuildAccountQuery(s.version, s.nextRequestID())
	if err != nil {
		return nil, err
	}

	resp, err := s.rp.ProcessRequest(s.ticket, req)
	if err != nil {
		return nil, fmt.Errorf("account query: %w", err)
	}

	accounts, err := ParseAccountQueryResponse(resp)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Int("account.total", len(accounts)).
		Msg("fetched accounts")

	return accounts, nil
}

// ModifyAccount issues one update-by-identifier-and-token request.
func (s *Session) ModifyAccount(ctx context.Context, mod AccountMod) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req, err := BuildAccountMod(s.version, s.nextRequestID(), mod)
	if err != nil {
		return err
	}

	resp, err := s.rp.ProcessRequest(s.ticket, req)
	if err != nil {
		return fmt.Errorf("account modify: %w", err)
	}

	return ParseAccountModResponse(resp)
}

// Invoices fetches at most maxReturned invoices.
func (s *Session) Invoices(ctx context.Context, maxReturned int) ([]*domain.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req, err := BuildInvoiceQuery(s.version, s.nextRequestID(), maxReturned)
	if err != nil {
		return nil, err
	}

	resp, err := s.rp.ProcessRequest(s.ticket, req)
	if err != nil {
		return nil, fmt.Errorf("invoice query: %w", err)
	}

	invoices, err := ParseInvoiceQueryResponse(resp)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Int("invoice.total", len(invoices)).
		Msg("fetched invoices")

	return invoices, nil
}
