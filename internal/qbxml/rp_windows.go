//go:build windows

package qbxml

import (
	"fmt"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// The installed SDK registers the request processor under a versioned progID.
// Several compatible revisions are tried in sequence before falling back to
// the unversioned name.
var requestProcessorProgIDs = []string{
	"QBXMLRP2.RequestProcessor.1",
	"QBXMLRP2.RequestProcessor.2",
	"QBXMLRP2.RequestProcessor.3",
	"QBXMLRP2.RequestProcessor.4",
	"QBXMLRP2.RequestProcessor.5",
	"QBXMLRP2.RequestProcessor",
}

// localConnectionType 1 selects the local desktop edition.
const localConnectionType = 1

// beginSessionMode 2 requests a DoNotCare file-open mode.
const beginSessionMode = 2

type comRequestProcessor struct {
	unknown *ole.IUnknown
	disp    *ole.IDispatch
}

var _ RequestProcessor = (*comRequestProcessor)(nil)

// NewRequestProcessor initialises COM on the calling thread and instantiates
// the first compatible request processor revision. The caller must invoke
// CloseConnection to release the component and uninitialise COM.
func NewRequestProcessor() (RequestProcessor, error) {
	if err := ole.CoInitialize(0); err != nil {
		return nil, fmt.Errorf("initialise COM: %w", err)
	}

	for _, progID := range requestProcessorProgIDs {
		unknown, err := oleutil.CreateObject(progID)
		if err != nil {
			continue
		}

		disp, err := unknown.QueryInterface(ole.IID_IDispatch)
		if err != nil {
			unknown.Release()
			continue
		}

		return &comRequestProcessor{unknown: unknown, disp: disp}, nil
	}

	ole.CoUninitialize()

	return nil, ErrNoRequestProcessor
}

func (c *comRequestProcessor) OpenConnection(appID, appName string) error {
	_, err := oleutil.CallMethod(c.disp, "OpenConnection2", appID, appName, localConnectionType)
	if err != nil {
		return fmt.Errorf("OpenConnection2: %w", err)
	}

	return nil
}

func (c *comRequestProcessor) BeginSession(companyFile string) (string, error) {
	v, err := oleutil.CallMethod(c.disp, "BeginSession", companyFile, beginSessionMode)
	if err != nil {
		return "", fmt.Errorf("BeginSession: %w", err)
	}
	defer v.Clear()

	return v.ToString(), nil
}

func (c *comRequestProcessor) VersionsForSession(ticket string) ([]string, error) {
	v, err := oleutil.CallMethod(c.disp, "QBXMLVersionsForSession", ticket)
	if err != nil {
		return nil, fmt.Errorf("QBXMLVersionsForSession: %w", err)
	}
	defer v.Clear()

	if arr := v.ToArray(); arr != nil {
		return arr.ToStringArray(), nil
	}

	return []string{v.ToString()}, nil
}

func (c *comRequestProcessor) ProcessRequest(ticket, request string) (string, error) {
	v, err := oleutil.CallMethod(c.disp, "ProcessRequest", ticket, request)
	if err != nil {
		return "", fmt.Errorf("ProcessRequest: %w", err)
	}
	defer v.Clear()

	return v.ToString(), nil
}

func (c *comRequestProcessor) EndSession(ticket string) error {
	_, err := oleutil.CallMethod(c.disp, "EndSession", ticket)
	if err != nil {
		return fmt.Errorf("EndSession: %w", err)
	}

	return nil
}

func (c *comRequestProcessor) CloseConnection() error {
	_, err := oleutil.CallMethod(c.disp, "CloseConnection")

	c.disp.Release()
	c.unknown.Release()
	ole.CoUninitialize()

	if err != nil {
		return fmt.Errorf("CloseConnection: %w", err)
	}

	return nil
}
