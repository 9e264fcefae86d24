//go:build !windows

package qbxml

import "errors"

// ErrWindowsOnly is returned on platforms without the COM-based SDK.
var ErrWindowsOnly = errors.New("the QBXML request processor is only available on Windows")

// NewRequestProcessor is unavailable off Windows: the SDK is a COM component.
func NewRequestProcessor() (RequestProcessor, error) {
	return nil, ErrWindowsOnly
}
