//go:build windows

package qodbc

// The ODBC driver needs cgo on non-Windows platforms, so it is only
// registered where QODBC can actually run.
import _ "github.com/alexbrainman/odbc" // registers the "odbc" driver
