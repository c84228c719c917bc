package loxerrors

import (
	"fmt"
	"io"
)

// ErrReporter receives every diagnostic the pipeline produces.
// ReportError is used for scan, parse and resolve errors,
// ReportRuntimeError for the error that stopped execution.
type ErrReporter interface {
	ReportError(err error)
	ReportRuntimeError(err error)
}

type errReporter struct {
	w io.Writer
}

func NewErrReporter(w io.Writer) *errReporter {
	return &errReporter{w: w}
}

// ReportError implements ErrReporter.
func (e *errReporter) ReportError(err error) {
	DefaultReportError(e.w, err)
}

// ReportRuntimeError implements ErrReporter.
func (e *errReporter) ReportRuntimeError(err error) {
	DefaultReportRuntimeError(e.w, err)
}

// DefaultReportError is the default implementation of ErrReporter.ReportError.
func DefaultReportError(w io.Writer, err error) {
	fmt.Fprintln(w, err)
}

// DefaultReportRuntimeError is the default implementation of ErrReporter.ReportRuntimeError.
func DefaultReportRuntimeError(w io.Writer, err error) {
	fmt.Fprintln(w, err)
}

// Discard returns a reporter that drops everything.
func Discard() ErrReporter {
	return NewErrReporter(io.Discard)
}

var _ ErrReporter = (*errReporter)(nil)
