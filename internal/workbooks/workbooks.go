package workbooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/xuri/excelize/v2"
)

// Workbook is an open spreadsheet report. Callers must Close it to release
// its parse slot.
type Workbook struct {
	Name string

	file   *excelize.File
	mgr    *Manager
	once   sync.Once
	closed error
}

// ParseGate coordinates capacity for concurrent workbook parses (backed by runtime.Controller).
type ParseGate interface {
	AcquireParse(ctx context.Context) error
	ReleaseParse()
}

// Manager opens workbooks under a shared parse gate. Every open workbook
// holds one gate slot until it is closed.
type Manager struct {
	gate ParseGate
}

// ErrUnsupportedFormat indicates content that is not a readable workbook.
var ErrUnsupportedFormat = errors.New("workbooks: unsupported format")

// ErrSheetNotFound indicates a sheet name absent from the workbook.
var ErrSheetNotFound = errors.New("workbooks: sheet not found")

// NewManager constructs a Manager. A nil gate leaves parses unbounded.
func NewManager(gate ParseGate) *Manager {
	return &Manager{gate: gate}
}

// Open reads a workbook from r. The name is informational.
func (m *Manager) Open(ctx context.Context, name string, r io.Reader) (*Workbook, error) {
	if err := m.acquire(ctx); err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(r)
	if err != nil {
		m.release()
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, name, err)
	}
	return &Workbook{Name: name, file: f, mgr: m}, nil
}

// With opens a workbook from r, runs fn and closes it.
func (m *Manager) With(ctx context.Context, name string, r io.Reader, fn func(*Workbook) error) error {
	wb, err := m.Open(ctx, name, r)
	if err != nil {
		return err
	}
	defer wb.Close()
	return fn(wb)
}

func (m *Manager) acquire(ctx context.Context) error {
	if m.gate == nil {
		return ctx.Err()
	}
	return m.gate.AcquireParse(ctx)
}

func (m *Manager) release() {
	if m.gate == nil {
		return
	}
	m.gate.ReleaseParse()
}

// Sheets lists sheet names in workbook order.
func (w *Workbook) Sheets() []string {
	return w.file.GetSheetList()
}

// HasSheet reports whether the named sheet exists.
func (w *Workbook) HasSheet(name string) bool {
	idx, err := w.file.GetSheetIndex(name)
	return err == nil && idx >= 0
}

// Rows returns the raw cell values of a sheet. excelize trims trailing empty
// cells, so every row is padded to the widest row in the sheet.
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	if !w.HasSheet(sheet) {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}
	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("workbooks: read %s: %w", sheet, err)
	}
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	for i, r := range rows {
		if len(r) < width {
			padded := make([]string, width)
			copy(padded, r)
			rows[i] = padded
		}
	}
	return rows, nil
}

// Close releases the workbook and its parse slot. Safe to call twice.
func (w *Workbook) Close() error {
	w.once.Do(func() {
		w.closed = w.file.Close()
		w.mgr.release()
	})
	return w.closed
}
