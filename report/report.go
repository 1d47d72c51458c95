/*
Package report builds the admin .xlsx exports.

PURPOSE:
  Admins export a period's cuotas and staff compensations as one workbook
  with two sheets:
    "Cuotas"         member, period, base, surcharges, total, state, days overdue
    "Compensaciones" staff, activity, enrolled, fee, gross revenue, staff share
  The workbook is written to an io.Writer so the HTTP handler can stream it
  without a temp file.

The numbers on the sheets are the same derived views the UI shows; nothing
is recomputed here.
*/
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/warp/club-engine/compensation"
	"github.com/warp/club-engine/dues"
)

const (
	sheetDues          = "Cuotas"
	sheetCompensations = "Compensaciones"
)

// DuesReport is the input for one workbook.
type DuesReport struct {
	Period        string
	Dues          []dues.View
	Compensations []compensation.Breakdown
}

// Write renders the workbook to w.
func Write(w io.Writer, rep DuesReport) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// The default sheet becomes "Cuotas"; "Compensaciones" is added after.
	defaultSheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(defaultSheet, sheetDues); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetCompensations); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	if err := writeDuesSheet(f, rep); err != nil {
		return err
	}
	if err := writeCompensationsSheet(f, rep); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeDuesSheet(f *excelize.File, rep DuesReport) error {
	header := []interface{}{
		"Socio", "Período", "Base", "Actividades", "Total", "Estado", "Días de atraso",
	}
	if err := f.SetSheetRow(sheetDues, "A1", &header); err != nil {
		return fmt.Errorf("dues header: %w", err)
	}

	row := 2
	for _, v := range rep.Dues {
		values := []interface{}{
			v.MemberName,
			v.Period,
			v.Base.InexactFloat64(),
			v.Surcharges.InexactFloat64(),
			v.Total.InexactFloat64(),
			v.StateLabel,
			v.DaysOverdue,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return fmt.Errorf("dues cell: %w", err)
		}
		if err := f.SetSheetRow(sheetDues, cell, &values); err != nil {
			return fmt.Errorf("dues row %d: %w", row, err)
		}
		row++
	}
	return nil
}

func writeCompensationsSheet(f *excelize.File, rep DuesReport) error {
	header := []interface{}{
		"Staff", "Actividad", "Inscriptos", "Cargo por socio", "Ingresos", "Compensación",
	}
	if err := f.SetSheetRow(sheetCompensations, "A1", &header); err != nil {
		return fmt.Errorf("compensations header: %w", err)
	}

	row := 2
	for _, b := range rep.Compensations {
		values := []interface{}{
			b.InstructorName,
			b.ActivityName,
			b.EnrolledCount,
			b.FeePerMember.InexactFloat64(),
			b.GrossRevenue.InexactFloat64(),
			b.StaffShare.InexactFloat64(),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return fmt.Errorf("compensations cell: %w", err)
		}
		if err := f.SetSheetRow(sheetCompensations, cell, &values); err != nil {
			return fmt.Errorf("compensations row %d: %w", row, err)
		}
		row++
	}
	return nil
}

// Filename returns the download filename for a period's report.
func Filename(period string) string {
	if period == "" {
		period = "todos"
	}
	return fmt.Sprintf("cuotas_%s.xlsx", period)
}
