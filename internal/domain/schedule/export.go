package schedule

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"shelter-meds/internal/ports/auth"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var ErrExportFailed = errors.New("generate xlsx failed")

const historySheet = "Dose history"

var historyHeader = []string{
	"Administered at", "Medication", "Dosage", "Given",
	"Administered by", "Scheduled dose", "Occurrence", "Notes",
}

// ExportHistory arma un .xlsx con el historial del animal (mismo orden que
// GetHistory). Devuelve el contenido y un nombre de archivo sugerido.
func (s *Service) ExportHistory(ctx context.Context, scope auth.Scope, animalID string, from, to Date) (*bytes.Buffer, string, error) {
	logs, err := s.GetHistory(ctx, scope, animalID, from, to)
	if err != nil {
		return nil, "", err
	}
	a, err := s.animal(ctx, scope, animalID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(historySheet)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	_ = f.SetColWidth(historySheet, "A", "A", 20)
	_ = f.SetColWidth(historySheet, "B", "C", 22)
	_ = f.SetColWidth(historySheet, "D", "D", 8)
	_ = f.SetColWidth(historySheet, "E", "G", 26)
	_ = f.SetColWidth(historySheet, "H", "H", 40)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 13},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	lastCol, _ := excelize.ColumnNumberToName(len(historyHeader))
	_ = f.SetCellValue(historySheet, "A1", historyTitle(a.Name, from, to))
	_ = f.MergeCell(historySheet, "A1", lastCol+"1")
	_ = f.SetCellStyle(historySheet, "A1", "A1", titleStyle)

	for i, h := range historyHeader {
		c, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(historySheet, c, h)
	}
	_ = f.SetCellStyle(historySheet, "A2", lastCol+"2", headerStyle)

	loc := s.cfg.Location
	for i, l := range logs {
		given := "No"
		if l.WasGiven {
			given = "Yes"
		}
		row := []any{
			l.TimeAdministered.In(loc).Format("2006-01-02 15:04"),
			l.MedicationName,
			l.Dosage,
			given,
			l.AdministeredByUID,
			l.ScheduledDoseID,
			l.OccurrenceID,
			l.Notes,
		}
		start, _ := excelize.CoordinatesToCellName(1, i+3)
		if err := f.SetSheetRow(historySheet, start, &row); err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.log.Error("write xlsx failed", zap.String("animal_id", animalID), zap.Error(err))
		return nil, "", fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	return buf, historyFileName(a.Name, from, to), nil
}

func historyTitle(animalName string, from, to Date) string {
	title := "Dose history: " + animalName
	switch {
	case !from.IsZero() && !to.IsZero():
		title += fmt.Sprintf(" (%s to %s)", from, to)
	case !from.IsZero():
		title += fmt.Sprintf(" (from %s)", from)
	case !to.IsZero():
		title += fmt.Sprintf(" (until %s)", to)
	}
	return title
}

func historyFileName(animalName string, from, to Date) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, animalName)
	if name == "" {
		name = "animal"
	}

	parts := []string{"dose-history", name}
	if !from.IsZero() {
		parts = append(parts, from.String())
	}
	if !to.IsZero() {
		parts = append(parts, to.String())
	}
	return strings.Join(parts, "_") + ".xlsx"
}
