package export

import (
	"fmt"
	"time"

	"github.com/tealeg/xlsx"

	"whisper-bridge/internal/app/model"
)

var headers = []string{
	"ID", "Run ID", "Created At", "Input File", "Engine", "Model",
	"Segments", "Processing (s)", "Error Message",
}

// ToExcel writes the runs to a single-sheet workbook at outputFilePath.
func ToExcel(runs []model.Run, outputFilePath string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("History")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().Value = h
	}

	for _, r := range runs {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(r.ID))
		row.AddCell().Value = r.RunID
		row.AddCell().Value = r.CreatedAt.UTC().Format(time.RFC3339)
		row.AddCell().Value = r.InputName
		row.AddCell().Value = r.Engine
		row.AddCell().Value = r.Model
		row.AddCell().SetInt(r.SegmentCount)
		row.AddCell().Value = fmt.Sprintf("%.2f", float64(r.ProcessingMs)/1000)
		row.AddCell().Value = r.ErrorMessage
	}

	if err := file.Save(outputFilePath); err != nil {
		return fmt.Errorf("save %s: %w", outputFilePath, err)
	}
	return nil
}
