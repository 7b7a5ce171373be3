// Package excel exporta las alertas de stock a una hoja de cálculo XLSX.
package excel

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/inventario-alertas/internal/application/alerting"
	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
)

const sheetName = "Alertas"

// AlertExportHeader columnas de la hoja, en orden.
var AlertExportHeader = []string{
	"ID",
	"Producto",
	"Código",
	"Tipo",
	"Severidad",
	"Mensaje",
	"Stock actual",
	"Stock máximo",
	"Porcentaje",
	"Umbral",
	"Reconocida",
	"Reconocida por",
	"Fecha",
}

var columnWidths = []float64{38, 25, 14, 14, 11, 50, 13, 13, 11, 10, 11, 20, 20}

var _ alerting.ReportRenderer = (*AlertExporter)(nil)

// AlertExporter implementa alerting.ReportRenderer con excelize.
type AlertExporter struct{}

// NewAlertExporter construye el exportador.
func NewAlertExporter() *AlertExporter { return &AlertExporter{} }

func (e *AlertExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *AlertExporter) Extension() string { return "xlsx" }

// Render escribe una fila por alerta con la cabecera congelada.
func (e *AlertExporter) Render(_ context.Context, report alerting.AlertReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("excel: crear hoja: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("excel: eliminar hoja por defecto: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#00467F"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo de cabecera: %w", err)
	}

	for i, h := range AlertExportHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("excel: cabecera %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("excel: estilo %s: %w", cell, err)
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheetName, name, name, columnWidths[i]); err != nil {
			return nil, fmt.Errorf("excel: ancho de columna: %w", err)
		}
	}

	for r, a := range report.Alerts {
		for c, v := range rowValues(a) {
			if err := setCellValue(f, c+1, r+2, v); err != nil {
				return nil, fmt.Errorf("excel: fila %d columna %d: %w", r+2, c+1, err)
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("excel: congelar cabecera: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("excel: escribir: %w", err)
	}
	return buf.Bytes(), nil
}

func rowValues(a entity.AutoAlert) []any {
	ack := "No"
	if a.Acknowledged {
		ack = "Sí"
	}
	stock, _ := a.CurrentStock.Float64()
	total, _ := a.TotalStock.Float64()
	pct, _ := a.Percentage.Float64()
	threshold, _ := a.Threshold.Float64()
	return []any{
		a.ID,
		a.ProductName,
		a.ProductCode,
		string(a.Type),
		string(a.Severity),
		a.Message,
		stock,
		total,
		pct,
		threshold,
		ack,
		a.AcknowledgedBy,
		a.Timestamp.Format("2006-01-02 15:04:05"),
	}
}

func setCellValue(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheetName, cell, value)
}
