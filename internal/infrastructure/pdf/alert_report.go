// Package pdf implementa el reporte imprimible de alertas de stock.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa              │  Fecha de generación        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Total / Abiertas / Críticas / Altas / Medias / …   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Severidad | Producto | Mensaje | Stock | % | Estado  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: leyenda                                            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/inventario-alertas/internal/application/alerting"
	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary  = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray     = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorCritical = &props.Color{Red: 190, Green: 30, Blue: 45}
	colorHigh     = &props.Color{Red: 220, Green: 110, Blue: 0}
)

// ── Renderer ──────────────────────────────────────────────────────────────────

var _ alerting.ReportRenderer = (*AlertReportRenderer)(nil)

// AlertReportRenderer implementa alerting.ReportRenderer usando Maroto v2.
type AlertReportRenderer struct{}

// NewAlertReportRenderer construye el generador.
func NewAlertReportRenderer() *AlertReportRenderer { return &AlertReportRenderer{} }

// ContentType tipo MIME del documento.
func (r *AlertReportRenderer) ContentType() string { return "application/pdf" }

// Extension extensión de archivo sugerida.
func (r *AlertReportRenderer) Extension() string { return "pdf" }

// Render genera el PDF y devuelve sus bytes.
func (r *AlertReportRenderer) Render(_ context.Context, report alerting.AlertReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de alertas de stock", true).
		WithAuthor(report.CompanyID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(report.Stats))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	if len(report.Alerts) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin alertas para los filtros seleccionados.", props.Text{Size: 8, Align: align.Center, Top: 2, Color: colorGray}),
		)))
	}
	m.AddRows(tableDetailRows(report.Alerts)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New("Las alertas reconocidas se eliminan automáticamente según la política de auto-reconocimiento de la empresa.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa (izq) y fecha de generación (der).
func headerRow(report alerting.AlertReport) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New("ALERTAS DE STOCK", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Empresa: "+report.CompanyID, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Generado: "+report.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// summaryRow: conteos del almacén.
func summaryRow(st entity.AlertStats) core.Row {
	cell := func(label string, v int) core.Col {
		return col.New(2).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 7, Align: align.Center, Color: colorPrimary, Top: 1}),
			text.New(fmt.Sprintf("%d", v), props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Center, Top: 5}),
		)
	}
	return row.New(14).Add(
		cell("TOTAL", st.Total),
		cell("ABIERTAS", st.Unacknowledged),
		cell("CRÍTICAS", st.Critical),
		cell("ALTAS", st.High),
		cell("MEDIAS", st.Medium),
		cell("BAJAS", st.Low),
	)
}

// tableHeaderRow: cabecera de la tabla de alertas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Severidad", 2, align.Left),
		h("Producto", 3, align.Left),
		h("Mensaje", 4, align.Left),
		h("Stock", 1, align.Right),
		h("%", 1, align.Right),
		h("Estado", 1, align.Center),
	)
}

// tableDetailRows: una fila por alerta.
func tableDetailRows(alerts []entity.AutoAlert) []core.Row {
	result := make([]core.Row, 0, len(alerts))
	for _, a := range alerts {
		state := "Abierta"
		if a.Acknowledged {
			state = "Reconocida"
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(string(a.Severity), props.Text{
				Style: fontstyle.Bold, Size: 8, Top: 1, Left: 1, Color: severityColor(a.Severity),
			})),
			col.New(3).Add(text.New(nonEmpty(a.ProductCode, "-")+" "+a.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(a.Message, props.Text{Size: 7, Top: 1, Left: 1})),
			col.New(1).Add(text.New(a.CurrentStock.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(a.Percentage.StringFixed(1), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(state, props.Text{Size: 7, Align: align.Center, Top: 1})),
		))
	}
	return result
}

// ── helpers ───────────────────────────────────────────────────────────────────

func severityColor(s entity.Severity) *props.Color {
	switch s {
	case entity.SeverityCritical:
		return colorCritical
	case entity.SeverityHigh:
		return colorHigh
	default:
		return colorGray
	}
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
