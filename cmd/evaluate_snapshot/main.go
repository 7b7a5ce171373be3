// evaluate_snapshot evalúa un snapshot de inventario exportado a JSON contra los umbrales por
// defecto y escribe el RunReport en stdout.
//
// Uso: go run ./cmd/evaluate_snapshot [-company c1] [-charset iso-8859-1] [-report alertas.pdf] snapshot.json
// Sin archivo lee de stdin. El snapshot puede ser un arreglo de ítems o {"items": [...]}.
// -report acepta .pdf o .xlsx.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/inventario-alertas/internal/application/alerting"
	"github.com/jhoicas/inventario-alertas/internal/application/dto"
	"github.com/jhoicas/inventario-alertas/internal/domain/entity"
	"github.com/jhoicas/inventario-alertas/internal/infrastructure/excel"
	"github.com/jhoicas/inventario-alertas/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-alertas/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-alertas/pkg/logger"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "evaluate_snapshot: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("evaluate_snapshot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	company := fs.String("company", "cli", "empresa (scope) de la evaluación")
	charset := fs.String("charset", "utf-8", "codificación del archivo: utf-8 | iso-8859-1")
	reportPath := fs.String("report", "", "escribe además un reporte .pdf o .xlsx")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return fmt.Errorf("abrir snapshot: %w", err)
		}
		defer f.Close()
		in = f
	}
	in, err := decodeCharset(in, *charset)
	if err != nil {
		return err
	}

	items, err := readSnapshot(in)
	if err != nil {
		return err
	}

	log := logger.FromZerolog(zerolog.New(stderr).With().Timestamp().Logger())
	engine := alerting.NewEngine(*company, alerting.Deps{
		Records: memory.NewRecordStore(),
		Logger:  log,
	})
	if err := engine.Load(ctx); err != nil {
		return fmt.Errorf("cargar estado: %w", err)
	}

	report, err := engine.GenerateAlerts(ctx, items, alerting.GenerateOptions{})
	if err != nil {
		return fmt.Errorf("evaluar: %w", err)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("escribir resultado: %w", err)
	}

	if *reportPath != "" {
		return writeReport(ctx, engine, *reportPath)
	}
	return nil
}

// decodeCharset envuelve la entrada para exportaciones de sistemas legados en Latin-1.
func decodeCharset(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(strings.ReplaceAll(charset, "_", "-")) {
	case "", "utf-8", "utf8":
		return r, nil
	case "iso-8859-1", "iso8859-1", "latin1", "latin-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("charset no soportado %q", charset)
	}
}

func readSnapshot(r io.Reader) ([]entity.InventoryItemSnapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("leer snapshot: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("snapshot vacío")
	}

	if raw[0] == '[' {
		var items []entity.InventoryItemSnapshot
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decodificar snapshot: %w", err)
		}
		return items, nil
	}
	var req dto.GenerateAlertsRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("decodificar snapshot: %w", err)
	}
	return req.Items, nil
}

func writeReport(ctx context.Context, engine *alerting.Engine, path string) error {
	var renderer alerting.ReportRenderer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		renderer = pdf.NewAlertReportRenderer()
	case ".xlsx":
		renderer = excel.NewAlertExporter()
	default:
		return fmt.Errorf("extensión de reporte no soportada: %s", path)
	}
	out, err := renderer.Render(ctx, engine.Report(alerting.AlertFilter{}))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("escribir reporte: %w", err)
	}
	return nil
}
