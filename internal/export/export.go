// Package export renders shopping lists and order lines as flat tables
// (CSV or XLSX) for download.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/restock/internal/domain/models"
)

// Format selects the file encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"

	defaultStoreCode = "LOJA"
	dateLayout       = "2006-01-02"
)

// Header is the column row shared by every export.
var Header = []string{"Item", "Unidade", "Fornecedor", "Comprador", "Atual", "Minimo", "Comprar"}

// Row is one exported line.
type Row struct {
	Item       string
	Unit       string
	Supplier   string
	Buyer      string
	CurrentQty float64
	MinQty     float64
	ToBuy      float64
}

// ParseFormat accepts "csv" or "xlsx", defaulting to CSV when blank.
func ParseFormat(v string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(v))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", models.Invalid("format", fmt.Sprintf("unsupported export format %q", v))
	}
}

// ContentType is the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// ShoppingRows flattens a derived shopping list.
func ShoppingRows(lines []models.ShoppingLine) []Row {
	rows := make([]Row, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, Row{
			Item:       line.ItemName,
			Unit:       line.Unit,
			Supplier:   line.Supplier,
			Buyer:      line.Buyer,
			CurrentQty: line.CurrentQty,
			MinQty:     line.MinQty,
			ToBuy:      line.ToBuy,
		})
	}
	return rows
}

// OrderRows flattens order lines. Supplier and buyer come from the current
// catalog and stay blank for items that no longer exist.
func OrderRows(lines []models.OrderLine, catalog map[string]models.Item) []Row {
	rows := make([]Row, 0, len(lines))
	for _, line := range lines {
		meta := catalog[line.ItemID]
		rows = append(rows, Row{
			Item:       line.ItemName,
			Unit:       line.Unit,
			Supplier:   meta.Supplier,
			Buyer:      meta.Buyer,
			CurrentQty: line.CurrentQty,
			MinQty:     line.MinQty,
			ToBuy:      line.ToBuy,
		})
	}
	return rows
}

// ShoppingListFilename is lista-compras_<code>_<date>.<ext>.
func ShoppingListFilename(storeCode string, at time.Time, f Format) string {
	return fmt.Sprintf("lista-compras_%s_%s.%s", codeOrDefault(storeCode), at.Format(dateLayout), f)
}

// OrderFilename is pedido_<code>_<orderID>_<date>.<ext>.
func OrderFilename(storeCode, orderID string, at time.Time, f Format) string {
	return fmt.Sprintf("pedido_%s_%s_%s.%s", codeOrDefault(storeCode), orderID, at.Format(dateLayout), f)
}

// Write encodes rows in format f.
func Write(w io.Writer, f Format, sheet string, rows []Row) error {
	if f == FormatXLSX {
		return WriteXLSX(w, sheet, rows)
	}
	return WriteCSV(w, rows)
}

// WriteCSV writes the header and rows as comma separated values.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Item,
			row.Unit,
			row.Supplier,
			row.Buyer,
			formatQty(row.CurrentQty),
			formatQty(row.MinQty),
			formatQty(row.ToBuy),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a single-sheet workbook; quantities are numeric cells.
func WriteXLSX(w io.Writer, sheet string, rows []Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	name := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet != "" && sheet != name {
		if err := f.SetSheetName(name, sheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
		name = sheet
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("resolve cell: %w", err)
		}
		values := []interface{}{row.Item, row.Unit, row.Supplier, row.Buyer, row.CurrentQty, row.MinQty, row.ToBuy}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// SheetValues renders rows as a value grid for spreadsheet APIs, header first.
func SheetValues(rows []Row) [][]interface{} {
	out := make([][]interface{}, 0, len(rows)+1)
	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	out = append(out, header)
	for _, row := range rows {
		out = append(out, []interface{}{row.Item, row.Unit, row.Supplier, row.Buyer, row.CurrentQty, row.MinQty, row.ToBuy})
	}
	return out
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func codeOrDefault(code string) string {
	if strings.TrimSpace(code) == "" {
		return defaultStoreCode
	}
	return code
}
