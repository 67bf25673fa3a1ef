package pipeline

import (
	"fmt"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/aluiziolira/go-scrape-yes24/models"
)

// SheetName is the worksheet holding the records in XLSX output.
const SheetName = "books"

// XLSXWriter buffers records in a workbook and saves it on Close.
type XLSXWriter struct {
	path string
	file *excelize.File
	rows int
	mu   sync.Mutex
}

// NewXLSXWriter prepares an in-memory workbook for filename.
func NewXLSXWriter(filename string) *XLSXWriter {
	return &XLSXWriter{path: filename}
}

func (xw *XLSXWriter) init() error {
	if xw.file != nil {
		return nil
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(models.Columns))
	for i, column := range models.Columns {
		header[i] = column
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		f.Close()
		return fmt.Errorf("write xlsx header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		err = f.SetRowStyle(SheetName, 1, 1, bold)
	}
	if err == nil {
		err = f.SetPanes(SheetName, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("style xlsx header: %w", err)
	}

	xw.file = f
	return nil
}

// Write appends books below the header, numbers kept numeric.
func (xw *XLSXWriter) Write(books []models.Book) error {
	xw.mu.Lock()
	defer xw.mu.Unlock()

	if err := xw.init(); err != nil {
		return err
	}
	for _, b := range books {
		cell, err := excelize.CoordinatesToCellName(1, xw.rows+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			b.Title, b.Author, b.Publisher, b.PublicationDate,
			b.OriginalPrice, b.SalePrice, b.SaleIndex, b.ReviewCount, b.Rating,
			b.ImageURL, b.BookURL,
		}
		if err := xw.file.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", xw.rows+2, err)
		}
		xw.rows++
	}
	return nil
}

// Close saves the workbook to disk.
func (xw *XLSXWriter) Close() error {
	xw.mu.Lock()
	defer xw.mu.Unlock()

	if err := xw.init(); err != nil {
		return err
	}
	defer func() {
		xw.file.Close()
		xw.file = nil
	}()
	if err := ensureDir(xw.path); err != nil {
		return err
	}
	if err := xw.file.SaveAs(xw.path); err != nil {
		return fmt.Errorf("save xlsx file: %w", err)
	}
	return nil
}

// Validate ensures at least one record was written.
func (xw *XLSXWriter) Validate() error {
	xw.mu.Lock()
	defer xw.mu.Unlock()
	if xw.rows == 0 {
		return fmt.Errorf("xlsx file %s has no records", xw.path)
	}
	return nil
}
