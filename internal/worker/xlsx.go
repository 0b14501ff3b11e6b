package worker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"hotelier/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const bookingsSheet = "Bookings"

var bookingHeaders = []string{
	"Booking ID", "Reference", "Customer", "Email", "Hotel",
	"Room", "Check-in", "Last Night", "Guests", "Total Price", "Created At",
}

// XLSXExporter maintains a bookings.xlsx report on disk, one row per stay.
// The file is rewritten through excelize on every append, guarded by a
// mutex since the worker is the only writer.
type XLSXExporter struct {
	path string
	mu   sync.Mutex
	log  zerolog.Logger
}

func NewXLSXExporter(exportDir string, logger *zerolog.Logger) *XLSXExporter {
	return &XLSXExporter{
		path: filepath.Join(exportDir, "bookings.xlsx"),
		log:  logger.With().Str("component", "xlsx_export").Logger(),
	}
}

func (e *XLSXExporter) AppendBooking(details *models.BookingDetails) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(e.path), 0o755); err != nil {
		return fmt.Errorf("error creating export directory: %w", err)
	}

	f, err := e.openOrCreate()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(bookingsSheet)
	if err != nil {
		return fmt.Errorf("error reading sheet rows: %w", err)
	}
	next := len(rows) + 1

	for _, stay := range details.Stays {
		guests := make([]string, 0, len(stay.Guests))
		for _, g := range stay.Guests {
			guests = append(guests, g.FirstName+" "+g.LastName)
		}

		values := []interface{}{
			details.Booking.ID,
			details.Booking.Reference,
			details.Customer.FirstName + " " + details.Customer.LastName,
			details.Customer.Email,
			stay.HotelName,
			stay.RoomNumber,
			stay.Stay.StartDate.Format("2006-01-02"),
			stay.Stay.EndDate.Format("2006-01-02"),
			strings.Join(guests, ", "),
			details.Booking.TotalPrice,
			details.Booking.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, next)
			_ = f.SetCellValue(bookingsSheet, cell, value)
		}
		next++
	}

	if err := f.SaveAs(e.path); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	e.log.Debug().Str("reference", details.Booking.Reference).Str("file_path", e.path).Msg("booking exported")
	return nil
}

func (e *XLSXExporter) openOrCreate() (*excelize.File, error) {
	if _, err := os.Stat(e.path); err == nil {
		f, err := excelize.OpenFile(e.path)
		if err != nil {
			return nil, fmt.Errorf("error opening report file: %w", err)
		}
		return f, nil
	}

	f := excelize.NewFile()
	index, err := f.NewSheet(bookingsSheet)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, header := range bookingHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(bookingsSheet, cell, header)
	}
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err == nil {
		first, _ := excelize.CoordinatesToCellName(1, 1)
		last, _ := excelize.CoordinatesToCellName(len(bookingHeaders), 1)
		_ = f.SetCellStyle(bookingsSheet, first, last, style)
	}
	_ = f.SetColWidth(bookingsSheet, "A", "K", 18)
	return f, nil
}
