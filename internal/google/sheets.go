package google

import (
	"context"
	"fmt"
	"os"
	"strings"

	"hotelier/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsService mirrors bookings into a Google spreadsheet for the sales
// team. The sqlite database stays the system of record; this is display
// only, so every write is append-or-replace and never read back.
type SheetsService struct {
	service         *sheets.Service
	bookingsSheetID string
}

func NewSheetsService(ctx context.Context, credentialsFile, bookingsSheetID string) (*SheetsService, error) {
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return &SheetsService{
		service:         srv,
		bookingsSheetID: bookingsSheetID,
	}, nil
}

// TestConnection reads one cell to verify access before the worker starts.
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.bookingsSheetID, "Bookings!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// AppendBooking adds one row per stay at the bottom of the sheet.
func (s *SheetsService) AppendBooking(ctx context.Context, details *models.BookingDetails) error {
	valueRange := &sheets.ValueRange{Values: bookingRows(details)}

	_, err := s.service.Spreadsheets.Values.Append(s.bookingsSheetID, "Bookings!A:I", valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// ReplaceBookingsSheet rewrites the whole sheet from the given bookings.
func (s *SheetsService) ReplaceBookingsSheet(ctx context.Context, bookings []*models.BookingDetails) error {
	values := [][]interface{}{
		{"Booking ID", "Reference", "Customer", "Email", "Hotel", "Room", "Check-in", "Last Night", "Guests"},
	}
	for _, details := range bookings {
		values = append(values, bookingRows(details)...)
	}

	if _, err := s.service.Spreadsheets.Values.Clear(s.bookingsSheetID, "Bookings!A:I", &sheets.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear bookings sheet: %w", err)
	}

	rangeData := fmt.Sprintf("Bookings!A1:I%d", len(values))
	_, err := s.service.Spreadsheets.Values.Update(s.bookingsSheetID, rangeData, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func bookingRows(details *models.BookingDetails) [][]interface{} {
	var rows [][]interface{}
	for _, stay := range details.Stays {
		guests := make([]string, 0, len(stay.Guests))
		for _, g := range stay.Guests {
			guests = append(guests, g.FirstName+" "+g.LastName)
		}
		rows = append(rows, []interface{}{
			details.Booking.ID,
			details.Booking.Reference,
			details.Customer.FirstName + " " + details.Customer.LastName,
			details.Customer.Email,
			stay.HotelName,
			stay.RoomNumber,
			stay.Stay.StartDate.Format("2006-01-02"),
			stay.Stay.EndDate.Format("2006-01-02"),
			strings.Join(guests, ", "),
		})
	}
	return rows
}
