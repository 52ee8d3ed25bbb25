package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"karabook/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

// Exporter renders booking lists as Excel workbooks.
type Exporter struct {
	logger *zerolog.Logger
}

func NewExporter(logger *zerolog.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// WriteWorkbook streams an xlsx workbook with one row per booking. Room
// and customer columns fall back to raw ids when no lookup entry exists.
func (e *Exporter) WriteWorkbook(w io.Writer, bookings []*models.Booking, rooms []*models.Room, customers []*models.Customer) error {
	roomsByID := make(map[string]*models.Room, len(rooms))
	for _, room := range rooms {
		roomsByID[room.ID] = room
	}
	customersByID := make(map[string]*models.Customer, len(customers))
	for _, customer := range customers {
		customersByID[customer.ID] = customer
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"Date", "Room", "Customer", "Phone", "Start", "End", "Status"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "G1", style)

	for i, booking := range bookings {
		row := i + 2

		roomLabel := booking.RoomID
		if room, ok := roomsByID[booking.RoomID]; ok {
			roomLabel = room.RoomNumber
		}

		customerLabel := booking.CustomerID
		phone := ""
		if customer, ok := customersByID[booking.CustomerID]; ok {
			customerLabel = customer.Name
			phone = customer.Phone.String()
		}

		values := []interface{}{
			models.DayKey(booking.Date),
			roomLabel,
			customerLabel,
			phone,
			booking.StartTime.String(),
			booking.EndTime.String(),
			booking.Status,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 12)
	_ = f.SetColWidth(sheetName, "B", "D", 22)
	_ = f.SetColWidth(sheetName, "E", "G", 10)

	_ = f.DeleteSheet("Sheet1")

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %v", err)
	}
	return nil
}

// ExportToFile writes the workbook into dir and returns the file path.
func (e *Exporter) ExportToFile(dir string, bookings []*models.Booking, rooms []*models.Room, customers []*models.Customer) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	fileName := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("2006-01-02"))
	filePath := filepath.Join(dir, fileName)

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("error creating file: %v", err)
	}
	defer file.Close()

	if err := e.WriteWorkbook(file, bookings, rooms, customers); err != nil {
		return "", err
	}

	e.logger.Info().Str("file_path", filePath).Msg("excel file created")
	return filePath, nil
}
