package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"karabook/internal/database"
	"karabook/internal/models"
)

func (s *HTTPServer) handleRooms(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rooms, err := s.rooms.ListRooms(r.Context())
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})

	case http.MethodPost:
		var room models.Room
		if !decodeBody(w, r, &room) {
			return
		}
		created, err := s.rooms.CreateRoom(r.Context(), &room)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleRoomByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "/api/v1/rooms/")
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		room, err := s.rooms.GetRoom(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, room)

	case http.MethodPut:
		var room models.Room
		if !decodeBody(w, r, &room) {
			return
		}
		updated, err := s.rooms.UpdateRoom(r.Context(), id, &room)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := s.rooms.DeleteRoom(r.Context(), id); err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleCustomers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		customers, err := s.customers.ListCustomers(r.Context())
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"customers": customers})

	case http.MethodPost:
		var customer models.Customer
		if !decodeBody(w, r, &customer) {
			return
		}
		created, err := s.customers.CreateCustomer(r.Context(), &customer)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleCustomerByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "/api/v1/customers/")
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		customer, err := s.customers.GetCustomer(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, customer)

	case http.MethodPut:
		var customer models.Customer
		if !decodeBody(w, r, &customer) {
			return
		}
		updated, err := s.customers.UpdateCustomer(r.Context(), id, &customer)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := s.customers.DeleteCustomer(r.Context(), id); err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type bookingRequest struct {
	RoomID     string `json:"room_id"`
	CustomerID string `json:"customer_id"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Status     string `json:"status"`
}

type bookingPatchRequest struct {
	RoomID     *string `json:"room_id"`
	CustomerID *string `json:"customer_id"`
	Date       *string `json:"date"`
	StartTime  *string `json:"start_time"`
	EndTime    *string `json:"end_time"`
	Status     *string `json:"status"`
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		filter := models.BookingFilter{
			RoomID: strings.TrimSpace(r.URL.Query().Get("room_id")),
		}
		if dateStr := strings.TrimSpace(r.URL.Query().Get("date")); dateStr != "" {
			date, err := models.ParseDate(dateStr)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
				return
			}
			filter.Date = &date
		}

		bookings, err := s.bookings.ListBookings(r.Context(), filter)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})

	case http.MethodPost:
		var body bookingRequest
		if !decodeBody(w, r, &body) {
			return
		}

		booking, err := bookingFromRequest(body)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}

		created, err := s.bookings.CreateBooking(r.Context(), booking)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "/api/v1/bookings/")
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		booking, err := s.bookings.GetBooking(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)

	case http.MethodPatch, http.MethodPut:
		var body bookingPatchRequest
		if !decodeBody(w, r, &body) {
			return
		}

		patch, err := patchFromRequest(body)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}

		updated, err := s.bookings.UpdateBooking(r.Context(), id, patch)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := s.bookings.DeleteBooking(r.Context(), id); err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleBookingsExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	filter := models.BookingFilter{
		RoomID: strings.TrimSpace(r.URL.Query().Get("room_id")),
	}
	if dateStr := strings.TrimSpace(r.URL.Query().Get("date")); dateStr != "" {
		date, err := models.ParseDate(dateStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		filter.Date = &date
	}

	bookings, err := s.bookings.ListBookings(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	rooms, err := s.rooms.ListRooms(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	customers, err := s.customers.ListCustomers(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.xlsx"`)
	if err := s.exporter.WriteWorkbook(w, bookings, rooms, customers); err != nil {
		s.logger.Error().Err(err).Msg("export failed")
	}
}

func bookingFromRequest(body bookingRequest) (*models.Booking, error) {
	if strings.TrimSpace(body.Date) == "" {
		return nil, models.NewValidationError("date", "date is required")
	}
	date, err := models.ParseDate(body.Date)
	if err != nil {
		return nil, err
	}

	return &models.Booking{
		RoomID:     strings.TrimSpace(body.RoomID),
		CustomerID: strings.TrimSpace(body.CustomerID),
		Date:       date,
		StartTime:  models.TimeOfDay(body.StartTime),
		EndTime:    models.TimeOfDay(body.EndTime),
		Status:     strings.TrimSpace(body.Status),
	}, nil
}

func patchFromRequest(body bookingPatchRequest) (*models.BookingPatch, error) {
	patch := &models.BookingPatch{
		RoomID:     body.RoomID,
		CustomerID: body.CustomerID,
		Status:     body.Status,
	}

	if body.Date != nil {
		date, err := models.ParseDate(*body.Date)
		if err != nil {
			return nil, err
		}
		patch.Date = &date
	}
	if body.StartTime != nil {
		start, err := models.ParseTimeOfDay("start_time", *body.StartTime)
		if err != nil {
			return nil, err
		}
		patch.StartTime = &start
	}
	if body.EndTime != nil {
		end, err := models.ParseTimeOfDay("end_time", *body.EndTime)
		if err != nil {
			return nil, err
		}
		patch.EndTime = &end
	}

	return patch, nil
}

func pathID(w http.ResponseWriter, r *http.Request, prefix string) (string, bool) {
	id := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, prefix))
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return "", false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeServiceError maps service and store errors onto HTTP statuses.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, database.ErrTimeSlotConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrRoomNumberExists), errors.Is(err, database.ErrEmailExists):
		// Uniqueness violations are input errors; 409 is reserved for
		// scheduling collisions.
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("internal error: %v", err))
	}
}
