package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hotelier/internal/config"
	"hotelier/internal/database"
	"hotelier/internal/domain"
	"hotelier/internal/metrics"
	"hotelier/internal/models"
	"hotelier/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HTTPServer exposes the booking API.
type HTTPServer struct {
	cfg      config.APIConfig
	hotels   domain.HotelService
	bookings domain.BookingService
	server   *http.Server
	auth     *HTTPAuth
	log      zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, hotels domain.HotelService, bookings domain.BookingService, logger *zerolog.Logger) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:      cfg,
		hotels:   hotels,
		bookings: bookings,
		auth:     NewHTTPAuth(cfg),
		log:      logger.With().Str("component", "http").Logger(),
	}

	mux.HandleFunc("/api/v1/hotels/available", srv.handleAvailableHotels)
	mux.HandleFunc("/api/v1/hotels", srv.handleHotelSearch)
	mux.HandleFunc("/api/v1/bookings", srv.handleCreateBooking)
	mux.HandleFunc("/api/v1/bookings/", srv.handleGetBooking)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("http api listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAvailableHotels serves GET /api/v1/hotels/available?start=&end=&guests=.
func (s *HTTPServer) handleAvailableHotels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	start, err := parseDateParam(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseDateParam(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	guests := 1
	if raw := strings.TrimSpace(r.URL.Query().Get("guests")); raw != "" {
		guests, err = strconv.Atoi(raw)
		if err != nil || guests < 1 {
			writeError(w, http.StatusBadRequest, "guests must be a positive integer")
			return
		}
	}

	hotels, err := s.hotels.GetAvailableHotelRooms(r.Context(), start, end, guests)
	if errors.Is(err, service.ErrInvalidRange) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("availability search failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"hotels": hotels})
}

// handleHotelSearch serves GET /api/v1/hotels?name=.
func (s *HTTPServer) handleHotelSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name := r.URL.Query().Get("name")
	hotels, err := s.hotels.GetHotelByName(r.Context(), name)
	if errors.Is(err, service.ErrNameTooShort) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("hotel search failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"hotels": hotels})
}

type bookingRequestBody struct {
	Customer  customerBody `json:"customer"`
	HotelName string       `json:"hotel_name"`
	Rooms     []roomBody   `json:"rooms"`
	StartDate string       `json:"start_date"`
	EndDate   string       `json:"end_date"`
}

type customerBody struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type roomBody struct {
	RoomNumber int            `json:"room_number"`
	Guests     []customerBody `json:"guests"`
}

// handleCreateBooking serves POST /api/v1/bookings. Business rejections come
// back as 409 with the rejection message; only infrastructure failures are
// 5xx.
func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body bookingRequestBody
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if body.HotelName == "" {
		writeError(w, http.StatusBadRequest, "hotel_name is required")
		return
	}
	if body.Customer.Email == "" {
		writeError(w, http.StatusBadRequest, "customer.email is required")
		return
	}

	req, err := body.toRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, message, err := s.bookings.CreateBooking(r.Context(), req)
	if err != nil {
		s.log.Error().Err(err).Msg("booking creation failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if message != "" {
		writeJSON(w, http.StatusConflict, map[string]any{"error_message": message})
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleGetBooking serves GET /api/v1/bookings/{reference}.
func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const prefix = "/api/v1/bookings/"
	reference := strings.TrimPrefix(r.URL.Path, prefix)
	if strings.Contains(reference, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	result, err := s.bookings.GetBookingByReference(r.Context(), reference)
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, "booking not found")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("booking lookup failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (b bookingRequestBody) toRequest() (models.BookingRequest, error) {
	start, err := time.Parse("2006-01-02", b.StartDate)
	if err != nil {
		return models.BookingRequest{}, fmt.Errorf("invalid start_date; expected YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", b.EndDate)
	if err != nil {
		return models.BookingRequest{}, fmt.Errorf("invalid end_date; expected YYYY-MM-DD")
	}

	req := models.BookingRequest{
		Customer:  b.Customer.toInput(),
		HotelName: b.HotelName,
		StartDate: start,
		EndDate:   end,
	}
	for _, room := range b.Rooms {
		sel := models.RoomSelection{RoomNumber: room.RoomNumber}
		for _, g := range room.Guests {
			sel.Guests = append(sel.Guests, g.toInput())
		}
		req.Rooms = append(req.Rooms, sel)
	}
	return req, nil
}

func (c customerBody) toInput() models.CustomerInput {
	return models.CustomerInput{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Address:   c.Address,
		Email:     c.Email,
		Phone:     c.Phone,
	}
}

func parseDateParam(r *http.Request, name string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s format; expected YYYY-MM-DD", name)
	}
	return date, nil
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(endpointLabel(r.URL.Path), strconv.Itoa(recorder.status))
		s.log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// endpointLabel collapses reference paths to a fixed label so booking
// references do not explode metric cardinality.
func endpointLabel(path string) string {
	if strings.HasPrefix(path, "/api/v1/bookings/") {
		return "/api/v1/bookings/{reference}"
	}
	return path
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
