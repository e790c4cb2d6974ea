package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/domain"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/logger"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/service"
)

// Handler exposes the settlement operations over HTTP
type Handler struct {
	booking    service.BookingService
	mission    service.MissionService
	transfers  service.TransferRetryService
	batchLimit int
}

// NewHandler creates a handler wired to the payment services
func NewHandler(booking service.BookingService, mission service.MissionService, transfers service.TransferRetryService, batchLimit int) *Handler {
	return &Handler{booking: booking, mission: mission, transfers: transfers, batchLimit: batchLimit}
}

// RegisterRoutes attaches all routes to the router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)

	r.HandleFunc("/bookings", h.createBooking).Methods(http.MethodPost)
	r.HandleFunc("/bookings/{id}/confirm", h.confirmBooking).Methods(http.MethodPost)
	r.HandleFunc("/bookings/{id}/decline", h.declineBooking).Methods(http.MethodPost)
	r.HandleFunc("/bookings/{id}/cancel", h.cancelBooking).Methods(http.MethodPost)
	r.HandleFunc("/bookings/{id}/no-show", h.markNoShow).Methods(http.MethodPost)

	r.HandleFunc("/missions/{id}/capture-day-one", h.captureDayOne).Methods(http.MethodPost)
	r.HandleFunc("/missions/{id}/confirm-start", h.confirmStart).Methods(http.MethodPost)
	r.HandleFunc("/missions/{id}/confirm-end", h.confirmEnd).Methods(http.MethodPost)
	r.HandleFunc("/missions/{id}/validate-mandate", h.validateMandate).Methods(http.MethodPost)

	r.HandleFunc("/transfers/{id}/retry", h.retryTransfer).Methods(http.MethodPost)

	// Manual job triggers. The underlying batch operations are idempotent and
	// status-gated, so a trigger racing a scheduled run is harmless.
	r.HandleFunc("/jobs/{name}/run", h.runJob).Methods(http.MethodPost)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createBookingBody struct {
	CustomerID          int64  `json:"customer_id"`
	ServiceID           int64  `json:"service_id"`
	ServiceDate         string `json:"service_date"`
	ServiceStartHour    int    `json:"service_start_hour"`
	TransportFeeCents   int64  `json:"transport_fee_cents"`
	ComputeTransportFee bool   `json:"compute_transport_fee"`
}

func (h *Handler) createBooking(w http.ResponseWriter, r *http.Request) {
	var body createBookingBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	booking, err := h.booking.CreateBooking(r.Context(), service.CreateBookingRequest{
		CustomerID:          body.CustomerID,
		ServiceID:           body.ServiceID,
		ServiceDate:         body.ServiceDate,
		ServiceStartHour:    body.ServiceStartHour,
		TransportFeeCents:   body.TransportFeeCents,
		ComputeTransportFee: body.ComputeTransportFee,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

type actorBody struct {
	ProviderID int64  `json:"provider_id"`
	UserID     int64  `json:"user_id"`
	Reason     string `json:"reason"`
	Party      string `json:"party"`
}

func (h *Handler) confirmBooking(w http.ResponseWriter, r *http.Request) {
	id, body, ok := h.idAndBody(w, r)
	if !ok {
		return
	}
	booking, err := h.booking.ConfirmBooking(r.Context(), body.ProviderID, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *Handler) declineBooking(w http.ResponseWriter, r *http.Request) {
	id, body, ok := h.idAndBody(w, r)
	if !ok {
		return
	}
	booking, err := h.booking.DeclineBooking(r.Context(), body.ProviderID, id, body.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *Handler) cancelBooking(w http.ResponseWriter, r *http.Request) {
	id, body, ok := h.idAndBody(w, r)
	if !ok {
		return
	}
	booking, err := h.booking.CancelBooking(r.Context(), body.UserID, id, body.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *Handler) markNoShow(w http.ResponseWriter, r *http.Request) {
	id, body, ok := h.idAndBody(w, r)
	if !ok {
		return
	}
	booking, err := h.booking.MarkNoShow(r.Context(), body.ProviderID, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *Handler) captureDayOne(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.mission.CaptureDayOne(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) confirmStart(w http.ResponseWriter, r *http.Request) {
	h.confirmMission(w, r, h.mission.ConfirmStart)
}

func (h *Handler) confirmEnd(w http.ResponseWriter, r *http.Request) {
	h.confirmMission(w, r, h.mission.ConfirmEnd)
}

func (h *Handler) confirmMission(w http.ResponseWriter, r *http.Request, confirm func(context.Context, int64, domain.AccountRole) (*domain.MissionAgreement, error)) {
	id, body, ok := h.idAndBody(w, r)
	if !ok {
		return
	}
	var party domain.AccountRole
	switch body.Party {
	case "company":
		party = domain.AccountRoleCompany
	case "provider", "detailer":
		party = domain.AccountRoleProvider
	default:
		writeError(w, http.StatusBadRequest, "party must be company or provider")
		return
	}
	agreement, err := confirm(r.Context(), id, party)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agreement)
}

func (h *Handler) validateMandate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.mission.ValidateSEPAMandate(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) retryTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.transfers.RetryFailedTransfer(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "retried"})
}

func (h *Handler) runJob(w http.ResponseWriter, r *http.Request) {
	var summary *service.BatchSummary
	switch mux.Vars(r)["name"] {
	case "auto-capture-bookings":
		summary = h.booking.AutoCaptureDue(r.Context(), h.batchLimit)
	case "auto-decline-expired":
		summary = h.booking.AutoDeclineExpired(r.Context(), h.batchLimit)
	case "transfer-completed-bookings":
		summary = h.booking.TransferCompleted(r.Context(), h.batchLimit)
	case "capture-mission-payments":
		summary = h.mission.CaptureDue(r.Context(), h.batchLimit)
	case "resolve-mission-timeouts":
		summary = h.mission.ResolveConfirmationTimeouts(r.Context())
	case "retry-failed-transfers":
		summary = h.transfers.RetryAllPending(r.Context(), h.batchLimit)
	default:
		writeError(w, http.StatusNotFound, "unknown job")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) idAndBody(w http.ResponseWriter, r *http.Request) (int64, *actorBody, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return 0, nil, false
	}
	var body actorBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return 0, nil, false
	}
	return id, &body, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps the error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsPrecondition(err):
		writeError(w, http.StatusConflict, err.Error())
	case domain.IsPermanent(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case domain.IsTransient(err):
		writeError(w, http.StatusBadGateway, err.Error())
	case domain.IsMaxRetriesExceeded(err):
		writeError(w, http.StatusConflict, err.Error())
	default:
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, domain.ErrBookingNotFound) || errors.Is(err, domain.ErrAgreementNotFound) ||
			errors.Is(err, domain.ErrTransferNotFound) || errors.Is(err, domain.ErrServiceNotFound) ||
			errors.Is(err, domain.ErrProviderNotFound) || errors.Is(err, domain.ErrCustomerNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		logger.Error("Unhandled API error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
