package http

import (
	"net/http"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/service"
	"rentmarket-backend/internal/utils"
)

type RentalHandler struct {
	rentalSvc service.RentalService
}

func NewRentalHandler(rentalSvc service.RentalService) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc}
}

type createRentalRequest struct {
	ProductID         int32  `json:"product_id"`
	DeliveryAddressID int32  `json:"delivery_address_id"`
	StartDate         string `json:"start_date"`
	EndDate           string `json:"end_date"`
	Message           string `json:"message"`
}

type transitionRequest struct {
	RejectionReason string  `json:"rejection_reason"`
	Rating          int32   `json:"rating"`
	Review          string  `json:"review"`
	DeliveryNotes   *string `json:"delivery_notes"`
	ReturnNotes     *string `json:"return_notes"`
}

func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRentalRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, r, domain.NewValidationError("start_date: %v", err))
		return
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, r, domain.NewValidationError("end_date: %v", err))
		return
	}
	rr, err := h.rentalSvc.CreateRentalRequest(r.Context(), callerID(r), service.CreateRentalInput{
		ProductID:         req.ProductID,
		DeliveryAddressID: req.DeliveryAddressID,
		StartDate:         start,
		EndDate:           end,
		Message:           req.Message,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rr)
}

// transition returns a handler that applies event to the request named in the path.
func (h *RentalHandler) transition(event domain.RentalEvent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req transitionRequest
		if err := decode(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		rr, err := h.rentalSvc.Transition(r.Context(), id, callerID(r), event, service.TransitionArgs{
			RejectionReason: req.RejectionReason,
			Rating:          req.Rating,
			Review:          req.Review,
			DeliveryNotes:   req.DeliveryNotes,
			ReturnNotes:     req.ReturnNotes,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rr)
	}
}

func (h *RentalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rr, err := h.rentalSvc.GetByID(r.Context(), id, callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rr)
}

func (h *RentalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.rentalSvc.DeleteIfPending(r.Context(), id, callerID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RentalHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	out, err := h.rentalSvc.ListByRequester(r.Context(), callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *RentalHandler) ListOwned(w http.ResponseWriter, r *http.Request) {
	out, err := h.rentalSvc.ListByOwner(r.Context(), callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *RentalHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.rentalSvc.Stats(r.Context(), callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
