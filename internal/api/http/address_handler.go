package http

import (
	"net/http"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/service"
)

type AddressHandler struct {
	addressSvc service.AddressService
}

func NewAddressHandler(addressSvc service.AddressService) *AddressHandler {
	return &AddressHandler{addressSvc: addressSvc}
}

type addressRequest struct {
	domain.AddressFields
	IsActive *bool `json:"is_active"`
}

func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	addr, err := h.addressSvc.CreateAddress(r.Context(), callerID(r), req.AddressFields, req.IsActive != nil && *req.IsActive)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, addr)
}

func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.addressSvc.ListAddresses(r.Context(), callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if addrs == nil {
		addrs = []domain.Address{}
	}
	writeJSON(w, http.StatusOK, addrs)
}

func (h *AddressHandler) Active(w http.ResponseWriter, r *http.Request) {
	addr, err := h.addressSvc.GetActive(r.Context(), callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, addr)
}

func (h *AddressHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	addr, err := h.addressSvc.GetAddress(r.Context(), callerID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, addr)
}

func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req addressRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	addr, err := h.addressSvc.UpdateAddress(r.Context(), callerID(r), id, req.AddressFields, req.IsActive)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, addr)
}

func (h *AddressHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	addr, err := h.addressSvc.SetActive(r.Context(), callerID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, addr)
}

func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.addressSvc.DeleteAddress(r.Context(), callerID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
