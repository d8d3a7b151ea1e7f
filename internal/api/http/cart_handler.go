package http

import (
	"net/http"
	"time"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/service"
	"rentmarket-backend/internal/utils"
)

type CartHandler struct {
	cartSvc service.CartService
}

func NewCartHandler(cartSvc service.CartService) *CartHandler {
	return &CartHandler{cartSvc: cartSvc}
}

type cartItemRequest struct {
	ProductID   int32                `json:"product_id"`
	Quantity    *int32               `json:"quantity"`
	Kind        *domain.CartItemKind `json:"kind"`
	RentalStart string               `json:"rental_start"`
	RentalEnd   string               `json:"rental_end"`
}

func optionalDate(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(raw)
	if err != nil {
		return nil, domain.NewValidationError("%s: %v", field, err)
	}
	return &t, nil
}

func (req cartItemRequest) dates() (*time.Time, *time.Time, error) {
	start, err := optionalDate("rental_start", req.RentalStart)
	if err != nil {
		return nil, nil, err
	}
	end, err := optionalDate("rental_end", req.RentalEnd)
	if err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartSvc.GetCart(r.Context(), callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	start, end, err := req.dates()
	if err != nil {
		writeError(w, r, err)
		return
	}
	in := service.CartItemInput{ProductID: req.ProductID, Quantity: 1, Kind: domain.CartItemKindSale, RentalStart: start, RentalEnd: end}
	if req.Quantity != nil {
		in.Quantity = *req.Quantity
	}
	if req.Kind != nil {
		in.Kind = *req.Kind
	}
	cart, err := h.cartSvc.AddItem(r.Context(), callerID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req cartItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	start, end, err := req.dates()
	if err != nil {
		writeError(w, r, err)
		return
	}
	cart, err := h.cartSvc.UpdateItem(r.Context(), callerID(r), itemID, service.CartItemUpdate{
		Quantity:    req.Quantity,
		Kind:        req.Kind,
		RentalStart: start,
		RentalEnd:   end,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	cart, err := h.cartSvc.RemoveItem(r.Context(), callerID(r), itemID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartSvc.ClearCart(r.Context(), callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}
