package http

import (
	"net/http"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/service"
)

type OrderHandler struct {
	orderSvc service.OrderService
}

func NewOrderHandler(orderSvc service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

type orderItemRequest struct {
	ProductID int32 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

type createOrderRequest struct {
	Items             []orderItemRequest `json:"items"`
	ShippingAddressID int32              `json:"shipping_address_id"`
	FromCart          bool               `json:"from_cart"`
}

type orderStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var order *domain.Order
	var err error
	if req.FromCart {
		order, err = h.orderSvc.CreateOrderFromCart(r.Context(), callerID(r), req.ShippingAddressID)
	} else {
		in := service.CreateOrderInput{ShippingAddressID: req.ShippingAddressID}
		for _, it := range req.Items {
			in.Items = append(in.Items, service.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
		}
		order, err = h.orderSvc.CreateOrder(r.Context(), callerID(r), in)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	order, err := h.orderSvc.GetOrder(r.Context(), id, callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderSvc.ListByBuyer(r.Context(), callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderSvc.ListBySeller(r.Context(), callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req orderStatusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	order, err := h.orderSvc.UpdateStatus(r.Context(), id, callerID(r), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
