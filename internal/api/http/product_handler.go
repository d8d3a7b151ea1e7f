package http

import (
	"net/http"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/service"
)

type ProductHandler struct {
	productSvc service.ProductService
}

func NewProductHandler(productSvc service.ProductService) *ProductHandler {
	return &ProductHandler{productSvc: productSvc}
}

type productRequest struct {
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	Category         string               `json:"category"`
	PriceCents       int64                `json:"price_cents"`
	RentalPriceCents int64                `json:"rental_price_cents"`
	ProductType      domain.ProductType   `json:"product_type"`
	Status           domain.ProductStatus `json:"status"`
	IsAvailable      *bool                `json:"is_available"`
	Quantity         *int32               `json:"quantity"`
}

func (p productRequest) input() service.ProductInput {
	in := service.ProductInput{
		Title:            p.Title,
		Description:      p.Description,
		Category:         p.Category,
		PriceCents:       p.PriceCents,
		RentalPriceCents: p.RentalPriceCents,
		ProductType:      p.ProductType,
		Status:           p.Status,
		IsAvailable:      true,
		Quantity:         1,
	}
	if p.IsAvailable != nil {
		in.IsAvailable = *p.IsAvailable
	}
	if p.Quantity != nil {
		in.Quantity = *p.Quantity
	}
	return in
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.productSvc.CreateProduct(r.Context(), callerID(r), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.productSvc.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req productRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.productSvc.UpdateProduct(r.Context(), callerID(r), id, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	products, err := h.productSvc.ListMyProducts(r.Context(), callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}
