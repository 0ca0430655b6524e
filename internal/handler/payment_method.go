package handler

import (
	"net/http"

	"github.com/usedgoods/marketplace/internal/service"
)

type PaymentMethodHandler struct {
	paymentMethodService *service.PaymentMethodService
}

func NewPaymentMethodHandler(paymentMethodService *service.PaymentMethodService) *PaymentMethodHandler {
	return &PaymentMethodHandler{paymentMethodService: paymentMethodService}
}

func (h *PaymentMethodHandler) List(w http.ResponseWriter, r *http.Request) {
	methods, err := h.paymentMethodService.All(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, methods)
}
