package main

import (
	"net/http"

	"bulkwala/internal/payments"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// paymentMethodsHandler godoc
//
//	@Summary	List payment methods
//	@Tags		payments
//	@Produce	json
//	@Success	200	{array}	string
//	@Router		/payments/methods [get]
func (app *application) paymentMethodsHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonResponse(w, http.StatusOK, app.payments.Methods(), "Payment methods fetched successfully"); err != nil {
		app.internalServerError(w, r, err)
	}
}

type CreateOrderPayload struct {
	Method        string          `json:"method" validate:"required"`
	TransactionID string          `json:"transactionId" validate:"omitempty,max=64"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency" validate:"omitempty,len=3"`
	CustomerName  string          `json:"customerName" validate:"max=100"`
	CustomerEmail string          `json:"customerEmail" validate:"omitempty,email"`
	CustomerPhone string          `json:"customerPhone" validate:"omitempty,inphone"`
}

// createPaymentOrderHandler godoc
//
//	@Summary		Create a payment order
//	@Description	Without Razorpay credentials a simulated order is returned
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateOrderPayload	true	"Order"
//	@Success		201		{object}	payments.PaymentResponse
//	@Failure		400		{object}	envelope
//	@Failure		500		{object}	envelope
//	@Security		ApiKeyAuth
//	@Router			/payments/orders [post]
func (app *application) createPaymentOrderHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateOrderPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if payload.TransactionID == "" {
		payload.TransactionID = uuid.NewString()
	}

	out := app.payments.CreateOrder(r.Context(), payload.Method, payments.PaymentRequest{
		TransactionID: payload.TransactionID,
		Amount:        payload.Amount,
		Currency:      payload.Currency,
		CustomerName:  payload.CustomerName,
		CustomerEmail: payload.CustomerEmail,
		CustomerPhone: payload.CustomerPhone,
	})

	writeOutcome(app, w, r, out, http.StatusCreated, messages{
		OK:       "Payment order created",
		Degraded: "Payment order created (simulated)",
	})
}

type VerifyPaymentPayload struct {
	Method string `json:"method" validate:"required"`
	payments.PaymentVerifyRequest
}

// verifyPaymentHandler godoc
//
//	@Summary	Verify a completed payment
//	@Tags		payments
//	@Accept		json
//	@Produce	json
//	@Param		payload	body		VerifyPaymentPayload	true	"Gateway callback values"
//	@Success	200		{object}	payments.PaymentVerifyResponse
//	@Failure	400		{object}	envelope
//	@Failure	503		{object}	envelope
//	@Security	ApiKeyAuth
//	@Router		/payments/verify [post]
func (app *application) verifyPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var payload VerifyPaymentPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	out := app.payments.Verify(r.Context(), payload.Method, payload.PaymentVerifyRequest)

	writeOutcome(app, w, r, out, http.StatusOK, messages{OK: "Payment verified"})
}
