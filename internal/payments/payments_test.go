package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bulkwala/internal/degrade"
	"bulkwala/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(49999), MinorUnits(decimal.RequireFromString("499.99")))
	assert.Equal(t, int64(100), MinorUnits(decimal.NewFromInt(1)))
	assert.Equal(t, int64(1), MinorUnits(decimal.RequireFromString("0.005")))
}

func TestRazorpayCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		user, pass, _ := r.BasicAuth()
		assert.Equal(t, "rzp_key", user)
		assert.Equal(t, "rzp_secret", pass)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(129999), body["amount"])
		assert.Equal(t, "INR", body["currency"])
		assert.Equal(t, "rcpt_1", body["receipt"])

		_, _ = w.Write([]byte(`{"id":"order_ABC","amount":129999,"currency":"INR","receipt":"rcpt_1","status":"created"}`))
	}))
	defer srv.Close()

	rp := NewRazorpayAdapter("rzp_key", "rzp_secret")
	rp.BaseURL = srv.URL

	resp, err := rp.InitiatePayment(context.Background(), PaymentRequest{TransactionID: "rcpt_1", Amount: decimal.RequireFromString("1299.99")})
	require.NoError(t, err)
	assert.Equal(t, "order_ABC", resp.OrderID)
	assert.Equal(t, int64(129999), resp.Amount)
	assert.Equal(t, "created", resp.Status)
	assert.Equal(t, "rzp_key", resp.KeyID)
}

func TestRazorpayCreateOrderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"Authentication failed"}}`))
	}))
	defer srv.Close()

	rp := NewRazorpayAdapter("k", "s")
	rp.BaseURL = srv.URL

	_, err := rp.InitiatePayment(context.Background(), PaymentRequest{TransactionID: "r", Amount: decimal.NewFromInt(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http=401")
}

func TestRazorpayVerifySignature(t *testing.T) {
	rp := NewRazorpayAdapter("k", "secret")
	sig := Sign("secret", "order_1", "pay_1")

	resp, err := rp.VerifyPayment(context.Background(), PaymentVerifyRequest{OrderID: "order_1", PaymentID: "pay_1", Signature: sig})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	resp, err = rp.VerifyPayment(context.Background(), PaymentVerifyRequest{OrderID: "order_1", PaymentID: "pay_2", Signature: sig})
	require.NoError(t, err)
	assert.False(t, resp.Success)

	_, err = rp.VerifyPayment(context.Background(), PaymentVerifyRequest{OrderID: "order_1"})
	assert.ErrorIs(t, err, store.ErrValidation)
}

func newService(configured bool) *Service {
	m := NewPaymentManager()
	m.RegisterGateway(MethodRazorpay, NewRazorpayAdapter("k", "s"))
	m.RegisterGateway(MethodCOD, CODAdapter{})
	return NewService(m, degrade.New(degrade.Capabilities{degrade.Payments: configured}, nil))
}

func TestServiceSimulatesRazorpayWhenUnconfigured(t *testing.T) {
	out := newService(false).CreateOrder(context.Background(), MethodRazorpay, PaymentRequest{
		TransactionID: "t1",
		Amount:        decimal.RequireFromString("24.99"),
	})

	require.True(t, out.IsDegraded())
	assert.True(t, out.Value.Simulated)
	assert.Equal(t, "created", out.Value.Status)
	assert.Equal(t, int64(2499), out.Value.Amount)
}

func TestServiceVerifyRefusesWhenUnconfigured(t *testing.T) {
	out := newService(false).Verify(context.Background(), MethodRazorpay, PaymentVerifyRequest{OrderID: "o", PaymentID: "p", Signature: "s"})

	assert.True(t, out.IsFailure())
	assert.ErrorIs(t, out.Err, degrade.ErrNotConfigured)
}

func TestServiceCOD(t *testing.T) {
	svc := newService(false)

	out := svc.CreateOrder(context.Background(), MethodCOD, PaymentRequest{TransactionID: "t1", Amount: decimal.NewFromInt(10)})
	require.Equal(t, degrade.StatusSuccess, out.Status)
	assert.Equal(t, "cod_t1", out.Value.OrderID)

	ver := svc.Verify(context.Background(), MethodCOD, PaymentVerifyRequest{OrderID: out.Value.OrderID})
	assert.True(t, ver.Value.Success)
}

func TestServiceRejects(t *testing.T) {
	svc := newService(true)

	out := svc.CreateOrder(context.Background(), "paypal", PaymentRequest{Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, out.Err, ErrUnknownGateway)

	out = svc.CreateOrder(context.Background(), MethodCOD, PaymentRequest{})
	assert.ErrorIs(t, out.Err, ErrInvalidAmount)
}

func TestManagerMethods(t *testing.T) {
	assert.Equal(t, []string{"cod", "razorpay"}, newService(true).manager.Methods())
}
