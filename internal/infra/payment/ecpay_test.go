package payment_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"eventmart/internal/infra/payment"
	"eventmart/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGateway() *payment.ECPayGateway {
	return payment.NewECPayGateway(payment.Config{
		GatewayURL:    "https://payment-stage.example.test/Cashier/AioCheckOut/V5",
		MerchantID:    "3002607",
		HashKey:       "testkey",
		HashIV:        "testiv",
		ReturnURL:     "https://api.example.test/payments/notify",
		ClientBackURL: "https://shop.example.test/orders",
	})
}

func request() usecase.PaymentRequest {
	return usecase.PaymentRequest{
		OrderNumber:   "EM260310120000123456",
		TotalAmount:   decimal.RequireFromString("1400.50"),
		PaymentMethod: usecase.PaymentMethodATM,
		ItemNames:     []string{"Summer Fest VIP x1", "Festival Tee M x2"},
		CreatedAt:     time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func upperSHA(s string) string {
	sum := sha256.Sum256([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

func TestCheckMacValue_EncodingPipeline(t *testing.T) {
	got := payment.CheckMacValue(map[string]string{"A": "1"}, "k", "v")
	assert.Equal(t, upperSHA("hashkey%3dk%26a%3d1%26hashiv%3dv"), got)

	//.NET 互換: ( ) ! は戻す、空白は +
	got = payment.CheckMacValue(map[string]string{"A": "(x) y!"}, "k", "v")
	assert.Equal(t, upperSHA("hashkey%3dk%26a%3d(x)+y!%26hashiv%3dv"), got)
}

// キーは大文字小文字を無視して並べる。CheckMacValue 自身は含めない
func TestCheckMacValue_KeyOrder(t *testing.T) {
	fields := map[string]string{"b": "2", "A": "1", "CheckMacValue": "ignored"}
	assert.Equal(t, upperSHA("hashkey%3dk%26a%3d1%26b%3d2%26hashiv%3dv"), payment.CheckMacValue(fields, "k", "v"))
}

func TestCheckout_BuildsSignedForm(t *testing.T) {
	g := testGateway()

	r, err := g.Checkout(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, "https://payment-stage.example.test/Cashier/AioCheckOut/V5", r.URL)
	f := r.FormFields
	assert.Equal(t, "3002607", f["MerchantID"])
	assert.Equal(t, "EM260310120000123456", f["MerchantTradeNo"])
	assert.Equal(t, "2026/03/10 12:00:00", f["MerchantTradeDate"])
	assert.Equal(t, "1401", f["TotalAmount"])
	assert.Equal(t, "ATM", f["ChoosePayment"])
	assert.Equal(t, "Summer Fest VIP x1#Festival Tee M x2", f["ItemName"])
	assert.Equal(t, "EM260310120000123456", f["TradeDesc"])
	assert.Equal(t, "https://shop.example.test/orders", f["ClientBackURL"])
	assert.Len(t, f["CheckMacValue"], 64)
	assert.True(t, g.Verify(f))

	f["TotalAmount"] = "1"
	assert.False(t, g.Verify(f))
}

func TestCheckout_PaymentMethodMapping(t *testing.T) {
	g := testGateway()
	cases := map[string]string{
		usecase.PaymentMethodCreditCard:       "Credit",
		usecase.PaymentMethodConvenienceStore: "CVS",
		"":                                    "ALL",
	}
	for method, want := range cases {
		req := request()
		req.PaymentMethod = method
		r, err := g.Checkout(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, want, r.FormFields["ChoosePayment"], method)
	}
}

func TestCheckout_TruncatesItemName(t *testing.T) {
	req := request()
	req.ItemNames = []string{strings.Repeat("x", 300), strings.Repeat("y", 300)}

	r, err := testGateway().Checkout(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, r.FormFields["ItemName"], 400)
}

func TestCheckout_TruncatesItemNameOnRuneBoundary(t *testing.T) {
	req := request()
	//3バイト文字なので400バイト目は文字の途中
	req.ItemNames = []string{"xx" + strings.Repeat("演唱會門票", 40)}

	r, err := testGateway().Checkout(context.Background(), req)
	require.NoError(t, err)

	name := r.FormFields["ItemName"]
	assert.True(t, utf8.ValidString(name))
	assert.LessOrEqual(t, len(name), 400)
	assert.Equal(t, 398, len(name))
	assert.True(t, strings.HasPrefix(req.ItemNames[0], name))

	g := testGateway()
	assert.True(t, g.Verify(r.FormFields))
}

func TestCheckout_Rejects(t *testing.T) {
	g := testGateway()

	req := request()
	req.TotalAmount = decimal.Zero
	_, err := g.Checkout(context.Background(), req)
	assert.Error(t, err)

	req = request()
	req.OrderNumber = ""
	_, err = g.Checkout(context.Background(), req)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Checkout(ctx, request())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVerify_MissingMac(t *testing.T) {
	assert.False(t, testGateway().Verify(map[string]string{"MerchantID": "3002607"}))
}
