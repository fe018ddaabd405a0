package payment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"eventmart/internal/usecase"
)

// ECPay の全方位金流（AioCheckOut）向けのフォームを作る。
// 金額の確定は決済側の通知で行うので、ここでは署名付きフォームを返すだけ
type ECPayGateway struct {
	cfg Config
}

type Config struct {
	GatewayURL    string
	MerchantID    string
	HashKey       string
	HashIV        string
	ReturnURL     string
	ClientBackURL string
}

func NewECPayGateway(cfg Config) *ECPayGateway {
	return &ECPayGateway{cfg: cfg}
}

// ItemName の上限（超えたら切る）
const maxItemNameLen = 400

var choosePayment = map[string]string{
	usecase.PaymentMethodCreditCard:       "Credit",
	usecase.PaymentMethodATM:              "ATM",
	usecase.PaymentMethodConvenienceStore: "CVS",
}

func (g *ECPayGateway) Checkout(ctx context.Context, req usecase.PaymentRequest) (usecase.PaymentRedirect, error) {
	if err := ctx.Err(); err != nil {
		return usecase.PaymentRedirect{}, err
	}
	if req.OrderNumber == "" {
		return usecase.PaymentRedirect{}, errors.New("payment: order number is required")
	}
	if !req.TotalAmount.IsPositive() {
		return usecase.PaymentRedirect{}, errors.New("payment: total amount must be positive")
	}

	method, ok := choosePayment[req.PaymentMethod]
	if !ok {
		method = "ALL"
	}

	itemName := truncateUTF8(strings.Join(req.ItemNames, "#"), maxItemNameLen)
	desc := req.Description
	if desc == "" {
		desc = req.OrderNumber
	}

	fields := map[string]string{
		"MerchantID":        g.cfg.MerchantID,
		"MerchantTradeNo":   req.OrderNumber,
		"MerchantTradeDate": req.CreatedAt.Format("2006/01/02 15:04:05"),
		"PaymentType":       "aio",
		//ゲートウェイは整数金額のみ
		"TotalAmount":   req.TotalAmount.Round(0).String(),
		"TradeDesc":     desc,
		"ItemName":      itemName,
		"ReturnURL":     g.cfg.ReturnURL,
		"ChoosePayment": method,
		"EncryptType":   "1",
	}
	if g.cfg.ClientBackURL != "" {
		fields["ClientBackURL"] = g.cfg.ClientBackURL
	}
	fields["CheckMacValue"] = CheckMacValue(fields, g.cfg.HashKey, g.cfg.HashIV)

	return usecase.PaymentRedirect{URL: g.cfg.GatewayURL, FormFields: fields}, nil
}

// 文字の途中で切らない（バイト数で limit 以下）
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	n := limit
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// 決済側から戻ってきたフォームの検証用。
// 入金通知（ReturnURL）の受け口ができたらそこで使う

func (g *ECPayGateway) Verify(fields map[string]string) bool {
	got, ok := fields["CheckMacValue"]
	if !ok {
		return false
	}
	return strings.EqualFold(got, CheckMacValue(fields, g.cfg.HashKey, g.cfg.HashIV))
}

// CheckMacValue はキー名のアルファベット順（大文字小文字無視）に並べ、
// HashKey / HashIV で挟んで URL エンコード → 小文字化 → SHA256 → 大文字16進
func CheckMacValue(fields map[string]string, hashKey, hashIV string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "CheckMacValue" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return strings.ToLower(keys[i]) < strings.ToLower(keys[j])
	})

	var b strings.Builder
	b.WriteString("HashKey=" + hashKey)
	for _, k := range keys {
		b.WriteString("&" + k + "=" + fields[k])
	}
	b.WriteString("&HashIV=" + hashIV)

	encoded := strings.ToLower(url.QueryEscape(b.String()))
	//.NET の UrlEncode に合わせる
	encoded = dotNetReplacer.Replace(encoded)

	sum := sha256.Sum256([]byte(encoded))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

var dotNetReplacer = strings.NewReplacer(
	"%2d", "-",
	"%5f", "_",
	"%2e", ".",
	"%21", "!",
	"%2a", "*",
	"%28", "(",
	"%29", ")",
)
