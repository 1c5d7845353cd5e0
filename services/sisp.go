package services

import (
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"html"
	"os"
	"strings"
	"time"
)

// SISP (vinti4) 3-D Secure integration. The guest is redirected to the issuer
// with an auto-submitting form; the gateway later POSTs a callback whose
// authenticity is proven by a keyed SHA-512 fingerprint over an ordered
// concatenation of response fields.

// Callback message types. 8/10/M/P report a successful purchase, 6 a failure.
var sispSuccessMessageTypes = map[string]bool{"8": true, "10": true, "M": true, "P": true}

const SispMessageFailure = "6"

func IsSispSuccess(messageType string) bool {
	return sispSuccessMessageTypes[messageType]
}

// SispClient holds the merchant credentials for the hosted payment page.
type SispClient struct {
	PosID      string
	PosAutCode string // shared secret keyed into every fingerprint
	GatewayURL string
	Currency   string // ISO 4217 numeric; 132 = CVE
}

func NewSispClient() *SispClient {
	currency := os.Getenv("SISP_CURRENCY")
	if currency == "" {
		currency = "132"
	}
	return &SispClient{
		PosID:      os.Getenv("SISP_POS_ID"),
		PosAutCode: os.Getenv("SISP_POS_AUT_CODE"),
		GatewayURL: os.Getenv("SISP_GATEWAY_URL"),
		Currency:   currency,
	}
}

// PaymentRequest carries what the gateway needs to start a 3-D Secure flow.
// MerchantSession must equal the reservation's stored PaymentReference so the
// callback can be correlated later.
type PaymentRequest struct {
	MerchantRef     string
	MerchantSession string
	Amount          float64
	Language        string
	ResponseURL     string // where the gateway sends the guest (and the callback) afterwards
}

// token is the keyed part of every fingerprint: base64(sha512(posAutCode)).
func (c *SispClient) token() string {
	sum := sha512.Sum512([]byte(c.PosAutCode))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// sispAmount formats an amount the way the gateway hashes it: thousandths,
// no separators.
func sispAmount(amount float64) string {
	return fmt.Sprintf("%.0f", amount*1000)
}

// RequestFingerprint signs an outgoing payment request.
func (c *SispClient) RequestFingerprint(timestamp string, p PaymentRequest) string {
	data := strings.Join([]string{
		c.token(),
		timestamp,
		sispAmount(p.Amount),
		p.MerchantRef,
		p.MerchantSession,
		c.PosID,
		c.Currency,
	}, "")
	sum := sha512.Sum512([]byte(data))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// BuildRedirectForm renders the auto-submitting HTML form that sends the
// guest to the 3-D Secure issuer page.
func (c *SispClient) BuildRedirectForm(p PaymentRequest) string {
	timestamp := time.Now().UTC().Format("2006-01-02 15:04:05")
	lang := p.Language
	if lang == "" {
		lang = "pt"
	}

	fields := [][2]string{
		{"transactionCode", "1"},
		{"posID", c.PosID},
		{"merchantRef", p.MerchantRef},
		{"merchantSession", p.MerchantSession},
		{"amount", fmt.Sprintf("%.0f", p.Amount)},
		{"currency", c.Currency},
		{"is3DSec", "1"},
		{"urlMerchantResponse", p.ResponseURL},
		{"languageMessages", lang},
		{"timeStamp", timestamp},
		{"fingerprintversion", "1"},
		{"fingerprint", c.RequestFingerprint(timestamp, p)},
	}

	var b strings.Builder
	b.WriteString(`<html><body onload="document.forms[0].submit()">`)
	b.WriteString(`<form method="post" action="` + html.EscapeString(c.GatewayURL) + `">`)
	for _, f := range fields {
		b.WriteString(`<input type="hidden" name="` + f[0] + `" value="` + html.EscapeString(f[1]) + `"/>`)
	}
	b.WriteString(`</form></body></html>`)
	return b.String()
}

// CallbackFields are the response fields the gateway POSTs back. Field names
// follow the gateway's own casing.
type CallbackFields struct {
	MessageType                 string `json:"messageType" form:"messageType"`
	MerchantRespCP              string `json:"merchantRespCP" form:"merchantRespCP"`
	MerchantRespTid             string `json:"merchantRespTid" form:"merchantRespTid"`
	MerchantRespMerchantRef     string `json:"merchantRespMerchantRef" form:"merchantRespMerchantRef"`
	MerchantRespMerchantSession string `json:"merchantRespMerchantSession" form:"merchantRespMerchantSession"`
	MerchantRespPurchaseAmount  string `json:"merchantRespPurchaseAmount" form:"merchantRespPurchaseAmount"`
	MerchantRespMessageID       string `json:"merchantRespMessageID" form:"merchantRespMessageID"`
	MerchantRespPan             string `json:"merchantRespPan" form:"merchantRespPan"`
	MerchantRespTimeStamp       string `json:"merchantRespTimeStamp" form:"merchantRespTimeStamp"`
	ResultFingerPrint           string `json:"resultFingerPrint" form:"resultFingerPrint"`
}

// ResponseFingerprint recomputes the expected fingerprint for a callback from
// the transaction's own fields and the shared secret.
func (c *SispClient) ResponseFingerprint(f CallbackFields) string {
	data := strings.Join([]string{
		c.token(),
		f.MessageType,
		f.MerchantRespCP,
		f.MerchantRespTid,
		f.MerchantRespMerchantRef,
		f.MerchantRespMerchantSession,
		f.MerchantRespPurchaseAmount,
		f.MerchantRespMessageID,
		f.MerchantRespPan,
		f.MerchantRespTimeStamp,
	}, "")
	sum := sha512.Sum512([]byte(data))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// ValidateCallback reports whether the received fingerprint matches the
// recomputed one. A mismatch means the callback cannot be trusted and must
// never confirm a payment.
func (c *SispClient) ValidateCallback(f CallbackFields) bool {
	if f.ResultFingerPrint == "" {
		return false
	}
	return c.ResponseFingerprint(f) == f.ResultFingerPrint
}
