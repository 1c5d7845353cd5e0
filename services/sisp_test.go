package services

import (
	"strings"
	"testing"
)

func testClient() *SispClient {
	return &SispClient{
		PosID:      "90001",
		PosAutCode: "secret-pos-aut-code",
		GatewayURL: "https://mc.test.vinti4net.cv/payment",
		Currency:   "132",
	}
}

func validCallback(c *SispClient) CallbackFields {
	f := CallbackFields{
		MessageType:                 "8",
		MerchantRespCP:              "001",
		MerchantRespTid:             "TX123456",
		MerchantRespMerchantRef:     "CT-ABC123-XY99",
		MerchantRespMerchantSession: "S20261010-0001",
		MerchantRespPurchaseAmount:  "9000000",
		MerchantRespMessageID:       "MSG-1",
		MerchantRespPan:             "************1234",
		MerchantRespTimeStamp:       "2026-10-10 12:00:00",
	}
	f.ResultFingerPrint = c.ResponseFingerprint(f)
	return f
}

func TestValidateCallbackAcceptsGenuineFingerprint(t *testing.T) {
	c := testClient()
	if !c.ValidateCallback(validCallback(c)) {
		t.Fatal("genuine callback rejected")
	}
}

func TestValidateCallbackRejectsTamperedFields(t *testing.T) {
	c := testClient()
	f := validCallback(c)
	f.MerchantRespPurchaseAmount = "1" // attacker rewrites the amount
	if c.ValidateCallback(f) {
		t.Fatal("tampered callback accepted")
	}
}

func TestValidateCallbackRejectsWrongSecret(t *testing.T) {
	c := testClient()
	f := validCallback(c)

	other := testClient()
	other.PosAutCode = "some-other-secret"
	if other.ValidateCallback(f) {
		t.Fatal("callback signed with a different secret accepted")
	}
}

func TestValidateCallbackRejectsEmptyFingerprint(t *testing.T) {
	c := testClient()
	f := validCallback(c)
	f.ResultFingerPrint = ""
	if c.ValidateCallback(f) {
		t.Fatal("callback without fingerprint accepted")
	}
}

func TestIsSispSuccess(t *testing.T) {
	for _, mt := range []string{"8", "10", "M", "P"} {
		if !IsSispSuccess(mt) {
			t.Errorf("messageType %s should be success", mt)
		}
	}
	if IsSispSuccess(SispMessageFailure) {
		t.Error("messageType 6 is a failure")
	}
	if IsSispSuccess("") {
		t.Error("empty messageType is not success")
	}
}

func TestBuildRedirectForm(t *testing.T) {
	c := testClient()
	form := c.BuildRedirectForm(PaymentRequest{
		MerchantRef:     "CT-ABC123-XY99",
		MerchantSession: "S20261010-0001",
		Amount:          9000,
	})

	for _, want := range []string{
		`action="https://mc.test.vinti4net.cv/payment"`,
		`name="posID" value="90001"`,
		`name="merchantSession" value="S20261010-0001"`,
		`name="amount" value="9000"`,
		`name="fingerprint"`,
		"document.forms[0].submit()",
	} {
		if !strings.Contains(form, want) {
			t.Errorf("redirect form missing %q", want)
		}
	}
}
