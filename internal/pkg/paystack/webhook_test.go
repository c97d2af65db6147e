package paystack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"event":"charge.success","data":{"reference":"ref-1","amount":100000}}`)

	sig := GenerateSignature(body, secret)
	assert.True(t, VerifySignature(body, sig, secret))
}

func TestVerifySignatureRejectsTamperedBody(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"event":"charge.success","data":{"amount":100000}}`)
	sig := GenerateSignature(body, secret)

	tampered := []byte(`{"event":"charge.success","data":{"amount":999999}}`)
	assert.False(t, VerifySignature(tampered, sig, secret))
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	body := []byte(`{"event":"charge.success"}`)
	sig := GenerateSignature(body, "whsec_one")
	assert.False(t, VerifySignature(body, sig, "whsec_two"))
}

func TestVerifySignatureRejectsMalformedHeader(t *testing.T) {
	body := []byte(`{}`)
	assert.False(t, VerifySignature(body, "", "whsec_test"))
	assert.False(t, VerifySignature(body, "not-hex", "whsec_test"))
	assert.False(t, VerifySignature(body, "deadbeef", "whsec_test"))
}
