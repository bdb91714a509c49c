package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasGuestCheckout(t *testing.T) {
	assert.True(t, hasGuestCheckout("you can continue as guest or sign in"))
	assert.True(t, hasGuestCheckout("guest checkout available"))
	assert.False(t, hasGuestCheckout("sign in to your account"))
}

func TestHasPreview(t *testing.T) {
	assert.True(t, hasPreview("watch the demo below"))
	assert.True(t, hasPreview("start your free trial today"))
	assert.False(t, hasPreview("buy now and save"))
}

func TestHasGatedContent(t *testing.T) {
	assert.True(t, hasGatedContent("unlock the full course"))
	assert.True(t, hasGatedContent("upgrade to download the templates"))
	assert.False(t, hasGatedContent("everything here is free forever"))
}

func TestHasSocialProof(t *testing.T) {
	assert.True(t, hasSocialProof("trusted by 4,000 makers"))
	assert.True(t, hasSocialProof("read a customer review"))
	assert.False(t, hasSocialProof("welcome to our store"))
}

func TestHasRefundPolicyText(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"see our refund policy for details", true},
		{"30-day refund, no questions asked", true},
		{"money-back guarantee", true},
		{"money back guarantee", true},
		{"all sales are final", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, hasRefundPolicyText(tt.text), "text: %s", tt.text)
	}
}

func TestPaymentContext(t *testing.T) {
	tests := []struct {
		name string
		url  string
		text string
		want bool
	}{
		{"checkout in url", "https://example.com/Checkout", "plain page", true},
		{"pay path in url", "https://example.com/pay/session", "plain page", true},
		{"wallet in text", "https://example.com", "pay with apple pay", true},
		{"processor in text", "https://example.com", "secured by stripe", true},
		{"no indicators", "https://example.com/about", "our team and story", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paymentContext(tt.url, tt.text))
		})
	}
}

func TestTapTargetsPass(t *testing.T) {
	tests := []struct {
		name   string
		total  int
		failed int
		want   bool
	}{
		{"no measurable targets", 0, 0, false},
		{"all pass", 20, 0, true},
		{"just under the cutoff", 20, 3, true},
		{"exactly 20 percent fails", 20, 4, false},
		{"mostly failing", 10, 9, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tapTargetsPass(tt.total, tt.failed))
		})
	}
}
