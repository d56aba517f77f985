package ingest

import (
	"testing"

	"github.com/marbhealth/edipipe/internal/model"
)

func TestHeaderStatus(t *testing.T) {
	str := func(s string) *string { return &s }
	cents := func(n int64) *int64 { return &n }

	cases := []struct {
		name string
		p    model.PaymentRecord
		want string
	}{
		{"explicit_denial", model.PaymentRecord{ClaimStatusCode: str("4"), PaidCents: cents(0), TotalChargeCents: cents(10000)}, "denied"},
		{"denial_overrides_payment", model.PaymentRecord{ClaimStatusCode: str("4"), PaidCents: cents(5000), TotalChargeCents: cents(10000)}, "denied"},
		{"zero_pay_without_denial", model.PaymentRecord{ClaimStatusCode: str("1"), PaidCents: cents(0), TotalChargeCents: cents(10000)}, "partial"},
		{"paid_below_billed", model.PaymentRecord{ClaimStatusCode: str("1"), PaidCents: cents(3000), TotalChargeCents: cents(10000)}, "paid"},
		{"paid_in_full", model.PaymentRecord{ClaimStatusCode: str("1"), PaidCents: cents(10000), TotalChargeCents: cents(10000)}, "paid"},
		{"missing_amounts", model.PaymentRecord{}, "partial"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := headerStatus(&tc.p); got != tc.want {
				t.Errorf("headerStatus: got %q, want %q", got, tc.want)
			}
		})
	}
}
