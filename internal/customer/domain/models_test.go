package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceOfSupply(t *testing.T) {
	cases := []struct {
		name     string
		customer Customer
		want     string
	}{
		{name: "shipping first", customer: Customer{ShippingState: "Goa", BillingState: "Kerala", GSTIN: "27AAPFU0939F1ZV"}, want: "Goa"},
		{name: "billing next", customer: Customer{BillingState: "Kerala", GSTIN: "27AAPFU0939F1ZV"}, want: "Kerala"},
		{name: "from gstin", customer: Customer{GSTIN: "27AAPFU0939F1ZV"}, want: "Maharashtra"},
		{name: "nothing known", customer: Customer{}, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.customer.PlaceOfSupply())
		})
	}
}
