package donation

import (
	"net/url"
	"strconv"
)

// Known provider checkout endpoints. Unknown providers fall through to the
// aggregator path so the link still identifies them.
var providerEndpoints = map[string]string{
	"vnpay": "https://pay.vnpay.vn/checkout",
	"momo":  "https://payment.momo.vn/pay",
}

// PaymentURL deterministically builds an external payment link from the
// provider, cash amount, and campaign. It is pure string construction:
// no payment call is made and settlement is out of scope.
func PaymentURL(provider string, amountVND int, campaign string) string {
	base, ok := providerEndpoints[provider]
	if !ok {
		base = "https://pay.vitapoint.app/" + url.PathEscape(provider)
	}

	u, err := url.Parse(base)
	if err != nil {
		return base
	}

	q := u.Query()
	q.Set("amount", strconv.Itoa(amountVND))
	q.Set("currency", "VND")
	if campaign != "" {
		q.Set("campaign", campaign)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
