// Package paths holds the self-service route templates used for task and action links.
package paths

import (
	"fmt"
	"net/url"
	"strings"
)

// Route templates. Placeholders start with a colon and are filled positionally by Format.
const (
	WorldpayOneOffCustomerInitiated    = "/service/:serviceExternalId/account/:accountType/settings/worldpay-details/one-off-customer-initiated"
	WorldpayRecurringCustomerInitiated = "/service/:serviceExternalId/account/:accountType/settings/worldpay-details/recurring-customer-initiated"
	WorldpayRecurringMerchantInitiated = "/service/:serviceExternalId/account/:accountType/settings/worldpay-details/recurring-merchant-initiated"
	WorldpayFlexCredentials            = "/service/:serviceExternalId/account/:accountType/settings/worldpay-details/flex-credentials"

	StripeBankDetails              = "/service/:serviceExternalId/account/:accountType/settings/stripe-details/bank-details"
	StripeResponsiblePerson        = "/service/:serviceExternalId/account/:accountType/settings/stripe-details/responsible-person"
	StripeDirector                 = "/service/:serviceExternalId/account/:accountType/settings/stripe-details/director"
	StripeVATNumber                = "/service/:serviceExternalId/account/:accountType/settings/stripe-details/vat-number"
	StripeCompanyNumber            = "/service/:serviceExternalId/account/:accountType/settings/stripe-details/company-number"
	StripeOrganisationDetails      = "/service/:serviceExternalId/account/:accountType/settings/stripe-details/organisation-details"
	StripeGovernmentEntityDocument = "/service/:serviceExternalId/account/:accountType/settings/stripe-details/government-entity-document"

	SwitchPSPMakeLivePayment = "/service/:serviceExternalId/account/:accountType/switch-psp/:credentialExternalId/verify-psp-integration"

	RequestToGoLive     = "/service/:serviceExternalId/request-to-go-live"
	LiveAccountSettings = "/service/:serviceExternalId/account/live/settings"
)

// Format replaces the placeholders of template, in order, with the escaped params.
// It panics if the number of params does not match the number of placeholders.
func Format(template string, params ...string) string {
	segments := strings.Split(template, "/")

	next := 0
	for i, segment := range segments {
		if !strings.HasPrefix(segment, ":") {
			continue
		}
		if next >= len(params) {
			panic(fmt.Sprintf("paths: missing value for %s in %s", segment, template))
		}
		segments[i] = url.PathEscape(params[next])
		next++
	}
	if next != len(params) {
		panic(fmt.Sprintf("paths: %d values given for %d placeholders in %s", len(params), next, template))
	}

	return strings.Join(segments, "/")
}
