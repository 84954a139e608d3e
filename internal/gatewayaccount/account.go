// Package gatewayaccount models a merchant's gateway account as returned by connector.
package gatewayaccount

import "time"

// PaymentProvider identifies the PSP a credential or account is configured against.
type PaymentProvider string

const (
	ProviderWorldpay PaymentProvider = "worldpay"
	ProviderStripe   PaymentProvider = "stripe"
	ProviderSandbox  PaymentProvider = "sandbox"
)

// CredentialState is the lifecycle state of a credential. Transitions are owned by connector.
type CredentialState string

const (
	CredentialCreated  CredentialState = "CREATED"
	CredentialEntered  CredentialState = "ENTERED"
	CredentialVerified CredentialState = "VERIFIED"
	CredentialActive   CredentialState = "ACTIVE"
	CredentialRetired  CredentialState = "RETIRED"
)

// IsPending returns true for credentials that are set up but not yet taking payments.
func (s CredentialState) IsPending() bool {
	switch s {
	case CredentialCreated, CredentialEntered, CredentialVerified:
		return true
	default:
		return false
	}
}

// AccountType represents whether an account takes real payments.
type AccountType string

const (
	AccountTypeTest AccountType = "test"
	AccountTypeLive AccountType = "live"
)

// WorldpayMerchantDetails holds one set of Worldpay merchant credentials.
// The password is never returned by connector.
type WorldpayMerchantDetails struct {
	MerchantCode string `json:"merchant_code,omitempty"`
	Username     string `json:"username,omitempty"`
}

// NewWorldpayMerchantDetails creates a merchant details record.
func NewWorldpayMerchantDetails(merchantCode, username string) *WorldpayMerchantDetails {
	return &WorldpayMerchantDetails{
		MerchantCode: merchantCode,
		Username:     username,
	}
}

// IsEntered returns true if any of the details have been supplied.
func (d *WorldpayMerchantDetails) IsEntered() bool {
	return d != nil && (d.MerchantCode != "" || d.Username != "")
}

// Payload is the provider specific part of a credential. Fields for providers other than the
// credential's own are left empty.
type Payload struct {
	// Worldpay
	OneOffCustomerInitiated    *WorldpayMerchantDetails `json:"one_off_customer_initiated,omitempty"`
	RecurringCustomerInitiated *WorldpayMerchantDetails `json:"recurring_customer_initiated,omitempty"`
	RecurringMerchantInitiated *WorldpayMerchantDetails `json:"recurring_merchant_initiated,omitempty"`

	// Stripe
	StripeAccountID string `json:"stripe_account_id,omitempty"`
}

// Credential is one PSP linkage attempt on a gateway account.
type Credential struct {
	ExternalID      string          `json:"external_id"`
	PaymentProvider PaymentProvider `json:"payment_provider"`
	State           CredentialState `json:"state"`
	CreatedAt       time.Time       `json:"created_date"`
	Credentials     Payload         `json:"credentials"`
}

// ThreeDSFlex holds the Worldpay 3DS Flex configuration of an account.
type ThreeDSFlex struct {
	OrganisationalUnitID   string `json:"organisational_unit_id,omitempty"`
	Issuer                 string `json:"issuer,omitempty"`
	ExemptionEngineEnabled bool   `json:"exemption_engine_enabled"`
}

// IsConfigured returns true once flex credentials have been entered.
func (f *ThreeDSFlex) IsConfigured() bool {
	return f != nil && f.OrganisationalUnitID != ""
}

// GatewayAccount is a read-only projection of a merchant's payment account.
// Values are decoded from connector responses and never modified afterwards.
type GatewayAccount struct {
	ID                    int64           `json:"gateway_account_id"`
	ExternalID            string          `json:"external_id"`
	Type                  AccountType     `json:"type"`
	PaymentProvider       PaymentProvider `json:"payment_provider"`
	AllowMoto             bool            `json:"allow_moto"`
	RecurringEnabled      bool            `json:"recurring_enabled"`
	ProviderSwitchEnabled bool            `json:"provider_switch_enabled"`
	Disabled              bool            `json:"disabled"`
	Worldpay3DSFlex       *ThreeDSFlex    `json:"worldpay_3ds_flex,omitempty"`
	Credentials           []Credential    `json:"gateway_account_credentials"`
}

// IsLive returns true for live accounts.
func (a GatewayAccount) IsLive() bool {
	return a.Type == AccountTypeLive
}

// IsTest returns true for test accounts.
func (a GatewayAccount) IsTest() bool {
	return a.Type == AccountTypeTest
}
