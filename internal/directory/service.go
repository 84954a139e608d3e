// Package directory models services as returned by adminusers.
package directory

// GoLiveStage tracks a service's progress through requesting a live account.
type GoLiveStage string

const (
	StageNotStarted                    GoLiveStage = "NOT_STARTED"
	StageEnteredOrganisationName       GoLiveStage = "ENTERED_ORGANISATION_NAME"
	StageEnteredOrganisationAddress    GoLiveStage = "ENTERED_ORGANISATION_ADDRESS"
	StageChosenPSPStripe               GoLiveStage = "CHOSEN_PSP_STRIPE"
	StageChosenPSPWorldpay             GoLiveStage = "CHOSEN_PSP_WORLDPAY"
	StageChosenPSPGovBankingWorldpay   GoLiveStage = "CHOSEN_PSP_GOV_BANKING_WORLDPAY"
	StageTermsAgreedStripe             GoLiveStage = "TERMS_AGREED_STRIPE"
	StageTermsAgreedWorldpay           GoLiveStage = "TERMS_AGREED_WORLDPAY"
	StageTermsAgreedGovBankingWorldpay GoLiveStage = "TERMS_AGREED_GOV_BANKING_WORLDPAY"
	StageDenied                        GoLiveStage = "DENIED"
	StageLive                          GoLiveStage = "LIVE"
)

// IsRequested returns true once terms have been agreed and the request submitted.
func (s GoLiveStage) IsRequested() bool {
	switch s {
	case StageTermsAgreedStripe, StageTermsAgreedWorldpay, StageTermsAgreedGovBankingWorldpay:
		return true
	default:
		return false
	}
}

// IsInProgress returns true while the request to go live is being filled in.
func (s GoLiveStage) IsInProgress() bool {
	switch s {
	case StageEnteredOrganisationName, StageEnteredOrganisationAddress,
		StageChosenPSPStripe, StageChosenPSPWorldpay, StageChosenPSPGovBankingWorldpay:
		return true
	default:
		return false
	}
}

// IsPending returns true until the service is live or has been denied.
func (s GoLiveStage) IsPending() bool {
	return s != StageLive && s != StageDenied
}

// Service is a merchant's service.
type Service struct {
	ExternalID         string      `json:"external_id"`
	Name               string      `json:"name"`
	CurrentGoLiveStage GoLiveStage `json:"current_go_live_stage"`
}
