package tasks

import (
	"fmt"

	"selfservice/internal/gatewayaccount"
	"selfservice/internal/paths"
)

// Stripe task ids
const (
	TaskStripeBankAccount              = "stripe-bank-details"
	TaskStripeResponsiblePerson        = "stripe-responsible-person"
	TaskStripeDirector                 = "stripe-director"
	TaskStripeVATNumber                = "stripe-vat-number"
	TaskStripeCompanyNumber            = "stripe-company-number"
	TaskStripeOrganisationDetails      = "stripe-organisation-details"
	TaskStripeGovernmentEntityDocument = "stripe-government-entity-document"
	TaskMakeLivePayment                = "make-live-payment"
)

// StripeAccountSetup records which Stripe onboarding requirements connector has received.
type StripeAccountSetup struct {
	BankAccount              bool `json:"bank_account"`
	ResponsiblePerson        bool `json:"responsible_person"`
	Director                 bool `json:"director"`
	VATNumber                bool `json:"vat_number"`
	CompanyNumber            bool `json:"company_number"`
	OrganisationDetails      bool `json:"organisation_details"`
	GovernmentEntityDocument bool `json:"government_entity_document"`
}

// EntityDocTaskAvailable returns true once every other requirement has been entered.
func (s StripeAccountSetup) EntityDocTaskAvailable() bool {
	return s.BankAccount &&
		s.ResponsiblePerson &&
		s.Director &&
		s.VATNumber &&
		s.CompanyNumber &&
		s.OrganisationDetails
}

// IsComplete returns true when every requirement has been entered.
func (s StripeAccountSetup) IsComplete() bool {
	return s.EntityDocTaskAvailable() && s.GovernmentEntityDocument
}

// StripeTasks returns the Stripe onboarding tasks for an account.
//
// The make a live payment task is only added while switching to Stripe from another provider and
// fails with an invalid configuration error if the switching credential cannot be resolved.
func StripeTasks(account gatewayaccount.GatewayAccount, setup StripeAccountSetup, serviceExternalID string) (Tasks, error) {
	accountType := string(account.Type)
	href := func(template string) string {
		return paths.Format(template, serviceExternalID, accountType)
	}

	entityDocStatus := StatusCannotStart
	if setup.EntityDocTaskAvailable() {
		entityDocStatus = setupStatus(setup.GovernmentEntityDocument)
	}

	list := []Task{
		{ID: TaskStripeBankAccount, LinkText: "Organisation's bank details", Href: href(paths.StripeBankDetails), Status: setupStatus(setup.BankAccount)},
		{ID: TaskStripeResponsiblePerson, LinkText: "Responsible person", Href: href(paths.StripeResponsiblePerson), Status: setupStatus(setup.ResponsiblePerson)},
		{ID: TaskStripeDirector, LinkText: "Service director", Href: href(paths.StripeDirector), Status: setupStatus(setup.Director)},
		{ID: TaskStripeVATNumber, LinkText: "VAT registration number", Href: href(paths.StripeVATNumber), Status: setupStatus(setup.VATNumber)},
		{ID: TaskStripeCompanyNumber, LinkText: "Company registration number", Href: href(paths.StripeCompanyNumber), Status: setupStatus(setup.CompanyNumber)},
		{ID: TaskStripeOrganisationDetails, LinkText: "Confirm your organisation's name and address match your government entity document", Href: href(paths.StripeOrganisationDetails), Status: setupStatus(setup.OrganisationDetails)},
		{ID: TaskStripeGovernmentEntityDocument, LinkText: "Government entity document", Href: href(paths.StripeGovernmentEntityDocument), Status: entityDocStatus},
	}

	if account.ProviderSwitchEnabled && account.PaymentProvider != gatewayaccount.ProviderStripe {
		task, err := makeLivePaymentTask(account, setup, serviceExternalID)
		if err != nil {
			return Tasks{}, err
		}
		list = append(list, task)
	}

	return NewTasks(list), nil
}

func makeLivePaymentTask(account gatewayaccount.GatewayAccount, setup StripeAccountSetup, serviceExternalID string) (Task, error) {
	credential, err := account.SwitchingCredential()
	if err != nil {
		return Task{}, fmt.Errorf("resolving switching credential: %w", err)
	}

	// Stripe sets the credential to ENTERED out of band once the connected account is healthy.
	status := StatusCannotStart
	switch {
	case credential.State == gatewayaccount.CredentialVerified:
		status = StatusCompletedCannotStart
	case setup.IsComplete() && credential.State == gatewayaccount.CredentialEntered:
		status = StatusNotStarted
	}

	return Task{
		ID:       TaskMakeLivePayment,
		LinkText: "Make a live payment to test your Stripe PSP",
		Href:     paths.Format(paths.SwitchPSPMakeLivePayment, serviceExternalID, string(account.Type), credential.ExternalID),
		Status:   status,
	}, nil
}

func setupStatus(done bool) Status {
	if done {
		return StatusCompletedCannotStart
	}
	return StatusNotStarted
}
