package tasks

import (
	"selfservice/internal/gatewayaccount"
	"selfservice/internal/paths"
)

// Worldpay task ids
const (
	TaskWorldpayOneOff         = "worldpay-one-off-customer-initiated"
	TaskWorldpayRecurringCIT   = "worldpay-recurring-customer-initiated"
	TaskWorldpayRecurringMIT   = "worldpay-recurring-merchant-initiated"
	TaskWorldpayFlexCredential = "worldpay-flex-credentials"
)

// WorldpayTasks returns the Worldpay onboarding tasks for an account.
//
// Recurring accounts get customer and merchant initiated credential tasks in place of the single
// link account task. The 3DS Flex task is added last except for MOTO accounts without recurring.
func WorldpayTasks(account gatewayaccount.GatewayAccount, serviceExternalID string) Tasks {
	accountType := string(account.Type)
	credential := worldpayCredential(account)

	var payload gatewayaccount.Payload
	if credential != nil {
		payload = credential.Credentials
	}

	var list []Task
	if account.RecurringEnabled {
		list = append(list,
			Task{
				ID:       TaskWorldpayRecurringCIT,
				LinkText: "Recurring customer initiated transaction (CIT) credentials",
				Href:     paths.Format(paths.WorldpayRecurringCustomerInitiated, serviceExternalID, accountType),
				Status:   detailsStatus(payload.RecurringCustomerInitiated),
			},
			Task{
				ID:       TaskWorldpayRecurringMIT,
				LinkText: "Recurring merchant initiated transaction (MIT) credentials",
				Href:     paths.Format(paths.WorldpayRecurringMerchantInitiated, serviceExternalID, accountType),
				Status:   detailsStatus(payload.RecurringMerchantInitiated),
			},
		)
	} else {
		list = append(list, Task{
			ID:       TaskWorldpayOneOff,
			LinkText: "Link your Worldpay account with GOV.UK Pay",
			Href:     paths.Format(paths.WorldpayOneOffCustomerInitiated, serviceExternalID, accountType),
			Status:   detailsStatus(payload.OneOffCustomerInitiated),
		})
	}

	if account.RecurringEnabled || !account.AllowMoto {
		status := StatusNotStarted
		if account.Worldpay3DSFlex.IsConfigured() {
			status = StatusCompleted
		}
		list = append(list, Task{
			ID:       TaskWorldpayFlexCredential,
			LinkText: "Configure 3DS",
			Href:     paths.Format(paths.WorldpayFlexCredentials, serviceExternalID, accountType),
			Status:   status,
		})
	}

	return NewTasks(list)
}

// worldpayCredential picks the credential being onboarded: the switching credential while moving
// to Worldpay, otherwise the current one.
func worldpayCredential(account gatewayaccount.GatewayAccount) *gatewayaccount.Credential {
	if account.IsSwitchingToProvider(gatewayaccount.ProviderWorldpay) {
		if c, err := account.SwitchingCredential(); err == nil {
			return c
		}
	}
	return account.CurrentCredential()
}

func detailsStatus(details *gatewayaccount.WorldpayMerchantDetails) Status {
	if details.IsEntered() {
		return StatusCompleted
	}
	return StatusNotStarted
}
