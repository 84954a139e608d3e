package gatewayaccount

// CurrentCredential returns the only credential on the account, or the active one when there are
// several. Returns nil if neither exists.
func (a GatewayAccount) CurrentCredential() *Credential {
	if len(a.Credentials) == 1 {
		c := a.Credentials[0]
		return &c
	}
	return a.ActiveCredential()
}

// ActiveCredential returns the first credential in the ACTIVE state, or nil.
func (a GatewayAccount) ActiveCredential() *Credential {
	for _, c := range a.Credentials {
		if c.State == CredentialActive {
			c := c
			return &c
		}
	}
	return nil
}

// PendingCredentials returns the credentials that are not yet active or retired.
func (a GatewayAccount) PendingCredentials() []Credential {
	var pending []Credential
	for _, c := range a.Credentials {
		if c.State.IsPending() {
			pending = append(pending, c)
		}
	}
	return pending
}

// SwitchingCredential returns the credential the account is switching to. The account must have
// provider switching enabled, an active credential and exactly one pending credential.
func (a GatewayAccount) SwitchingCredential() (*Credential, error) {
	if !a.ProviderSwitchEnabled {
		return nil, &InvalidConfigurationError{
			GatewayAccountID: a.ID,
			Reason:           "provider switch is not enabled",
		}
	}
	if a.ActiveCredential() == nil {
		return nil, &InvalidConfigurationError{
			GatewayAccountID: a.ID,
			Reason:           "provider switch enabled without an active credential",
		}
	}

	pending := a.PendingCredentials()
	if len(pending) != 1 {
		return nil, &InvalidConfigurationError{
			GatewayAccountID: a.ID,
			Count:            len(pending),
			Reason:           "unexpected number of switching credentials",
		}
	}

	c := pending[0]
	return &c, nil
}

// IsSwitchingToProvider returns true if the account has a valid switching credential for the
// provider. Configuration errors are treated as not switching.
func (a GatewayAccount) IsSwitchingToProvider(provider PaymentProvider) bool {
	c, err := a.SwitchingCredential()
	if err != nil {
		return false
	}
	return c.PaymentProvider == provider
}

// FindCredentialByExternalID returns the credential with the given external id.
func (a GatewayAccount) FindCredentialByExternalID(externalID string) (*Credential, error) {
	for _, c := range a.Credentials {
		if c.ExternalID == externalID {
			c := c
			return &c, nil
		}
	}
	return nil, &CredentialNotFoundError{
		CredentialExternalID:     externalID,
		GatewayAccountExternalID: a.ExternalID,
	}
}

// CurrentProvider returns the provider of the current credential, falling back to the account's
// provider of record.
func (a GatewayAccount) CurrentProvider() PaymentProvider {
	if c := a.CurrentCredential(); c != nil && c.PaymentProvider != "" {
		return c.PaymentProvider
	}
	return a.PaymentProvider
}
