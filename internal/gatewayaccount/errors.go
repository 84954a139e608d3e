package gatewayaccount

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrInvalidConfiguration = errors.New("invalid gateway account configuration")
	ErrCredentialNotFound   = errors.New("credential not found")
)

// InvalidConfigurationError is returned when an account breaks one of its credential invariants.
type InvalidConfigurationError struct {
	GatewayAccountID int64
	Count            int
	Reason           string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s [gateway_account_id=%d, count=%d]",
		ErrInvalidConfiguration, e.Reason, e.GatewayAccountID, e.Count)
}

func (e *InvalidConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// CredentialNotFoundError is returned when a credential external id is not on the account.
type CredentialNotFoundError struct {
	CredentialExternalID     string
	GatewayAccountExternalID string
}

func (e *CredentialNotFoundError) Error() string {
	return fmt.Sprintf("%s: credential %s on gateway account %s",
		ErrCredentialNotFound, e.CredentialExternalID, e.GatewayAccountExternalID)
}

func (e *CredentialNotFoundError) Is(target error) bool {
	return target == ErrCredentialNotFound
}

// IsInvalidConfiguration checks if an error is an invalid configuration error
func IsInvalidConfiguration(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

// IsNotFound checks if an error is a credential not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCredentialNotFound)
}
