// Package serviceview classifies a service and its gateway account into the status shown on the
// merchant dashboard.
package serviceview

import (
	"context"

	"selfservice/internal/directory"
	"selfservice/internal/gatewayaccount"
	"selfservice/internal/paths"
)

// StatusTag is the fine grained dashboard status.
type StatusTag string

const (
	StatusLive             StatusTag = "LIVE"
	StatusPSPOnboarding    StatusTag = "PSP_ONBOARDING"
	StatusGoLiveRequested  StatusTag = "GO_LIVE_REQUESTED"
	StatusGoLiveInProgress StatusTag = "GO_LIVE_IN_PROGRESS"
	StatusWorldpayTest     StatusTag = "WORLDPAY_TEST"
	StatusSandboxMode      StatusTag = "SANDBOX_MODE"
	StatusTestAccountOnly  StatusTag = "TEST_ACCOUNT_ONLY"
	StatusRestricted       StatusTag = "RESTRICTED"
	StatusUnknown          StatusTag = "UNKNOWN"
)

// DisplayTag groups status tags for the coloured tag in the UI.
type DisplayTag string

const (
	DisplayLive       DisplayTag = "live"
	DisplayTest       DisplayTag = "test"
	DisplayPending    DisplayTag = "pending"
	DisplayRestricted DisplayTag = "restricted"
	DisplayUnknown    DisplayTag = "unknown"
)

// Display returns the display grouping for a status tag.
func (s StatusTag) Display() DisplayTag {
	switch s {
	case StatusLive:
		return DisplayLive
	case StatusPSPOnboarding, StatusGoLiveRequested:
		return DisplayPending
	case StatusGoLiveInProgress, StatusTestAccountOnly, StatusSandboxMode, StatusWorldpayTest:
		return DisplayTest
	case StatusRestricted:
		return DisplayRestricted
	default:
		return DisplayUnknown
	}
}

// Link is a call to action shown next to the tag.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// View is the status of one service and account.
type View struct {
	StatusTag  StatusTag  `json:"status_tag"`
	DisplayTag DisplayTag `json:"display_tag"`
	Action     *Link      `json:"action,omitempty"`
}

func newView(status StatusTag, action *Link) View {
	return View{StatusTag: status, DisplayTag: status.Display(), Action: action}
}

// Reporter is told about combinations of service and account that no rule classifies.
type Reporter interface {
	Unresolved(ctx context.Context, service directory.Service, account gatewayaccount.GatewayAccount, reason string)
}

// Resolver classifies services. It is safe for concurrent use.
type Resolver struct {
	reporter Reporter
}

// NewResolver creates a new resolver
func NewResolver(reporter Reporter) *Resolver {
	return &Resolver{reporter: reporter}
}

// Resolve returns the view for a service and account. Rules are evaluated in priority order and
// the first match wins; UNKNOWN is returned and reported when nothing matches.
func (r *Resolver) Resolve(ctx context.Context, service directory.Service, account gatewayaccount.GatewayAccount) View {
	stage := service.CurrentGoLiveStage
	provider := account.PaymentProvider

	if account.Disabled {
		return newView(StatusRestricted, nil)
	}

	if account.IsLive() && stage == directory.StageLive {
		switch {
		case account.ActiveCredential() != nil:
			return newView(StatusLive, nil)
		case provider == gatewayaccount.ProviderWorldpay || provider == gatewayaccount.ProviderStripe:
			return newView(StatusPSPOnboarding, &Link{
				Text: "Finish setting up your live account",
				Href: paths.Format(paths.LiveAccountSettings, service.ExternalID),
			})
		default:
			r.reporter.Unresolved(ctx, service, account, "live account with unexpected payment provider")
			return newView(StatusUnknown, nil)
		}
	}

	if account.IsTest() && stage == directory.StageLive {
		return newView(StatusSandboxMode, nil)
	}
	if account.IsTest() && provider == gatewayaccount.ProviderWorldpay {
		return newView(StatusWorldpayTest, nil)
	}

	goLivePending := canGoLive(account) && stage.IsPending()
	requestToGoLive := paths.Format(paths.RequestToGoLive, service.ExternalID)

	switch {
	case goLivePending && stage.IsRequested():
		return newView(StatusGoLiveRequested, nil)
	case goLivePending && stage.IsInProgress():
		return newView(StatusGoLiveInProgress, &Link{Text: "Continue your request to go live", Href: requestToGoLive})
	case goLivePending && stage == directory.StageNotStarted:
		return newView(StatusTestAccountOnly, &Link{Text: "Request a live account", Href: requestToGoLive})
	}

	r.reporter.Unresolved(ctx, service, account, "no status rule matched")
	return newView(StatusUnknown, nil)
}

func canGoLive(account gatewayaccount.GatewayAccount) bool {
	switch account.CurrentProvider() {
	case gatewayaccount.ProviderSandbox, gatewayaccount.ProviderStripe:
		return true
	default:
		return false
	}
}
