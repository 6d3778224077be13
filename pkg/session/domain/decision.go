package domain

// DecisionKind tags the three possible outcomes of session resolution.
type DecisionKind int

const (
	Unauthenticated DecisionKind = iota
	AuthenticatedIncomplete
	AuthenticatedComplete
)

func (k DecisionKind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case AuthenticatedIncomplete:
		return "authenticated_incomplete"
	case AuthenticatedComplete:
		return "authenticated_complete"
	}
	return "unknown"
}

// AuthDecision is the only value navigation may branch on. Profile is the
// zero value when Kind is Unauthenticated.
type AuthDecision struct {
	Kind    DecisionKind
	Profile RemoteProfile
}

// Authenticated reports whether the decision carries an identity.
func (d AuthDecision) Authenticated() bool { return d.Kind != Unauthenticated }

// Deny is the Unauthenticated decision.
func Deny() AuthDecision { return AuthDecision{Kind: Unauthenticated} }

// Classify decides between the two authenticated variants using
// RegistrationComplete alone.
func Classify(p RemoteProfile) AuthDecision {
	if p.RegistrationComplete {
		return AuthDecision{Kind: AuthenticatedComplete, Profile: p}
	}
	return AuthDecision{Kind: AuthenticatedIncomplete, Profile: p}
}
