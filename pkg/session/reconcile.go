package session

import "github.com/aussiebroadwan/reels/pkg/session/domain"

// FetchStatus is the outcome of validating the cached token against the
// profile service.
type FetchStatus int

const (
	// FetchSkipped means no token was cached, so no call was made.
	FetchSkipped FetchStatus = iota
	FetchOK
	// FetchRejected is a 401.
	FetchRejected
	// FetchTransient is any other failure.
	FetchTransient
)

// Effect is the cache mutation that must complete before a decision is
// published.
type Effect int

const (
	EffectNone Effect = iota
	EffectOverwriteSnapshot
	EffectPurge
)

// Inputs are everything resolution depends on.
type Inputs struct {
	Identity *domain.IdentitySession
	Token    string
	Snapshot *domain.ProfileSnapshot

	Fetch   FetchStatus
	Profile domain.RemoteProfile // set when Fetch is FetchOK
}

// Outcome is the decision plus the cache effect that accompanies it.
type Outcome struct {
	Decision domain.AuthDecision
	Effect   Effect
	// Snapshot is the value to write for EffectOverwriteSnapshot.
	Snapshot domain.ProfileSnapshot
}

// NeedsFetch reports whether the cached token must be validated. A token is
// always validated, whether or not an identity session exists.
func NeedsFetch(token string) bool { return token != "" }

// Reconcile arbitrates between the identity session and the cached
// credentials. It performs no I/O.
func Reconcile(in Inputs) Outcome {
	hasIdentity := in.Identity != nil
	hasToken := in.Token != ""

	switch {
	case !hasIdentity && !hasToken:
		return Outcome{Decision: domain.Deny()}

	case !hasIdentity:
		switch in.Fetch {
		case FetchOK:
			return adopt(in.Profile)
		case FetchRejected:
			return Outcome{Decision: domain.Deny(), Effect: EffectPurge}
		default:
			return Outcome{Decision: degraded(in.Snapshot, "")}
		}

	case !hasToken:
		return Outcome{Decision: domain.Classify(domain.MinimalProfile(in.Identity.Email))}

	default:
		switch in.Fetch {
		case FetchOK:
			return adopt(in.Profile)
		case FetchRejected:
			return Outcome{
				Decision: domain.Classify(domain.MinimalProfile(in.Identity.Email)),
				Effect:   EffectPurge,
			}
		default:
			return Outcome{Decision: degraded(in.Snapshot, in.Identity.Email)}
		}
	}
}

func adopt(p domain.RemoteProfile) Outcome {
	return Outcome{
		Decision: domain.Classify(p),
		Effect:   EffectOverwriteSnapshot,
		Snapshot: p.Snapshot(),
	}
}

// degraded builds a decision from the cached snapshot, or an email-only
// profile when nothing is cached.
func degraded(snap *domain.ProfileSnapshot, email string) domain.AuthDecision {
	if snap == nil {
		return domain.Classify(domain.MinimalProfile(email))
	}
	p := domain.ProfileFromSnapshot(*snap)
	if p.Email == "" {
		p.Email = email
	}
	return domain.Classify(p)
}
