// Package access decides which actors may reach which operations.
package access

import (
	"context"

	"github.com/erazemk/findmate/internal/model"
)

// Actor is the identity behind a request. A nil *Actor is anonymous.
type Actor struct {
	UserID int64
	Email  string
	Name   string
	Role   string
}

// Authenticated reports whether a is a signed-in user.
func (a *Actor) Authenticated() bool {
	return a != nil && a.UserID != 0
}

// IsAdmin reports whether a is a signed-in administrator.
func (a *Actor) IsAdmin() bool {
	return a.Authenticated() && model.IsAdmin(a.Role)
}

// Operation names a gated action.
type Operation string

// Operations.
const (
	OpBrowse         Operation = "browse"
	OpViewPhoto      Operation = "view-photo"
	OpSubmitReport   Operation = "submit-report"
	OpLogout         Operation = "logout"
	OpChangePassword Operation = "change-password"
	OpAdminDashboard Operation = "admin-dashboard"
	OpResolve        Operation = "resolve"
	OpDiscard        Operation = "discard"
	OpListReunited   Operation = "list-reunited"
	OpDeleteUser     Operation = "delete-user"
)

// Outcome is the result of a gate check.
type Outcome int

// Outcomes.
const (
	Allow Outcome = iota
	DenyLogin
	DenyHome
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case DenyLogin:
		return "deny-login"
	case DenyHome:
		return "deny-home"
	default:
		return "unknown"
	}
}

// Notices shown to a denied actor.
const (
	NoticeSignIn       = "You must be signed in to do that!"
	NoticeNoPermission = "You do not have permission to access that page."
)

// Decision is the gate verdict plus the notice to show when denied.
type Decision struct {
	Outcome Outcome
	Notice  string
}

// Allowed reports whether the decision lets the operation proceed.
func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

type level int

const (
	public level = iota
	member
	admin
)

var required = map[Operation]level{
	OpBrowse:         public,
	OpViewPhoto:      public,
	OpSubmitReport:   member,
	OpLogout:         member,
	OpChangePassword: member,
	OpAdminDashboard: admin,
	OpResolve:        admin,
	OpDiscard:        admin,
	OpListReunited:   admin,
	OpDeleteUser:     admin,
}

// Decide returns whether actor may perform op. Unknown operations require an
// administrator.
func Decide(actor *Actor, op Operation) Decision {
	need, ok := required[op]
	if !ok {
		need = admin
	}

	switch {
	case need == public:
		return Decision{Outcome: Allow}
	case !actor.Authenticated():
		return Decision{Outcome: DenyLogin, Notice: NoticeSignIn}
	case need == admin && !actor.IsAdmin():
		return Decision{Outcome: DenyHome, Notice: NoticeNoPermission}
	default:
		return Decision{Outcome: Allow}
	}
}

type ctxKey struct{}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, actor)
}

// ActorFrom returns the actor stored in ctx, or nil if the request is anonymous.
func ActorFrom(ctx context.Context) *Actor {
	a, _ := ctx.Value(ctxKey{}).(*Actor)
	return a
}
