package authorize

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/medibook/medibook_backend/pkg/reqctx"
)

var ErrNoActor = errors.New("no authenticated caller in context")

// Actor is the authenticated caller as seen by services.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

func (a Actor) IsAdmin() bool   { return a.Role == RoleAdmin }
func (a Actor) IsDoctor() bool  { return a.Role == RoleDoctor }
func (a Actor) IsPatient() bool { return a.Role == RolePatient }

// ActorFromContext reads the caller from the request claims.
func ActorFromContext(ctx context.Context) (Actor, error) {
	claims := reqctx.ClaimsFromContext(ctx)
	if claims == nil || claims.GetUserID() == uuid.Nil {
		return Actor{}, ErrNoActor
	}
	role := Role(claims.GetRole())
	if _, ok := KnownRoles[role]; !ok {
		return Actor{}, ErrNoActor
	}
	return Actor{UserID: claims.GetUserID(), Role: role}, nil
}
