package services

import "context"

// AuditActor is who an audit entry is attributed to.
type AuditActor struct {
	Name      string
	Type      string
	IPAddress string
	UserAgent string
}

// SystemActor is used when no actor is attached to the context.
var SystemActor = AuditActor{
	Name:      "System Administrator",
	Type:      "system_admin",
	IPAddress: "0.0.0.0",
	UserAgent: "Tenant Onboarding Wizard",
}

type auditActorKey struct{}

// WithAuditActor attaches the acting identity to ctx.
func WithAuditActor(ctx context.Context, actor AuditActor) context.Context {
	return context.WithValue(ctx, auditActorKey{}, actor)
}

// AuditActorFrom returns the actor of ctx; blank fields take SystemActor's values.
func AuditActorFrom(ctx context.Context) AuditActor {
	actor, _ := ctx.Value(auditActorKey{}).(AuditActor)
	if actor.Name == "" {
		actor.Name = SystemActor.Name
	}
	if actor.Type == "" {
		actor.Type = SystemActor.Type
	}
	if actor.IPAddress == "" {
		actor.IPAddress = SystemActor.IPAddress
	}
	if actor.UserAgent == "" {
		actor.UserAgent = SystemActor.UserAgent
	}
	return actor
}
