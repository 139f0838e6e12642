package domain

import "context"

// SystemActor is recorded when no caller identity is attached to the context.
const SystemActor = "system"

type actorKey struct{}

// WithActor attaches the name of the person or process driving an evaluation.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the attached actor or SystemActor.
func ActorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return SystemActor
}
