package logging

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ComponentKey is the field naming the package or view that logged.
const ComponentKey = "cmp"

// Component returns the global logger tagged with name.
func Component(name string) zerolog.Logger {
	return log.With().Str(ComponentKey, name).Logger()
}

// ComponentCtx is Component bound to ctx, so every event it writes carries
// the request id and operation that ContextHook finds there.
func ComponentCtx(ctx context.Context, name string) zerolog.Logger {
	return log.With().Str(ComponentKey, name).Ctx(ctx).Logger()
}
