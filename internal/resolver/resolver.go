package resolver

import (
	"context"

	"github.com/rs/zerolog"

	"StockLens/internal/model"
)

// Directory looks up a company by exact display name.
type Directory interface {
	Lookup(ctx context.Context, name string) (string, bool)
}

// Resolver maps inputs to exchange codes.
type Resolver struct {
	dir Directory
	log zerolog.Logger
}

// New creates a Resolver over dir.
func New(dir Directory, log zerolog.Logger) *Resolver {
	return &Resolver{
		dir: dir,
		log: log.With().Str("component", "resolver").Logger(),
	}
}

// Resolve returns the exchange code for in. Raw codes are returned as given
// without touching the directory.
func (r *Resolver) Resolve(ctx context.Context, in Input) (string, error) {
	if in.Kind == KindRawCode {
		return in.Value, nil
	}
	if in.Value == "" {
		return "", model.NewInvalidInput("company", "empty")
	}
	code, ok := r.dir.Lookup(ctx, in.Value)
	if !ok {
		r.log.Debug().Str("input", in.Value).Msg("company not found")
		return "", &model.CompanyNotFoundError{Input: in.Value}
	}
	return code, nil
}

// ResolveString parses s and resolves it.
func (r *Resolver) ResolveString(ctx context.Context, s string) (string, error) {
	return r.Resolve(ctx, ParseInput(s))
}
