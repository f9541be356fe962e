package complete

import (
	"context"

	"github.com/tentacle-scylla/cqlcomplete/pkg/tokenize"
	"github.com/tentacle-scylla/cqlcomplete/pkg/types"
)

// Provider is one grammar alternative at a decision list step. Providers are
// built once at startup and must not keep per-request state: everything a
// request knows is passed in through Request.
type Provider interface {
	// Name identifies the provider in logs and errors.
	Name() string

	// Match reports whether tok is acceptable at this position.
	Match(req *Request, tok tokenize.Token) bool

	// Suggest returns the candidates for this position. The engine applies
	// prefix filtering and deduplication, so providers may return every
	// candidate. On error the returned items are still used.
	Suggest(ctx context.Context, req *Request) ([]CompletionItem, error)
}

// Repeater is a provider that can consume several consecutive tokens at one
// step, such as a clause body. While it matches, the walk stays on its step;
// once it has consumed at least one token, a token it rejects moves the walk
// on to the next step.
type Repeater interface {
	Provider
	Repeats() bool
}

// Request is the per-request view passed to providers.
type Request struct {
	Statement       types.StatementName
	DefaultKeyspace string

	// Prefix is the partial word under the cursor.
	Prefix string

	// Preceding holds the completed tokens after the leading keywords.
	Preceding []tokenize.Token

	// StepTokens holds the tokens already consumed at the current step by a
	// repeating provider, oldest first.
	StepTokens []tokenize.Token
}

func repeats(p Provider) bool {
	r, ok := p.(Repeater)
	return ok && r.Repeats()
}
