package complete

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tentacle-scylla/cqlcomplete/pkg/tokenize"
	"github.com/tentacle-scylla/cqlcomplete/pkg/types"
)

// ClassKind is the result of matching the leading keywords.
type ClassKind int

const (
	ClassUndetermined ClassKind = iota // leading keywords still incomplete
	ClassUnknown                       // no statement starts this way
	ClassMatched                       // a handler's full leading sequence is typed
)

// Classification is returned by Engine.Classify.
type Classification struct {
	Kind    ClassKind
	Handler *Handler // set when Kind is ClassMatched

	// Candidates are the phrases that may follow the typed keywords: the
	// remaining leading keywords of each handler still in reach, or every
	// leading phrase for unknown input.
	Candidates []string
}

// Engine completes CQL statements against a registry. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	registry *Registry
	maxItems int
	log      logrus.FieldLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxItems limits the number of returned items (0 = unlimited).
func WithMaxItems(n int) Option {
	return func(e *Engine) { e.maxItems = n }
}

// WithLogger sets the logger used for request tracing and source failures.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine creates an engine over an already built registry.
func NewEngine(r *Registry, opts ...Option) *Engine {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	e := &Engine{registry: r, log: quiet}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the registry the engine walks.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Classify decides which statement the completed tokens start.
func (e *Engine) Classify(tokens []tokenize.Token) Classification {
	var candidates []string
	seen := make(map[string]bool)

	for _, h := range e.registry.handlers {
		n, ok := h.leadingMatch(tokens)
		if !ok {
			continue
		}
		if n == len(h.Leading) {
			return Classification{Kind: ClassMatched, Handler: h}
		}
		rest := types.Phrase(h.Leading[n:])
		if !seen[rest] {
			seen[rest] = true
			candidates = append(candidates, rest)
		}
	}

	if len(candidates) > 0 {
		return Classification{Kind: ClassUndetermined, Candidates: candidates}
	}
	return Classification{Kind: ClassUnknown, Candidates: e.registry.LeadingKeywords()}
}

// Complete returns the suggestions for a tokenized request. It never fails:
// unknown, invalid and over-specified input are outcomes with no items, and
// suggestion source failures are reported in Result.Errors.
func (e *Engine) Complete(ctx context.Context, req CompletionRequest) Result {
	start := time.Now()
	res := Result{Step: -1, Replace: req.Partial}

	cls := e.Classify(req.Tokens)
	switch cls.Kind {
	case ClassMatched:
		res.Statement = cls.Handler.Name
		e.walk(ctx, cls.Handler, req, &res)
	case ClassUndetermined:
		res.Outcome = OutcomeUndetermined
		res.Items = phraseItems(cls.Candidates, len(req.Tokens) == 0)
	default:
		res.Outcome = OutcomeUnknown
		res.Items = phraseItems(cls.Candidates, true)
		if len(req.Tokens) > 0 {
			res.Hint = e.hint(req.Tokens[0].Text)
		}
	}

	res.Items = dedupe(filterByPrefix(res.Items, req.Partial))
	if len(req.Tokens) == 0 && len(res.Items) == 0 {
		res.Hint = e.hint(req.Partial)
	}
	if e.maxItems > 0 && len(res.Items) > e.maxItems {
		res.Items = res.Items[:e.maxItems]
	}
	res.Groups = resolveGroups(res.Items, req.DefaultKeyspace)

	e.log.WithFields(logrus.Fields{
		"statement": res.Statement.String(),
		"outcome":   res.Outcome,
		"step":      res.Step,
		"items":     len(res.Items),
		"duration":  time.Since(start),
	}).Debug("completion")
	return res
}

func (e *Engine) hint(word string) string {
	if kw := closestKeyword(word, e.registry.statementKeywords()); kw != "" {
		return "did you mean " + kw + "?"
	}
	return ""
}

// CompleteText tokenizes text up to cursor and completes it.
func (e *Engine) CompleteText(ctx context.Context, text string, cursor int, defaultKeyspace string) Result {
	s := tokenize.Split(text, cursor)
	res := e.Complete(ctx, CompletionRequest{
		Tokens:          s.Tokens,
		Partial:         s.Partial,
		DefaultKeyspace: defaultKeyspace,
	})
	res.ReplaceStart = s.PartialStart
	return res
}

// walk runs the decision list of h over the tokens after the leading keywords
// and fills in the outcome, step and items of res.
func (e *Engine) walk(ctx context.Context, h *Handler, req CompletionRequest, res *Result) {
	rest := req.Tokens[len(h.Leading):]
	r := &Request{
		Statement:       h.Name,
		DefaultKeyspace: req.DefaultKeyspace,
		Prefix:          req.Partial,
	}

	pos := 0
	var stepTokens []tokenize.Token

	for i, tok := range rest {
		r.Preceding = rest[:i]
		for {
			if pos == len(h.Steps) {
				res.Outcome, res.Step = OutcomeOverSpecified, pos
				return
			}
			r.StepTokens = stepTokens
			if p := firstMatch(h.Steps[pos], r, tok); p != nil {
				if repeats(p) {
					stepTokens = append(stepTokens, tok)
				} else {
					pos++
					stepTokens = nil
				}
				break
			}
			// A repeating step that consumed tokens is done; the token
			// belongs to the next step.
			if len(stepTokens) > 0 && pos+1 < len(h.Steps) {
				pos++
				stepTokens = nil
				continue
			}
			res.Outcome, res.Step = OutcomeInvalid, pos
			e.log.WithFields(logrus.Fields{
				"statement": h.Name.String(),
				"step":      pos,
				"token":     tok.Text,
			}).Debug("token matches no alternative")
			return
		}
	}

	r.Preceding = rest
	r.StepTokens = stepTokens
	res.Step = pos

	if pos == len(h.Steps) {
		if req.Partial != "" {
			res.Outcome = OutcomeOverSpecified
		} else {
			res.Outcome = OutcomeAccepted
		}
		return
	}

	res.Outcome = OutcomeSuggesting
	e.suggest(ctx, h, pos, r, res)

	// Once a repeating step has consumed tokens, the next step is reachable too.
	if len(stepTokens) > 0 && pos+1 < len(h.Steps) {
		next := *r
		next.StepTokens = nil
		e.suggest(ctx, h, pos+1, &next, res)
	}
}

func (e *Engine) suggest(ctx context.Context, h *Handler, pos int, r *Request, res *Result) {
	for _, p := range h.Steps[pos] {
		items, err := p.Suggest(ctx, r)
		res.Items = append(res.Items, items...)
		if err == nil {
			continue
		}
		serr := &types.SuggestionSourceError{Statement: h.Name, Step: pos, Provider: p.Name(), Err: err}
		res.Errors = append(res.Errors, serr)
		e.log.WithFields(logrus.Fields{
			"statement": h.Name.String(),
			"step":      pos,
			"provider":  p.Name(),
		}).WithError(err).Warn("suggestion source failed")
	}
}

func firstMatch(step Step, r *Request, tok tokenize.Token) Provider {
	for _, p := range step {
		if p.Match(r, tok) {
			return p
		}
	}
	return nil
}

func phraseItems(phrases []string, statementStart bool) []CompletionItem {
	items := make([]CompletionItem, 0, len(phrases))
	for _, ph := range phrases {
		item := CompletionItem{Label: ph, Kind: KindKeyword}
		if statementStart {
			item.Groups = []string{GroupCatStatements}
			if a, ok := annotations.Statements[ph]; ok {
				item.Detail = a.Detail
				item.Documentation = a.Documentation
			}
		} else if a, ok := annotations.Keywords[ph]; ok {
			item.Detail = a.Detail
		}
		items = append(items, item)
	}
	return items
}

// filterByPrefix keeps items whose label starts with prefix, ignoring case.
func filterByPrefix(items []CompletionItem, prefix string) []CompletionItem {
	if prefix == "" {
		return items
	}
	prefix = strings.ToLower(prefix)
	out := items[:0:0]
	for _, it := range items {
		if strings.HasPrefix(strings.ToLower(it.Label), prefix) {
			out = append(out, it)
		}
	}
	return out
}

// dedupe drops repeated labels, keeping the first occurrence.
func dedupe(items []CompletionItem) []CompletionItem {
	seen := make(map[string]bool, len(items))
	out := make([]CompletionItem, 0, len(items))
	for _, it := range items {
		if seen[it.Label] {
			continue
		}
		seen[it.Label] = true
		out = append(out, it)
	}
	return out
}
