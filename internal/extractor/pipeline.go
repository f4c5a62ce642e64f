package extractor

import (
	"github.com/user/engagement-scraper/internal/entity"
	"go.uber.org/zap"
)

// Result is the accepted outcome of a pipeline run.
type Result struct {
	Fields  Fields
	Method  entity.ParseMethod
	Success bool
}

// Pipeline evaluates strategies in a fixed order and accepts the first
// success. Later strategies are never consulted, so fields only they could
// supply are not merged in.
type Pipeline struct {
	orders   map[entity.PageType][]Strategy
	fallback Strategy
	logger   *zap.Logger
}

// NewPipeline returns a pipeline with the default strategy order for each
// page type.
func NewPipeline(logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	fallback := FallbackTitleStrategy{}
	return &Pipeline{
		orders: map[entity.PageType][]Strategy{
			entity.PageTypeNote: {
				MetaTagStrategy{},
				EmbeddedStateStrategy{},
				ScriptPatternStrategy{},
				fallback,
			},
			entity.PageTypeUser: {
				EmbeddedStateStrategy{},
				MetaTagStrategy{},
				fallback,
			},
		},
		fallback: fallback,
		logger:   logger,
	}
}

// Order returns the strategies evaluated for pageType.
func (p *Pipeline) Order(pageType entity.PageType) []Strategy {
	if order, ok := p.orders[pageType]; ok {
		return order
	}
	return p.orders[entity.PageTypeNote]
}

// Extract runs the strategies for c.PageType against c.
func (p *Pipeline) Extract(c *Context) Result {
	var seed Fields
	var fallbackOutcome *Outcome

	for _, s := range p.Order(c.PageType) {
		out := s.Attempt(c)
		if out.Success {
			p.logger.Debug("strategy accepted", zap.String("method", string(s.Method())))
			return Result{
				Fields:  overlay(seed, out.Fields),
				Method:  s.Method(),
				Success: true,
			}
		}
		p.logger.Debug("strategy missed", zap.String("method", string(s.Method())))
		if s.Method() == p.fallback.Method() {
			fallbackOutcome = &out
		}
		seed = overlayIdentity(seed, out.Fields)
	}

	if fallbackOutcome == nil {
		out := p.fallback.Attempt(c)
		fallbackOutcome = &out
	}
	fields := overlayIdentity(seed, fallbackOutcome.Fields)
	return Result{
		Fields:  fields,
		Method:  entity.ParseMethodBasicFallback,
		Success: fields.Title != "",
	}
}

// overlay applies an accepted outcome over seeded fields. Counters come only
// from the accepted outcome.
func overlay(seed, accepted Fields) Fields {
	merged := overlayIdentity(seed, accepted)
	merged.Likes = accepted.Likes
	merged.Collections = accepted.Collections
	merged.Comments = accepted.Comments
	merged.Shares = accepted.Shares
	return merged
}

func overlayIdentity(base, top Fields) Fields {
	if top.Title != "" {
		base.Title = top.Title
	}
	if top.Author != "" {
		base.Author = top.Author
	}
	if top.AuthorID != "" {
		base.AuthorID = top.AuthorID
	}
	return base
}
