package correction

import (
	"context"

	"go.uber.org/zap"

	"docsmith/internal/analysis"
	"docsmith/internal/conformance"
	"docsmith/internal/generation"
)

// Controller runs the generate-validate-correct loop for one
// declaration at a time. It is safe for concurrent use: all loop state
// lives in per-call sessions.
type Controller struct {
	gen            generation.Generator
	maxCorrections int
	style          generation.StylePolicy
	logger         *zap.Logger
}

// NewController creates a Controller around an injected generation
// capability. maxCorrections is the ceiling of correction passes
// beyond the first attempt; a negative value selects the default of 2
// (3 total generations).
func NewController(gen generation.Generator, maxCorrections int, logger *zap.Logger) *Controller {
	if maxCorrections < 0 {
		maxCorrections = 2
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		gen:            gen,
		maxCorrections: maxCorrections,
		style:          generation.StyleGoogle,
		logger:         logger,
	}
}

// Document drives one declaration to a terminal state. It always
// returns an Outcome; failures are encoded in the status, never
// propagated as errors, so one bad declaration cannot abort siblings.
func (c *Controller) Document(ctx context.Context, decl analysis.Declaration, fp analysis.Fingerprint) Outcome {
	sess := newSession(decl, fp)
	log := c.logger.With(
		zap.String("session", sess.id),
		zap.String("declaration", decl.QualifiedName),
	)

	for {
		sess.state = StateGenerated
		log.Debug("requesting generation",
			zap.Int("attempt", sess.attempt+1),
			zap.Int("max_attempts", c.maxCorrections+1))

		raw, err := c.gen.Generate(ctx, generation.Request{
			Source:          decl.Source,
			Kind:            decl.Kind,
			Fingerprint:     fp,
			PriorViolations: sess.violations,
			Style:           c.style,
		})
		if err != nil {
			// A transport fault and a conformance violation are distinct
			// failure classes: this one never touches the retry budget.
			sess.state = StateTransportFailed
			log.Warn("generation transport failure", zap.Error(err))
			return Outcome{
				Declaration: decl,
				Status:      StatusTransportFailed,
				Attempts:    sess.attempt + 1,
				Corrections: sess.attempt,
				Err:         err,
			}
		}

		sess.blockText, sess.block = parseResponse(raw)

		sess.state = StateValidated
		sess.violations = conformance.Validate(sess.block, fp)

		if len(sess.violations) == 0 {
			sess.state = StateAccepted
			log.Debug("block accepted", zap.Int("corrections", sess.attempt))
			return Outcome{
				Declaration: decl,
				Status:      StatusAccepted,
				Block:       sess.blockText,
				Attempts:    sess.attempt + 1,
				Corrections: sess.attempt,
			}
		}

		if sess.attempt < c.maxCorrections {
			sess.attempt++
			sess.state = StateRetrying
			log.Debug("retrying with feedback",
				zap.Int("violations", len(sess.violations)),
				zap.Int("attempt", sess.attempt))
			continue
		}

		// Ceiling reached: emit the last block anyway, annotated with
		// its remaining violations. The declaration is not left
		// undocumented.
		sess.state = StateExhausted
		log.Warn("correction passes exhausted",
			zap.Int("violations", len(sess.violations)))
		return Outcome{
			Declaration:         decl,
			Status:              StatusExhausted,
			Block:               sess.blockText,
			RemainingViolations: sess.violations,
			Attempts:            sess.attempt + 1,
			Corrections:         sess.attempt,
		}
	}
}

// parseResponse extracts the docstring from raw model output and parses
// it into the section taxonomy. Output with no extractable block parses
// as nil, which validation reports as every applicable gap; an
// unusable response consumes an attempt like any other bad block.
func parseResponse(raw string) (string, *conformance.Block) {
	text, ok := ExtractDocstring(raw)
	if !ok {
		return "", nil
	}
	return text, conformance.ParseBlock(text)
}
