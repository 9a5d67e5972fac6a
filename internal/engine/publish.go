package engine

import (
	"context"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/1njure/mpit25-NetJaggers/internal/journal"
	"github.com/1njure/mpit25-NetJaggers/internal/post"
)

var (
	nonBlank = regexp.MustCompile(`\S`)

	knownPlatforms = func() []any {
		out := make([]any, len(post.Platforms))
		for i, p := range post.Platforms {
			out[i] = p
		}
		return out
	}()
)

// validateForPublish checks that a record can be published: its body holds
// at least one non-space character and its platform is known.
func validateForPublish(r post.Record) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Body,
			validation.Required.Error("must not be empty"),
			validation.Match(nonBlank).Error("must not be blank"),
		),
		validation.Field(&r.Platform,
			validation.Required,
			validation.In(knownPlatforms...).Error("must be a known platform"),
		),
	)
}

// Publish acknowledges a record for publishing. It fails with a Validation
// error if the body is empty or blank; a body of only whitespace counts as
// empty. It then hands the record to the publisher, whose error is logged
// but does not fail the call.
func (s *Session) Publish(ctx context.Context, id post.ID) error {
	r, err := s.preparePublish(id)
	if err != nil {
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, r); err != nil {
			s.logger.Warn("publisher failed", "record", int(id), "platform", r.Platform, "error", err)
		}
	}
	s.logger.Info("record published", "record", int(id), "platform", r.Platform)
	return nil
}

func (s *Session) preparePublish(id post.ID) (post.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.store.Get(id)
	if err != nil {
		s.record(journal.OpPublish, id, outcomeOf(err), 0, nil)
		return post.Record{}, err
	}

	if err := validateForPublish(r); err != nil {
		verr := post.NewValidation(id, err)
		s.record(journal.OpPublish, id, outcomeOf(verr), 0, map[string]string{"cause": err.Error()})
		return post.Record{}, verr
	}

	s.record(journal.OpPublish, id, journal.OutcomeOK, 0, map[string]string{"platform": string(r.Platform)})
	return r, nil
}
