package remote

import (
	"context"
	"errors"

	"github.com/kirillkom/document-insight/internal/core/domain"
	"github.com/kirillkom/document-insight/internal/infrastructure/resilience"
)

type requestBuildError struct {
	err error
}

func (e *requestBuildError) Error() string { return "build request: " + e.err.Error() }
func (e *requestBuildError) Unwrap() error { return e.err }

// transportClassifier retries every send failure, client timeouts included, unless
// the caller's own context is done or the request could not be built.
func transportClassifier(parent context.Context) resilience.ErrorClassifier {
	return func(err error) resilience.ErrorClassification {
		var buildErr *requestBuildError
		if err == nil || parent.Err() != nil || errors.As(err, &buildErr) {
			return resilience.Ignored
		}
		return resilience.Transient
	}
}

func wrapTemporaryIfNeeded(parent context.Context, operation string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if parent.Err() != nil {
		return err
	}
	var buildErr *requestBuildError
	if errors.As(err, &buildErr) {
		return err
	}
	return domain.WrapError(domain.ErrTemporary, operation, err)
}
