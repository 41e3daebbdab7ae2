package httpadapter

import (
	"net/http"

	"github.com/kirillkom/document-insight/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrNoExtractableText):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrNoModelResponse), domain.IsKind(err, domain.ErrMalformedModelReply):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
