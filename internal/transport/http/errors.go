package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/logger"
	"github.com/cwrk-planet/thread-service/internal/repository"
	"github.com/cwrk-planet/thread-service/internal/transport/http/httputil"

	"github.com/go-playground/validator/v10"
)

// errorStatus - единственное место сопоставления доменных ошибок и HTTP-статусов.
func errorStatus(err error) int {
	var (
		disabled   *domain.FeatureDisabledError
		conflict   *domain.TransactionConflictError
		validation validator.ValidationErrors
	)
	switch {
	case errors.As(err, &disabled):
		return http.StatusForbidden
	case errors.As(err, &conflict):
		return http.StatusServiceUnavailable
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrMessageNotFound),
		errors.Is(err, domain.ErrReactionNotFound),
		errors.Is(err, domain.ErrCallNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrNotParticipant),
		errors.Is(err, domain.ErrNotInCall):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrReactionExists),
		errors.Is(err, domain.ErrTooManyReactions):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidReaction),
		errors.Is(err, domain.ErrUnknownProvider),
		errors.Is(err, repository.ErrInvalidCursor):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.FromContext(ctx).ErrorContext(ctx, "handler."+op, "err", err)
		msg = "internal error"
	}
	var meta map[string]any
	var validation validator.ValidationErrors
	if errors.As(err, &validation) {
		fields := make(map[string]any, len(validation))
		for _, fe := range validation {
			fields[fe.Field()] = fe.Tag()
		}
		meta = map[string]any{"fields": fields}
		msg = "validation failed"
	}
	httputil.Error(ctx, w, status, msg, meta)
}
