package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mealcycle-backend/internal/domain/meals"
	"github.com/yungbote/mealcycle-backend/internal/http/response"
	"github.com/yungbote/mealcycle-backend/internal/platform/apierr"
	"github.com/yungbote/mealcycle-backend/internal/platform/ctxutil"
	"github.com/yungbote/mealcycle-backend/internal/platform/logger"
)

// toAPIError maps a meal error code onto an HTTP status. Internal details of
// fatal errors stay in the logs.
func toAPIError(err error) *apierr.Error {
	code := meals.CodeOf(err)
	switch code {
	case meals.CodeValidation:
		return apierr.BadRequest(string(code), err)
	case meals.CodeDuplicateMeal:
		return apierr.Conflict(string(code), err)
	case meals.CodeMealNotFound, meals.CodeCycleNotFound:
		return apierr.NotFound(string(code), err)
	case meals.CodeRetryable:
		return apierr.New(http.StatusServiceUnavailable, string(code), err)
	case "":
		code = meals.CodeInternal
	}
	return apierr.Internal(string(code), errInternal)
}

var errInternal = errors.New("internal error")

func respondMealError(c *gin.Context, log *logger.Logger, err error) {
	ae := toAPIError(err)
	if ae.Status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed", append(ctxutil.LogFields(c.Request.Context()), "code", ae.Code, "error", err)...)
	}
	response.RespondAPIError(c, ae)
}
