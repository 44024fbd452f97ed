package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/piwi3910/matcalc/internal/model"
	"github.com/piwi3910/matcalc/internal/project"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	StatusCode  int      `json:"status_code"`
	Message     string   `json:"message"`
	Kind        string   `json:"kind"`
	Field       string   `json:"field,omitempty"`
	Detail      string   `json:"detail,omitempty"`
	Suggestions []string `json:"suggestions"`
}

// kindSuggestions are hints returned with fatal calculation errors.
var kindSuggestions = map[model.ErrorKind][]string{
	model.KindInfeasibleCut: {
		"Use a longer standard bar length",
		"Reduce the head or tail cut",
		"Shorten the product length or the cutting loss",
	},
	model.KindUnknownShape: {
		"Use one of: circle, square, hexagon, rectangle",
	},
}

// respondError maps err onto an HTTP status and writes the error body.
// Calculation errors are 400 or 422, a missing resource is 404 and
// anything else is 500.
func (s *Server) respondError(c *gin.Context, err error) {
	resp := ErrorResponse{Suggestions: []string{}}

	var calcErr *model.CalcError
	switch {
	case errors.As(err, &calcErr):
		resp.StatusCode = http.StatusBadRequest
		if calcErr.Kind == model.KindInfeasibleCut {
			resp.StatusCode = http.StatusUnprocessableEntity
		}
		resp.Message = calcErr.Message
		resp.Kind = string(calcErr.Kind)
		resp.Field = calcErr.Field
		resp.Detail = calcErr.Error()
		if hints, ok := kindSuggestions[calcErr.Kind]; ok {
			resp.Suggestions = hints
		}
		s.logger.Warn("Calculation rejected",
			zap.String("kind", resp.Kind),
			zap.String("field", resp.Field),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
	case errors.Is(err, project.ErrNotFound):
		resp.StatusCode = http.StatusNotFound
		resp.Message = "Resource not found"
		resp.Kind = "not_found"
		resp.Detail = err.Error()
	default:
		resp.StatusCode = http.StatusInternalServerError
		resp.Message = "Internal server error"
		resp.Kind = "internal"
		resp.Detail = err.Error()
		s.logger.Error("Request failed",
			zap.Error(err),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
	}

	c.AbortWithStatusJSON(resp.StatusCode, resp)
}
