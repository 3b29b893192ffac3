package errors

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper maps an application error to a ProblemDetail. It reports false
// when the error is not one it recognises.
type ErrorMapper func(err error) (ProblemDetail, bool)

// Rule ties a sentinel error to the problem it renders as. An empty Detail
// uses the error text.
type Rule struct {
	Target  error
	Problem ProblemDetail
	Detail  string
}

// Rules builds an ErrorMapper that returns the first rule whose target
// matches with errors.Is.
func Rules(rules ...Rule) ErrorMapper {
	return func(err error) (ProblemDetail, bool) {
		for _, rule := range rules {
			if !errors.Is(err, rule.Target) {
				continue
			}
			detail := rule.Detail
			if detail == "" {
				detail = err.Error()
			}
			return rule.Problem.WithDetail(detail), true
		}
		return ProblemDetail{}, false
	}
}

// Responder writes problem responses, trying each mapper before falling back
// to a generic 500 whose detail never carries the raw error text.
type Responder struct {
	baseURI string
	logger  *slog.Logger
	mappers []ErrorMapper
}

func NewResponder(baseURI string, mappers ...ErrorMapper) *Responder {
	return &Responder{baseURI: baseURI, mappers: mappers}
}

// WithLogger returns a copy that logs unmapped errors and upstream failures.
func (r *Responder) WithLogger(logger *slog.Logger) *Responder {
	clone := *r
	clone.logger = logger
	return &clone
}

// Respond sends a ProblemDetail response with proper content type.
func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.baseURI != "" && len(problem.Type) > 0 && problem.Type[0] == '/' {
		problem.Type = r.baseURI + problem.Type
	}
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// RespondError converts err into a ProblemDetail and responds.
func (r *Responder) RespondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	problem, mapped := r.lookup(err)
	switch {
	case !mapped:
		r.log(c, slog.LevelError, "unhandled request error", err)
	case problem.Status >= 500:
		r.log(c, slog.LevelWarn, "upstream failure", err)
	}
	r.Respond(c, problem)
}

func (r *Responder) lookup(err error) (ProblemDetail, bool) {
	var problem ProblemDetail
	if errors.As(err, &problem) {
		return problem, true
	}
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			return problem, true
		}
	}
	return ErrInternal, false
}

func (r *Responder) log(c *gin.Context, level slog.Level, msg string, err error) {
	if r.logger == nil {
		return
	}
	r.logger.LogAttrs(c.Request.Context(), level, msg,
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()))
}

// BadRequest sends a 400 problem for payloads that fail to bind.
func (r *Responder) BadRequest(c *gin.Context, detail string) {
	r.Respond(c, ErrBadRequest.WithDetail(detail))
}

// Unauthorized sends a 401 problem response.
func (r *Responder) Unauthorized(c *gin.Context, detail string) {
	r.Respond(c, ErrUnauthorized.WithDetail(detail))
}
