package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/flight-checker/internal/availability"
	"github.com/nekogravitycat/flight-checker/internal/checker"
	"github.com/nekogravitycat/flight-checker/internal/pkg/apperror"
	"github.com/nekogravitycat/flight-checker/internal/pkg/response"
	"github.com/nekogravitycat/flight-checker/internal/resource"
	"github.com/nekogravitycat/flight-checker/internal/schedule"
)

// Runner runs one live check against the configured schedule source.
type Runner interface {
	Run(ctx context.Context) (*checker.Report, error)
}

type Handler struct {
	engine *availability.Engine
	runner Runner
	logger *zap.Logger
}

func NewHandler(engine *availability.Engine, runner Runner, logger *zap.Logger) *Handler {
	return &Handler{
		engine: engine,
		runner: runner,
		logger: logger,
	}
}

// Find computes availability for a schedule supplied in the request body.
func (h *Handler) Find(c *gin.Context) {
	var body FindRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	query := body.Query()
	if err := query.Validate(); err != nil {
		response.Error(c, apperror.BadRequest(err))
		return
	}

	sched, err := schedule.Decode(bytes.NewReader(body.Schedule))
	if err != nil {
		response.Error(c, apperror.BadRequest(err))
		return
	}

	found, err := h.engine.FindOpportunities(*sched, query)
	if err != nil {
		switch {
		case errors.Is(err, resource.ErrInstructorNotFound), errors.Is(err, resource.ErrAmbiguousInstructor):
			response.Error(c, apperror.Unprocessable(err))
		default:
			h.logger.Error("find availability failed", zap.Error(err))
			response.Error(c, err)
		}
		return
	}

	loc := h.engine.Location()
	items := make([]OpportunityResponse, len(found))
	for i, o := range found {
		items[i] = NewOpportunityResponse(o, loc)
	}

	c.JSON(http.StatusOK, response.NewListResponse(items))
}

// Check runs a live check and returns its report.
func (h *Handler) Check(c *gin.Context) {
	report, err := h.runner.Run(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, resource.ErrInstructorNotFound), errors.Is(err, resource.ErrAmbiguousInstructor):
			response.Error(c, apperror.Unprocessable(err))
		default:
			h.logger.Error("check failed", zap.Error(err))
			response.Error(c, apperror.Wrap(err, http.StatusBadGateway, "check failed"))
		}
		return
	}

	c.JSON(http.StatusOK, report)
}
