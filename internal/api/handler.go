package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/audit"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/guard"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/rs/zerolog"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type ValidatorsResponse struct {
	Validators []guard.Descriptor `json:"validators"`
}

type AuditResponse struct {
	Results []models.GuardResult `json:"results"`
}

type Handler struct {
	guard    *guard.Guard
	recorder audit.Recorder
	logger   *zerolog.Logger
}

func NewHandler(g *guard.Guard, recorder audit.Recorder, logger *zerolog.Logger) *Handler {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Handler{
		guard:    g,
		recorder: recorder,
		logger:   logger,
	}
}

// Health handler GET /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	})
}

// GET /api/v1/validators
func (h *Handler) ListValidators(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, ValidatorsResponse{Validators: h.guard.Validators()})
}

// POST /api/v1/validate
// Body: ValidationRequest
// Returns: GuardResult
func (h *Handler) Validate(req *restful.Request, resp *restful.Response) {
	var validationRequest models.ValidationRequest
	if err := req.ReadEntity(&validationRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	h.logger.Info().
		Str("event_id", validationRequest.EventID).
		Strs("validators", validationRequest.Validators).
		Msg("Start validation")

	result, err := h.guard.Validate(req.Request.Context(), validationRequest)
	h.writeResult(resp, result, err)
}

// POST /api/v1/validate/{validator_name}
func (h *Handler) ValidateSingle(req *restful.Request, resp *restful.Response) {
	name := req.PathParameter("validator_name")

	var validationRequest models.ValidationRequest
	if err := req.ReadEntity(&validationRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	h.logger.Info().
		Str("event_id", validationRequest.EventID).
		Str("validator", name).
		Msg("Start validation")

	result, err := h.guard.ValidateWith(req.Request.Context(), name, validationRequest)
	h.writeResult(resp, result, err)
}

// GET /api/v1/audit?limit=N
func (h *Handler) Audit(req *restful.Request, resp *restful.Response) {
	limit := audit.DefaultRecentLimit
	if raw := req.QueryParameter("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			middleware.HandleError(resp, errors.New("limit must be a positive integer"), http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	results, err := h.recorder.Recent(req.Request.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read audit log")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, AuditResponse{Results: results})
}

func (h *Handler) writeResult(resp *restful.Response, result models.GuardResult, err error) {
	var validationErr *guard.ValidationError
	switch {
	case err == nil:
	case errors.Is(err, guard.ErrValidatorNotFound):
		middleware.HandleError(resp, err, http.StatusNotFound)
		return
	case errors.As(err, &validationErr):
		h.logger.Warn().Str("event_id", result.ID).Err(err).Msg("Validation rejected")
		resp.WriteHeaderAndEntity(http.StatusUnprocessableEntity, result)
		return
	default:
		h.logger.Error().Str("event_id", result.ID).Err(err).Msg("Validation failed")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("event_id", result.ID).
		Str("outcome", string(result.Outcome)).
		Msg("Validation complete")

	resp.WriteHeaderAndEntity(http.StatusOK, result)
}
