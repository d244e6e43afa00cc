package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/edurisk/student-risk-hub/internal/application/query"
	"github.com/edurisk/student-risk-hub/internal/domain/shared"
	"github.com/edurisk/student-risk-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROOT & HEALTH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot returns basic service information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "student-risk-hub",
		"status":  "running",
		"endpoints": []string{
			"POST /api/v1/assess",
			"GET /api/v1/assessments",
			"GET /api/v1/grade-averages",
			"GET /health",
			"GET /ready",
			"GET /live",
		},
	})
}

// handleHealth reports overall process health. The process stays alive
// without model artifacts, but reports that state honestly.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	modelReady := s.deps.ModelReady != nil && s.deps.ModelReady()

	components := []ComponentHealth{
		{Name: "model", Status: healthStatus(modelReady)},
	}
	if s.deps.HealthChecker != nil {
		components = append(components, s.deps.HealthChecker.Check(r.Context())...)
	}

	overall := "healthy"
	for _, c := range components {
		if c.Status == "down" {
			overall = "degraded"
			break
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     overall,
		"uptime_s":   int(s.Uptime().Seconds()),
		"components": components,
		"timestamp":  time.Now().UTC(),
	})
}

// handleReady reports readiness to serve assessments. Without model
// artifacts the process is alive but not ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.ModelReady == nil || !s.deps.ModelReady() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready", "reason": "model artifacts not loaded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive is the liveness probe.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func healthStatus(up bool) string {
	if up {
		return "up"
	}
	return "down"
}

// ══════════════════════════════════════════════════════════════════════════════
// ASSESSMENT HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// handleAssess runs the full assessment pipeline for one student record.
func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req AssessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error(), statusValidationError)
		return
	}

	cmd, err := req.ToCommand(getRequestID(r.Context()))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), statusValidationError)
		return
	}

	result, err := s.deps.AssessHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeAssessError(w, r, err)
		return
	}

	shapValues := make([]ShapValueDTO, 0, len(result.Result.Attributions))
	for _, a := range result.Result.Attributions {
		shapValues = append(shapValues, ShapValueDTO{Feature: a.Feature, Importance: a.Importance})
	}

	writeJSON(w, http.StatusOK, AssessResponse{
		AssessmentID:    result.AssessmentID,
		Prediction:      result.Result.EstimatedGrade,
		RiskCategory:    result.Result.Risk.String(),
		RiskDescriptor:  result.Result.Risk.Descriptor(),
		Confidence:      result.Result.Confidence,
		Probabilities:   result.Result.Probabilities,
		ShapValues:      shapValues,
		MentoringAdvice: result.Result.Advice,
		Status:          statusSuccess,
	})
}

// writeAssessError maps pipeline errors to wire errors. Validation failures
// echo their message; everything else is surfaced generically and logged
// with full detail server side.
func (s *Server) writeAssessError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case shared.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error(), statusValidationError)

	case shared.IsModelUnavailable(err):
		writeError(w, http.StatusServiceUnavailable,
			"Model artifacts are not loaded; assessments are unavailable", statusServiceUnavailable)

	default:
		s.logger.Error("assessment failed",
			logger.Err(err),
			logger.String("request_id", getRequestID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred", statusError)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// QUERY HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListAssessments returns recent assessment history.
func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	if s.deps.HistoryHandler == nil {
		writeError(w, http.StatusServiceUnavailable, "Assessment history is not available", statusServiceUnavailable)
		return
	}

	limit := getQueryParamInt(r, "limit", 0)
	if limit < 0 {
		writeError(w, http.StatusBadRequest, "limit cannot be negative", statusValidationError)
		return
	}

	result, err := s.deps.HistoryHandler.Handle(r.Context(), query.GetAssessmentHistoryQuery{Limit: limit})
	if err != nil {
		s.logger.Error("history query failed", logger.Err(err))
		writeError(w, http.StatusInternalServerError, "Failed to load assessment history", statusError)
		return
	}

	writeJSON(w, http.StatusOK, AssessmentListResponse{
		Assessments: result.Entries,
		Count:       result.Count,
		Status:      statusSuccess,
	})
}

// handleGradeAverages returns dataset-level grade means over stored
// assessments, cache-first.
func (s *Server) handleGradeAverages(w http.ResponseWriter, r *http.Request) {
	if s.deps.AveragesHandler == nil {
		writeError(w, http.StatusServiceUnavailable, "Grade averages are not available", statusServiceUnavailable)
		return
	}

	result, err := s.deps.AveragesHandler.Handle(r.Context())
	if err != nil {
		s.logger.Error("grade averages query failed", logger.Err(err))
		writeError(w, http.StatusInternalServerError, "Failed to compute grade averages", statusError)
		return
	}

	writeJSON(w, http.StatusOK, GradeAveragesResponse{
		G1:           result.Averages.G1,
		G2:           result.Averages.G2,
		AverageGrade: result.Averages.AverageGrade,
		SampleCount:  result.Averages.SampleCount,
		FromCache:    result.FromCache,
		Status:       statusSuccess,
	})
}
