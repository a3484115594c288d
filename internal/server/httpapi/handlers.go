package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sara-git-hub/diabcare/internal/common"
	"github.com/sara-git-hub/diabcare/internal/server/models"
	"github.com/sara-git-hub/diabcare/internal/server/repositories/patients"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type createPatientRequest struct {
	Name          string  `json:"name"`
	Sex           string  `json:"sex"`
	Glucose       float64 `json:"glucose"`
	BloodPressure float64 `json:"blood_pressure"`
	BMI           float64 `json:"bmi"`
	Pedigree      float64 `json:"pedigree"`
	Age           int     `json:"age"`
}

type patientResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Sex           string    `json:"sex"`
	Glucose       float64   `json:"glucose"`
	BloodPressure float64   `json:"blood_pressure"`
	BMI           float64   `json:"bmi"`
	Pedigree      float64   `json:"pedigree"`
	Age           int       `json:"age"`
	Label         int       `json:"label"`
	Confidence    float64   `json:"confidence"`
	Result        string    `json:"result"`
	CreatedAt     time.Time `json:"created_at"`
}

type statsResponse struct {
	Total           int     `json:"total"`
	Elevated        int     `json:"elevated"`
	NotElevated     int     `json:"not_elevated"`
	ElevatedPercent float64 `json:"elevated_percent"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// resultText renders the binary label for human-facing surfaces.
func resultText(label int) string {
	if label == 1 {
		return "elevated risk"
	}
	return "no elevated risk"
}

func toPatientResponse(p *models.Patient) patientResponse {
	return patientResponse{
		ID:            p.ID,
		Name:          p.Name,
		Sex:           p.Sex,
		Glucose:       p.Glucose,
		BloodPressure: p.BloodPressure,
		BMI:           p.BMI,
		Pedigree:      p.Pedigree,
		Age:           p.Age,
		Label:         p.Label,
		Confidence:    p.Confidence,
		Result:        resultText(p.Label),
		CreatedAt:     p.CreatedAt,
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto status codes. Unrecognized
// errors become an opaque 500 so internals do not leak to clients.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Error: err.Error()}
	var status int

	var measurementErr *common.MeasurementError
	switch {
	case errors.As(err, &measurementErr):
		status = http.StatusBadRequest
		resp.Field = measurementErr.Field
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrWeakPassword):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrInvalidCredentials), errors.Is(err, common.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrDuplicateUsername):
		status = http.StatusConflict
	case errors.Is(err, common.ErrModelUnavailable):
		status = http.StatusServiceUnavailable
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
		status = http.StatusInternalServerError
		resp.Error = "internal error"
	}

	s.writeJSON(w, status, resp)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.ErrValidation)
		return
	}

	user, err := s.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, registerResponse{
		UserID:   user.ID,
		Username: user.Username,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.ErrValidation)
		return
	}

	userID, err := s.users.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.sessions.Create(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, loginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Invalidate(r.Context(), sessionTokenFromContext(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreatePatient(w http.ResponseWriter, r *http.Request) {
	var req createPatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.ErrValidation)
		return
	}

	patient, err := s.patients.Create(r.Context(), userIDFromContext(r.Context()),
		req.Name, req.Sex, models.Measurements{
			Glucose:       req.Glucose,
			BloodPressure: req.BloodPressure,
			BMI:           req.BMI,
			Pedigree:      req.Pedigree,
			Age:           req.Age,
		})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toPatientResponse(patient))
}

// parseListOptions reads the filter/sort query parameters:
// label, min_age, min_glucose, sort, order (asc|desc).
func parseListOptions(r *http.Request) (patients.ListOptions, error) {
	var opts patients.ListOptions
	q := r.URL.Query()

	if v := q.Get("label"); v != "" {
		label, err := strconv.Atoi(v)
		if err != nil || (label != 0 && label != 1) {
			return opts, common.ErrValidation
		}
		opts.Filter.Label = &label
	}
	if v := q.Get("min_age"); v != "" {
		minAge, err := strconv.Atoi(v)
		if err != nil {
			return opts, common.ErrValidation
		}
		opts.Filter.MinAge = &minAge
	}
	if v := q.Get("min_glucose"); v != "" {
		minGlucose, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, common.ErrValidation
		}
		opts.Filter.MinGlucose = &minGlucose
	}

	opts.SortKey = q.Get("sort")
	switch q.Get("order") {
	case "", "asc":
	case "desc":
		opts.Descending = true
	default:
		return opts, common.ErrValidation
	}

	return opts, nil
}

func (s *Server) handleListPatients(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	list, err := s.patients.List(r.Context(), userIDFromContext(r.Context()), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := make([]patientResponse, 0, len(list))
	for _, p := range list {
		resp = append(resp, toPatientResponse(p))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePatientStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.patients.Stats(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, statsResponse{
		Total:           stats.Total,
		Elevated:        stats.Elevated,
		NotElevated:     stats.Total - stats.Elevated,
		ElevatedPercent: stats.ElevatedPercent,
	})
}

func (s *Server) handleDeletePatient(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "id")

	if err := s.patients.Delete(r.Context(), userIDFromContext(r.Context()), patientID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	type healthResponse struct {
		Status    string    `json:"status"`
		Database  string    `json:"database"`
		Model     string    `json:"model"`
		Version   string    `json:"version"`
		Timestamp time.Time `json:"timestamp"`
	}

	resp := healthResponse{
		Status:    "healthy",
		Database:  "connected",
		Model:     "loaded",
		Version:   Version,
		Timestamp: time.Now(),
	}
	status := http.StatusOK

	if err := s.db.PingContext(ctx); err != nil {
		resp.Status = "unhealthy"
		resp.Database = "disconnected"
		status = http.StatusServiceUnavailable
	}
	if !s.predictor.Ready() {
		resp.Status = "unhealthy"
		resp.Model = "unavailable"
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, resp)
}
