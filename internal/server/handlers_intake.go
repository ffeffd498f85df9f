// internal/server/handlers_intake.go
package server

import (
	"encoding/json"
	"net/http"

	stderrors "voluntra-backend/internal/common/errors"
	"voluntra-backend/internal/intake"
	"voluntra-backend/internal/models"
)

type startSessionRequest struct {
	ProgramID       string `json:"programId"`
	DurationWeeks   int    `json:"durationWeeks"`
	TargetStartDate string `json:"targetStartDate"`
}

type sessionResponse struct {
	SessionID string       `json:"sessionId,omitempty"`
	State     intake.State `json:"state"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProgramID == "" {
		http.Error(w, "programId is required", http.StatusBadRequest)
		return
	}

	program, err := s.catalog.Program(r.Context(), req.ProgramID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !offersDuration(program, s.durations, req.DurationWeeks) {
		writeError(w, stderrors.NewDurationNotOfferedError(req.DurationWeeks, req.ProgramID))
		return
	}

	identity, err := s.identityFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id, wf := s.sessions.Start(intake.Params{
		ProgramID:       req.ProgramID,
		DurationWeeks:   req.DurationWeeks,
		TargetStartDate: req.TargetStartDate,
	}, identity)

	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: id, State: wf.State()})
}

// offersDuration checks a requested stay length against the site-wide options
// and the durations the program itself lists and prices.
func offersDuration(program models.Program, siteOptions []int, weeks int) bool {
	if !containsInt(siteOptions, weeks) {
		return false
	}
	if len(program.DurationOptions) > 0 && !containsInt(program.DurationOptions, weeks) {
		return false
	}
	_, ok := program.PriceFor(weeks)
	return ok
}

func containsInt(values []int, want int) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*intake.Workflow, bool) {
	wf, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return wf, true
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{State: wf.State()})
}

func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.session(w, r)
	if !ok {
		return
	}

	var req struct {
		SessionToken string `json:"sessionToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	identity, err := s.verifier.Verify(r.Context(), req.SessionToken)
	if err != nil {
		writeError(w, err)
		return
	}

	wf.Authenticate(identity)
	writeJSON(w, http.StatusOK, sessionResponse{State: wf.State()})
}

type draftRequest struct {
	PersonalInfo *struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Phone     string `json:"phone"`
	} `json:"personalInfo,omitempty"`
	Experience *struct {
		Motivation string `json:"motivation"`
		Skills     string `json:"skills"`
	} `json:"experience,omitempty"`
	Travel *struct {
		ArrivalDate     string `json:"arrivalDate"`
		InsuranceAssent bool   `json:"insuranceAssent"`
	} `json:"travel,omitempty"`
}

func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.session(w, r)
	if !ok {
		return
	}

	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.PersonalInfo != nil {
		wf.SetPersonalInfo(req.PersonalInfo.FirstName, req.PersonalInfo.LastName, req.PersonalInfo.Phone)
	}
	if req.Experience != nil {
		wf.SetExperience(req.Experience.Motivation, req.Experience.Skills)
	}
	if req.Travel != nil {
		wf.SetTravelDetails(req.Travel.ArrivalDate, req.Travel.InsuranceAssent)
	}
	writeJSON(w, http.StatusOK, sessionResponse{State: wf.State()})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.session(w, r)
	if !ok {
		return
	}

	// A validation failure still returns the full state; the step error
	// rides along inside it rather than as a transport failure.
	wf.Advance()
	writeJSON(w, http.StatusOK, sessionResponse{State: wf.State()})
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.session(w, r)
	if !ok {
		return
	}
	wf.Back()
	writeJSON(w, http.StatusOK, sessionResponse{State: wf.State()})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.session(w, r)
	if !ok {
		return
	}

	state, err := wf.Submit(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	if s.notifier != nil {
		if identity, ok := wf.Identity(); ok {
			params := wf.Params()
			s.notifier.ApplicationSubmitted(r.Context(), identity, models.ApplicationRecord{
				ID:              state.SubmittedID,
				ProgramID:       params.ProgramID,
				DurationWeeks:   params.DurationWeeks,
				TargetStartDate: params.TargetStartDate,
				PersonalInfo: models.PersonalInfoSnapshot{
					FirstName: state.Draft.FirstName,
					LastName:  state.Draft.LastName,
					Email:     identity.Email,
					Phone:     state.Draft.Phone,
				},
			})
		}
	}

	writeJSON(w, http.StatusOK, sessionResponse{State: state})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.End(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}
