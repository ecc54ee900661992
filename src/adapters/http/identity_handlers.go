package http

import (
	"encoding/json"
	"net/http"

	"socialgraph/src/domain"
	"socialgraph/src/services/identity"
)

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var request RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, domain.ErrInvalidOperation)
		return
	}

	user, err := s.identityService.Register(r.Context(), identity.RegisterInput{
		Username:  request.Username,
		Email:     request.Email,
		Password:  request.Password,
		FirstName: request.FirstName,
		LastName:  request.LastName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) Token(w http.ResponseWriter, r *http.Request) {
	var request CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, domain.ErrInvalidOperation)
		return
	}

	pair, err := s.identityService.Authenticate(r.Context(), request.Username, request.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var request RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, domain.ErrInvalidOperation)
		return
	}

	pair, err := s.identityService.Refresh(r.Context(), request.Refresh)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) GetSelf(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	user, err := s.identityService.GetSelf(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (s *Server) UpdateSelf(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	var request ProfilePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, domain.ErrInvalidOperation)
		return
	}

	user, err := s.identityService.UpdateSelf(r.Context(), actor, domain.ProfileUpdate{
		FirstName: request.FirstName,
		LastName:  request.LastName,
		Bio:       request.Bio,
		Location:  request.Location,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (s *Server) DeleteSelf(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	if err := s.identityService.DeleteSelf(r.Context(), actor); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) SearchUsers(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	term := r.URL.Query().Get("q")
	if term == "" {
		writeError(w, domain.ErrInvalidOperation)
		return
	}

	users, err := s.identityService.Search(r.Context(), term, queryInt(r, "limit"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}
