package http

import (
	"encoding/json"
	"net/http"

	"socialgraph/src/domain"
)

func (s *Server) SendFriendRequest(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	var request FriendRequestCreate
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, domain.ErrInvalidOperation)
		return
	}

	created, err := s.socialService.SendRequest(r.Context(), actor, request.ReceiverID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) ListFriendRequests(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	pending, err := s.socialService.PendingRequests(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pending)
}

func (s *Server) AcceptFriendRequest(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	requestID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	accepted, err := s.socialService.Accept(r.Context(), actor, requestID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, accepted)
}

func (s *Server) RejectFriendRequest(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	requestID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	rejected, err := s.socialService.Reject(r.Context(), actor, requestID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rejected)
}

func (s *Server) Follow(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	followeeID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.socialService.Follow(r.Context(), actor, followeeID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) Unfollow(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	followeeID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.socialService.Unfollow(r.Context(), actor, followeeID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) FollowersCount(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	count, err := s.socialService.FollowersCount(r.Context(), actor, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"followers_count": count})
}

func (s *Server) ListFollowers(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	followers, err := s.socialService.FollowersOf(r.Context(), actor, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]int64{"followers": followers})
}

func (s *Server) ListFriends(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	friends, err := s.socialService.FriendsOf(r.Context(), actor, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]int64{"friends": friends})
}
