package http

import (
	"net/http"

	"socialgraph/src/domain"
)

func (s *Server) ListNotifications(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	items, err := s.notificationService.ListFor(r.Context(), actor, queryInt(r, "limit"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (s *Server) MarkNotificationsRead(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	if err := s.notificationService.MarkAllRead(r.Context(), actor); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
