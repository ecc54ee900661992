package http

import (
	"encoding/json"
	"net/http"

	"socialgraph/src/domain"
)

func (s *Server) ListChats(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	chats, err := s.chatService.ListChats(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	response := make([]ChatDTO, 0, len(chats))
	for _, chatRecord := range chats {
		response = append(response, MapChatToResponse(chatRecord, actor.UserID))
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) ListMessages(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	otherUserID := queryInt64(r, "user_id")
	if otherUserID == 0 {
		writeError(w, domain.ErrInvalidOperation)
		return
	}

	messages, err := s.chatService.ListMessages(r.Context(), actor, otherUserID, queryInt64(r, "before_id"), queryInt(r, "limit"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

func (s *Server) SendMessage(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	var request MessageSendRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, domain.ErrInvalidOperation)
		return
	}

	message, err := s.chatService.SendMessage(r.Context(), actor, request.UserID, request.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, message)
}
