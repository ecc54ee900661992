package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
)

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type ProfilePatchRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Location  *string `json:"location"`
}

type FriendRequestCreate struct {
	ReceiverID int64 `json:"receiver_id"`
}

type PostCreateRequest struct {
	Caption  string `json:"caption"`
	ImageURL string `json:"image_url"`
}

type PostPatchRequest struct {
	Caption string `json:"caption"`
}

type CommentCreateRequest struct {
	Content string `json:"content"`
}

type MessageSendRequest struct {
	UserID  int64  `json:"user_id"`
	Content string `json:"content"`
}

type FeedPageDTO struct {
	Posts      []entities.Post `json:"posts"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// ChatDTO flattens the stored pair into "the other participant" from the
// caller's point of view.
type ChatDTO struct {
	ID          int64  `json:"id"`
	OtherUserID int64  `json:"other_user_id"`
	UpdatedAt   string `json:"updated_at"`
}

func MapChatToResponse(chat entities.Chat, viewerID int64) ChatDTO {
	return ChatDTO{
		ID:          chat.ID,
		OtherUserID: chat.OtherParticipant(viewerID),
		UpdatedAt:   chat.UpdatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses and always
// renders the body as {"detail": "..."}. Unknown errors become an opaque
// 500 so internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)

	detail := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
		detail = domain.ErrUnavailableServer.Error()
	}

	writeJSON(w, status, map[string]string{"detail": detail})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidOperation), errors.Is(err, domain.ErrInvalidCursor):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
