package domain

import (
	"errors"
	"time"

	"socialgraph/src/domain/entities"
)

var (
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("caller is not allowed to act on this resource")
	ErrForbidden        = errors.New("caller may not access this resource")
	ErrInvalidOperation = errors.New("operation is not valid for this pair of users")
	ErrConflict         = errors.New("resource already exists")
	ErrInvalidState     = errors.New("resource is not in a state that allows this operation")
	ErrInvalidCursor    = errors.New("page cursor is malformed")

	ErrUnavailableServer = errors.New("Oops, something unexpected happened. Please try again later.")
)

// Identity is the authenticated caller, resolved once by the HTTP layer and
// passed explicitly into every core operation. Core code never reads the
// current user from ambient state.
type Identity struct {
	UserID   int64
	Username string
}

// Capability selects which visibility predicate the gate applies.
type Capability string

const (
	// CapOwnerOrFriend allows the resource owner and the owner's friends.
	CapOwnerOrFriend Capability = "owner-or-friend"
	// CapAuthenticated allows any authenticated identity.
	CapAuthenticated Capability = "authenticated-only"
)

// ############################################################
// ################### FEED READ MODELS #######################
// ############################################################

// FeedPage is one page of the composed news feed. NextCursor is empty when
// the feed is exhausted.
type FeedPage struct {
	Posts      []entities.Post
	NextCursor string
}

// ############################################################
// ################# IDENTITY READ MODELS #####################
// ############################################################

// TokenPair is the credential issued by the identity service.
type TokenPair struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}

// ProfileUpdate carries the caller-editable profile fields. Nil means
// "leave unchanged".
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Bio       *string
	Location  *string
}

// ############################################################
// ################### GRAPH READ MODELS ######################
// ############################################################

// FriendRequestView is the single view model serialized for friend
// requests, produced by one code path regardless of how the row was
// loaded.
type FriendRequestView struct {
	ID             int64                        `json:"id"`
	SenderID       int64                        `json:"sender_id"`
	ReceiverID     int64                        `json:"receiver_id"`
	SenderUsername string                       `json:"sender_username,omitempty"`
	Status         entities.FriendRequestStatus `json:"status"`
	CreatedAt      time.Time                    `json:"created_at"`
}
