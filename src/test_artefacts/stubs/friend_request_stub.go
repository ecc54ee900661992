package stubs

import (
	"time"

	"socialgraph/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type FriendRequestStub struct {
	request entities.FriendRequest
}

func NewFriendRequestStub() FriendRequestStub {
	now := time.Now().UTC()

	request := entities.FriendRequest{
		SenderID:   gofakeit.Int64(),
		ReceiverID: gofakeit.Int64(),
		Status:     entities.FriendRequestPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	return FriendRequestStub{request: request}
}

func (frs FriendRequestStub) WithSenderID(senderID int64) FriendRequestStub {
	frs.request.SenderID = senderID
	return frs
}

func (frs FriendRequestStub) WithReceiverID(receiverID int64) FriendRequestStub {
	frs.request.ReceiverID = receiverID
	return frs
}

func (frs FriendRequestStub) WithStatus(status entities.FriendRequestStatus) FriendRequestStub {
	frs.request.Status = status
	return frs
}

func (frs FriendRequestStub) Get() entities.FriendRequest {
	return frs.request
}
