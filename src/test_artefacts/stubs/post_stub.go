package stubs

import (
	"time"

	"socialgraph/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type PostStub struct {
	post entities.Post
}

func NewPostStub() PostStub {
	now := time.Now().UTC()

	post := entities.Post{
		ID:        gofakeit.Int64(),
		AuthorID:  gofakeit.Int64(),
		Caption:   gofakeit.Sentence(10),
		ImageURL:  gofakeit.URL(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	return PostStub{post: post}
}

func (ps PostStub) WithID(id int64) PostStub {
	ps.post.ID = id
	return ps
}

func (ps PostStub) WithAuthorID(authorID int64) PostStub {
	ps.post.AuthorID = authorID
	return ps
}

func (ps PostStub) WithCaption(caption string) PostStub {
	ps.post.Caption = caption
	return ps
}

func (ps PostStub) WithCreatedAt(createdAt time.Time) PostStub {
	ps.post.CreatedAt = createdAt
	return ps
}

func (ps PostStub) Get() entities.Post {
	return ps.post
}
