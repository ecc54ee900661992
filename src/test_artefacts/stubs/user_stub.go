package stubs

import (
	"fmt"
	"time"

	"socialgraph/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type UserStub struct {
	user entities.User
}

func NewUserStub() UserStub {
	now := time.Now().UTC()

	user := entities.User{
		Username:     fmt.Sprintf("%s_%s", gofakeit.Username(), gofakeit.LetterN(6)),
		Email:        fmt.Sprintf("%s.%s", gofakeit.LetterN(6), gofakeit.Email()),
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$dGVzdHNhbHQxMjM0NTY$dGVzdGhhc2h0ZXN0aGFzaHRlc3RoYXNodGVzdGhhc2g",
		FirstName:    gofakeit.FirstName(),
		LastName:     gofakeit.LastName(),
		Bio:          gofakeit.Sentence(6),
		Location:     gofakeit.City(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return UserStub{user: user}
}

func (us UserStub) WithUsername(username string) UserStub {
	us.user.Username = username
	return us
}

func (us UserStub) WithEmail(email string) UserStub {
	us.user.Email = email
	return us
}

func (us UserStub) WithPasswordHash(hash string) UserStub {
	us.user.PasswordHash = hash
	return us
}

func (us UserStub) Get() entities.User {
	return us.user
}
