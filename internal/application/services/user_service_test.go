package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/avatarctic/bookshelf/internal/application/services"
	"github.com/avatarctic/bookshelf/internal/core/domain/user"
	"github.com/avatarctic/bookshelf/internal/utils"
	"github.com/avatarctic/bookshelf/test/mocks"
)

func TestSignup_CreatesUserAndSendsVerification(t *testing.T) {
	var created *user.User
	var savedToken *user.EmailToken
	var mailedTo, mailedToken string

	repo := &mocks.UserRepositoryMock{CreateFn: func(ctx context.Context, u *user.User) error { created = u; return nil }}
	tokens := &mocks.EmailTokenRepositoryMock{CreateFn: func(ctx context.Context, tk *user.EmailToken) error { savedToken = tk; return nil }}
	mailer := &mocks.EmailServiceMock{SendVerificationEmailFn: func(ctx context.Context, email, token string) error {
		mailedTo, mailedToken = email, token
		return nil
	}}
	svc := services.NewUserService(repo, mailer, tokens, time.Hour, quietLogger())

	u, err := svc.Signup(context.Background(), &user.SignupRequest{Email: " New@Example.com ", Password: "hunter22a"})
	require.NoError(t, err)
	require.Equal(t, "new@example.com", u.Email)
	require.False(t, u.EmailVerified)
	require.Same(t, u, created)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter22a")))

	require.NotNil(t, savedToken)
	require.Equal(t, u.ID, savedToken.UserID)
	require.Len(t, savedToken.Token, 64)
	require.WithinDuration(t, time.Now().Add(time.Hour), savedToken.ExpiresAt, 5*time.Second)
	require.Equal(t, "new@example.com", mailedTo)
	require.Equal(t, savedToken.Token, mailedToken)
}

func TestSignup_RejectsTakenEmail(t *testing.T) {
	repo := &mocks.UserRepositoryMock{GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) {
		return &user.User{ID: uuid.New(), Email: email}, nil
	}}
	svc := services.NewUserService(repo, &mocks.EmailServiceMock{}, &mocks.EmailTokenRepositoryMock{}, 0, nil)

	_, err := svc.Signup(context.Background(), &user.SignupRequest{Email: "a@example.com", Password: "hunter22a"})
	require.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestSignup_RejectsWeakPassword(t *testing.T) {
	svc := services.NewUserService(&mocks.UserRepositoryMock{}, &mocks.EmailServiceMock{}, &mocks.EmailTokenRepositoryMock{}, 0, nil)

	_, err := svc.Signup(context.Background(), &user.SignupRequest{Email: "a@example.com", Password: "short1"})
	require.ErrorIs(t, err, user.ErrWeakPassword)
	require.ErrorIs(t, err, utils.ErrPasswordTooShort)

	_, err = svc.Signup(context.Background(), &user.SignupRequest{Email: "a@example.com", Password: "lettersonly"})
	require.ErrorIs(t, err, utils.ErrPasswordNoDigit)
}

func TestSignup_LookupFailureAborts(t *testing.T) {
	repo := &mocks.UserRepositoryMock{
		GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) { return nil, errors.New("db down") },
		CreateFn: func(ctx context.Context, u *user.User) error {
			t.Fatal("user must not be created")
			return nil
		},
	}
	svc := services.NewUserService(repo, &mocks.EmailServiceMock{}, &mocks.EmailTokenRepositoryMock{}, 0, nil)

	_, err := svc.Signup(context.Background(), &user.SignupRequest{Email: "a@example.com", Password: "hunter22a"})
	require.Error(t, err)
}

func TestSignup_MailFailureDoesNotFailSignup(t *testing.T) {
	mailer := &mocks.EmailServiceMock{SendVerificationEmailFn: func(ctx context.Context, email, token string) error {
		return errors.New("smtp down")
	}}
	svc := services.NewUserService(&mocks.UserRepositoryMock{}, mailer, &mocks.EmailTokenRepositoryMock{}, 0, quietLogger())

	u, err := svc.Signup(context.Background(), &user.SignupRequest{Email: "a@example.com", Password: "hunter22a"})
	require.NoError(t, err)
	require.NotNil(t, u)
}

func TestVerifyEmail_MarksUserVerified(t *testing.T) {
	u := &user.User{ID: uuid.New(), Email: "a@example.com"}
	tk := &user.EmailToken{ID: uuid.New(), UserID: u.ID, Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}
	var usedID uuid.UUID
	var updated *user.User

	repo := &mocks.UserRepositoryMock{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*user.User, error) { return u, nil },
		UpdateFn:  func(ctx context.Context, usr *user.User) error { updated = usr; return nil },
	}
	tokens := &mocks.EmailTokenRepositoryMock{
		GetFn: func(ctx context.Context, token string) (*user.EmailToken, error) {
			if token == "tok" {
				return tk, nil
			}
			return nil, user.ErrInvalidToken
		},
		MarkAsUsedFn: func(ctx context.Context, id uuid.UUID) error { usedID = id; return nil },
	}
	svc := services.NewUserService(repo, &mocks.EmailServiceMock{}, tokens, 0, nil)

	got, err := svc.VerifyEmail(context.Background(), "tok")
	require.NoError(t, err)
	require.True(t, got.EmailVerified)
	require.Equal(t, tk.ID, usedID)
	require.Same(t, u, updated)

	_, err = svc.VerifyEmail(context.Background(), "other")
	require.ErrorIs(t, err, user.ErrInvalidToken)
}

func TestVerifyEmail_RejectsExpiredAndUsedTokens(t *testing.T) {
	used := time.Now()
	cases := map[string]*user.EmailToken{
		"expired": {ID: uuid.New(), ExpiresAt: time.Now().Add(-time.Minute)},
		"used":    {ID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour), UsedAt: &used},
	}
	for name, tk := range cases {
		t.Run(name, func(t *testing.T) {
			tokens := &mocks.EmailTokenRepositoryMock{GetFn: func(ctx context.Context, token string) (*user.EmailToken, error) { return tk, nil }}
			svc := services.NewUserService(&mocks.UserRepositoryMock{}, &mocks.EmailServiceMock{}, tokens, 0, nil)
			_, err := svc.VerifyEmail(context.Background(), "tok")
			require.ErrorIs(t, err, user.ErrInvalidToken)
		})
	}
}

func TestResendVerificationEmail(t *testing.T) {
	verified := &user.User{ID: uuid.New(), Email: "v@example.com", EmailVerified: true}
	pending := &user.User{ID: uuid.New(), Email: "p@example.com"}
	repo := &mocks.UserRepositoryMock{GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) {
		switch email {
		case verified.Email:
			return verified, nil
		case pending.Email:
			return pending, nil
		}
		return nil, user.ErrUserNotFound
	}}
	sent := 0
	mailer := &mocks.EmailServiceMock{SendVerificationEmailFn: func(ctx context.Context, email, token string) error { sent++; return nil }}
	svc := services.NewUserService(repo, mailer, &mocks.EmailTokenRepositoryMock{}, 0, nil)

	require.ErrorIs(t, svc.ResendVerificationEmail(context.Background(), "nobody@example.com"), user.ErrUserNotFound)
	require.ErrorIs(t, svc.ResendVerificationEmail(context.Background(), "V@example.com"), user.ErrAlreadyVerified)
	require.NoError(t, svc.ResendVerificationEmail(context.Background(), "p@example.com"))
	require.Equal(t, 1, sent)
}
