package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Guild roles. Anything else is rejected at registration.
const (
	RoleGuildMaster = "guild_master"
	RoleClient      = "client"
	RoleAdventurer  = "adventurer"
)

var (
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
	ErrBadRole       = errors.New("unknown role")
	ErrAuthFailed    = errors.New("authentication failed")
)

func validRole(role string) bool {
	switch role {
	case RoleGuildMaster, RoleClient, RoleAdventurer:
		return true
	}
	return false
}

type AuthService interface {
	Login(ctx context.Context, name, password string) (string, error)
	Register(ctx context.Context, name, password, role string) (int64, error)
	Delete(ctx context.Context, id int64) error
	Rename(ctx context.Context, id int64, newName string) error
}

type Service struct {
	store  AccountStore
	secret []byte
	ttl    time.Duration
}

func NewService(store AccountStore, secret []byte, ttl time.Duration) *Service {
	return &Service{store: store, secret: secret, ttl: ttl}
}

func (s *Service) Login(ctx context.Context, name, password string) (string, error) {
	acct, err := s.store.GetByName(ctx, name)
	if err != nil {
		return "", err
	}
	if acct == nil || acct.IsDisabled {
		return "", ErrAuthFailed
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return "", ErrAuthFailed
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  strconv.FormatInt(acct.UserID, 10),
		"name": acct.Name,
		"role": acct.Role,
		"exp":  time.Now().Add(s.ttl).Unix(),
	})
	return token.SignedString(s.secret)
}

func (s *Service) Register(ctx context.Context, name, password, role string) (int64, error) {
	if !validRole(role) {
		return 0, ErrBadRole
	}

	exists, err := s.store.GetByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if exists != nil {
		return 0, ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	a := &Account{
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.store.Create(ctx, a); err != nil {
		return 0, err
	}
	return a.UserID, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Rename(ctx context.Context, id int64, newName string) error {
	old, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if old == nil {
		return ErrNotFound
	}

	taken, err := s.store.GetByName(ctx, newName)
	if err != nil {
		return err
	}
	if taken != nil && taken.UserID != id {
		return ErrAlreadyExists
	}

	n, err := s.store.Rename(ctx, id, newName)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
