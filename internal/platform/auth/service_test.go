package auth

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type fakeStore struct {
	nextID   int64
	accounts map[string]*Account
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: make(map[string]*Account)}
}

func (f *fakeStore) GetByName(_ context.Context, name string) (*Account, error) {
	if a, ok := f.accounts[name]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*Account, error) {
	for _, a := range f.accounts {
		if a.UserID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Create(_ context.Context, a *Account) error {
	f.nextID++
	a.UserID = f.nextID
	cp := *a
	f.accounts[a.Name] = &cp
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) (int64, error) {
	for name, a := range f.accounts {
		if a.UserID == id {
			delete(f.accounts, name)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeStore) Rename(_ context.Context, id int64, newName string) (int64, error) {
	for name, a := range f.accounts {
		if a.UserID == id {
			delete(f.accounts, name)
			a.Name = newName
			f.accounts[newName] = a
			return 1, nil
		}
	}
	return 0, nil
}

var testSecret = []byte("test-secret")

func newTestService() (*Service, *fakeStore) {
	st := newFakeStore()
	return NewService(st, testSecret, time.Hour), st
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	id, err := svc.Register(ctx, "galdor", "hunter2", RoleAdventurer)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if id == 0 {
		t.Fatal("Register returned zero user id")
	}

	tokenStr, err := svc.Login(ctx, "galdor", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return testSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["sub"] != strconv.FormatInt(id, 10) {
		t.Errorf("sub = %v, want %d", claims["sub"], id)
	}
	if claims["role"] != RoleAdventurer {
		t.Errorf("role = %v, want %s", claims["role"], RoleAdventurer)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	if _, err := svc.Register(ctx, "galdor", "hunter2", RoleClient); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Login(ctx, "galdor", "wrong"); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("Login with wrong password: err = %v, want ErrAuthFailed", err)
	}
	if _, err := svc.Login(ctx, "nobody", "hunter2"); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("Login with unknown name: err = %v, want ErrAuthFailed", err)
	}
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService()

	if _, err := svc.Register(ctx, "galdor", "hunter2", RoleClient); err != nil {
		t.Fatalf("Register: %v", err)
	}
	st.accounts["galdor"].IsDisabled = true

	if _, err := svc.Login(ctx, "galdor", "hunter2"); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("Login on disabled account: err = %v, want ErrAuthFailed", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	if _, err := svc.Register(ctx, "galdor", "hunter2", "wizard"); !errors.Is(err, ErrBadRole) {
		t.Errorf("Register with unknown role: err = %v, want ErrBadRole", err)
	}

	if _, err := svc.Register(ctx, "galdor", "hunter2", RoleGuildMaster); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, "galdor", "other", RoleClient); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("Register duplicate name: err = %v, want ErrAlreadyExists", err)
	}
}

func TestRename(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	id1, _ := svc.Register(ctx, "galdor", "pw", RoleClient)
	id2, _ := svc.Register(ctx, "mira", "pw", RoleClient)

	if err := svc.Rename(ctx, id1, "mira"); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("Rename onto taken name: err = %v, want ErrAlreadyExists", err)
	}
	if err := svc.Rename(ctx, id2, "mira"); err != nil {
		t.Errorf("Rename to own name: err = %v, want nil", err)
	}
	if err := svc.Rename(ctx, id1, "thorin"); err != nil {
		t.Errorf("Rename: %v", err)
	}
	if err := svc.Rename(ctx, 999, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Rename unknown id: err = %v, want ErrNotFound", err)
	}
}
