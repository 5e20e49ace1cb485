package consumables

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
)

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		case CodeConflict:
			return 409
		default:
			return 500
		}
	}
	return 500
}

type Service struct {
	db    *sql.DB
	store *Store
}

func NewService(conn *sql.DB) *Service { return &Service{db: conn, store: NewStore(conn)} }

func (s *Service) Create(ctx context.Context, in CreateConsumableRequest) (ConsumableResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return ConsumableResponse{}, ErrInvalid("name is required")
	}
	m := &Consumable{Name: in.Name}
	if in.Description != nil {
		m.Description.String, m.Description.Valid = *in.Description, true
	}
	if err := s.store.Insert(ctx, m); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return ConsumableResponse{}, ErrConflict("consumable name already exists")
		}
		return ConsumableResponse{}, err
	}
	return buildResponse(m), nil
}

func (s *Service) Get(ctx context.Context, id int64) (ConsumableResponse, error) {
	m, err := s.store.GetByID(ctx, id)
	if err != nil {
		return ConsumableResponse{}, err
	}
	return buildResponse(m), nil
}

func (s *Service) List(ctx context.Context, name string, p Page) (ListConsumablesResult, error) {
	items, total, err := s.store.List(ctx, name, p)
	if err != nil {
		return ListConsumablesResult{}, err
	}
	res := make([]ConsumableResponse, 0, len(items))
	for i := range items {
		res = append(res, buildResponse(&items[i]))
	}
	next := p.Offset + p.Limit
	if next >= int(total) {
		next = 0
	}
	return ListConsumablesResult{Items: res, Total: total, NextOffset: next}, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateConsumableRequest) (ConsumableResponse, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return ConsumableResponse{}, ErrInvalid("name must not be empty")
	}
	n, err := s.store.Update(ctx, id, in)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return ConsumableResponse{}, ErrConflict("consumable name already exists")
		}
		return ConsumableResponse{}, err
	}
	if n == 0 {
		return ConsumableResponse{}, ErrNotFound("consumable not found")
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1451 {
			return ErrConflict("consumable is referenced by an adventurer")
		}
		return err
	}
	if n == 0 {
		return ErrNotFound("consumable not found")
	}
	return nil
}

func buildResponse(m *Consumable) ConsumableResponse {
	resp := ConsumableResponse{ConsumableID: m.ConsumableID, Name: m.Name}
	if m.Description.Valid {
		v := m.Description.String
		resp.Description = &v
	}
	return resp
}
