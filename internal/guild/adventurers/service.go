package adventurers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
)

// ===== Error model (same shape as the quests package) =====

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
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

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

// ===== Service =====

type Service struct {
	db    *sql.DB
	store *Store
}

func NewService(conn *sql.DB) *Service { return &Service{db: conn, store: NewStore(conn)} }

func (s *Service) Create(ctx context.Context, in CreateAdventurerRequest) (AdventurerResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return AdventurerResponse{}, ErrInvalid("name is required")
	}
	if in.DailyRate <= 0 {
		return AdventurerResponse{}, ErrInvalid("daily_rate must be > 0")
	}
	if in.Experience < 0 {
		return AdventurerResponse{}, ErrInvalid("experience must be >= 0")
	}

	m := &Adventurer{
		Name:       in.Name,
		DailyRate:  in.DailyRate,
		Experience: in.Experience,
	}
	if in.SpecialityID != nil {
		m.SpecialityID.Int64, m.SpecialityID.Valid = *in.SpecialityID, true
	}

	if err := s.store.Insert(ctx, m); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) {
			switch me.Number {
			case 1062:
				return AdventurerResponse{}, ErrConflict("adventurer name already exists")
			case 1452:
				return AdventurerResponse{}, ErrInvalid("invalid speciality_id")
			}
		}
		return AdventurerResponse{}, err
	}
	return s.get(ctx, m.AdventurerID)
}

func (s *Service) Get(ctx context.Context, id int64) (AdventurerResponse, error) {
	return s.get(ctx, id)
}

func (s *Service) List(ctx context.Context, q SearchQuery, p Page) (ListAdventurersResult, error) {
	items, total, err := s.store.List(ctx, q, p)
	if err != nil {
		return ListAdventurersResult{}, err
	}

	res := make([]AdventurerResponse, 0, len(items))
	for i := range items {
		resp, err := s.buildResponse(ctx, &items[i])
		if err != nil {
			return ListAdventurersResult{}, err
		}
		res = append(res, resp)
	}

	next := p.Offset + p.Limit
	if next >= int(total) {
		next = 0
	}
	return ListAdventurersResult{Items: res, Total: total, NextOffset: next}, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateAdventurerRequest) (AdventurerResponse, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return AdventurerResponse{}, ErrInvalid("name must not be empty")
	}
	if in.DailyRate != nil && *in.DailyRate <= 0 {
		return AdventurerResponse{}, ErrInvalid("daily_rate must be > 0")
	}
	if in.Experience != nil && *in.Experience < 0 {
		return AdventurerResponse{}, ErrInvalid("experience must be >= 0")
	}

	n, err := s.store.Update(ctx, id, in)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return AdventurerResponse{}, ErrConflict("adventurer name already exists")
		}
		return AdventurerResponse{}, err
	}
	if n == 0 {
		return AdventurerResponse{}, ErrNotFound("adventurer not found")
	}
	return s.get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1451 {
			return ErrConflict("adventurer is referenced by a quest")
		}
		return err
	}
	if n == 0 {
		return ErrNotFound("adventurer not found")
	}
	return nil
}

// SetEquipmentTags replaces the adventurer's equipment capability set.
func (s *Service) SetEquipmentTags(ctx context.Context, id int64, ids []int64) (AdventurerResponse, error) {
	if err := s.exists(ctx, id); err != nil {
		return AdventurerResponse{}, err
	}
	if err := s.store.ReplaceEquipmentTags(ctx, id, ids); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1452 {
			return AdventurerResponse{}, ErrNotFound("unknown equipment id in tag set")
		}
		return AdventurerResponse{}, err
	}
	return s.get(ctx, id)
}

// SetConsumableTags replaces the adventurer's consumable capability set.
func (s *Service) SetConsumableTags(ctx context.Context, id int64, ids []int64) (AdventurerResponse, error) {
	if err := s.exists(ctx, id); err != nil {
		return AdventurerResponse{}, err
	}
	if err := s.store.ReplaceConsumableTags(ctx, id, ids); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1452 {
			return AdventurerResponse{}, ErrNotFound("unknown consumable id in tag set")
		}
		return AdventurerResponse{}, err
	}
	return s.get(ctx, id)
}

func (s *Service) exists(ctx context.Context, id int64) error {
	_, err := s.store.GetByID(ctx, id)
	return err
}

func (s *Service) get(ctx context.Context, id int64) (AdventurerResponse, error) {
	m, err := s.store.GetByID(ctx, id)
	if err != nil {
		return AdventurerResponse{}, err
	}
	return s.buildResponse(ctx, m)
}

func (s *Service) buildResponse(ctx context.Context, m *Adventurer) (AdventurerResponse, error) {
	equipIDs, err := s.store.ListEquipmentTags(ctx, m.AdventurerID)
	if err != nil {
		return AdventurerResponse{}, err
	}
	consumableIDs, err := s.store.ListConsumableTags(ctx, m.AdventurerID)
	if err != nil {
		return AdventurerResponse{}, err
	}
	if equipIDs == nil {
		equipIDs = []int64{}
	}
	if consumableIDs == nil {
		consumableIDs = []int64{}
	}

	resp := AdventurerResponse{
		AdventurerID:  m.AdventurerID,
		Name:          m.Name,
		DailyRate:     m.DailyRate,
		Experience:    m.Experience,
		EquipmentIDs:  equipIDs,
		ConsumableIDs: consumableIDs,
	}
	if m.SpecialityID.Valid {
		v := m.SpecialityID.Int64
		resp.SpecialityID = &v
	}
	return resp, nil
}
