package equipment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mysql "github.com/go-sql-driver/mysql"

	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/guild/catalog"
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
	db      *sql.DB
	store   *Store
	catalog *catalog.Store
}

func NewService(conn *sql.DB, cat *catalog.Store) *Service {
	return &Service{db: conn, store: NewStore(conn), catalog: cat}
}

func (s *Service) Create(ctx context.Context, in CreateEquipmentRequest) (EquipmentResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return EquipmentResponse{}, ErrInvalid("name is required")
	}
	if in.MaxDurability <= 0 {
		return EquipmentResponse{}, ErrInvalid("max_durability must be > 0")
	}
	m := &Equipment{Name: in.Name, MaxDurability: in.MaxDurability}
	if in.Description != nil {
		m.Description.String, m.Description.Valid = *in.Description, true
	}
	if err := s.store.Insert(ctx, m); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return EquipmentResponse{}, ErrConflict("equipment name already exists")
		}
		return EquipmentResponse{}, err
	}
	return buildEquipmentResponse(m, 0), nil
}

func (s *Service) Get(ctx context.Context, id int64) (EquipmentResponse, error) {
	m, count, err := s.store.GetByID(ctx, id)
	if err != nil {
		return EquipmentResponse{}, err
	}
	return buildEquipmentResponse(m, count), nil
}

func (s *Service) List(ctx context.Context, name string, p Page) (ListEquipmentResult, error) {
	items, counts, total, err := s.store.List(ctx, name, p)
	if err != nil {
		return ListEquipmentResult{}, err
	}
	res := make([]EquipmentResponse, 0, len(items))
	for i := range items {
		res = append(res, buildEquipmentResponse(&items[i], counts[items[i].EquipmentID]))
	}
	next := p.Offset + p.Limit
	if next >= int(total) {
		next = 0
	}
	return ListEquipmentResult{Items: res, Total: total, NextOffset: next}, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateEquipmentRequest) (EquipmentResponse, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return EquipmentResponse{}, ErrInvalid("name must not be empty")
	}
	n, err := s.store.Update(ctx, id, in)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return EquipmentResponse{}, ErrConflict("equipment name already exists")
		}
		return EquipmentResponse{}, err
	}
	if n == 0 {
		return EquipmentResponse{}, ErrNotFound("equipment not found")
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1451 {
			return ErrConflict("equipment still has stock instances")
		}
		return err
	}
	if n == 0 {
		return ErrNotFound("equipment not found")
	}
	return nil
}

// CreateStocks mints physical instances at full durability, AVAILABLE.
func (s *Service) CreateStocks(ctx context.Context, in CreateStocksRequest) ([]StockResponse, error) {
	if in.Count <= 0 {
		in.Count = 1
	}
	if in.Count > 100 {
		return nil, ErrInvalid("count must be <= 100")
	}

	ids, err := s.store.InsertStocks(ctx, in.EquipmentID, in.Count, s.catalog.StatusID(catalog.StatusAvailable))
	if err != nil {
		return nil, err
	}

	res := make([]StockResponse, 0, len(ids))
	for _, id := range ids {
		stock, err := s.store.GetStock(ctx, id)
		if err != nil {
			return nil, err
		}
		res = append(res, s.buildStockResponse(stock))
	}
	return res, nil
}

func (s *Service) GetStock(ctx context.Context, stockID int64) (StockResponse, error) {
	m, err := s.store.GetStock(ctx, stockID)
	if err != nil {
		return StockResponse{}, err
	}
	return s.buildStockResponse(m), nil
}

func (s *Service) ListStocks(ctx context.Context, equipmentID *int64, status string, p Page) (ListStocksResult, error) {
	var statusID *int64
	if status != "" {
		id, ok := s.catalog.LookupStatusID(catalog.Status(status))
		if !ok {
			return ListStocksResult{}, ErrInvalid("unknown status " + status)
		}
		statusID = &id
	}
	items, total, err := s.store.ListStocks(ctx, equipmentID, statusID, p)
	if err != nil {
		return ListStocksResult{}, err
	}
	res := make([]StockResponse, 0, len(items))
	for i := range items {
		res = append(res, s.buildStockResponse(&items[i]))
	}
	next := p.Offset + p.Limit
	if next >= int(total) {
		next = 0
	}
	return ListStocksResult{Items: res, Total: total, NextOffset: next}, nil
}

func (s *Service) DeleteStock(ctx context.Context, stockID int64) error {
	n, err := s.store.DeleteStock(ctx, stockID)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1451 {
			return ErrConflict("stock is assigned to a quest")
		}
		return err
	}
	if n == 0 {
		return ErrNotFound("equipment stock not found")
	}
	return nil
}

// RepairStock restores a stock to full durability and AVAILABLE, whatever
// state it was in. Repairing a pristine stock is a harmless no-op.
func (s *Service) RepairStock(ctx context.Context, stockID int64) (StockResponse, error) {
	n, err := s.catalog.Repair(ctx, stockID)
	if err != nil {
		return StockResponse{}, err
	}
	if n == 0 {
		return StockResponse{}, ErrNotFound("equipment stock not found")
	}
	return s.GetStock(ctx, stockID)
}

func buildEquipmentResponse(m *Equipment, stockCount int64) EquipmentResponse {
	resp := EquipmentResponse{
		EquipmentID:   m.EquipmentID,
		Name:          m.Name,
		MaxDurability: m.MaxDurability,
		StockCount:    stockCount,
	}
	if m.Description.Valid {
		v := m.Description.String
		resp.Description = &v
	}
	return resp
}

func (s *Service) buildStockResponse(m *Stock) StockResponse {
	return StockResponse{
		EquipmentStockID: m.EquipmentStockID,
		EquipmentID:      m.EquipmentID,
		Durability:       m.Durability,
		Status:           string(s.catalog.StatusTag(m.StatusID)),
	}
}
