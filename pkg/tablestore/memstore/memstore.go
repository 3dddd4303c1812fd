package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/jakechorley/volunteer-tracker/pkg/tablestore"
)

// Store is an in-memory tablestore.Store
type Store struct {
	mu     sync.RWMutex
	order  []string
	tables map[string]*tablestore.Table
}

// New creates an empty store
func New() *Store {
	return &Store{
		tables: make(map[string]*tablestore.Table),
	}
}

// Seed adds a table with the given header and rows, replacing any table with the same name.
// Intended for tests and fixtures.
func (s *Store) Seed(name string, header []string, rows ...[]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables[name]; !ok {
		s.order = append(s.order, name)
	}
	copied := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		copied = append(copied, append([]interface{}(nil), row...))
	}
	s.tables[name] = &tablestore.Table{
		Name:   name,
		Header: append([]string(nil), header...),
		Rows:   copied,
	}
}

func (s *Store) ListTableNames(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...), nil
}

func (s *Store) GetTable(ctx context.Context, name string) (*tablestore.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	table, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	rows := make([][]interface{}, len(table.Rows))
	for i, row := range table.Rows {
		rows[i] = append([]interface{}(nil), row...)
	}
	return &tablestore.Table{
		Name:   table.Name,
		Header: append([]string(nil), table.Header...),
		Rows:   rows,
	}, nil
}

func (s *Store) CreateTable(ctx context.Context, name string, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := tablestore.ResolveName(s.order, name); ok {
		return fmt.Errorf("%w: %s", tablestore.ErrTableExists, name)
	}
	s.order = append(s.order, name)
	s.tables[name] = &tablestore.Table{
		Name:   name,
		Header: append([]string(nil), header...),
	}
	return nil
}

func (s *Store) AppendRow(ctx context.Context, name string, row []interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.resolve(name)
	if err != nil {
		return err
	}
	table.Rows = append(table.Rows, append([]interface{}(nil), row...))
	return nil
}

func (s *Store) UpdateRow(ctx context.Context, name string, index int, row []interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.resolve(name)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(table.Rows) {
		return fmt.Errorf("%w: %d", tablestore.ErrRowOutOfRange, index)
	}
	table.Rows[index] = append([]interface{}(nil), row...)
	return nil
}

func (s *Store) DeleteRow(ctx context.Context, name string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.resolve(name)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(table.Rows) {
		return fmt.Errorf("%w: %d", tablestore.ErrRowOutOfRange, index)
	}
	table.Rows = append(table.Rows[:index], table.Rows[index+1:]...)
	return nil
}

// resolve must be called with the lock held
func (s *Store) resolve(name string) (*tablestore.Table, error) {
	resolved, ok := tablestore.ResolveName(s.order, name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", tablestore.ErrTableNotFound, name)
	}
	return s.tables[resolved], nil
}
