package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jakechorley/volunteer-tracker/pkg/apperrors"
	"github.com/jakechorley/volunteer-tracker/pkg/cache"
	"github.com/jakechorley/volunteer-tracker/pkg/core/aggregator"
	"github.com/jakechorley/volunteer-tracker/pkg/core/model"
	"github.com/jakechorley/volunteer-tracker/pkg/db"
	"github.com/jakechorley/volunteer-tracker/pkg/tablestore"
)

// FetchTimeLayout matches JavaScript's Date.toISOString
const FetchTimeLayout = "2006-01-02T15:04:05.000Z"

// loadTimeout bounds a shared read, which outlives the caller that started it
const loadTimeout = time.Minute

// AllDataResponse is the serialized shape of a getAllData read
type AllDataResponse struct {
	Status      string                    `json:"status"`
	Attendance  []model.AttendanceRecord  `json:"attendance"`
	Supervision []model.SupervisionRecord `json:"supervision"`
	FetchTime   string                    `json:"fetchTime"`
}

// VolunteerDataService serves the cached read path and the invalidating write path
type VolunteerDataService struct {
	store      tablestore.Store
	aggregator *aggregator.Aggregator
	cache      cache.Cache
	logger     *zap.Logger
	now        func() time.Time

	masterAttendanceTable  string
	masterSupervisionTable string

	flights singleflight.Group

	// generations counts writes per cache key so an in-flight read started before a write
	// cannot repopulate the cache with pre-write data
	genMu       sync.Mutex
	generations map[string]uint64
}

// VolunteerDataOptions configures a VolunteerDataService
type VolunteerDataOptions struct {
	// MasterAttendanceTable mirrors every attendance write when the table exists
	MasterAttendanceTable string
	// MasterSupervisionTable mirrors every supervision write when the table exists
	MasterSupervisionTable string
	// Now defaults to time.Now
	Now func() time.Time
}

// NewVolunteerDataService wires the read and write paths
func NewVolunteerDataService(store tablestore.Store, c cache.Cache, logger *zap.Logger, opts VolunteerDataOptions) *VolunteerDataService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &VolunteerDataService{
		store:                  store,
		aggregator:             aggregator.New(store, logger),
		cache:                  c,
		logger:                 logger,
		now:                    now,
		masterAttendanceTable:  opts.MasterAttendanceTable,
		masterSupervisionTable: opts.MasterSupervisionTable,
		generations:            make(map[string]uint64),
	}
}

// GetAllData returns the serialized attendance + supervision payload for a volunteer.
// A cache hit is returned verbatim; a miss aggregates, serializes and repopulates the cache.
func (s *VolunteerDataService) GetAllData(ctx context.Context, volunteerName string) (string, error) {
	name := strings.TrimSpace(volunteerName)
	if name == "" {
		return "", apperrors.New(apperrors.ErrInvalidArgument, "Volunteer name is required")
	}
	if err := s.checkReserved(name); err != nil {
		return "", err
	}

	key := cache.KeyFor(name)
	if payload, ok := s.cache.Get(key); ok {
		s.logger.Debug("Cache hit", zap.String("key", key))
		return payload, nil
	}

	gen := s.generation(key)
	flightKey := fmt.Sprintf("%s#%d", key, gen)

	// Joined callers share one load, so it runs detached from whichever caller started it
	ch := s.flights.DoChan(flightKey, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return s.load(loadCtx, key, gen, name)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			s.logger.Debug("Joined in-flight read", zap.String("key", key))
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", apperrors.Internal(fmt.Errorf("failed to read volunteer data: %w", ctx.Err()))
	}
}

func (s *VolunteerDataService) load(ctx context.Context, key string, gen uint64, volunteerName string) (string, error) {
	s.logger.Debug("Cache miss, aggregating", zap.String("key", key))

	data, err := s.aggregator.Aggregate(ctx, volunteerName)
	if err != nil {
		return "", apperrors.Internal(fmt.Errorf("failed to aggregate volunteer data: %w", err))
	}

	payload, err := json.Marshal(AllDataResponse{
		Status:      "success",
		Attendance:  data.Attendance,
		Supervision: data.Supervision,
		FetchTime:   s.now().UTC().Format(FetchTimeLayout),
	})
	if err != nil {
		return "", apperrors.Internal(fmt.Errorf("failed to serialize volunteer data: %w", err))
	}

	s.genMu.Lock()
	defer s.genMu.Unlock()

	if s.generations[key] != gen {
		s.logger.Debug("Write landed during read, not caching", zap.String("key", key))
		return string(payload), nil
	}
	if err := s.cache.Put(key, string(payload), cache.TTL); err != nil {
		s.logger.Warn("Failed to cache volunteer data", zap.String("key", key), zap.Error(err))
	}

	return string(payload), nil
}

// GetAttendance returns only the attendance half, bypassing the cache
func (s *VolunteerDataService) GetAttendance(ctx context.Context, volunteerName string) ([]model.AttendanceRecord, error) {
	data, err := s.aggregate(ctx, volunteerName)
	if err != nil {
		return nil, err
	}
	return data.Attendance, nil
}

// GetSupervision returns only the supervision half, bypassing the cache
func (s *VolunteerDataService) GetSupervision(ctx context.Context, volunteerName string) ([]model.SupervisionRecord, error) {
	data, err := s.aggregate(ctx, volunteerName)
	if err != nil {
		return nil, err
	}
	return data.Supervision, nil
}

// Aggregate returns the structured records for a volunteer, bypassing the cache
func (s *VolunteerDataService) Aggregate(ctx context.Context, volunteerName string) (*model.VolunteerData, error) {
	return s.aggregate(ctx, volunteerName)
}

func (s *VolunteerDataService) aggregate(ctx context.Context, volunteerName string) (*model.VolunteerData, error) {
	name := strings.TrimSpace(volunteerName)
	if name == "" {
		return nil, apperrors.New(apperrors.ErrInvalidArgument, "Volunteer name is required")
	}
	if err := s.checkReserved(name); err != nil {
		return nil, err
	}
	data, err := s.aggregator.Aggregate(ctx, name)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to aggregate volunteer data: %w", err))
	}
	return data, nil
}

// checkReserved rejects names that address the user directory, a master log
// or another volunteer's supervision table rather than a volunteer
func (s *VolunteerDataService) checkReserved(name string) error {
	key := tablestore.NormalizeName(name)
	reserved := strings.HasSuffix(key, tablestore.NormalizeName(SupervisionTableSuffix))
	for _, table := range []string{db.UsersTable, s.masterAttendanceTable, s.masterSupervisionTable} {
		if table != "" && key == tablestore.NormalizeName(table) {
			reserved = true
		}
	}
	if reserved {
		return apperrors.New(apperrors.ErrInvalidArgument, fmt.Sprintf("Volunteer name %q is reserved", name))
	}
	return nil
}

func (s *VolunteerDataService) generation(key string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[key]
}

// invalidate drops the cached payload for a volunteer after a successful write
func (s *VolunteerDataService) invalidate(volunteerName string) {
	key := cache.KeyFor(volunteerName)

	s.genMu.Lock()
	s.generations[key]++
	s.cache.Remove(key)
	s.genMu.Unlock()

	s.logger.Debug("Invalidated cache entry", zap.String("key", key))
}
