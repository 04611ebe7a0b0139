package leavetype

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	leavetypeerrors "leavedesk/internal/leavetype/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const leaveTypeAllCacheKey = "leave_types:all"

type Service interface {
	Create(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	GetAll(ctx context.Context) ([]LeaveTypeResponse, error)
	GetByID(ctx context.Context, id string) (LeaveTypeResponse, error)
	UpdateAllocation(ctx context.Context, id string, req UpdateAllocationRequest) (LeaveTypeResponse, error)

	// SetupDefaults seeds the standard types. Idempotent; existing names
	// are left untouched.
	SetupDefaults(ctx context.Context) ([]LeaveTypeResponse, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavetype.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavetype.service")
	}
	return &service{db: db, repo: repo, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error) {
	s.logger.Debug("create leave type requested", zap.String("name", req.Name))

	requiresBalance := true
	if req.RequiresBalance != nil {
		requiresBalance = *req.RequiresBalance
	}

	lt := &LeaveType{
		ID:                uuid.New(),
		Name:              req.Name,
		Description:       req.Description,
		DefaultAllocation: req.DefaultAllocation,
		RequiresBalance:   requiresBalance,
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("create leave type begin tx failed", zap.Error(tx.Error))
		return LeaveTypeResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, lt); err != nil {
		s.logger.Warn("create leave type persist failed", zap.String("name", req.Name), zap.Error(err))
		return LeaveTypeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("create leave type commit failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}

	s.invalidateCache(ctx)
	s.logger.Info("create leave type success",
		zap.String("leave_type_id", lt.ID.String()),
		zap.String("name", lt.Name),
	)

	return mapToResponse(*lt), nil
}

func (s *service) GetAll(ctx context.Context) ([]LeaveTypeResponse, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, leaveTypeAllCacheKey).Result()
		if err == nil {
			var resp []LeaveTypeResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return resp, nil
			}
		}
	}

	// singleflight so a cold cache does not stampede the database
	v, err, _ := s.sf.Do(leaveTypeAllCacheKey, func() (interface{}, error) {
		types, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}

		resp := mapToListResponse(types)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, leaveTypeAllCacheKey, jsonData, 30*time.Minute)
			}
		}

		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]LeaveTypeResponse), nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveTypeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveTypeResponse{}, leavetypeerrors.ErrInvalidLeaveTypeID
	}

	lt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveTypeResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*lt), nil
}

func (s *service) UpdateAllocation(ctx context.Context, id string, req UpdateAllocationRequest) (LeaveTypeResponse, error) {
	s.logger.Debug("update allocation requested", zap.String("leave_type_id", id))

	if _, err := uuid.Parse(id); err != nil {
		return LeaveTypeResponse{}, leavetypeerrors.ErrInvalidLeaveTypeID
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("update allocation begin tx failed", zap.Error(tx.Error))
		return LeaveTypeResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	lt, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return LeaveTypeResponse{}, err
	}

	// Non-balance types (sick, maternity) have policy-defined allocations;
	// editing them would mean nothing to the ledger.
	if !lt.RequiresBalance {
		return LeaveTypeResponse{}, leavetypeerrors.ErrAllocationImmutable
	}

	lt.DefaultAllocation = req.DefaultAllocation
	if err := qtx.Update(ctx, lt); err != nil {
		s.logger.Error("update allocation persist failed", zap.String("leave_type_id", id), zap.Error(err))
		return LeaveTypeResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("update allocation commit failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}

	s.invalidateCache(ctx)
	s.logger.Info("update allocation success", zap.String("leave_type_id", id))

	return mapToResponse(*lt), nil
}

func (s *service) SetupDefaults(ctx context.Context) ([]LeaveTypeResponse, error) {
	annual := 30
	maternity := 90

	defaults := []LeaveType{
		{Name: "Annual Leave", Description: "Regular annual leave", DefaultAllocation: &annual, RequiresBalance: true},
		{Name: "Maternity Leave", Description: "Three months maternity leave", DefaultAllocation: &maternity, RequiresBalance: false},
		{Name: "Sick Leave", Description: "Medical leave", DefaultAllocation: nil, RequiresBalance: false},
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("setup defaults begin tx failed", zap.Error(tx.Error))
		return nil, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	created := make([]LeaveType, 0, len(defaults))
	for _, def := range defaults {
		existing, err := qtx.FindByName(ctx, def.Name)
		if err == nil {
			created = append(created, *existing)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("setup defaults lookup failed", zap.String("name", def.Name), zap.Error(err))
			return nil, err
		}

		lt := def
		lt.ID = uuid.New()
		if err := qtx.Create(ctx, &lt); err != nil {
			s.logger.Error("setup defaults persist failed", zap.String("name", def.Name), zap.Error(err))
			return nil, mapRepositoryError(err)
		}
		created = append(created, lt)
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("setup defaults commit failed", zap.Error(err))
		return nil, err
	}

	s.invalidateCache(ctx)
	s.logger.Info("setup defaults success", zap.Int("count", len(created)))

	return mapToListResponse(created), nil
}

func (s *service) invalidateCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, leaveTypeAllCacheKey).Err(); err != nil {
		s.logger.Warn("leave type cache invalidation failed", zap.Error(err))
	}
}

func mapToResponse(lt LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:                lt.ID.String(),
		Name:              lt.Name,
		Description:       lt.Description,
		DefaultAllocation: lt.DefaultAllocation,
		RequiresBalance:   lt.RequiresBalance,
		CreatedAt:         lt.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func mapToListResponse(types []LeaveType) []LeaveTypeResponse {
	resp := make([]LeaveTypeResponse, len(types))
	for i, lt := range types {
		resp[i] = mapToResponse(lt)
	}
	return resp
}
