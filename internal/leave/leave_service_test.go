package leave

import (
	"context"
	"errors"
	"testing"
	"time"

	"leavedesk/internal/balance"
	balanceerrors "leavedesk/internal/balance/errors"
	leaveerrors "leavedesk/internal/leave/errors"
	"leavedesk/internal/leavetype"
	"leavedesk/internal/notification"
	"leavedesk/internal/user"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	assert.NoError(t, err)
	return gdb, mock
}

type fakeLeaveRepo struct {
	createFn        func(ctx context.Context, lr *LeaveRequest) error
	findByIDFn      func(ctx context.Context, id string) (*LeaveRequest, error)
	findAllByUserFn func(ctx context.Context, userID, status string) ([]LeaveRequest, error)
	findAllFn       func(ctx context.Context, status string) ([]LeaveRequest, error)
	updateFn        func(ctx context.Context, lr *LeaveRequest) error
}

func (f *fakeLeaveRepo) WithTx(tx *gorm.DB) Repository { return f }
func (f *fakeLeaveRepo) Create(ctx context.Context, lr *LeaveRequest) error {
	return f.createFn(ctx, lr)
}
func (f *fakeLeaveRepo) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeLeaveRepo) FindAllByUser(ctx context.Context, userID, status string) ([]LeaveRequest, error) {
	return f.findAllByUserFn(ctx, userID, status)
}
func (f *fakeLeaveRepo) FindAll(ctx context.Context, status string) ([]LeaveRequest, error) {
	return f.findAllFn(ctx, status)
}
func (f *fakeLeaveRepo) Update(ctx context.Context, lr *LeaveRequest) error {
	return f.updateFn(ctx, lr)
}

type fakeTypeRepo struct {
	findByIDFn func(ctx context.Context, id string) (*leavetype.LeaveType, error)
}

func (f *fakeTypeRepo) WithTx(tx *gorm.DB) leavetype.Repository { return f }
func (f *fakeTypeRepo) Create(ctx context.Context, lt *leavetype.LeaveType) error {
	return nil
}
func (f *fakeTypeRepo) FindAll(ctx context.Context) ([]leavetype.LeaveType, error) {
	return nil, nil
}
func (f *fakeTypeRepo) FindByID(ctx context.Context, id string) (*leavetype.LeaveType, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeTypeRepo) FindByName(ctx context.Context, name string) (*leavetype.LeaveType, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeTypeRepo) Update(ctx context.Context, lt *leavetype.LeaveType) error {
	return nil
}

type fakeBalanceRepo struct {
	findByUserAndTypeFn func(ctx context.Context, userID, leaveTypeID string) (*balance.LeaveBalance, error)
	findForUpdateFn     func(ctx context.Context, userID, leaveTypeID string) (*balance.LeaveBalance, error)
	decrementFn         func(ctx context.Context, userID, leaveTypeID string, amount int) error
}

func (f *fakeBalanceRepo) WithTx(tx *gorm.DB) balance.Repository { return f }
func (f *fakeBalanceRepo) Create(ctx context.Context, b *balance.LeaveBalance) error {
	return nil
}
func (f *fakeBalanceRepo) FindByUserAndType(ctx context.Context, userID, leaveTypeID string) (*balance.LeaveBalance, error) {
	return f.findByUserAndTypeFn(ctx, userID, leaveTypeID)
}
func (f *fakeBalanceRepo) FindForUpdate(ctx context.Context, userID, leaveTypeID string) (*balance.LeaveBalance, error) {
	return f.findForUpdateFn(ctx, userID, leaveTypeID)
}
func (f *fakeBalanceRepo) FindAllByUser(ctx context.Context, userID string) ([]balance.LeaveBalance, error) {
	return nil, nil
}
func (f *fakeBalanceRepo) Update(ctx context.Context, b *balance.LeaveBalance) error {
	return nil
}
func (f *fakeBalanceRepo) Decrement(ctx context.Context, userID, leaveTypeID string, amount int) error {
	return f.decrementFn(ctx, userID, leaveTypeID, amount)
}

type fakeNotifRepo struct {
	createFn func(ctx context.Context, n *notification.Notification) error
}

func (f *fakeNotifRepo) WithTx(tx *gorm.DB) notification.Repository { return f }
func (f *fakeNotifRepo) Create(ctx context.Context, n *notification.Notification) error {
	return f.createFn(ctx, n)
}
func (f *fakeNotifRepo) FindUnreadByUser(ctx context.Context, userID string) ([]notification.Notification, error) {
	return nil, nil
}
func (f *fakeNotifRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*notification.Notification, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeNotifRepo) Update(ctx context.Context, n *notification.Notification) error {
	return nil
}

type fakeUserRepo struct {
	findByIDFn func(ctx context.Context, id string) (*user.User, error)
}

func (f *fakeUserRepo) WithTx(tx *gorm.DB) user.Repository { return f }
func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	return nil
}
func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*user.User, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) FindAll(ctx context.Context) ([]user.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) FindPending(ctx context.Context) ([]user.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) FindByRole(ctx context.Context, role string) ([]user.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) Update(ctx context.Context, u *user.User) error {
	return nil
}

type fakeSender struct {
	sent []string
}

func (f *fakeSender) Send(to, subject, body string) error {
	f.sent = append(f.sent, to)
	return nil
}

func annualLeaveType(requiresBalance bool) *leavetype.LeaveType {
	return &leavetype.LeaveType{
		ID:              uuid.New(),
		Name:            "Annual Leave",
		RequiresBalance: requiresBalance,
	}
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New().String()

	t.Run("success leaves balance untouched", func(t *testing.T) {
		gdb, mock := newGormDB(t)
		lt := annualLeaveType(true)

		var created *LeaveRequest
		repo := &fakeLeaveRepo{
			createFn: func(ctx context.Context, lr *LeaveRequest) error {
				created = lr
				return nil
			},
		}
		typeRepo := &fakeTypeRepo{
			findByIDFn: func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
				return lt, nil
			},
		}
		balanceRepo := &fakeBalanceRepo{
			findByUserAndTypeFn: func(ctx context.Context, uid, tid string) (*balance.LeaveBalance, error) {
				return &balance.LeaveBalance{Balance: 5}, nil
			},
			decrementFn: func(ctx context.Context, uid, tid string, amount int) error {
				t.Fatal("submit must not decrement the balance")
				return nil
			},
		}

		svc := NewService(gdb, repo, typeRepo, balanceRepo, &fakeNotifRepo{}, &fakeUserRepo{}, &fakeSender{})

		mock.ExpectBegin()
		mock.ExpectCommit()
		resp, err := svc.Submit(ctx, userID, SubmitLeaveRequest{
			LeaveTypeID: lt.ID.String(),
			StartDate:   "2026-09-01",
			EndDate:     "2026-09-03",
			Reason:      "family trip",
		})

		assert.NoError(t, err)
		assert.Equal(t, StatusPending, resp.Status)
		assert.Equal(t, 3, resp.Days)
		assert.Equal(t, "Annual Leave", resp.LeaveTypeName)
		assert.NotNil(t, created)
		assert.Equal(t, StatusPending, created.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insufficient balance rejected before create", func(t *testing.T) {
		gdb, _ := newGormDB(t)
		lt := annualLeaveType(true)

		repo := &fakeLeaveRepo{
			createFn: func(ctx context.Context, lr *LeaveRequest) error {
				t.Fatal("request must not be created")
				return nil
			},
		}
		typeRepo := &fakeTypeRepo{
			findByIDFn: func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
				return lt, nil
			},
		}
		balanceRepo := &fakeBalanceRepo{
			findByUserAndTypeFn: func(ctx context.Context, uid, tid string) (*balance.LeaveBalance, error) {
				return &balance.LeaveBalance{Balance: 2}, nil
			},
		}

		svc := NewService(gdb, repo, typeRepo, balanceRepo, &fakeNotifRepo{}, &fakeUserRepo{}, &fakeSender{})

		_, err := svc.Submit(ctx, userID, SubmitLeaveRequest{
			LeaveTypeID: lt.ID.String(),
			StartDate:   "2026-09-01",
			EndDate:     "2026-09-03",
		})

		assert.ErrorIs(t, err, balanceerrors.ErrInsufficientBalance)
	})

	t.Run("missing balance record rejected", func(t *testing.T) {
		gdb, _ := newGormDB(t)
		lt := annualLeaveType(true)

		typeRepo := &fakeTypeRepo{
			findByIDFn: func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
				return lt, nil
			},
		}
		balanceRepo := &fakeBalanceRepo{
			findByUserAndTypeFn: func(ctx context.Context, uid, tid string) (*balance.LeaveBalance, error) {
				return nil, gorm.ErrRecordNotFound
			},
		}

		svc := NewService(gdb, &fakeLeaveRepo{}, typeRepo, balanceRepo, &fakeNotifRepo{}, &fakeUserRepo{}, &fakeSender{})

		_, err := svc.Submit(ctx, userID, SubmitLeaveRequest{
			LeaveTypeID: lt.ID.String(),
			StartDate:   "2026-09-01",
			EndDate:     "2026-09-01",
		})

		assert.ErrorIs(t, err, balanceerrors.ErrNoBalanceRecord)
	})

	t.Run("non balance type skips the ledger", func(t *testing.T) {
		gdb, mock := newGormDB(t)
		lt := annualLeaveType(false)

		repo := &fakeLeaveRepo{
			createFn: func(ctx context.Context, lr *LeaveRequest) error { return nil },
		}
		typeRepo := &fakeTypeRepo{
			findByIDFn: func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
				return lt, nil
			},
		}
		balanceRepo := &fakeBalanceRepo{
			findByUserAndTypeFn: func(ctx context.Context, uid, tid string) (*balance.LeaveBalance, error) {
				t.Fatal("ledger must not be consulted")
				return nil, nil
			},
		}

		svc := NewService(gdb, repo, typeRepo, balanceRepo, &fakeNotifRepo{}, &fakeUserRepo{}, &fakeSender{})

		mock.ExpectBegin()
		mock.ExpectCommit()
		resp, err := svc.Submit(ctx, userID, SubmitLeaveRequest{
			LeaveTypeID: lt.ID.String(),
			StartDate:   "2026-09-01",
			EndDate:     "2026-09-10",
		})

		assert.NoError(t, err)
		assert.Equal(t, 10, resp.Days)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("bad date format", func(t *testing.T) {
		gdb, _ := newGormDB(t)
		svc := NewService(gdb, &fakeLeaveRepo{}, &fakeTypeRepo{}, &fakeBalanceRepo{}, &fakeNotifRepo{}, &fakeUserRepo{}, &fakeSender{})

		_, err := svc.Submit(ctx, userID, SubmitLeaveRequest{
			LeaveTypeID: uuid.New().String(),
			StartDate:   "01-09-2026",
			EndDate:     "2026-09-03",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateFormat)
	})

	t.Run("end before start", func(t *testing.T) {
		gdb, _ := newGormDB(t)
		svc := NewService(gdb, &fakeLeaveRepo{}, &fakeTypeRepo{}, &fakeBalanceRepo{}, &fakeNotifRepo{}, &fakeUserRepo{}, &fakeSender{})

		_, err := svc.Submit(ctx, userID, SubmitLeaveRequest{
			LeaveTypeID: uuid.New().String(),
			StartDate:   "2026-09-03",
			EndDate:     "2026-09-01",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrEndBeforeStart)
	})
}

func pendingRequest(requiresBalance bool) *LeaveRequest {
	start, _ := time.Parse(dateLayout, "2026-09-01")
	end, _ := time.Parse(dateLayout, "2026-09-03")
	typeID := uuid.New()
	return &LeaveRequest{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		LeaveTypeID: typeID,
		StartDate:   start,
		EndDate:     end,
		Status:      StatusPending,
		LeaveType: &RequestLeaveType{
			ID:              typeID,
			Name:            "Annual Leave",
			RequiresBalance: requiresBalance,
		},
	}
}

func TestService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("approve deducts balance and notifies", func(t *testing.T) {
		gdb, mock := newGormDB(t)
		lr := pendingRequest(true)

		var updated *LeaveRequest
		repo := &fakeLeaveRepo{
			findByIDFn: func(ctx context.Context, id string) (*LeaveRequest, error) {
				return lr, nil
			},
			updateFn: func(ctx context.Context, r *LeaveRequest) error {
				updated = r
				return nil
			},
		}

		decremented := 0
		balanceRepo := &fakeBalanceRepo{
			findForUpdateFn: func(ctx context.Context, uid, tid string) (*balance.LeaveBalance, error) {
				return &balance.LeaveBalance{Balance: 5}, nil
			},
			decrementFn: func(ctx context.Context, uid, tid string, amount int) error {
				decremented = amount
				return nil
			},
		}

		var notified *notification.Notification
		notifRepo := &fakeNotifRepo{
			createFn: func(ctx context.Context, n *notification.Notification) error {
				notified = n
				return nil
			},
		}

		mailSender := &fakeSender{}
		userRepo := &fakeUserRepo{
			findByIDFn: func(ctx context.Context, id string) (*user.User, error) {
				return &user.User{ID: lr.UserID, Email: "employee@mail.com"}, nil
			},
		}

		svc := NewService(gdb, repo, &fakeTypeRepo{}, balanceRepo, notifRepo, userRepo, mailSender)

		mock.ExpectBegin()
		mock.ExpectCommit()
		resp, err := svc.Resolve(ctx, lr.ID.String(), ResolveLeaveRequest{Status: StatusApproved})

		assert.NoError(t, err)
		assert.Equal(t, StatusApproved, resp.Request.Status)
		assert.Equal(t, 3, decremented)
		assert.Equal(t, StatusApproved, updated.Status)
		assert.NotNil(t, notified)
		assert.Equal(t, lr.UserID, notified.UserID)
		assert.Contains(t, notified.Message, "approved")
		assert.Equal(t, []string{"employee@mail.com"}, mailSender.sent)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("approve fails when balance shrank since submission", func(t *testing.T) {
		gdb, mock := newGormDB(t)
		lr := pendingRequest(true)

		repo := &fakeLeaveRepo{
			findByIDFn: func(ctx context.Context, id string) (*LeaveRequest, error) {
				return lr, nil
			},
			updateFn: func(ctx context.Context, r *LeaveRequest) error {
				t.Fatal("status must not change")
				return nil
			},
		}
		balanceRepo := &fakeBalanceRepo{
			findForUpdateFn: func(ctx context.Context, uid, tid string) (*balance.LeaveBalance, error) {
				return &balance.LeaveBalance{Balance: 2}, nil
			},
		}

		svc := NewService(gdb, repo, &fakeTypeRepo{}, balanceRepo, &fakeNotifRepo{}, &fakeUserRepo{}, &fakeSender{})

		mock.ExpectBegin()
		mock.ExpectRollback()
		_, err := svc.Resolve(ctx, lr.ID.String(), ResolveLeaveRequest{Status: StatusApproved})

		assert.ErrorIs(t, err, balanceerrors.ErrInsufficientBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reject never touches the ledger", func(t *testing.T) {
		gdb, mock := newGormDB(t)
		lr := pendingRequest(true)

		repo := &fakeLeaveRepo{
			findByIDFn: func(ctx context.Context, id string) (*LeaveRequest, error) {
				return lr, nil
			},
			updateFn: func(ctx context.Context, r *LeaveRequest) error { return nil },
		}
		balanceRepo := &fakeBalanceRepo{
			findForUpdateFn: func(ctx context.Context, uid, tid string) (*balance.LeaveBalance, error) {
				t.Fatal("ledger must not be consulted on reject")
				return nil, nil
			},
			decrementFn: func(ctx context.Context, uid, tid string, amount int) error {
				t.Fatal("reject must not decrement")
				return nil
			},
		}

		var notified *notification.Notification
		notifRepo := &fakeNotifRepo{
			createFn: func(ctx context.Context, n *notification.Notification) error {
				notified = n
				return nil
			},
		}
		userRepo := &fakeUserRepo{
			findByIDFn: func(ctx context.Context, id string) (*user.User, error) {
				return &user.User{ID: lr.UserID, Email: "employee@mail.com"}, nil
			},
		}

		svc := NewService(gdb, repo, &fakeTypeRepo{}, balanceRepo, notifRepo, userRepo, &fakeSender{})

		mock.ExpectBegin()
		mock.ExpectCommit()
		resp, err := svc.Resolve(ctx, lr.ID.String(), ResolveLeaveRequest{Status: StatusRejected})

		assert.NoError(t, err)
		assert.Equal(t, StatusRejected, resp.Request.Status)
		assert.Contains(t, notified.Message, "rejected")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already resolved", func(t *testing.T) {
		gdb, mock := newGormDB(t)
		lr := pendingRequest(true)
		lr.Status = StatusApproved

		repo := &fakeLeaveRepo{
			findByIDFn: func(ctx context.Context, id string) (*LeaveRequest, error) {
				return lr, nil
			},
		}

		svc := NewService(gdb, repo, &fakeTypeRepo{}, &fakeBalanceRepo{}, &fakeNotifRepo{}, &fakeUserRepo{}, &fakeSender{})

		mock.ExpectBegin()
		mock.ExpectRollback()
		_, err := svc.Resolve(ctx, lr.ID.String(), ResolveLeaveRequest{Status: StatusRejected})

		assert.ErrorIs(t, err, leaveerrors.ErrAlreadyResolved)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		gdb, mock := newGormDB(t)

		repo := &fakeLeaveRepo{
			findByIDFn: func(ctx context.Context, id string) (*LeaveRequest, error) {
				return nil, gorm.ErrRecordNotFound
			},
		}

		svc := NewService(gdb, repo, &fakeTypeRepo{}, &fakeBalanceRepo{}, &fakeNotifRepo{}, &fakeUserRepo{}, &fakeSender{})

		mock.ExpectBegin()
		mock.ExpectRollback()
		_, err := svc.Resolve(ctx, uuid.New().String(), ResolveLeaveRequest{Status: StatusApproved})

		assert.ErrorIs(t, err, leaveerrors.ErrRequestNotFound)
	})

	t.Run("invalid status", func(t *testing.T) {
		gdb, _ := newGormDB(t)
		svc := NewService(gdb, &fakeLeaveRepo{}, &fakeTypeRepo{}, &fakeBalanceRepo{}, &fakeNotifRepo{}, &fakeUserRepo{}, &fakeSender{})

		_, err := svc.Resolve(ctx, uuid.New().String(), ResolveLeaveRequest{Status: "cancelled"})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatus)
	})

	t.Run("email failure does not undo the resolution", func(t *testing.T) {
		gdb, mock := newGormDB(t)
		lr := pendingRequest(false)

		repo := &fakeLeaveRepo{
			findByIDFn: func(ctx context.Context, id string) (*LeaveRequest, error) {
				return lr, nil
			},
			updateFn: func(ctx context.Context, r *LeaveRequest) error { return nil },
		}
		notifRepo := &fakeNotifRepo{
			createFn: func(ctx context.Context, n *notification.Notification) error { return nil },
		}
		userRepo := &fakeUserRepo{
			findByIDFn: func(ctx context.Context, id string) (*user.User, error) {
				return nil, errors.New("user lookup failed")
			},
		}

		svc := NewService(gdb, repo, &fakeTypeRepo{}, &fakeBalanceRepo{}, notifRepo, userRepo, &fakeSender{})

		mock.ExpectBegin()
		mock.ExpectCommit()
		resp, err := svc.Resolve(ctx, lr.ID.String(), ResolveLeaveRequest{Status: StatusApproved})

		assert.NoError(t, err)
		assert.Equal(t, StatusApproved, resp.Request.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestService_ListStatusFilter(t *testing.T) {
	gdb, _ := newGormDB(t)
	ctx := context.Background()

	repo := &fakeLeaveRepo{
		findAllByUserFn: func(ctx context.Context, userID, status string) ([]LeaveRequest, error) {
			assert.Equal(t, StatusPending, status)
			return []LeaveRequest{*pendingRequest(true)}, nil
		},
	}

	svc := NewService(gdb, repo, &fakeTypeRepo{}, &fakeBalanceRepo{}, &fakeNotifRepo{}, &fakeUserRepo{}, &fakeSender{})

	resp, err := svc.GetAllForUser(ctx, uuid.New().String(), StatusPending)
	assert.NoError(t, err)
	assert.Len(t, resp, 1)
	assert.Equal(t, "Annual Leave", resp[0].LeaveTypeName)

	_, err = svc.GetAllForUser(ctx, uuid.New().String(), "bogus")
	assert.Error(t, err)
}
