package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"roombook/infras/otel"
	"roombook/infras/postgres"
	"roombook/internal/domains/booking/model"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/logger"
	gRepo "roombook/shared/repository"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	queryLockRoom = "SELECT pg_advisory_xact_lock(hashtext($1))"
)

type Booking interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	ExistTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) (bool, error)
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Booking) error
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	DeleteTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) error
	LockRoomTx(ctx context.Context, sqltx *sqlx.Tx, roomID string) error
	ExpirePending(ctx context.Context, cutoff, now time.Time, ids ...string) ([]string, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// LockRoomTx serializes booking writes per room until the transaction ends.
func (r *repositoryImpl) LockRoomTx(ctx context.Context, sqltx *sqlx.Tx, roomID string) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.LockRoomTx")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryLockRoom)

	if _, err := sqltx.ExecContext(ctx, queryLockRoom, roomID); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to lock room (%s): %w", roomID, err)
	}

	return nil
}

// ExpirePending rejects PENDING bookings created before cutoff and returns the ids it changed.
// With ids set only those bookings are considered.
func (r *repositoryImpl) ExpirePending(ctx context.Context, cutoff, now time.Time, ids ...string) ([]string, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ExpirePending")
	defer scope.End()

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldStatus,
				Value:    string(model.StatusPending),
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				ArgName:  "cutoff",
				Field:    model.FieldCreatedAt,
				Value:    cutoff,
				Operator: gDto.FilterOperatorLess,
				Table:    model.TableName,
			},
		},
	}

	if len(ids) > 0 {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field:    model.FieldID,
			Value:    ids,
			Operator: gDto.FilterOperatorIn,
			Table:    model.TableName,
		})
	}

	where, args := r.BuildWhereClause(ctx, filter)
	args["new_status"] = string(model.StatusRejected)
	args[model.FieldRejectionReason] = model.AutoRejectionReason
	args[constant.FieldModifiedAt] = now
	args[constant.FieldModifiedBy] = model.SystemActor

	query := fmt.Sprintf(
		"UPDATE %s SET status = :new_status, rejection_reason = :rejection_reason, modified_at = :modified_at, modified_by = :modified_by %s RETURNING %s.%s",
		model.TableName, where, model.TableName, model.FieldID,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	prepare, err := r.db.Write.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to prepare expire statement: %w", err)
	}
	defer prepare.Close()

	expired := []string{}
	if err = prepare.SelectContext(ctx, &expired, args); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to expire pending bookings: %w", err)
	}

	scope.SetAttribute("expired", len(expired))

	return expired, nil
}
