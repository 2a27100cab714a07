package service_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roombook/config"
	otelMocks "roombook/infras/otel/mocks"
	postgresMocks "roombook/infras/postgres/mocks"
	bookingMocks "roombook/internal/domains/booking/mocks"
	bookingModel "roombook/internal/domains/booking/model"
	"roombook/internal/domains/room/mocks"
	"roombook/internal/domains/room/model"
	"roombook/internal/domains/room/model/dto"
	"roombook/internal/domains/room/service"
	"roombook/shared/cache"
	cacheMocks "roombook/shared/cache/mocks"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/failure"
)

type roomFixture struct {
	repo        *mocks.MockRoom
	bookingRepo *bookingMocks.MockBooking
	tx          *postgresMocks.MockTransactor
	cache       *cacheMocks.MockRedisCache
	svc         service.Room
}

func newRoomFixture(t *testing.T) *roomFixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &roomFixture{
		repo:        mocks.NewMockRoom(ctrl),
		bookingRepo: bookingMocks.NewMockBooking(ctrl),
		tx:          postgresMocks.NewMockTransactor(ctrl),
		cache:       cacheMocks.NewMockRedisCache(ctrl),
	}

	f.svc = service.New(f.repo, f.bookingRepo, f.tx, &config.Config{}, f.cache, otelMocks.NewOtel())

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(cache.Nil).AnyTimes()
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return f
}

func managerContext() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserEmail, "manager@example.com")
}

func TestRoomService_Create(t *testing.T) {
	t.Run("derives the id from the name", func(t *testing.T) {
		f := newRoomFixture(t)

		f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, room model.Room) error {
				assert.Equal(t, "board-room-2", room.ID)
				assert.Equal(t, "manager@example.com", room.CreatedBy)

				return nil
			})

		res, err := f.svc.Create(managerContext(), dto.CreateRoomRequest{Name: "Board Room 2"})

		require.NoError(t, err)
		assert.Equal(t, "board-room-2", res.ID)
		assert.Equal(t, "Board Room 2", res.Name)
	})

	t.Run("existing slug", func(t *testing.T) {
		f := newRoomFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		_, err := f.svc.Create(managerContext(), dto.CreateRoomRequest{Name: "board room"})

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("unique violation on insert", func(t *testing.T) {
		f := newRoomFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(&pq.Error{Code: constant.PqErrorCodeUniqueViolation})

		_, err := f.svc.Create(managerContext(), dto.CreateRoomRequest{Name: "Board Room"})

		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("transliterated name still fits the id column", func(t *testing.T) {
		f := newRoomFixture(t)
		name := strings.Repeat("会", 100)

		f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, room model.Room) error {
				assert.LessOrEqual(t, len(room.ID), model.MaxIDLength)

				return nil
			})

		res, err := f.svc.Create(managerContext(), dto.CreateRoomRequest{Name: name})

		require.NoError(t, err)
		assert.Equal(t, name, res.Name)
		assert.NotEmpty(t, res.ID)
	})

	t.Run("name without letters or digits", func(t *testing.T) {
		f := newRoomFixture(t)

		_, err := f.svc.Create(managerContext(), dto.CreateRoomRequest{Name: "!!!"})

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestRoomService_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		f := newRoomFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{ID: "board-room", Name: "Board Room"}, nil)

		res, err := f.svc.Get(context.Background(), "board-room")

		require.NoError(t, err)
		assert.Equal(t, "Board Room", res.Name)
	})

	t.Run("not found", func(t *testing.T) {
		f := newRoomFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, nil)

		_, err := f.svc.Get(context.Background(), "attic")

		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestRoomService_GetAll(t *testing.T) {
	f := newRoomFixture(t)

	params := gDto.QueryParams{Page: 1, Limit: 10}
	filter := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd, Filters: []any{}}

	f.repo.EXPECT().Count(gomock.Any(), filter).Return(2, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), params, filter).Return([]model.Room{
		{ID: "board-room", Name: "Board Room"},
		{ID: "studio", Name: "Studio"},
	}, nil)

	res, err := f.svc.GetAll(context.Background(), params, filter)

	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalData)
	assert.Equal(t, 1, res.TotalPage)
	assert.Len(t, res.Rooms, 2)
}

func TestRoomService_Update(t *testing.T) {
	t.Run("rename keeps the id", func(t *testing.T) {
		f := newRoomFixture(t)

		var prefixes []string

		f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, prefix string) error {
				prefixes = append(prefixes, prefix)

				return nil
			}).AnyTimes()
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, update map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, "Main Hall", update[model.FieldName])
				assert.NotContains(t, update, model.FieldID)

				return nil
			})
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{ID: "board-room", Name: "Main Hall"}, nil)

		res, err := f.svc.Update(managerContext(), dto.UpdateRoomRequest{Name: "Main Hall"}, "board-room")

		require.NoError(t, err)
		assert.Equal(t, "board-room", res.ID)
		assert.Equal(t, "Main Hall", res.Name)
		assert.Contains(t, prefixes, bookingModel.CacheKeyPrefix+"*")
	})

	t.Run("empty request", func(t *testing.T) {
		f := newRoomFixture(t)

		_, err := f.svc.Update(managerContext(), dto.UpdateRoomRequest{}, "board-room")

		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("unknown room", func(t *testing.T) {
		f := newRoomFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		_, err := f.svc.Update(managerContext(), dto.UpdateRoomRequest{Name: "Main Hall"}, "attic")

		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestRoomService_DeleteMany(t *testing.T) {
	runTx := func(f *roomFixture) {
		f.tx.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, fn func(context.Context, *sqlx.Tx) error) error {
				return fn(ctx, nil)
			})
	}

	t.Run("deletes bookings before rooms", func(t *testing.T) {
		f := newRoomFixture(t)
		runTx(f)

		f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		gomock.InOrder(
			f.bookingRepo.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ *sqlx.Tx, filter gDto.FilterGroup) error {
					byRoom, ok := filter.Filters[0].(gDto.Filter)
					require.True(t, ok)
					assert.Equal(t, bookingModel.FieldRoomID, byRoom.Field)
					assert.Equal(t, []string{"board-room", "studio"}, byRoom.Value)

					return nil
				}),
			f.repo.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
		)

		require.NoError(t, f.svc.DeleteMany(managerContext(), []string{"board-room", "studio"}))
	})

	t.Run("failed room delete leaves nothing deleted", func(t *testing.T) {
		f := newRoomFixture(t)
		runTx(f)

		f.bookingRepo.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.repo.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

		err := f.svc.DeleteMany(managerContext(), []string{"board-room"})

		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	})

	t.Run("empty id list", func(t *testing.T) {
		f := newRoomFixture(t)

		err := f.svc.DeleteMany(managerContext(), []string{})

		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("single unknown room", func(t *testing.T) {
		f := newRoomFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		assert.Equal(t, http.StatusNotFound, failure.GetCode(f.svc.Delete(managerContext(), "attic")))
	})
}
