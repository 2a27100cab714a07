package service

import (
	"context"
	"errors"
	"fmt"

	"roombook/config"
	"roombook/infras/otel"
	"roombook/infras/postgres"
	"roombook/internal/domains/booking/idgen"
	"roombook/internal/domains/booking/model"
	"roombook/internal/domains/booking/model/dto"
	"roombook/internal/domains/booking/receipt"
	"roombook/internal/domains/booking/repository"
	"roombook/internal/domains/notification"
	roomModel "roombook/internal/domains/room/model"
	roomRepo "roombook/internal/domains/room/repository"
	"roombook/shared"
	"roombook/shared/cache"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/failure"
	"roombook/shared/timezone"
	"roombook/shared/validator"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = model.CacheKeyPrefix + "get"
	cacheGetAllBooking = model.CacheKeyPrefix + "gets"
	cacheCountBooking  = model.CacheKeyPrefix + "count"
)

const (
	msgBookingNotFound    = "booking not found"
	msgRoomNotFound       = "room not found"
	msgSlotTaken          = "time slot already booked or pending approval"
	msgInvalidStatus      = "Invalid status"
	msgInvalidTransition  = "cannot change booking status from %s to %s"
	msgBookingIDsRequired = "ids array is required"
)

var ErrIDGenerationExhausted = errors.New("failed to generate a unique booking id")

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	Transition(ctx context.Context, id string, req dto.UpdateStatusRequest) (dto.BookingResponse, error)
	HasConflict(ctx context.Context, roomID string, interval model.Interval, excludeID string) (bool, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	Receipt(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) error
}

type serviceImpl struct {
	repo     repository.Booking
	roomRepo roomRepo.Room
	sweeper  Sweeper
	tx       postgres.Transactor
	ids      idgen.Generator
	notifier notification.Notifier
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
}

func New(
	repo repository.Booking,
	roomRepo roomRepo.Room,
	sweeper Sweeper,
	tx postgres.Transactor,
	ids idgen.Generator,
	notifier notification.Notifier,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:     repo,
		roomRepo: roomRepo,
		sweeper:  sweeper,
		tx:       tx,
		ids:      ids,
		notifier: notifier,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
	}
}

// Create books a slot as PENDING. The conflict check and the insert run under a per-room lock,
// so two overlapping requests for the same room can never both succeed.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute("room_id", req.RoomID)

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err //nolint:wrapcheck
	}

	room, err := s.roomRepo.Get(ctx, shared.FilterByID(req.RoomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return res, failure.NotFound(msgRoomNotFound) // nolint:wrapcheck
	}

	var booking model.Booking

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.repo.LockRoomTx(ctx, tx, room.ID); err != nil {
			return err //nolint:wrapcheck
		}

		conflict, err := s.repo.ExistTx(ctx, tx, model.ConflictFilter(room.ID, req.Interval(), constant.Empty))
		if err != nil {
			return fmt.Errorf("failed to check booking conflict: %w", err)
		}

		if conflict {
			return failure.Conflict(msgSlotTaken) // nolint:wrapcheck
		}

		id, err := s.nextID(ctx, tx)
		if err != nil {
			return err
		}

		booking = req.ToModel(id, timezone.Now())
		booking.RoomName = room.Name

		return s.repo.InsertTx(ctx, tx, booking) //nolint:wrapcheck
	})
	if err != nil {
		if _, ok := failure.As(err); ok {
			return res, err
		}

		if postgres.IsErrorCode(err, constant.PqErrorCodeExclusionViolation, constant.PqErrorCodeUniqueViolation) {
			return res, failure.Conflict(msgSlotTaken) // nolint:wrapcheck
		}

		log.Error().Err(err).Str("room_id", room.ID).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	log.Info().Str("booking_id", booking.ID).Str("room_id", room.ID).Msg("booking created")

	s.invalidateLists(ctx)
	s.notifier.BookingRequested(ctx, booking)

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) nextID(ctx context.Context, tx *sqlx.Tx) (string, error) {
	attempts := s.cfg.Booking.IDMaxRetry
	if attempts <= 0 {
		attempts = 1
	}

	for range attempts {
		id := s.ids.Next()

		taken, err := s.repo.ExistTx(ctx, tx, shared.FilterByID(id, model.FieldID, model.TableName))
		if err != nil {
			return constant.Empty, fmt.Errorf("failed to check booking id: %w", err)
		}

		if !taken {
			return id, nil
		}

		log.Warn().Str("booking_id", id).Msg("booking id collision, retrying")
	}

	return constant.Empty, failure.InternalError(ErrIDGenerationExhausted) // nolint:wrapcheck
}

// Transition moves a booking to a manager chosen status. Due PENDING bookings are expired first,
// so an approval can never revive a request that already timed out.
func (s *serviceImpl) Transition(ctx context.Context, id string, req dto.UpdateStatusRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Transition")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttributes(map[string]any{"booking_id": id, "status": string(req.Status)})

	if !req.Status.IsTarget() {
		return res, failure.BadRequestFromString(msgInvalidStatus) // nolint:wrapcheck
	}

	if _, err = s.sweeper.SweepOne(ctx, id); err != nil {
		return res, fmt.Errorf("failed to sweep booking: %w", err)
	}

	user, _ := ctx.Value(constant.ContextKeyUserEmail).(string)
	now := timezone.Now()
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	var booking model.Booking

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		current, err := s.repo.GetForUpdateTx(ctx, tx, filter)
		if err != nil {
			return fmt.Errorf("failed to get booking: %w", err)
		}

		if current.ID == constant.Empty {
			return failure.NotFound(msgBookingNotFound) // nolint:wrapcheck
		}

		if s.cfg.Booking.StrictTransitions && !current.Status.CanTransitionTo(req.Status) {
			return failure.Conflict(fmt.Sprintf(msgInvalidTransition, current.Status, req.Status)) // nolint:wrapcheck
		}

		var reason *string
		if req.Status == model.StatusRejected && req.Reason != constant.Empty {
			reason = &req.Reason
		}

		update := map[string]any{
			model.FieldStatus:          string(req.Status),
			model.FieldRejectionReason: reason,
			constant.FieldModifiedAt:   now,
			constant.FieldModifiedBy:   user,
		}

		if err := s.repo.UpdateTx(ctx, tx, update, filter); err != nil {
			return err //nolint:wrapcheck
		}

		booking = current
		booking.Status = req.Status
		booking.RejectionReason = reason
		booking.ModifiedAt = now
		booking.ModifiedBy = user

		return nil
	})
	if err != nil {
		if _, ok := failure.As(err); ok {
			return res, err
		}

		if postgres.IsErrorCode(err, constant.PqErrorCodeExclusionViolation) {
			return res, failure.Conflict(msgSlotTaken) // nolint:wrapcheck
		}

		log.Error().Err(err).Str("booking_id", id).Msg("failed to update booking status")

		return res, fmt.Errorf("failed to update booking status: %w", err)
	}

	log.Info().Str("booking_id", id).Str("status", string(booking.Status)).Msg("booking status changed")

	s.invalidateBooking(ctx, id)
	s.notifier.BookingStatusChanged(ctx, booking)

	res.FromModel(booking)

	return res, nil
}

// HasConflict reports whether an active booking of roomID overlaps interval. Touching endpoints do not conflict.
func (s *serviceImpl) HasConflict(ctx context.Context, roomID string, interval model.Interval, excludeID string) (conflict bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.HasConflict")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	conflict, err = s.repo.Exist(ctx, model.ConflictFilter(roomID, interval, excludeID))
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to check booking conflict")

		return false, fmt.Errorf("failed to check booking conflict: %w", err)
	}

	return conflict, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if _, err = s.sweeper.SweepAll(ctx); err != nil {
		return res, fmt.Errorf("failed to sweep bookings: %w", err)
	}

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	if cacheErr := s.cache.Get(ctx, cacheKey, &res); cacheErr == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save bookings to cache")
	}

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, req, filter)

	if cacheErr := s.cache.Get(ctx, cacheKey, &res); cacheErr == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save booking count to cache")
	}

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if _, err = s.sweeper.SweepOne(ctx, id); err != nil {
		return res, fmt.Errorf("failed to sweep booking: %w", err)
	}

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	if cacheErr := s.cache.Get(ctx, cacheKey, &res); cacheErr == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, nil
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound(msgBookingNotFound) // nolint:wrapcheck
	}

	res.FromModel(booking)

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save booking to cache")
	}

	return res, nil
}

// Receipt renders the booking slip shown on the public tracking page as a PDF.
func (s *serviceImpl) Receipt(ctx context.Context, id string) (pdf []byte, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Receipt")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if _, err = s.sweeper.SweepOne(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to sweep booking: %w", err)
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to get booking")

		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return nil, failure.NotFound(msgBookingNotFound) // nolint:wrapcheck
	}

	pdf, err = receipt.Render(receipt.Slip{Title: s.cfg.App.Name, Booking: booking, IssuedAt: timezone.Now()})
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to render receipt")

		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}

	return pdf, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if booking exists")

		return fmt.Errorf("failed to check if booking exists: %w", err)
	}

	if !exist {
		return failure.NotFound(msgBookingNotFound) // nolint:wrapcheck
	}

	return s.DeleteMany(ctx, []string{id})
}

// DeleteMany removes the bookings regardless of status. Ids that match nothing are ignored.
func (s *serviceImpl) DeleteMany(ctx context.Context, ids []string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.DeleteMany")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if len(ids) == 0 {
		return failure.BadRequestFromString(msgBookingIDsRequired) // nolint:wrapcheck
	}

	scope.SetAttribute("booking_ids", ids)

	if err = s.repo.Delete(ctx, shared.FilterByIDs(ids, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Strs("booking_ids", ids).Msg("failed to delete bookings")

		return fmt.Errorf("failed to delete bookings: %w", err)
	}

	shared.InvalidateCaches(ctx, s.cache, model.CacheKeyPrefix)

	return nil
}

func (s *serviceImpl) invalidateLists(ctx context.Context) {
	shared.InvalidateCaches(ctx, s.cache, cacheGetAllBooking)
	shared.InvalidateCaches(ctx, s.cache, cacheCountBooking)
}

func (s *serviceImpl) invalidateBooking(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetBooking, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete booking from cache")
	}

	s.invalidateLists(ctx)
}
