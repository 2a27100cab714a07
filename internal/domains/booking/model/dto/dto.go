package dto

import (
	"roombook/internal/domains/booking/model"
	"roombook/shared"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	gModel "roombook/shared/model"
	"roombook/shared/timezone"
	"time"
)

type CreateBookingRequest struct {
	UserName  string    `json:"user_name"  validate:"required,max=100"`
	UserEmail string    `json:"user_email" validate:"required,email,max=100"`
	RoomID    string    `json:"room_id"    validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time"   validate:"required,gtfield=StartTime"`
	Purpose   string    `json:"purpose"    validate:"required"`
}

func (c *CreateBookingRequest) Interval() model.Interval {
	return model.Interval{Start: c.StartTime, End: c.EndTime}
}

// ToModel builds a pending booking. Requests are anonymous, so the requester's email is recorded as creator.
func (c *CreateBookingRequest) ToModel(id string, now time.Time) model.Booking {
	return model.Booking{
		ID:        id,
		RoomID:    c.RoomID,
		UserName:  c.UserName,
		UserEmail: c.UserEmail,
		Purpose:   c.Purpose,
		StartTime: c.StartTime,
		EndTime:   c.EndTime,
		Status:    model.StatusPending,
		Metadata:  gModel.NewMetadata(now, c.UserEmail),
	}
}

type UpdateStatusRequest struct {
	Status model.Status `json:"status" validate:"required"`
	Reason string       `json:"reason" validate:"omitempty,max=500"`
}

type DeleteBookingsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// Filter holds the list query filters; RoomID also accepts the camelCase roomId query key.
type Filter struct {
	Status string
	RoomID string
}

func (f Filter) ToFilterGroup() gDto.FilterGroup {
	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if f.RoomID != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldRoomID,
			Operator: gDto.FilterOperatorEq,
			Value:    f.RoomID,
			Table:    model.TableName,
		})
	}

	if f.Status != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorEq,
			Value:    f.Status,
			Table:    model.TableName,
		})
	}

	return filterGroup
}

type RoomSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type BookingResponse struct {
	ID              string      `json:"id"`
	RoomID          string      `json:"room_id"`
	Room            RoomSummary `json:"room"`
	UserName        string      `json:"user_name"`
	UserEmail       string      `json:"user_email"`
	Purpose         string      `json:"purpose"`
	StartTime       string      `json:"start_time"`
	EndTime         string      `json:"end_time"`
	Status          string      `json:"status"`
	RejectionReason *string     `json:"rejection_reason"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.RoomID = model.RoomID
	r.Room = RoomSummary{ID: model.RoomID, Name: model.RoomName}
	r.UserName = model.UserName
	r.UserEmail = model.UserEmail
	r.Purpose = model.Purpose
	r.StartTime = timezone.Format(model.StartTime, constant.DateFormat)
	r.EndTime = timezone.Format(model.EndTime, constant.DateFormat)
	r.Status = string(model.Status)
	r.RejectionReason = model.RejectionReason
	r.Metadata.FromModel(model.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}
