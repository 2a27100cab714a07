package model

import (
	"roombook/shared/dto"
	"roombook/shared/model"
	"slices"
	"time"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID              = "id"
	FieldRoomID          = "room_id"
	FieldUserName        = "user_name"
	FieldUserEmail       = "user_email"
	FieldPurpose         = "purpose"
	FieldStartTime       = "start_time"
	FieldEndTime         = "end_time"
	FieldStatus          = "status"
	FieldRejectionReason = "rejection_reason"
	FieldCreatedAt       = "created_at"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

// ActiveStatuses hold a room's time slot.
var ActiveStatuses = []Status{StatusPending, StatusApproved}

// TargetStatuses are the statuses a manager may set.
var TargetStatuses = []Status{StatusApproved, StatusRejected, StatusCancelled}

var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusCancelled},
}

func (s Status) IsActive() bool {
	return slices.Contains(ActiveStatuses, s)
}

func (s Status) IsTarget() bool {
	return slices.Contains(TargetStatuses, s)
}

// CanTransitionTo reports whether next is a legal successor of s.
// REJECTED and CANCELLED have no successors.
func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// CacheKeyPrefix namespaces every cached booking read, so clearing it drops them all.
const CacheKeyPrefix = "booking:"

const (
	SystemActor         = "system"
	AutoRejectionReason = "Automatically Rejected after 48 hrs"
	DefaultExpiryHours  = 48
)

type Booking struct {
	ID              string    `db:"id"`
	RoomID          string    `db:"room_id"`
	RoomName        string    `db:"room_name"        table:"rooms" column:"name"`
	UserName        string    `db:"user_name"`
	UserEmail       string    `db:"user_email"`
	Purpose         string    `db:"purpose"`
	StartTime       time.Time `db:"start_time"`
	EndTime         time.Time `db:"end_time"`
	Status          Status    `db:"status"`
	RejectionReason *string   `db:"rejection_reason"`
	model.Metadata
}

func (Booking) GetJoinQuery() string {
	return "JOIN rooms ON rooms.id = bookings.room_id"
}

func (b Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Valid() bool {
	return i.End.After(i.Start)
}

// Overlaps reports whether the two ranges share any instant. Touching endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

// ConflictFilter selects active bookings of roomID overlapping the interval,
// optionally ignoring the booking excludeID.
func ConflictFilter(roomID string, interval Interval, excludeID string) dto.FilterGroup {
	statuses := make([]string, len(ActiveStatuses))
	for i, status := range ActiveStatuses {
		statuses[i] = string(status)
	}

	filters := []any{
		dto.Filter{
			Field:    FieldRoomID,
			Value:    roomID,
			Operator: dto.FilterOperatorEq,
			Table:    TableName,
		},
		dto.Filter{
			Field:    FieldStatus,
			Value:    statuses,
			Operator: dto.FilterOperatorIn,
			Table:    TableName,
		},
		dto.Filter{
			ArgName:  "window_end",
			Field:    FieldStartTime,
			Value:    interval.End,
			Operator: dto.FilterOperatorLess,
			Table:    TableName,
		},
		dto.Filter{
			ArgName:  "window_start",
			Field:    FieldEndTime,
			Value:    interval.Start,
			Operator: dto.FilterOperatorGreater,
			Table:    TableName,
		},
	}

	if excludeID != "" {
		filters = append(filters, dto.Filter{
			ArgName:  "exclude_id",
			Field:    FieldID,
			Value:    excludeID,
			Operator: dto.FilterOperatorNotEq,
			Table:    TableName,
		})
	}

	return dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters:  filters,
	}
}
