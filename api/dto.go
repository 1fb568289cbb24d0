/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain model from
  the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types validate themselves with ozzo-validation before the
  handler touches the domain; validation failures map to 400.
*/
package api

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/arcloom/activity-engine/activity"
	"github.com/arcloom/activity-engine/heatmap"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ToggleRequest flips the completion state of one habit or task on a date.
type ToggleRequest struct {
	EntityID   string `json:"entity_id"`
	EntityKind string `json:"entity_kind"`
	Date       string `json:"date"`
}

func (r ToggleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.EntityID, validation.Required),
		validation.Field(&r.EntityKind, validation.Required,
			validation.In(string(activity.KindHabit), string(activity.KindTask))),
		validation.Field(&r.Date, validation.Required, validation.Date("2006-01-02")),
	)
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// RollupDTO represents a daily rollup in API responses.
type RollupDTO struct {
	UserID          string `json:"user_id"`
	Date            string `json:"date"`
	HabitsCompleted int    `json:"habits_completed"`
	TasksCompleted  int    `json:"tasks_completed"`
	Total           int    `json:"total"`
	Level           int    `json:"level"`
}

func toRollupDTO(r activity.DailyRollup) RollupDTO {
	return RollupDTO{
		UserID:          string(r.UserID),
		Date:            r.Date.String(),
		HabitsCompleted: r.HabitsCompleted,
		TasksCompleted:  r.TasksCompleted,
		Total:           r.Total(),
		Level:           int(activity.Classify(r.HabitsCompleted, r.TasksCompleted)),
	}
}

// ToggleResponseDTO reports the state after a toggle.
type ToggleResponseDTO struct {
	Completed bool      `json:"completed"`
	Rollup    RollupDTO `json:"rollup"`
}

// CompletionLogDTO represents one completion event.
type CompletionLogDTO struct {
	ID         string `json:"id"`
	EntityID   string `json:"entity_id"`
	EntityKind string `json:"entity_kind"`
	OccurredOn string `json:"occurred_on"`
	CreatedAt  string `json:"created_at"`
}

func toLogDTO(l activity.CompletionLog) CompletionLogDTO {
	return CompletionLogDTO{
		ID:         l.ID,
		EntityID:   string(l.EntityID),
		EntityKind: string(l.Kind),
		OccurredOn: l.OccurredOn.String(),
		CreatedAt:  l.CreatedAt.Format(time.RFC3339),
	}
}

// CellDTO is one paintable heatmap cell.
type CellDTO struct {
	Date       string `json:"date,omitempty"`
	Level      int    `json:"level"`
	Row        int    `json:"row"`
	Column     int    `json:"column"`
	Future     bool   `json:"future,omitempty"`
	Blank      bool   `json:"blank,omitempty"`
	MonthStart bool   `json:"month_start,omitempty"`
}

func toCellDTOs(cells []heatmap.Cell) []CellDTO {
	dtos := make([]CellDTO, len(cells))
	for i, c := range cells {
		dto := CellDTO{
			Level:      int(c.Level),
			Row:        c.Row,
			Column:     c.Column,
			Future:     c.Future,
			Blank:      c.Blank,
			MonthStart: c.MonthStart,
		}
		if !c.Blank {
			dto.Date = c.Date.String()
		}
		dtos[i] = dto
	}
	return dtos
}

// ErrorResponse is the error envelope for all failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
