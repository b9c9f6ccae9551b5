package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// GoalStatus is the lifecycle state of a goal.
// On the wire an active goal is the string "active" and the terminal
// states keep their historical numeric codes 1000 (done) and 999 (aborted).
type GoalStatus uint8

const (
	GoalStatusActive GoalStatus = iota + 1
	GoalStatusDone
	GoalStatusAborted
)

const (
	GoalStatusCodeDone    = 1000
	GoalStatusCodeAborted = 999
)

type Goal struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"userId"`
	Content   string     `db:"content" json:"content"`
	Status    GoalStatus `db:"status" json:"status"`
	ReasonU   *string    `db:"reason_u" json:"reasonU,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
}

func (g *Goal) IsClosed() bool {
	return g.Status.IsTerminal()
}

func (s GoalStatus) IsTerminal() bool {
	return s == GoalStatusDone || s == GoalStatusAborted
}

func (s GoalStatus) Valid() bool {
	return s == GoalStatusActive || s.IsTerminal()
}

// String returns the storage name of the status.
func (s GoalStatus) String() string {
	switch s {
	case GoalStatusActive:
		return "active"
	case GoalStatusDone:
		return "done"
	case GoalStatusAborted:
		return "aborted"
	}
	return "unknown"
}

// ParseGoalStatus accepts the storage names and the wire encoding
// ("active", "done", "aborted", "1000", "999").
func ParseGoalStatus(s string) (GoalStatus, error) {
	switch s {
	case "active":
		return GoalStatusActive, nil
	case "done", strconv.Itoa(GoalStatusCodeDone):
		return GoalStatusDone, nil
	case "aborted", strconv.Itoa(GoalStatusCodeAborted):
		return GoalStatusAborted, nil
	}
	return 0, fmt.Errorf("invalid goal status %q", s)
}

func goalStatusFromCode(code int64) (GoalStatus, error) {
	switch code {
	case GoalStatusCodeDone:
		return GoalStatusDone, nil
	case GoalStatusCodeAborted:
		return GoalStatusAborted, nil
	}
	return 0, fmt.Errorf("invalid goal status code %d", code)
}

func (s GoalStatus) MarshalJSON() ([]byte, error) {
	switch s {
	case GoalStatusActive:
		return []byte(`"active"`), nil
	case GoalStatusDone:
		return []byte(strconv.Itoa(GoalStatusCodeDone)), nil
	case GoalStatusAborted:
		return []byte(strconv.Itoa(GoalStatusCodeAborted)), nil
	}
	return nil, fmt.Errorf("invalid goal status %d", s)
}

func (s *GoalStatus) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		if str != "active" {
			return fmt.Errorf("invalid goal status %q", str)
		}
		*s = GoalStatusActive
		return nil
	}

	var code int64
	if err := json.Unmarshal(data, &code); err != nil {
		return fmt.Errorf("invalid goal status %s", data)
	}
	parsed, err := goalStatusFromCode(code)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value stores the status by name.
func (s GoalStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid goal status %d", s)
	}
	return s.String(), nil
}

// Scan reads names as well as the numeric codes older rows were written with.
func (s *GoalStatus) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseGoalStatus(v)
		if err != nil {
			return err
		}
		*s = parsed
	case []byte:
		parsed, err := ParseGoalStatus(string(v))
		if err != nil {
			return err
		}
		*s = parsed
	case int64:
		parsed, err := goalStatusFromCode(v)
		if err != nil {
			return err
		}
		*s = parsed
	default:
		return fmt.Errorf("cannot scan %T into GoalStatus", src)
	}
	return nil
}
