// Package audit buffers request audit events and ships them to a sink in batches.
package audit

import (
	"context"
	"strconv"
	"time"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFail    Status = "fail"
)

// Event names emitted by the HTTP handlers.
const (
	EventGoalCreated   = "GOAL_CREATED"
	EventGoalUpdated   = "GOAL_UPDATED"
	EventGoalsListed   = "GOALS_LISTED"
	EventRecordCreated = "RECORD_CREATED"
	EventRecordsListed = "RECORDS_LISTED"
	EventReviewViewed  = "REVIEW_VIEWED"
	EventStatsViewed   = "STATS_VIEWED"
	EventUserSignedUp  = "USER_SIGNED_UP"
	EventUserLoggedIn  = "USER_LOGGED_IN"
)

// Event is one audit row. Free-text user input is never part of it.
type Event struct {
	Timestamp   time.Time `json:"ts"`
	RequestID   string    `json:"requestId,omitempty"`
	UserID      string    `json:"userId,omitempty"`
	Endpoint    string    `json:"endpoint"`
	Method      string    `json:"method"`
	Event       string    `json:"event"`
	Status      Status    `json:"status"`
	LatencyMs   *int64    `json:"latencyMs,omitempty"`
	IP          string    `json:"ip,omitempty"`
	UserAgent   string    `json:"ua,omitempty"`
	Note        string    `json:"note,omitempty"`
	GoalID      string    `json:"goalId,omitempty"`
	RecordID    string    `json:"recordId,omitempty"`
	Date        string    `json:"date,omitempty"`
	StatusCode  int       `json:"statusCode,omitempty"`
	ChallengeU  *int      `json:"challengeU,omitempty"`
	SkillU      *int      `json:"skillU,omitempty"`
	AIChallenge *int      `json:"aiChallenge,omitempty"`
	AISkill     *int      `json:"aiSkill,omitempty"`
}

// Sink receives flushed batches. Implementations may fail; the queue logs and drops.
type Sink interface {
	AppendBatch(ctx context.Context, events []Event) error
}

// Logger accepts events without blocking. *Queue implements it.
type Logger interface {
	Append(events ...Event)
}

// Columns is the fixed column order used by tabular sinks.
var Columns = []string{
	"ts", "requestId", "userId", "endpoint", "method", "event", "status", "latencyMs",
	"ip", "ua", "note", "goalId", "recordId", "date", "statusCode",
	"challengeU", "skillU", "aiChallenge", "aiSkill",
}

// Row renders the event in Columns order. Absent values become empty strings.
func (e Event) Row() []string {
	return []string{
		e.Timestamp.UTC().Format(time.RFC3339Nano),
		e.RequestID,
		e.UserID,
		e.Endpoint,
		e.Method,
		e.Event,
		string(e.Status),
		optInt64(e.LatencyMs),
		e.IP,
		e.UserAgent,
		e.Note,
		e.GoalID,
		e.RecordID,
		e.Date,
		optCode(e.StatusCode),
		optInt(e.ChallengeU),
		optInt(e.SkillU),
		optInt(e.AIChallenge),
		optInt(e.AISkill),
	}
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optInt64(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func optCode(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}
