// Package review aggregates dated challenge/skill records into a summary of
// averages and flow-quadrant distribution over an inclusive date window.
package review

import (
	"math"
	"slices"
	"strings"

	"github.com/liflo-ai/liflo/internal/model"
)

// HighThreshold is the inclusive score from which challenge or skill counts as high.
const HighThreshold = 4

// EmptyNote annotates a summary whose window matched no records.
const EmptyNote = "no records in this period"

type State string

const (
	StateFlow    State = "flow"
	StateAnxiety State = "anxiety"
	StateBoredom State = "boredom"
	StateApathy  State = "apathy"
)

// States lists the quadrants in display order.
var States = []State{StateFlow, StateAnxiety, StateBoredom, StateApathy}

// Window is an inclusive range of YYYY-MM-DD calendar days.
// Both bounds must already be valid dates; string order equals date order.
type Window struct {
	From string
	To   string
}

// Normalize swaps the bounds when From is after To.
func (w Window) Normalize() Window {
	if w.From > w.To {
		return Window{From: w.To, To: w.From}
	}
	return w
}

func (w Window) Contains(date string) bool {
	n := w.Normalize()
	return date >= n.From && date <= n.To
}

type Axis struct {
	Challenge float64 `json:"challenge"`
	Skill     float64 `json:"skill"`
}

type Bucket struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"pct"`
}

type Distribution struct {
	Flow    Bucket `json:"flow"`
	Anxiety Bucket `json:"anxiety"`
	Boredom Bucket `json:"boredom"`
	Apathy  Bucket `json:"apathy"`
}

// Get returns the bucket for a state.
func (d Distribution) Get(s State) Bucket {
	switch s {
	case StateFlow:
		return d.Flow
	case StateAnxiety:
		return d.Anxiety
	case StateBoredom:
		return d.Boredom
	case StateApathy:
		return d.Apathy
	}
	return Bucket{}
}

func (d *Distribution) bucket(s State) *Bucket {
	switch s {
	case StateFlow:
		return &d.Flow
	case StateAnxiety:
		return &d.Anxiety
	case StateBoredom:
		return &d.Boredom
	default:
		return &d.Apathy
	}
}

type Summary struct {
	From    string          `json:"from"`
	To      string          `json:"to"`
	GoalID  string          `json:"goalId,omitempty"`
	Count   int             `json:"count"`
	AvgUser Axis            `json:"avgUser"`
	AvgAI   Axis            `json:"avgAI"`
	States  Distribution    `json:"states"`
	Notes   string          `json:"notes,omitempty"`
	Items   []*model.Record `json:"items"`
}

// Classify places a challenge/skill pair into its quadrant.
func Classify(challenge, skill int) State {
	highC := challenge >= HighThreshold
	highS := skill >= HighThreshold
	switch {
	case highC && highS:
		return StateFlow
	case highC:
		return StateAnxiety
	case highS:
		return StateBoredom
	default:
		return StateApathy
	}
}

// Summarize filters records to the window (and goal when goalID is set) and
// aggregates them. Missing AI scores count as 0 in the AI averages.
// Items are ordered by date, then creation time, then id. Inputs are not modified.
func Summarize(records []*model.Record, w Window, goalID string) Summary {
	w = w.Normalize()

	items := make([]*model.Record, 0, len(records))
	for _, r := range records {
		if r == nil || !w.Contains(r.Date) {
			continue
		}
		if goalID != "" && r.GoalID != goalID {
			continue
		}
		items = append(items, r)
	}

	s := Summary{
		From:   w.From,
		To:     w.To,
		GoalID: goalID,
		Count:  len(items),
		Items:  items,
	}
	if len(items) == 0 {
		s.Notes = EmptyNote
		return s
	}

	slices.SortStableFunc(items, compareRecords)

	var sumC, sumS, sumAIC, sumAIS int
	var counts [4]int
	for _, r := range items {
		sumC += r.ChallengeU
		sumS += r.SkillU
		if r.AIChallenge != nil {
			sumAIC += *r.AIChallenge
		}
		if r.AISkill != nil {
			sumAIS += *r.AISkill
		}
		counts[slices.Index(States, Classify(r.ChallengeU, r.SkillU))]++
	}

	n := float64(len(items))
	s.AvgUser = Axis{Challenge: Round(float64(sumC)/n, 2), Skill: Round(float64(sumS)/n, 2)}
	s.AvgAI = Axis{Challenge: Round(float64(sumAIC)/n, 2), Skill: Round(float64(sumAIS)/n, 2)}
	for i, state := range States {
		*s.States.bucket(state) = Bucket{
			Count:      counts[i],
			Percentage: Round(float64(counts[i])*100/n, 1),
		}
	}

	return s
}

func compareRecords(a, b *model.Record) int {
	if c := strings.Compare(a.Date, b.Date); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// Round rounds half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
