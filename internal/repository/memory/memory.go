// Package memory keeps users, goals and records in process memory.
// It backs DB_PROVIDER=memory for development and tests; data is lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/liflo-ai/liflo/internal/model"
	"github.com/liflo-ai/liflo/internal/repository"
)

// Store holds all three collections behind one lock.
type Store struct {
	mu      sync.RWMutex
	users   map[string]model.User
	goals   map[string]model.Goal
	records map[string]model.Record
}

func New() *Store {
	return &Store{
		users:   make(map[string]model.User),
		goals:   make(map[string]model.Goal),
		records: make(map[string]model.Record),
	}
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Users:   userRepository{s},
		Goals:   goalRepository{s},
		Records: recordRepository{s},
	}
}

type userRepository struct{ s *Store }

func (r userRepository) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Nickname == user.Nickname {
			return repository.ErrNicknameTaken
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepository) ByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (r userRepository) ByNickname(_ context.Context, nickname string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Nickname == nickname {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type goalRepository struct{ s *Store }

func (r goalRepository) Create(_ context.Context, goal *model.Goal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.goals[goal.ID] = copyGoal(goal)
	return nil
}

func (r goalRepository) ByID(_ context.Context, userID, goalID string) (*model.Goal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.goals[goalID]
	if !ok || g.UserID != userID {
		return nil, repository.ErrGoalNotFound
	}
	out := copyGoal(&g)
	return &out, nil
}

func (r goalRepository) Goals(_ context.Context, userID string) ([]*model.Goal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	goals := []*model.Goal{}
	for _, g := range r.s.goals {
		if g.UserID == userID {
			out := copyGoal(&g)
			goals = append(goals, &out)
		}
	}
	sort.Slice(goals, func(i, j int) bool {
		if !goals[i].CreatedAt.Equal(goals[j].CreatedAt) {
			return goals[i].CreatedAt.After(goals[j].CreatedAt)
		}
		return goals[i].ID > goals[j].ID
	})
	return goals, nil
}

func (r goalRepository) Update(_ context.Context, goal *model.Goal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.goals[goal.ID]
	if !ok || existing.UserID != goal.UserID {
		return repository.ErrGoalNotFound
	}
	if existing.Status.IsTerminal() {
		return repository.ErrGoalClosed
	}
	updated := copyGoal(goal)
	updated.CreatedAt = existing.CreatedAt
	r.s.goals[goal.ID] = updated
	return nil
}

type recordRepository struct{ s *Store }

func (r recordRepository) Create(_ context.Context, record *model.Record) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.records[record.ID] = copyRecord(record)
	return nil
}

func (r recordRepository) ByID(_ context.Context, userID, recordID string) (*model.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.records[recordID]
	if !ok || rec.UserID != userID {
		return nil, repository.ErrRecordNotFound
	}
	out := copyRecord(&rec)
	return &out, nil
}

func (r recordRepository) Records(_ context.Context, userID string, filter repository.RecordFilter) ([]*model.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	records := []*model.Record{}
	for _, rec := range r.s.records {
		if rec.UserID == userID && filter.Match(&rec) {
			out := copyRecord(&rec)
			records = append(records, &out)
		}
	}
	repository.SortRecords(records)
	return records, nil
}

func copyGoal(g *model.Goal) model.Goal {
	out := *g
	out.ReasonU = copyPtr(g.ReasonU)
	return out
}

func copyRecord(r *model.Record) model.Record {
	out := *r
	out.ReasonU = copyPtr(r.ReasonU)
	out.AIChallenge = copyPtr(r.AIChallenge)
	out.AISkill = copyPtr(r.AISkill)
	out.RegoalAI = copyPtr(r.RegoalAI)
	return out
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
