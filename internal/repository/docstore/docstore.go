// Package docstore persists users, goals and records in Cloud Firestore.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/liflo-ai/liflo/internal/model"
	"github.com/liflo-ai/liflo/internal/repository"
)

const (
	usersCollection     = "users"
	nicknamesCollection = "nicknames"
	goalsCollection     = "goals"
	recordsCollection   = "records"
)

// Store wraps a Firestore client.
type Store struct {
	client *firestore.Client
}

// New connects to projectID. credentialsFile may be empty to use
// application default credentials or FIRESTORE_EMULATOR_HOST.
func New(ctx context.Context, projectID, credentialsFile string) (*Store, error) {
	if projectID == "" {
		return nil, errors.New("FIRESTORE_PROJECT_ID is required for the firestore provider")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	slog.Info("firestore connected", "project", projectID)
	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Users:   userRepository{s.client},
		Goals:   goalRepository{s.client},
		Records: recordRepository{s.client},
	}
}

type userDoc struct {
	ID        string    `firestore:"id"`
	Nickname  string    `firestore:"nickname"`
	PinHash   string    `firestore:"pinHash"`
	CreatedAt time.Time `firestore:"createdAt"`
}

type goalDoc struct {
	ID        string    `firestore:"id"`
	UserID    string    `firestore:"userId"`
	Content   string    `firestore:"content"`
	Status    string    `firestore:"status"`
	ReasonU   *string   `firestore:"reasonU"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

type recordDoc struct {
	ID          string    `firestore:"id"`
	UserID      string    `firestore:"userId"`
	GoalID      string    `firestore:"goalId"`
	Date        string    `firestore:"date"`
	ChallengeU  int64     `firestore:"challengeU"`
	SkillU      int64     `firestore:"skillU"`
	ReasonU     *string   `firestore:"reasonU"`
	AIChallenge *int64    `firestore:"aiChallenge"`
	AISkill     *int64    `firestore:"aiSkill"`
	AIComment   string    `firestore:"aiComment"`
	RegoalAI    *string   `firestore:"regoalAI"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

func toUserDoc(u *model.User) userDoc {
	return userDoc{ID: u.ID, Nickname: u.Nickname, PinHash: u.PinHash, CreatedAt: u.CreatedAt.UTC()}
}

func (d userDoc) model() *model.User {
	return &model.User{ID: d.ID, Nickname: d.Nickname, PinHash: d.PinHash, CreatedAt: d.CreatedAt}
}

func toGoalDoc(g *model.Goal) goalDoc {
	return goalDoc{
		ID:        g.ID,
		UserID:    g.UserID,
		Content:   g.Content,
		Status:    g.Status.String(),
		ReasonU:   g.ReasonU,
		CreatedAt: g.CreatedAt.UTC(),
		UpdatedAt: g.UpdatedAt.UTC(),
	}
}

func (d goalDoc) model() (*model.Goal, error) {
	st, err := model.ParseGoalStatus(d.Status)
	if err != nil {
		return nil, fmt.Errorf("goal %s: %w", d.ID, err)
	}
	return &model.Goal{
		ID:        d.ID,
		UserID:    d.UserID,
		Content:   d.Content,
		Status:    st,
		ReasonU:   d.ReasonU,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func toRecordDoc(r *model.Record) recordDoc {
	return recordDoc{
		ID:          r.ID,
		UserID:      r.UserID,
		GoalID:      r.GoalID,
		Date:        r.Date,
		ChallengeU:  int64(r.ChallengeU),
		SkillU:      int64(r.SkillU),
		ReasonU:     r.ReasonU,
		AIChallenge: widen(r.AIChallenge),
		AISkill:     widen(r.AISkill),
		AIComment:   r.AIComment,
		RegoalAI:    r.RegoalAI,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

func (d recordDoc) model() *model.Record {
	return &model.Record{
		ID:          d.ID,
		UserID:      d.UserID,
		GoalID:      d.GoalID,
		Date:        d.Date,
		ChallengeU:  int(d.ChallengeU),
		SkillU:      int(d.SkillU),
		ReasonU:     d.ReasonU,
		AIChallenge: narrow(d.AIChallenge),
		AISkill:     narrow(d.AISkill),
		AIComment:   d.AIComment,
		RegoalAI:    d.RegoalAI,
		CreatedAt:   d.CreatedAt,
	}
}

func widen(p *int) *int64 {
	if p == nil {
		return nil
	}
	v := int64(*p)
	return &v
}

func narrow(p *int64) *int {
	if p == nil {
		return nil
	}
	v := int(*p)
	return &v
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// isMissingIndex reports the error Firestore returns for a compound
// query whose composite index has not been deployed.
func isMissingIndex(err error) bool {
	return status.Code(err) == codes.FailedPrecondition
}

type userRepository struct {
	client *firestore.Client
}

func (r userRepository) Create(ctx context.Context, user *model.User) error {
	userRef := r.client.Collection(usersCollection).Doc(user.ID)
	nickRef := r.client.Collection(nicknamesCollection).Doc(user.Nickname)

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(nickRef)
		if err == nil {
			return repository.ErrNicknameTaken
		}
		if !isNotFound(err) {
			return err
		}
		if err := tx.Create(nickRef, map[string]any{"userId": user.ID}); err != nil {
			return err
		}
		return tx.Create(userRef, toUserDoc(user))
	})
}

func (r userRepository) ByID(ctx context.Context, id string) (*model.User, error) {
	snap, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	return doc.model(), nil
}

func (r userRepository) ByNickname(ctx context.Context, nickname string) (*model.User, error) {
	snap, err := r.client.Collection(nicknamesCollection).Doc(nickname).Get(ctx)
	if isNotFound(err) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	userID, _ := snap.Data()["userId"].(string)
	return r.ByID(ctx, userID)
}

type goalRepository struct {
	client *firestore.Client
}

func (r goalRepository) Create(ctx context.Context, goal *model.Goal) error {
	_, err := r.client.Collection(goalsCollection).Doc(goal.ID).Create(ctx, toGoalDoc(goal))
	return err
}

func (r goalRepository) ByID(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	snap, err := r.client.Collection(goalsCollection).Doc(goalID).Get(ctx)
	if isNotFound(err) {
		return nil, repository.ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	var doc goalDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		return nil, repository.ErrGoalNotFound
	}
	return doc.model()
}

func (r goalRepository) Goals(ctx context.Context, userID string) ([]*model.Goal, error) {
	byUser := r.client.Collection(goalsCollection).Where("userId", "==", userID)

	snaps, err := byUser.OrderBy("createdAt", firestore.Desc).Documents(ctx).GetAll()
	if isMissingIndex(err) {
		slog.Warn("firestore index missing, sorting goals in memory", "collection", goalsCollection)
		snaps, err = byUser.Documents(ctx).GetAll()
	}
	if err != nil {
		return nil, err
	}

	goals := make([]*model.Goal, 0, len(snaps))
	for _, snap := range snaps {
		var doc goalDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, err
		}
		g, err := doc.model()
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	sort.SliceStable(goals, func(i, j int) bool {
		return goals[i].CreatedAt.After(goals[j].CreatedAt)
	})
	return goals, nil
}

func (r goalRepository) Update(ctx context.Context, goal *model.Goal) error {
	ref := r.client.Collection(goalsCollection).Doc(goal.ID)

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if isNotFound(err) {
			return repository.ErrGoalNotFound
		}
		if err != nil {
			return err
		}
		owner, _ := snap.Data()["userId"].(string)
		if owner != goal.UserID {
			return repository.ErrGoalNotFound
		}
		if current, _ := snap.Data()["status"].(string); current != model.GoalStatusActive.String() {
			return repository.ErrGoalClosed
		}

		doc := toGoalDoc(goal)
		return tx.Update(ref, []firestore.Update{
			{Path: "content", Value: doc.Content},
			{Path: "status", Value: doc.Status},
			{Path: "reasonU", Value: doc.ReasonU},
			{Path: "updatedAt", Value: doc.UpdatedAt},
		})
	})
}

type recordRepository struct {
	client *firestore.Client
}

func (r recordRepository) Create(ctx context.Context, record *model.Record) error {
	_, err := r.client.Collection(recordsCollection).Doc(record.ID).Create(ctx, toRecordDoc(record))
	return err
}

func (r recordRepository) ByID(ctx context.Context, userID, recordID string) (*model.Record, error) {
	snap, err := r.client.Collection(recordsCollection).Doc(recordID).Get(ctx)
	if isNotFound(err) {
		return nil, repository.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	var doc recordDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		return nil, repository.ErrRecordNotFound
	}
	return doc.model(), nil
}

func (r recordRepository) Records(ctx context.Context, userID string, filter repository.RecordFilter) ([]*model.Record, error) {
	byUser := r.client.Collection(recordsCollection).Where("userId", "==", userID)

	q := byUser
	if filter.GoalID != "" {
		q = q.Where("goalId", "==", filter.GoalID)
	}
	if filter.From != "" {
		q = q.Where("date", ">=", filter.From)
	}
	if filter.To != "" {
		q = q.Where("date", "<=", filter.To)
	}

	snaps, err := q.OrderBy("date", firestore.Asc).Documents(ctx).GetAll()
	if isMissingIndex(err) {
		slog.Warn("firestore index missing, filtering records in memory", "collection", recordsCollection)
		snaps, err = byUser.Documents(ctx).GetAll()
	}
	if err != nil {
		return nil, err
	}

	records := make([]*model.Record, 0, len(snaps))
	for _, snap := range snaps {
		var doc recordDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, err
		}
		rec := doc.model()
		if filter.Match(rec) {
			records = append(records, rec)
		}
	}
	repository.SortRecords(records)
	return records, nil
}
