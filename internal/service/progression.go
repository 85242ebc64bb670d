package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spacegame-combat/internal/model"
	"spacegame-combat/internal/repository"

	"go.uber.org/zap"
)

var ErrPlayerNotFound = errors.New("player not found")

// ExpPerLevel scales the experience needed for the next level.
const ExpPerLevel = 1000

// NextLevelExp is the experience needed to leave level.
func NextLevelExp(level int) int {
	if level < 1 {
		level = 1
	}
	return level * ExpPerLevel
}

// LevelUp adds gained experience and rolls over as many levels as it covers.
func LevelUp(level, experience, gained int) (int, int) {
	if level < 1 {
		level = 1
	}
	experience += gained
	if experience < 0 {
		experience = 0
	}
	for experience >= NextLevelExp(level) {
		experience -= NextLevelExp(level)
		level++
	}
	return level, experience
}

type ProgressStore interface {
	GetByID(ctx context.Context, id string) (*model.Player, error)
	GetByUsername(ctx context.Context, username string) (*model.Player, error)
	Inventory(ctx context.Context, playerID string) ([]model.InventoryItem, error)
	ApplyGrant(ctx context.Context, playerID string, g model.Grant, levelUp repository.LevelFunc) (*model.Player, error)
}

type grantJob struct {
	playerID string
	grant    model.Grant
}

// ProgressionService owns pilot level, experience, credits and loot. Grants
// are queued and applied by a single worker so the combat tick never waits
// on the database.
type ProgressionService struct {
	store ProgressStore
	log   *zap.Logger
	queue chan grantJob
	done  chan struct{}
}

func NewProgressionService(store ProgressStore, log *zap.Logger) *ProgressionService {
	return &ProgressionService{
		store: store,
		log:   log,
		queue: make(chan grantJob, 1024),
		done:  make(chan struct{}),
	}
}

// Grant queues a delta. It never blocks; a full queue drops the grant and
// logs it.
func (s *ProgressionService) Grant(playerID string, g model.Grant) {
	if g.IsZero() {
		return
	}
	select {
	case s.queue <- grantJob{playerID: playerID, grant: g}:
	default:
		s.log.Error("progression queue full, grant dropped",
			zap.String("player_id", playerID),
			zap.Int("experience", g.Experience),
			zap.Int64("credits", g.Credits))
	}
}

// Run applies queued grants until ctx is cancelled, then drains what is left.
func (s *ProgressionService) Run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case job := <-s.queue:
			s.apply(ctx, job)
		case <-ctx.Done():
			s.drain()
			return
		}
	}
}

// Wait blocks until Run has returned.
func (s *ProgressionService) Wait() {
	<-s.done
}

func (s *ProgressionService) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case job := <-s.queue:
			s.apply(ctx, job)
		default:
			return
		}
	}
}

func (s *ProgressionService) apply(ctx context.Context, job grantJob) {
	before, err := s.store.GetByID(ctx, job.playerID)
	if err != nil {
		s.log.Error("grant: load player", zap.String("player_id", job.playerID), zap.Error(err))
		return
	}
	after, err := s.store.ApplyGrant(ctx, job.playerID, job.grant, LevelUp)
	if err != nil {
		s.log.Error("grant: apply", zap.String("player_id", job.playerID), zap.Error(err))
		return
	}
	if after.Level > before.Level {
		s.log.Info("pilot levelled up",
			zap.String("player", after.Username),
			zap.Int("from", before.Level),
			zap.Int("to", after.Level))
	}
}

func (s *ProgressionService) Pilot(ctx context.Context, playerID string) (*model.Pilot, error) {
	p, err := s.store.GetByID(ctx, playerID)
	if err != nil {
		return nil, s.notFound(err)
	}
	return s.pilot(ctx, p)
}

func (s *ProgressionService) PilotByName(ctx context.Context, username string) (*model.Pilot, error) {
	p, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return nil, s.notFound(err)
	}
	return s.pilot(ctx, p)
}

func (s *ProgressionService) pilot(ctx context.Context, p *model.Player) (*model.Pilot, error) {
	inv, err := s.store.Inventory(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	return &model.Pilot{
		ID:           p.ID,
		Username:     p.Username,
		Level:        p.Level,
		Experience:   p.Experience,
		NextLevelExp: NextLevelExp(p.Level),
		Credits:      p.Credits,
		Kills:        p.Kills,
		Inventory:    inv,
	}, nil
}

func (s *ProgressionService) notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPlayerNotFound
	}
	return err
}
