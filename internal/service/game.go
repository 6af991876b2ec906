package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/events"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/game"
)

type GameService interface {
	CreateSession(ctx context.Context) (*entity.GameView, error)
	GetState(ctx context.Context, sessionID string) (*entity.GameView, error)
	EndSession(ctx context.Context, sessionID string) error

	Play(ctx context.Context, sessionID string, cell int) (*entity.GameView, bool, error)
	JumpTo(ctx context.Context, sessionID string, move int) (*entity.GameView, error)
	Restart(ctx context.Context, sessionID string) (*entity.GameView, error)
}

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type gameService struct {
	logger *slog.Logger

	sessionRepo sessionRepo
	publisher   events.Publisher
	newID       func() string

	// mu serializes every load-modify-save cycle; the engine itself is single threaded.
	mu sync.Mutex
}

func NewGameService(logger *slog.Logger, sessionRepo sessionRepo, publisher events.Publisher) GameService {
	return &gameService{
		logger:      logger.With("component", "game_service"),
		sessionRepo: sessionRepo,
		publisher:   publisher,
		newID:       uuid.NewString,
	}
}

func (that *gameService) CreateSession(ctx context.Context) (*entity.GameView, error) {
	engine := game.New()
	session := entity.NewSession(that.newID(), engine)

	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	that.logger.Info("session created", "sessionID", session.ID)

	return entity.NewGameView(session.ID, engine), nil
}

func (that *gameService) GetState(ctx context.Context, sessionID string) (*entity.GameView, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	engine, err := that.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return entity.NewGameView(sessionID, engine), nil
}

func (that *gameService) EndSession(ctx context.Context, sessionID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.logger.Info("session ended", "sessionID", sessionID)

	return nil
}

// Play reports false when the move was ignored (occupied cell or finished game).
func (that *gameService) Play(ctx context.Context, sessionID string, cell int) (*entity.GameView, bool, error) {
	var applied bool

	view, err := that.apply(ctx, sessionID, "Play", func(engine *game.Engine) error {
		var err error
		applied, err = engine.Play(cell)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	return view, applied, nil
}

func (that *gameService) JumpTo(ctx context.Context, sessionID string, move int) (*entity.GameView, error) {
	return that.apply(ctx, sessionID, "JumpTo", func(engine *game.Engine) error {
		return engine.JumpTo(move)
	})
}

func (that *gameService) Restart(ctx context.Context, sessionID string) (*entity.GameView, error) {
	return that.apply(ctx, sessionID, "Restart", func(engine *game.Engine) error {
		engine.Restart()
		return nil
	})
}

// apply - loads the session, runs op on its engine and stores the result if the engine reported a change.
func (that *gameService) apply(ctx context.Context, sessionID, method string, op func(engine *game.Engine) error) (*entity.GameView, error) {
	log := that.logger.With("method", method, "sessionID", sessionID)

	that.mu.Lock()
	defer that.mu.Unlock()

	engine, err := that.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var changes []game.Event
	unsubscribe := engine.Subscribe(func(ev game.Event) {
		changes = append(changes, ev)
	})

	err = op(engine)
	unsubscribe()

	if err != nil {
		log.Debug("operation rejected", "error", err)
		return nil, fmt.Errorf("failed to %s: %w", method, err)
	}

	if len(changes) == 0 {
		log.Debug("operation ignored")
		return entity.NewGameView(sessionID, engine), nil
	}

	if err = that.sessionRepo.CreateOrUpdate(ctx, entity.NewSession(sessionID, engine)); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	status := engine.Status()
	for _, change := range changes {
		if err = that.publisher.Publish(ctx, events.GameEvent(sessionID, change, status)); err != nil {
			log.Error("failed to publish event", "error", err)
		}
	}

	log.Info("session updated", "currentMove", engine.CurrentMove(), "historyLen", engine.Len(), "status", status.String())

	return entity.NewGameView(sessionID, engine), nil
}

func (that *gameService) load(ctx context.Context, sessionID string) (*game.Engine, error) {
	session, err := that.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	engine, err := session.Engine()
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	return engine, nil
}
