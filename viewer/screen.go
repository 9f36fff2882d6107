package viewer

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"promoshow/media"
	"promoshow/models"
	"promoshow/promotions"
	"promoshow/utils"
)

var (
	ErrNotAdmin  = errors.New("only administrators can change promotions")
	ErrNoCurrent = errors.New("no promotion on display")
	ErrClosed    = errors.New("screen closed")
)

// Store is the promotion persistence the screen drives.
type Store interface {
	LoadAll(ctx context.Context) ([]models.Promotion, error)
	Create(ctx context.Context, image []byte) (models.Promotion, error)
	Delete(ctx context.Context, p models.Promotion) error
}

// MediaActions shares or saves an image. Implementations report their own
// failures to the user.
type MediaActions interface {
	Share(ctx context.Context, url string) error
	Download(ctx context.Context, url string) error
}

type Action string

const (
	ActionShare    Action = "share"
	ActionDownload Action = "download"
	ActionAdd      Action = "add"
	ActionDelete   Action = "delete"
)

const (
	msgLoadFailed   = "No se pudo cargar las promociones"
	msgCreated      = "Promoción subida correctamente"
	msgCreateFailed = "No se pudo subir la promoción. Intenta nuevamente."
	msgRecordFailed = "La imagen se subió pero no se pudo guardar la promoción"
	msgDeleted      = "Promoción eliminada correctamente"
	msgDeleteFailed = "No se pudo eliminar la promoción"
)

// Screen is the command surface over a Machine. Failures are reported to the
// Notifier and returned. After Close, results of running operations are
// dropped.
type Screen struct {
	Machine  *Machine
	Store    Store
	Media    MediaActions
	Notifier media.Notifier
	Logger   *zap.Logger

	closed atomic.Bool
}

func NewScreen(store Store, actions MediaActions, notifier media.Notifier, logger *zap.Logger) *Screen {
	logger = utils.OrNop(logger)
	if notifier == nil {
		notifier = media.LogNotifier{Logger: logger}
	}
	return &Screen{
		Machine:  NewMachine(),
		Store:    store,
		Media:    actions,
		Notifier: notifier,
		Logger:   logger,
	}
}

// Load fetches every promotion and replaces the displayed list. A result
// that arrives after a newer load started is discarded.
func (s *Screen) Load(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	gen := s.Machine.BeginLoad()

	items, err := s.Store.LoadAll(ctx)
	if s.closed.Load() {
		return ErrClosed
	}
	if err != nil {
		if s.Machine.LoadFailed(gen) {
			s.Logger.Error("failed to load promotions", zap.Error(err))
			s.notify(media.NoticeError, "Error", msgLoadFailed)
		}
		return err
	}

	if !s.Machine.LoadSucceeded(gen, items) {
		s.Logger.Debug("dropped stale load", zap.Uint64("generation", uint64(gen)))
	}
	return nil
}

func (s *Screen) Tap(x, width float64) {
	if s.closed.Load() {
		return
	}
	s.Machine.Tap(x, width)
}

func (s *Screen) Advance(dir Direction) {
	if s.closed.Load() {
		return
	}
	s.Machine.Advance(dir)
}

func (s *Screen) Share(ctx context.Context) error {
	current, ok := s.Machine.Current()
	if !ok {
		return ErrNoCurrent
	}
	return s.Media.Share(ctx, current.URL)
}

func (s *Screen) Download(ctx context.Context) error {
	current, ok := s.Machine.Current()
	if !ok {
		return ErrNoCurrent
	}
	return s.Media.Download(ctx, current.URL)
}

// Add creates a promotion from image bytes and reloads on success.
func (s *Screen) Add(ctx context.Context, user *models.User, image []byte) (models.Promotion, error) {
	if !user.IsAdmin() {
		return models.Promotion{}, ErrNotAdmin
	}

	p, err := s.Store.Create(ctx, image)
	if s.closed.Load() {
		return p, err
	}
	if err != nil {
		s.Logger.Error("failed to create promotion", zap.String("user", user.Username), zap.Error(err))
		if promotions.IsOrphan(err) {
			s.notify(media.NoticeError, "Error", msgRecordFailed)
		} else {
			s.notify(media.NoticeError, "Error", msgCreateFailed)
		}
		return models.Promotion{}, err
	}

	s.Logger.Info("promotion created", zap.String("id", p.ID), zap.String("user", user.Username))
	s.reload(ctx)
	s.notify(media.NoticeSuccess, "Éxito", msgCreated)
	return p, nil
}

// Delete removes the promotion on display. With nothing on display it does
// nothing.
func (s *Screen) Delete(ctx context.Context, user *models.User) error {
	if !user.IsAdmin() {
		return ErrNotAdmin
	}
	current, ok := s.Machine.Current()
	if !ok {
		return nil
	}
	return s.Remove(ctx, user, current)
}

// Remove deletes p and reloads on success.
func (s *Screen) Remove(ctx context.Context, user *models.User, p models.Promotion) error {
	if !user.IsAdmin() {
		return ErrNotAdmin
	}

	err := s.Store.Delete(ctx, p)
	if s.closed.Load() {
		return err
	}
	if err != nil {
		s.Logger.Error("failed to delete promotion", zap.String("id", p.ID), zap.String("user", user.Username), zap.Error(err))
		s.notify(media.NoticeError, "Error", msgDeleteFailed)
		return err
	}

	s.Logger.Info("promotion deleted", zap.String("id", p.ID), zap.String("user", user.Username))
	s.reload(ctx)
	s.notify(media.NoticeSuccess, "Éxito", msgDeleted)
	return nil
}

// Actions lists the commands offered to user in the current state.
func (s *Screen) Actions(user *models.User) []Action {
	viewing := s.Machine.Snapshot().State == StateViewing

	var actions []Action
	if viewing {
		actions = append(actions, ActionShare, ActionDownload)
	}
	if user.IsAdmin() {
		actions = append(actions, ActionAdd)
		if viewing {
			actions = append(actions, ActionDelete)
		}
	}
	return actions
}

func (s *Screen) Snapshot() Snapshot {
	return s.Machine.Snapshot()
}

// Close detaches the screen. Operations still running complete against the
// stores but no longer touch the displayed state or raise notices.
func (s *Screen) Close() {
	s.closed.Store(true)
}

func (s *Screen) Closed() bool {
	return s.closed.Load()
}

func (s *Screen) reload(ctx context.Context) {
	if err := s.Load(ctx); err != nil && !errors.Is(err, ErrClosed) {
		s.Logger.Warn("reload after mutation failed", zap.Error(err))
	}
}

func (s *Screen) notify(kind media.NoticeKind, title, message string) {
	if s.closed.Load() || s.Notifier == nil {
		return
	}
	s.Notifier.Notify(media.Notice{Kind: kind, Title: title, Message: message})
}
