package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"golang.org/x/sync/singleflight"

	clientapi "github.com/iudanet/atmtrack/internal/client/api"
	"github.com/iudanet/atmtrack/internal/client/storage"
	"github.com/iudanet/atmtrack/internal/client/token"
	"github.com/iudanet/atmtrack/pkg/api"
)

// DefaultLeadTime за сколько до истечения access token запускается обновление
const DefaultLeadTime = 5 * time.Minute

// State состояние сессии
type State int

const (
	StateUninitialized State = iota
	StateRestoring
	StateAuthenticated
	StateRefreshing
	StateLoggedOut
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	case StateLoggedOut:
		return "logged_out"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Session аутентифицированная сессия. ExpiresAt вычисляется из access token.
type Session struct {
	ExpiresAt    time.Time
	AccessToken  string
	RefreshToken string
	User         api.User
}

// Option настраивает Manager
type Option func(*Manager)

// WithClock подменяет часы (в тестах используется clock.NewMock())
func WithClock(c clock.Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithLeadTime задает запас времени до истечения токена
func WithLeadTime(d time.Duration) Option {
	return func(m *Manager) {
		if d >= 0 {
			m.leadTime = d
		}
	}
}

// WithLogger задает логгер
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Manager владеет сессией пользователя: восстанавливает ее из хранилища,
// выполняет вход и выход, обновляет access token по таймеру.
// Безопасен для конкурентного использования.
type Manager struct {
	backend Backend
	store   storage.SessionStorage
	clock   clock.Clock
	logger  *slog.Logger

	ctx    context.Context // контекст фоновых обновлений, отменяется в Close
	cancel context.CancelFunc
	ready  chan struct{}

	session *Session
	timer   *clock.Timer

	refreshGroup singleflight.Group
	wg           sync.WaitGroup
	restoreOnce  sync.Once
	mu           sync.RWMutex

	leadTime time.Duration
	gen      uint64 // поколение таймера, устаревшие срабатывания игнорируются
	state    State
	restored State
	closed   bool
}

// New создает менеджер сессии. Перед использованием нужно вызвать Restore.
func New(backend Backend, store storage.SessionStorage, opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		backend:  backend,
		store:    store,
		clock:    clock.New(),
		logger:   slog.Default(),
		leadTime: DefaultLeadTime,
		ctx:      ctx,
		cancel:   cancel,
		ready:    make(chan struct{}),
		state:    StateUninitialized,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Restore восстанавливает сессию из хранилища. Выполняется один раз,
// повторные вызовы ждут завершения первого и возвращают его результат.
// Результат всегда StateAuthenticated или StateLoggedOut.
func (m *Manager) Restore(ctx context.Context) State {
	m.restoreOnce.Do(func() {
		m.setState(StateRestoring)
		m.restored = m.restore(ctx)
		close(m.ready)
	})
	return m.restored
}

func (m *Manager) restore(ctx context.Context) State {
	data, err := m.store.LoadSession(ctx)
	switch {
	case errors.Is(err, storage.ErrSessionNotFound):
		m.logger.Debug("no stored session")
		return m.markLoggedOut()
	case errors.Is(err, storage.ErrSessionCorrupted):
		m.logger.Warn("stored session is corrupted, clearing", "error", err)
		return m.discardStored(ctx)
	case err != nil:
		// Хранилище недоступно: данные не трогаем
		m.logger.Error("failed to load session", "error", err)
		return m.markLoggedOut()
	}

	sess, err := newSession(data.Tokens.Access, data.Tokens.Refresh, data.User)
	if err != nil {
		m.logger.Warn("stored session is invalid, clearing", "error", err)
		return m.discardStored(ctx)
	}

	if m.clock.Now().Before(sess.ExpiresAt) {
		m.mu.Lock()
		m.adoptLocked(sess, true)
		m.mu.Unlock()
		m.logger.Info("session restored", "username", sess.User.Username, "expires_at", sess.ExpiresAt)
		return StateAuthenticated
	}

	// Access token истек: одна синхронная попытка обновления
	m.logger.Info("stored access token expired, refreshing", "username", sess.User.Username)
	next, err := m.exchange(ctx, sess)
	if err != nil {
		m.logger.Warn("refresh of restored session failed", "error", err)
		return m.discardStored(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.persist(ctx, next); err != nil {
		m.logger.Error("failed to persist refreshed session", "error", err)
	}
	m.adoptLocked(next, true)
	return StateAuthenticated
}

// Login выполняет вход. При отказе возвращает *LoginError,
// текущая сессия и хранилище при этом не меняются.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	resp, err := m.backend.Login(ctx, username, password)
	if err != nil {
		m.logger.Info("login rejected", "username", username, "error", err)
		return newLoginError(err)
	}

	sess, err := newSession(resp.Access, resp.Refresh, resp.User)
	if err != nil {
		m.logger.Error("login response is invalid", "username", username, "error", err)
		return &LoginError{Message: clientapi.MessageUnknown, Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.persist(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	m.adoptLocked(sess, true)

	m.logger.Info("logged in", "username", sess.User.Username, "role", sess.User.Role)
	return nil
}

// Logout завершает сессию: очищает память, таймер и хранилище. Идемпотентен.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.logoutLocked(ctx)
}

func (m *Manager) logoutLocked(ctx context.Context) error {
	had := m.session != nil
	m.session = nil
	m.stopTimerLocked()
	m.state = StateLoggedOut

	if err := m.store.ClearSession(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if had {
		m.logger.Info("logged out")
	}
	return nil
}

// Refresh получает новый access token по refresh token.
// Параллельные вызовы объединяются в один запрос к серверу.
// При ошибке сессия завершается и возвращается ошибка с ErrRefreshFailed.
func (m *Manager) Refresh(ctx context.Context) error {
	return m.refresh(ctx, true)
}

// refresh выполняет обновление. immediate разрешает немедленное повторное
// обновление, если новый токен уже внутри окна lead time.
func (m *Manager) refresh(ctx context.Context, immediate bool) error {
	_, err, _ := m.refreshGroup.Do("refresh", func() (any, error) {
		return nil, m.doRefresh(ctx, immediate)
	})
	return err
}

func (m *Manager) doRefresh(ctx context.Context, immediate bool) error {
	m.mu.Lock()
	sess := m.session
	if sess == nil {
		m.mu.Unlock()
		return ErrNoSession
	}
	m.state = StateRefreshing
	m.mu.Unlock()

	next, err := m.exchange(ctx, sess)

	m.mu.Lock()
	defer m.mu.Unlock()

	// Пока шел запрос, сессию заменили или завершили: результат не применяем
	if m.session != sess {
		if m.session == nil {
			return ErrNoSession
		}
		return nil
	}

	// Вызывающий отменил запрос: сервер токен не отклонял, сессия остается
	if err != nil && ctx.Err() != nil {
		m.state = StateAuthenticated
		m.logger.Info("token refresh canceled", "error", err)
		return err
	}

	if err != nil {
		m.logger.Warn("token refresh failed, logging out", "error", err)
		if lerr := m.logoutLocked(ctx); lerr != nil {
			m.logger.Error("failed to clear session after refresh failure", "error", lerr)
		}
		return err
	}

	if err := m.persist(ctx, next); err != nil {
		m.logger.Error("failed to persist refreshed session", "error", err)
	}
	m.adoptLocked(next, immediate)
	m.logger.Debug("access token refreshed", "expires_at", next.ExpiresAt)
	return nil
}

// exchange обменивает refresh token сессии на новую сессию.
// Refresh token и пользователь сохраняются.
func (m *Manager) exchange(ctx context.Context, sess *Session) (*Session, error) {
	resp, err := m.backend.RefreshToken(ctx, sess.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	next, err := newSession(resp.Access, sess.RefreshToken, sess.User)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	return next, nil
}

// adoptLocked делает sess текущей сессией и планирует обновление
func (m *Manager) adoptLocked(sess *Session, immediate bool) {
	m.session = sess
	m.state = StateAuthenticated
	m.scheduleLocked(sess, immediate)
}

// scheduleLocked заводит одноразовый таймер обновления на
// exp - now - leadTime, отменяя предыдущий. Если срок уже наступил,
// обновление запускается сразу в фоне (при immediate), иначе таймер
// ставится на момент истечения токена.
func (m *Manager) scheduleLocked(sess *Session, immediate bool) {
	m.stopTimerLocked()
	if m.closed {
		return
	}

	gen := m.gen
	fireIn := sess.ExpiresAt.Sub(m.clock.Now()) - m.leadTime
	if fireIn > 0 {
		m.timer = m.clock.AfterFunc(fireIn, func() {
			m.backgroundRefresh(gen, true)
		})
		m.logger.Debug("token refresh scheduled", "in", fireIn)
		return
	}

	if !immediate {
		// Токен короче lead time: обновляем в момент истечения, а не сразу
		untilExpiry := sess.ExpiresAt.Sub(m.clock.Now())
		if untilExpiry <= 0 {
			m.logger.Debug("token already expired, waiting for next request", "expires_at", sess.ExpiresAt)
			return
		}
		m.timer = m.clock.AfterFunc(untilExpiry, func() {
			m.backgroundRefresh(gen, false)
		})
		m.logger.Debug("token refresh scheduled at expiry", "in", untilExpiry)
		return
	}
	go m.backgroundRefresh(gen, false)
}

// stopTimerLocked отменяет таймер и делает устаревшими уже сработавшие вызовы
func (m *Manager) stopTimerLocked() {
	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Manager) backgroundRefresh(gen uint64, immediate bool) {
	m.mu.Lock()
	if m.closed || gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	m.wg.Add(1)
	m.mu.Unlock()
	defer m.wg.Done()

	if err := m.refresh(m.ctx, immediate); err != nil {
		m.logger.Warn("scheduled token refresh failed", "error", err)
	}
}

func (m *Manager) persist(ctx context.Context, sess *Session) error {
	return m.store.SaveSession(ctx, &storage.SessionData{
		Tokens: storage.Tokens{Access: sess.AccessToken, Refresh: sess.RefreshToken},
		User:   sess.User,
	})
}

// discardStored очищает хранилище и переводит менеджер в StateLoggedOut
func (m *Manager) discardStored(ctx context.Context) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Параллельный Login уже записал новую сессию
	if m.session != nil {
		return m.state
	}
	if err := m.store.ClearSession(ctx); err != nil {
		m.logger.Error("failed to clear stored session", "error", err)
	}
	m.state = StateLoggedOut
	return m.state
}

func (m *Manager) markLoggedOut() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		m.state = StateLoggedOut
	}
	return m.state
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// State возвращает текущее состояние
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Current возвращает копию текущей сессии
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return Session{}, false
	}
	return *m.session, true
}

// AccessToken возвращает текущий access token
func (m *Manager) AccessToken() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return "", false
	}
	return m.session.AccessToken, true
}

// User возвращает пользователя текущей сессии
func (m *Manager) User() (api.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return api.User{}, false
	}
	return m.session.User, true
}

// Loading сообщает, что восстановление сессии еще не завершено
func (m *Manager) Loading() bool {
	select {
	case <-m.ready:
		return false
	default:
		return true
	}
}

// Ready возвращает канал, закрываемый по завершении Restore
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// Close останавливает таймер и ждет фоновые обновления. Хранилище не трогает.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.stopTimerLocked()
	m.cancel()
	m.mu.Unlock()

	m.wg.Wait()
}

// newSession собирает сессию и вычисляет срок действия из access token
func newSession(access, refresh string, user api.User) (*Session, error) {
	if refresh == "" {
		return nil, fmt.Errorf("%w: empty refresh token", ErrInvalidToken)
	}
	if user.Username == "" || !user.Role.Valid() {
		return nil, fmt.Errorf("%w: username=%q role=%q", ErrInvalidUser, user.Username, user.Role)
	}

	claims := token.Decode(access)
	if claims == nil {
		return nil, ErrInvalidToken
	}
	exp, ok := token.ExpiresAt(claims)
	if !ok {
		return nil, fmt.Errorf("%w: missing exp claim", ErrInvalidToken)
	}

	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user,
		ExpiresAt:    exp,
	}, nil
}

// newLoginError переводит ошибку сервера в сообщение для пользователя
func newLoginError(err error) *LoginError {
	var respErr *clientapi.ResponseError
	if !errors.As(err, &respErr) {
		return &LoginError{Message: clientapi.MessageNetwork, Err: err}
	}

	msg, ok := clientapi.ExtractMessage(respErr.Body)
	if !ok {
		switch respErr.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized:
			msg = clientapi.MessageInvalidCredentials
		default:
			msg = clientapi.StatusMessage(respErr.StatusCode)
		}
	}

	return &LoginError{Message: msg, Status: respErr.StatusCode, Err: err}
}
