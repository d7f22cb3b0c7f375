package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	clientapi "github.com/iudanet/atmtrack/internal/client/api"
)

// RequestIDHeader заголовок с идентификатором логического запроса.
// Повторная отправка после обновления токена использует тот же идентификатор.
const RequestIDHeader = "X-Request-ID"

//go:generate moq -out session_mock.go . Session

// Session источник access token. Реализуется *session.Manager.
type Session interface {
	AccessToken() (string, bool)
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
}

// Transport отправляет HTTP запрос. Реализуется *api.Client.
type Transport interface {
	Send(ctx context.Context, req *clientapi.Request) (*clientapi.Response, error)
}

// Gateway выполняет аутентифицированные запросы: подставляет Bearer токен,
// при 401 один раз обновляет токен и повторяет запрос, нормализует ошибки.
type Gateway struct {
	transport Transport
	session   Session
	logger    *slog.Logger
}

// New создает шлюз запросов
func New(transport Transport, session Session, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		transport: transport,
		session:   session,
		logger:    logger,
	}
}

// Get выполняет GET запрос
func (g *Gateway) Get(ctx context.Context, path string, query url.Values, result any) error {
	return g.Do(ctx, http.MethodGet, path, query, nil, result)
}

// Post выполняет POST запрос
func (g *Gateway) Post(ctx context.Context, path string, body, result any) error {
	return g.Do(ctx, http.MethodPost, path, nil, body, result)
}

// Patch выполняет PATCH запрос
func (g *Gateway) Patch(ctx context.Context, path string, body, result any) error {
	return g.Do(ctx, http.MethodPatch, path, nil, body, result)
}

// Delete выполняет DELETE запрос
func (g *Gateway) Delete(ctx context.Context, path string) error {
	return g.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Do выполняет запрос. body сериализуется в JSON, успешный ответ
// декодируется в result (если он не nil). Любая ошибка ответа
// возвращается как *Error.
func (g *Gateway) Do(ctx context.Context, method, path string, query url.Values, body, result any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = data
	}

	requestID := uuid.NewString()
	logger := g.logger.With("request_id", requestID, "method", method, "path", path)

	// Флаг повтора принадлежит только этому логическому запросу
	retried := false
	for {
		resp, err := g.send(ctx, method, path, query, payload, requestID)
		if err != nil {
			logger.Warn("request failed", "error", err)
			return networkError(err)
		}
		logger.Debug("response received", "status", resp.StatusCode, "retried", retried)

		if resp.StatusCode == http.StatusUnauthorized {
			if retried {
				logger.Warn("unauthorized after token refresh, logging out")
				return g.expire(ctx, resp, nil)
			}
			retried = true

			if err := g.session.Refresh(ctx); err != nil {
				// Запрос отменен вызывающим: сервер токен не отклонял
				if ctx.Err() != nil {
					logger.Info("token refresh canceled", "error", err)
					return networkError(err)
				}
				logger.Warn("token refresh failed, logging out", "error", err)
				return g.expire(ctx, resp, err)
			}
			continue
		}

		if !resp.OK() {
			return apiError(resp)
		}

		if result != nil && len(resp.Body) > 0 {
			if err := json.Unmarshal(resp.Body, result); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
		}
		return nil
	}
}

func (g *Gateway) send(ctx context.Context, method, path string, query url.Values, payload []byte, requestID string) (*clientapi.Response, error) {
	header := http.Header{}
	header.Set(RequestIDHeader, requestID)
	if token, ok := g.session.AccessToken(); ok {
		header.Set("Authorization", "Bearer "+token)
	}

	return g.transport.Send(ctx, &clientapi.Request{
		Method: method,
		Path:   path,
		Query:  query,
		Header: header,
		Body:   payload,
	})
}

// expire завершает сессию и возвращает ошибку KindAuth
func (g *Gateway) expire(ctx context.Context, resp *clientapi.Response, cause error) error {
	if err := g.session.Logout(ctx); err != nil {
		g.logger.Error("failed to logout after auth failure", "error", err)
	}

	if cause == nil {
		cause = &clientapi.ResponseError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return &Error{
		Kind:    KindAuth,
		Status:  http.StatusUnauthorized,
		Message: clientapi.MessageSessionExpired,
		Data:    jsonBody(resp.Body),
		Err:     cause,
	}
}

func networkError(err error) error {
	msg := clientapi.MessageNetwork
	if errors.Is(err, context.DeadlineExceeded) {
		msg = clientapi.MessageTimeout
	}
	return &Error{Kind: KindNetwork, Message: msg, Err: err}
}

func apiError(resp *clientapi.Response) error {
	respErr := &clientapi.ResponseError{StatusCode: resp.StatusCode, Body: resp.Body}
	return &Error{
		Kind:    KindAPI,
		Status:  resp.StatusCode,
		Message: respErr.Message(),
		Data:    jsonBody(resp.Body),
		Err:     respErr,
	}
}

func jsonBody(body []byte) json.RawMessage {
	if len(body) == 0 || !json.Valid(body) {
		return nil
	}
	return json.RawMessage(body)
}
