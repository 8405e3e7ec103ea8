// Package handler exposes the session manager to the webshop UI over a
// websocket. Each connection gets its own Manager bound to the browser's
// install id.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"webshop/internal/identity"
	"webshop/internal/platform/middleware"
	"webshop/internal/platform/privacy"
	"webshop/internal/session/device"
	"webshop/internal/session/models"
	"webshop/internal/session/service"
	"webshop/pkg/domain"
	"webshop/pkg/platform/httputil"
)

// Session is the per-connection session manager.
type Session interface {
	Start(ctx context.Context) error
	Stop()
	SignOut(ctx context.Context) error
	OnboardingDone(ctx context.Context) error
	OnboardingRefreshAuth(ctx context.Context) error
	LoginWithEmail(ctx context.Context, email, password string)
	RegisterEmail(ctx context.Context, email, password string)
	ResetPassword(ctx context.Context, email string)
	ResendVerification(ctx context.Context)
	StartPhoneLogin(ctx context.Context, phone, recaptchaToken string)
	ConfirmPhoneLogin(ctx context.Context, code string)
}

// SessionFactory builds the Session for a new connection.
type SessionFactory interface {
	NewSession(installID domain.InstallID, info device.Info, notifier service.Notifier) Session
}

// SessionFactoryFunc adapts a function to SessionFactory.
type SessionFactoryFunc func(installID domain.InstallID, info device.Info, notifier service.Notifier) Session

func (f SessionFactoryFunc) NewSession(installID domain.InstallID, info device.Info, notifier service.Notifier) Session {
	return f(installID, info, notifier)
}

const (
	defaultWriteTimeout   = 10 * time.Second
	defaultPongWait       = 60 * time.Second
	defaultOutboundBuffer = 64
	maxMessageBytes       = 16 << 10
)

type Handler struct {
	sessions       SessionFactory
	logger         *slog.Logger
	upgrader       websocket.Upgrader
	allowedOrigins map[string]struct{}
	writeTimeout   time.Duration
	pongWait       time.Duration
	outboundBuffer int
}

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithAllowedOrigins restricts the Origin header on upgrades. An empty list
// accepts any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(h *Handler) {
		for _, o := range origins {
			if o != "" {
				h.allowedOrigins[o] = struct{}{}
			}
		}
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.writeTimeout = d
		}
	}
}

// WithPongWait sets how long a silent peer is tolerated. Pings go out at
// 9/10 of it.
func WithPongWait(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.pongWait = d
		}
	}
}

func WithOutboundBuffer(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.outboundBuffer = n
		}
	}
}

func New(sessions SessionFactory, opts ...Option) *Handler {
	h := &Handler{
		sessions:       sessions,
		logger:         slog.Default(),
		allowedOrigins: make(map[string]struct{}),
		writeTimeout:   defaultWriteTimeout,
		pongWait:       defaultPongWait,
		outboundBuffer: defaultOutboundBuffer,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/ws", h.HandleWebsocket)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.allowedOrigins) == 0 {
		return true
	}
	_, ok := h.allowedOrigins[r.Header.Get("Origin")]
	return ok
}

// HandleWebsocket upgrades GET /ws?installId=<uuid> and runs the session
// until the browser goes away.
func (h *Handler) HandleWebsocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	installID, err := installIDFrom(r)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected websocket upgrade",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.WarnContext(ctx, "failed to upgrade websocket",
			"error", err,
			"request_id", requestID,
		)
		return
	}

	logger := h.logger.With(
		"install_id", installID.String(),
		"request_id", requestID,
		"client_ip", privacy.AnonymizeIP(middleware.GetClientIP(ctx)),
	)
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn := newConnection(ws, logger, h.writeTimeout, h.pongWait, h.outboundBuffer)
	go conn.writeLoop()
	go func() {
		// Server shutdown cancels the base context; closing unblocks the reader.
		select {
		case <-connCtx.Done():
			conn.close()
		case <-conn.done:
		}
	}()

	conn.Notify(connCtx, models.Notification{
		Type:    models.NotifyHello,
		Payload: models.Hello{InstallID: installID.String()},
	})

	info := device.Describe(r.UserAgent())
	sess := h.sessions.NewSession(installID, info, conn)
	if err := sess.Start(connCtx); err != nil {
		// The manager stays usable; sign-in actions still work.
		logger.ErrorContext(connCtx, "failed to start session", "error", err)
	}
	logger.InfoContext(connCtx, "websocket connected", "device", info.Name, "device_kind", info.Kind())

	h.readLoop(connCtx, conn, sess)

	sess.Stop()
	conn.close()
	<-conn.stopped
	logger.InfoContext(ctx, "websocket disconnected")
}

func (h *Handler) readLoop(ctx context.Context, conn *connection, sess Session) {
	ws := conn.ws
	ws.SetReadLimit(maxMessageBytes)
	_ = ws.SetReadDeadline(time.Now().Add(h.pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	for {
		var msg Inbound
		if err := ws.ReadJSON(&msg); err != nil {
			var closeErr *websocket.CloseError
			switch {
			case errors.As(err, &closeErr):
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					conn.logger.DebugContext(ctx, "websocket closed", "error", err)
				}
			case conn.isClosed():
			default:
				conn.logger.DebugContext(ctx, "websocket read failed", "error", err)
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(h.pongWait))
		h.dispatch(ctx, conn, sess, msg)
	}
}

// dispatch runs one inbound message. Messages are handled in arrival order.
func (h *Handler) dispatch(ctx context.Context, conn *connection, sess Session, msg Inbound) {
	switch msg.Type {
	case MsgPing:
		conn.Notify(ctx, models.Notification{Type: models.NotifyPong})
	case MsgSignOut:
		if err := sess.SignOut(ctx); err != nil {
			conn.logger.WarnContext(ctx, "sign-out failed", "error", err)
		}
	case MsgOnboardingDone:
		if err := sess.OnboardingDone(ctx); err != nil {
			conn.logger.WarnContext(ctx, "onboarding completion ignored", "error", err)
		}
	case MsgOnboardingRefreshAuth:
		if err := sess.OnboardingRefreshAuth(ctx); err != nil {
			conn.logger.WarnContext(ctx, "onboarding refresh ignored", "error", err)
		}
	case MsgResendVerification:
		sess.ResendVerification(ctx)
	case MsgPhoneLogin:
		req, err := httputil.DecodeAndPrepare[PhoneLoginRequest](msg.Payload)
		if err != nil {
			h.rejected(ctx, conn, msg.Type, models.NotifyPhoneError, identity.CodeInvalidPhone, identity.MessageInvalidPhone, err)
			return
		}
		sess.StartPhoneLogin(ctx, req.Phone, req.RecaptchaToken)
	case MsgPhoneConfirm:
		req, err := httputil.DecodeAndPrepare[PhoneConfirmRequest](msg.Payload)
		if err != nil {
			h.rejected(ctx, conn, msg.Type, models.NotifyPhoneError, identity.CodeInvalidCode, identity.MessageInvalidCode, err)
			return
		}
		sess.ConfirmPhoneLogin(ctx, req.Code)
	case MsgLoginEmail, MsgRegisterEmail:
		req, err := httputil.DecodeAndPrepare[EmailPasswordRequest](msg.Payload)
		if err != nil {
			h.rejected(ctx, conn, msg.Type, models.NotifyEmailError, identity.CodeInvalidEmail, identity.MessageInvalidEmail, err)
			return
		}
		if msg.Type == MsgLoginEmail {
			sess.LoginWithEmail(ctx, req.Email, req.Password)
		} else {
			sess.RegisterEmail(ctx, req.Email, req.Password)
		}
	case MsgResetPassword:
		req, err := httputil.DecodeAndPrepare[ResetPasswordRequest](msg.Payload)
		if err != nil {
			h.rejected(ctx, conn, msg.Type, models.NotifyEmailError, identity.CodeInvalidEmail, identity.MessageInvalidEmail, err)
			return
		}
		sess.ResetPassword(ctx, req.Email)
	default:
		conn.logger.DebugContext(ctx, "ignoring unknown message", "type", msg.Type)
	}
}

func (h *Handler) rejected(ctx context.Context, conn *connection, msgType string, t models.NotificationType, code, message string, err error) {
	conn.logger.InfoContext(ctx, "rejected inbound message",
		"type", msgType,
		"error", err,
	)
	conn.Notify(ctx, models.Notification{
		Type:    t,
		Payload: models.ErrorInfo{Code: code, Message: message},
	})
}

// installIDFrom reads the installId query parameter. Browsers without one
// get a fresh id, which the hello message hands back.
func installIDFrom(r *http.Request) (domain.InstallID, error) {
	raw := r.URL.Query().Get("installId")
	if raw == "" {
		return domain.NewInstallID(), nil
	}
	return domain.ParseInstallID(raw)
}
