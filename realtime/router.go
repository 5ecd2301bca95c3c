package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/michat/michat-api/databases"
	"github.com/michat/michat-api/models"
)

// Inbound frame types
const (
	FrameTypePublic  = "public_message"
	FrameTypePrivate = "private_message"
	FrameTypeError   = "error"
)

// Frame is a client→server websocket message
type Frame struct {
	Type        string `json:"type"`
	Content     string `json:"content"`
	RecipientID *int64 `json:"recipient_id"`
}

// ErrorFrame is a server→client error report. The connection stays open for
// every code except forbidden/unauthorized, which the gateway escalates to a
// close.
type ErrorFrame struct {
	Type   string `json:"type"`
	Code   Code   `json:"code"`
	Detail string `json:"detail"`
}

// NewErrorFrame converts a routing error into its wire form
func NewErrorFrame(err error) ErrorFrame {
	frame := ErrorFrame{Type: FrameTypeError, Code: CodeOf(err), Detail: "internal error"}
	var rerr *Error
	if errors.As(err, &rerr) {
		frame.Detail = rerr.Detail
	}
	return frame
}

// UserLoader resolves users for admission and target checks
type UserLoader interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// MessageAppender persists messages and assigns their ids
type MessageAppender interface {
	AppendGlobal(ctx context.Context, author *models.User, content string) (*models.Message, error)
	AppendPrivate(ctx context.Context, author *models.User, recipient *models.User, content string) (*models.Message, error)
}

// Router enforces admission control and delivery routing per send: reload
// sender (so ban/mute apply on the very next message), validate, persist,
// then fan out to the live connections that should see the message.
type Router struct {
	users    UserLoader
	messages MessageAppender
	registry *Registry
	now      func() time.Time
}

// NewRouter constructs a Router over the given stores and registry
func NewRouter(users UserLoader, messages MessageAppender, registry *Registry) *Router {
	return &Router{
		users:    users,
		messages: messages,
		registry: registry,
		now:      time.Now,
	}
}

// Registry exposes the session registry the router fans out through
func (rt *Router) Registry() *Registry {
	return rt.registry
}

// HandleFrame parses and routes one inbound websocket frame from senderID.
// The returned error, if any, carries the code for the error frame; Fatal
// errors mean the gateway must drop the connection.
func (rt *Router) HandleFrame(ctx context.Context, senderID int64, raw []byte) error {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return NewError(CodeInvalidPayload, "malformed frame")
	}

	switch frame.Type {
	case FrameTypePublic:
		_, err := rt.SendPublic(ctx, senderID, frame.Content)
		return err
	case FrameTypePrivate:
		if frame.RecipientID == nil {
			return NewError(CodeInvalidPayload, "private_message requires recipient_id")
		}
		_, err := rt.SendPrivate(ctx, senderID, *frame.RecipientID, frame.Content)
		return err
	default:
		return NewError(CodeInvalidPayload, "unknown message type")
	}
}

// SendPublic routes a global message: admission, persist, broadcast to every
// live connection (the sender's own connections included, echo comes from
// the broadcast).
func (rt *Router) SendPublic(ctx context.Context, senderID int64, content string) (*models.Message, error) {
	sender, err := rt.admit(ctx, senderID)
	if err != nil {
		return nil, err
	}

	msg, err := rt.messages.AppendGlobal(ctx, sender, content)
	if err != nil {
		return nil, fromStore(err)
	}

	rt.fanOut(msg, rt.registry.AllConnections())
	return msg, nil
}

// SendPrivate routes a 1:1 message to every live connection of sender and
// recipient only
func (rt *Router) SendPrivate(ctx context.Context, senderID, recipientID int64, content string) (*models.Message, error) {
	sender, err := rt.admit(ctx, senderID)
	if err != nil {
		return nil, err
	}

	if recipientID == senderID {
		return nil, NewError(CodeInvalidTarget, "cannot send a private message to yourself")
	}

	recipient, err := rt.users.FindByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, databases.ErrNotFound) {
			return nil, NewError(CodeInvalidTarget, "unknown recipient")
		}
		return nil, NewError(CodeUnavailable, "user store unavailable")
	}
	if recipient.Details.IsDeleted {
		return nil, NewError(CodeInvalidTarget, "unknown recipient")
	}

	msg, err := rt.messages.AppendPrivate(ctx, sender, recipient, content)
	if err != nil {
		return nil, fromStore(err)
	}

	targets := append(rt.registry.ConnectionsFor(senderID), rt.registry.ConnectionsFor(recipientID)...)
	rt.fanOut(msg, targets)
	return msg, nil
}

// admit reloads the sender and applies the moderation gates. Reloading per
// send is what makes a mid-session ban or mute bite on the next message.
func (rt *Router) admit(ctx context.Context, senderID int64) (*models.User, error) {
	sender, err := rt.users.FindByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, databases.ErrNotFound) {
			return nil, NewError(CodeUnauthorized, "unknown user")
		}
		return nil, NewError(CodeUnavailable, "user store unavailable")
	}
	if sender.Details.IsDeleted {
		return nil, NewError(CodeForbidden, "account deleted")
	}
	if sender.Details.IsBanned {
		return nil, NewError(CodeForbidden, "account banned")
	}
	if sender.Muted(rt.now()) {
		return nil, NewError(CodeMuted, "you are muted")
	}
	return sender, nil
}

// fanOut serializes the message once and enqueues it on every target
// connection. Enqueues are non-blocking; a dead or saturated connection only
// loses its own delivery.
func (rt *Router) fanOut(msg *models.Message, targets []*Connection) {
	payload, err := json.Marshal(msg.Out())
	if err != nil {
		zap.S().With(err).Error("failed to marshal outbound message")
		return
	}
	for _, conn := range targets {
		if err := conn.Send(payload); err != nil {
			zap.S().Debugw("dropped delivery to closed connection",
				"user_id", conn.UserID,
				"message_id", msg.ID,
			)
		}
	}
}
