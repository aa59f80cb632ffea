package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Mihla-Tembe/disruptorr/internal/ai"
	"github.com/Mihla-Tembe/disruptorr/internal/common"
	"go.uber.org/zap"
)

const (
	FallbackNoReply = "Sorry, no reply received."
	FallbackError   = "Error contacting the assistant."

	defaultReplyProvider  = "relay"
	defaultHelperProvider = "helper"
)

var ErrAsyncDisabled = errors.New("chat: async replies are not configured")

// JobPublisher enqueues reply jobs for the worker.
type JobPublisher interface {
	Publish(ctx context.Context, v any) error
}

type Options struct {
	ReplyProvider  string
	ReplyModel     string
	HelperProvider string
	// Publisher enables SendAsync when set.
	Publisher JobPublisher
}

type Service struct {
	stores   *Stores
	registry *ai.Registry
	opts     Options
	log      *zap.Logger
}

func NewService(stores *Stores, registry *ai.Registry, log *zap.Logger, opts Options) *Service {
	if opts.ReplyProvider == "" {
		opts.ReplyProvider = defaultReplyProvider
	}
	if opts.HelperProvider == "" {
		opts.HelperProvider = defaultHelperProvider
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{stores: stores, registry: registry, opts: opts, log: log}
}

func (s *Service) Threads(namespace string) *ThreadStore { return s.stores.Threads(namespace) }

func (s *Service) Helper(namespace string) *HelperStore { return s.stores.Helper(namespace) }

func (s *Service) AsyncEnabled() bool { return s.opts.Publisher != nil }

// FetchReply asks the configured reply provider for an answer to text. It
// never fails: an absent reply and any other failure resolve to fixed
// fallback strings.
func (s *Service) FetchReply(ctx context.Context, text string) string {
	return s.reply(ctx, s.opts.ReplyProvider, s.opts.ReplyModel, text)
}

func (s *Service) reply(ctx context.Context, provider, model, text string) string {
	p, err := s.registry.Get(ctx, provider, model)
	if err != nil {
		s.log.Error("reply provider unavailable", zap.String("provider", provider), zap.Error(err))
		return FallbackError
	}

	reply, err := p.Chat(ctx, []ai.Message{{Role: string(RoleUser), Content: text}})
	switch {
	case err == nil && strings.TrimSpace(reply) != "":
		return reply
	case err == nil, ai.IsNoReply(err):
		s.log.Warn("reply provider returned no reply", zap.String("provider", provider))
		return FallbackNoReply
	default:
		s.log.Warn("reply fetch failed", zap.String("provider", provider), zap.Error(err))
		return FallbackError
	}
}

type SendResult struct {
	User      Message `json:"user"`
	Assistant Message `json:"assistant"`
	Thread    Thread  `json:"thread"`
}

// Send appends the user's message, waits for a reply and appends it as the
// assistant's message. The user message is persisted before the reply fetch
// starts.
func (s *Service) Send(ctx context.Context, namespace, threadID, content string) (SendResult, error) {
	ts := s.stores.Threads(namespace)

	userMsg, _, err := ts.Append(ctx, threadID, NewMessage{Role: RoleUser, Content: content})
	if err != nil {
		return SendResult{}, err
	}

	reply := s.FetchReply(ctx, content)

	assistantMsg, thread, err := ts.Append(ctx, threadID, NewMessage{Role: RoleAssistant, Content: reply})
	if err != nil {
		return SendResult{}, fmt.Errorf("store reply: %w", err)
	}
	return SendResult{User: userMsg, Assistant: assistantMsg, Thread: thread}, nil
}

// SendAsync appends the user's message and queues the reply for the worker.
func (s *Service) SendAsync(ctx context.Context, namespace, threadID, content string) (Message, JobMessage, error) {
	if s.opts.Publisher == nil {
		return Message{}, JobMessage{}, ErrAsyncDisabled
	}

	userMsg, _, err := s.stores.Threads(namespace).Append(ctx, threadID, NewMessage{Role: RoleUser, Content: content})
	if err != nil {
		return Message{}, JobMessage{}, err
	}

	job := JobMessage{
		JobID:     common.NewULID(),
		Namespace: namespace,
		ThreadID:  threadID,
		Query:     content,
	}
	if err := s.opts.Publisher.Publish(ctx, job); err != nil {
		return userMsg, JobMessage{}, fmt.Errorf("publish reply job: %w", err)
	}
	return userMsg, job, nil
}

// CompleteReply fetches the reply for a queued job and appends it.
func (s *Service) CompleteReply(ctx context.Context, job JobMessage) (Message, error) {
	reply := s.FetchReply(ctx, job.Query)
	msg, _, err := s.stores.Threads(job.Namespace).Append(ctx, job.ThreadID, NewMessage{Role: RoleAssistant, Content: reply})
	if err != nil {
		return Message{}, err
	}
	return msg, nil
}

// AskHelper records a help widget question together with its canned answer.
func (s *Service) AskHelper(ctx context.Context, namespace, content string) (HelperMessage, HelperMessage, error) {
	hs := s.stores.Helper(namespace)
	q, err := hs.Append(ctx, RoleUser, content)
	if err != nil {
		return HelperMessage{}, HelperMessage{}, err
	}
	reply := s.reply(ctx, s.opts.HelperProvider, "", content)
	a, err := hs.Append(ctx, RoleAssistant, reply)
	if err != nil {
		return HelperMessage{}, HelperMessage{}, err
	}
	return q, a, nil
}
