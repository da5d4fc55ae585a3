package service

import (
	"context"
	"log"
	"time"

	"coinsage/internal/domain"
	"coinsage/internal/intent"
	"coinsage/internal/llm"
	"coinsage/internal/retry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const chatSystemPrompt = "You are a knowledgeable cryptocurrency assistant focused on Bitcoin. " +
	"Answer questions about markets, technology and news concisely and factually. " +
	"You do not give personalised financial advice."

const chatUnavailableReply = "The assistant is temporarily unavailable. Please try again later."

const defaultHistoryLimit = 20

// ConversationStore persists chat turns. A nil store means history is
// disabled and chat runs stateless.
type ConversationStore interface {
	AppendMessage(ctx context.Context, sessionID, role, content string) error
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.ConversationMessage, error)
}

// ChatService answers POST /api/chat: Bitcoin news questions get a scored
// news digest, everything else goes to the completion model with replayed
// conversation history. Failures at any stage degrade to a reply, never to
// an error.
type ChatService struct {
	news         *NewsService
	scorer       SentimentScorer
	llm          llm.Client
	history      ConversationStore
	historyLimit int
	synth        *Synthesizer
	gateway      *retry.Gateway
	policy       retry.Policy
	tracer       trace.Tracer
}

func NewChatService(tracer trace.Tracer, news *NewsService, scorer SentimentScorer, client llm.Client, history ConversationStore, historyLimit int, synth *Synthesizer, gateway *retry.Gateway) *ChatService {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &ChatService{
		news:         news,
		scorer:       scorer,
		llm:          client,
		history:      history,
		historyLimit: historyLimit,
		synth:        synth,
		gateway:      gateway,
		policy:       retry.Policy{MaxAttempts: 3, BaseDelay: time.Second},
		tracer:       tracer,
	}
}

// Reply produces the chat response for a message. sessionID scopes the
// conversation history; an empty sessionID disables persistence for the
// request.
func (s *ChatService) Reply(ctx context.Context, sessionID, message string) string {
	ctx, span := s.tracer.Start(ctx, "chat.reply")
	defer span.End()

	if intent.Classify(message).IsNewsQuery {
		span.SetAttributes(attribute.String("intent", string(domain.IntentNewsQuery)))
		return s.newsReply(ctx)
	}
	span.SetAttributes(attribute.String("intent", string(domain.IntentGeneralChat)))
	return s.generalReply(ctx, sessionID, message)
}

func (s *ChatService) newsReply(ctx context.Context) string {
	items, err := s.news.TopNews(ctx, "BTC", "news", 0)
	if err != nil {
		log.Printf("chat news fetch failed: %v", err)
		return s.synth.NewsReply(nil, domain.DefaultSentimentNews)
	}

	score := domain.DefaultSentimentNews
	if s.scorer != nil {
		score = s.scorer.Score(ctx, items, domain.DefaultSentimentNews)
	}
	return s.synth.NewsReply(items, score)
}

func (s *ChatService) generalReply(ctx context.Context, sessionID, message string) string {
	if s.llm == nil {
		return chatUnavailableReply
	}

	history := s.loadHistory(ctx, sessionID)

	reply, err := retry.Do(ctx, s.gateway, "chat-complete", s.policy,
		func(ctx context.Context) (string, error) {
			return s.llm.Complete(ctx, llm.CompletionRequest{
				System:      chatSystemPrompt,
				History:     history,
				User:        message,
				Temperature: 0.7,
				MaxTokens:   1000,
			})
		}, nil)
	if err != nil {
		log.Printf("chat completion exhausted: %v", err)
		return chatUnavailableReply
	}

	s.saveTurn(ctx, sessionID, message, reply)
	return reply
}

func (s *ChatService) loadHistory(ctx context.Context, sessionID string) []domain.ConversationMessage {
	if s.history == nil || sessionID == "" {
		return nil
	}
	history, err := s.history.RecentMessages(ctx, sessionID, s.historyLimit)
	if err != nil {
		log.Printf("conversation history load failed, continuing stateless: %v", err)
		return nil
	}
	return history
}

func (s *ChatService) saveTurn(ctx context.Context, sessionID, message, reply string) {
	if s.history == nil || sessionID == "" {
		return
	}
	if err := s.history.AppendMessage(ctx, sessionID, "user", message); err != nil {
		log.Printf("conversation history append failed: %v", err)
		return
	}
	if err := s.history.AppendMessage(ctx, sessionID, "assistant", reply); err != nil {
		log.Printf("conversation history append failed: %v", err)
	}
}
