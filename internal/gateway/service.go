package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/evanhutch/helpbot/internal/knowledge"
	"github.com/evanhutch/helpbot/internal/llm"
	"github.com/evanhutch/helpbot/internal/match"
	"github.com/evanhutch/helpbot/internal/memory"
	"github.com/evanhutch/helpbot/internal/observability"
)

const (
	KindMention = "mention"
	KindAmbient = "ambient"
	KindCommand = "command"
)

const ambientProTip = "\n\n_💡 Pro tip: You can also mention me with `@%s` for faster help!_"

// Knowledge is the read side of the knowledge base the service consumes.
type Knowledge interface {
	Entries() []knowledge.Entry
}

// Composer renders a match result (or its absence) into a user-facing reply.
type Composer interface {
	Compose(result *match.Result, userID string) string
}

type Config struct {
	BotName     string
	Threshold   float64
	HistorySize int

	LLMProvider    string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTimeout     time.Duration
}

type Service struct {
	cfg      Config
	kb       Knowledge
	strategy match.Strategy
	detector match.Detector
	composer Composer
	llm      llm.Client
	memory   memory.Store
	metrics  *observability.Metrics
	logger   *slog.Logger
}

type MessageInput struct {
	Kind        string
	Connector   string
	ExternalID  string
	FromUserID  string
	DisplayName string
	Text        string
	Command     string
}

type MessageOutput struct {
	Handled bool
	Reply   string
}

func New(cfg Config, kb Knowledge, strategy match.Strategy, detector match.Detector, composer Composer, llmClient llm.Client, store memory.Store, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 5
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:      cfg,
		kb:       kb,
		strategy: strategy,
		detector: detector,
		composer: composer,
		llm:      llmClient,
		memory:   store,
		metrics:  metrics,
		logger:   logger,
	}
}

func (s *Service) HandleMessage(ctx context.Context, input MessageInput) (MessageOutput, error) {
	text := strings.TrimSpace(input.Text)

	switch input.Kind {
	case KindCommand:
		s.countMessage(KindCommand)
		return s.handleCommand(ctx, input)
	case KindMention:
		if text == "" {
			return MessageOutput{}, nil
		}
		s.countMessage(KindMention)
		reply := s.answer(ctx, input.FromUserID, text)
		return MessageOutput{Handled: true, Reply: reply}, nil
	case KindAmbient:
		if text == "" || !s.detector.IsHelpRequest(text) {
			return MessageOutput{}, nil
		}
		s.countMessage(KindAmbient)
		reply := s.answer(ctx, input.FromUserID, text)
		if s.cfg.BotName != "" {
			reply += fmt.Sprintf(ambientProTip, s.cfg.BotName)
		}
		return MessageOutput{Handled: true, Reply: reply}, nil
	default:
		return MessageOutput{}, fmt.Errorf("unknown message kind %q", input.Kind)
	}
}

// answer runs the full lookup pipeline: knowledge-base match, generative
// fallback, composition, then history. History failures never block the
// reply.
func (s *Service) answer(ctx context.Context, userID, question string) string {
	result, found := s.strategy.FindBestMatch(question, s.kb.Entries(), s.cfg.Threshold)

	if found {
		s.countMatch("kb", result.Score)
	} else if generated, ok := s.generate(ctx, userID, question); ok {
		result = generated
		found = true
		s.countMatch("ai", result.Score)
	} else {
		s.countMatch("none", 0)
	}

	var reply string
	if found {
		reply = s.composer.Compose(&result, userID)
	} else {
		reply = s.composer.Compose(nil, userID)
	}

	if err := s.memory.Append(ctx, userID, question, reply); err != nil {
		s.logger.Error("failed to record conversation", "user_id", userID, "error", err)
		if s.metrics != nil {
			s.metrics.MemoryFailures.Inc()
		}
	}
	return reply
}

func (s *Service) generate(ctx context.Context, userID, question string) (match.Result, bool) {
	if s.llm == nil {
		return match.Result{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.LLMTimeout)
	defer cancel()

	answer, err := s.llm.Complete(ctx, llm.Request{
		System:      "You are a helpful workplace assistant. Keep answers brief, professional, and helpful. If you're uncertain, direct users to contact support.",
		Prompt:      s.buildPrompt(ctx, userID, question),
		MaxTokens:   s.cfg.LLMMaxTokens,
		Temperature: s.cfg.LLMTemperature,
	})
	if err != nil {
		s.logger.Warn("generative fallback failed", "provider", s.cfg.LLMProvider, "error", err)
		if s.metrics != nil {
			s.metrics.ProviderErrors.WithLabelValues(s.cfg.LLMProvider).Inc()
		}
		return match.Result{}, false
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return match.Result{}, false
	}
	return match.Result{Answer: answer, Score: 0.5, Topic: match.TopicAIGenerated}, true
}

// buildPrompt folds the user's recent exchanges into the request so the
// model can resolve references like "that" or "it".
func (s *Service) buildPrompt(ctx context.Context, userID, question string) string {
	recent := "none"
	if records, err := s.memory.History(ctx, userID); err == nil && len(records) > 0 {
		if len(records) > 3 {
			records = records[len(records)-3:]
		}
		lines := make([]string, 0, len(records))
		for _, r := range records {
			lines = append(lines, fmt.Sprintf("Q: %s", r.Question))
		}
		recent = strings.Join(lines, "\n")
	}

	return fmt.Sprintf("You are a helpful workplace assistant. Answer this question based on the context provided. If you're not sure, say so.\n\nContext: %s\nQuestion: %s\n\nProvide a brief, helpful answer:", recent, question)
}

func (s *Service) countMessage(kind string) {
	if s.metrics != nil {
		s.metrics.MessagesHandled.WithLabelValues(kind).Inc()
	}
}

func (s *Service) countMatch(outcome string, score float64) {
	if s.metrics == nil {
		return
	}
	s.metrics.Matches.WithLabelValues(s.strategy.Name(), outcome).Inc()
	if outcome == "kb" {
		s.metrics.MatchScore.Observe(score)
	}
}
