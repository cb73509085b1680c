package solver

import (
	"context"
	"strings"

	"github.com/svetzal/mojentic-go/llm"
	"go.uber.org/zap"
)

const finalSummaryPrompt = "Summarize the final result, and only the final result, " +
	"without commenting on the process by which you achieved it."

// IterativeSolver attempts a goal by re-prompting a single persistent
// ChatSession across iterations (no fresh session per step, unlike
// RecursiveSolver), stopping on a plain case-insensitive "done"/"fail"
// substring match rather than a word-boundary regex. This asymmetry with
// RecursiveSolver is preserved intentionally rather than unified.
type IterativeSolver struct {
	chat          *llm.ChatSession
	maxIterations int
	logger        *zap.Logger
}

type IterativeSolverBuilder struct {
	broker        *llm.Broker
	tools         []llm.Tool
	maxIterations int
	systemPrompt  string
	logger        *zap.Logger
}

func NewIterativeSolverBuilder(broker *llm.Broker) *IterativeSolverBuilder {
	return &IterativeSolverBuilder{broker: broker, maxIterations: 3}
}

func (b *IterativeSolverBuilder) Tools(tools []llm.Tool) *IterativeSolverBuilder {
	b.tools = tools
	return b
}

func (b *IterativeSolverBuilder) MaxIterations(n int) *IterativeSolverBuilder {
	b.maxIterations = n
	return b
}

func (b *IterativeSolverBuilder) SystemPrompt(prompt string) *IterativeSolverBuilder {
	b.systemPrompt = prompt
	return b
}

func (b *IterativeSolverBuilder) WithLogger(logger *zap.Logger) *IterativeSolverBuilder {
	b.logger = logger
	return b
}

func (b *IterativeSolverBuilder) Build() *IterativeSolver {
	systemPrompt := b.systemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSolverSystemPrompt
	}
	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	chat := llm.NewChatSessionBuilder(b.broker).
		SystemPrompt(systemPrompt).
		Tools(b.tools).
		WithLogger(logger).
		Build()
	return &IterativeSolver{chat: chat, maxIterations: b.maxIterations, logger: logger}
}

func NewIterativeSolver(broker *llm.Broker) *IterativeSolver {
	return NewIterativeSolverBuilder(broker).Build()
}

// Solve repeats step() against the persistent session until the response
// contains "done" or "fail" (case-insensitive substring, no word boundary)
// or max iterations is exhausted, then asks the session to summarize the
// final result.
func (s *IterativeSolver) Solve(ctx context.Context, problem string) (string, error) {
	remaining := s.maxIterations

	for {
		result, err := s.step(ctx, problem)
		if err != nil {
			return "", err
		}

		lower := strings.ToLower(result)
		if strings.Contains(lower, "fail") {
			s.logger.Info("task failed", zap.String("user_request", problem), zap.String("result", result))
			break
		}
		if strings.Contains(lower, "done") {
			s.logger.Info("task completed", zap.String("user_request", problem), zap.String("result", result))
			break
		}

		remaining--
		if remaining == 0 {
			s.logger.Warn("max iterations reached",
				zap.Int("max_iterations", s.maxIterations),
				zap.String("user_request", problem),
				zap.String("result", result))
			break
		}
	}

	return s.chat.Send(ctx, finalSummaryPrompt)
}

func (s *IterativeSolver) step(ctx context.Context, problem string) (string, error) {
	return s.chat.Send(ctx, iterationPrompt(problem))
}
