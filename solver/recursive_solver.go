package solver

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/svetzal/mojentic-go/llm"
	"github.com/svetzal/mojentic-go/pkg/safego"
	"go.uber.org/zap"
)

var (
	donePattern = regexp.MustCompile(`\bdone\b`)
	failPattern = regexp.MustCompile(`\bfail\b`)
)

const solveTimeout = 300 * time.Second

const defaultSolverSystemPrompt = "You are a problem-solving assistant that can solve complex problems step by step. " +
	"You analyze problems, break them down into smaller parts, and solve them systematically. " +
	"If you cannot solve a problem completely in one step, you make progress and identify what to do next."

func iterationPrompt(goal string) string {
	return fmt.Sprintf(
		"Given the user request:\n%s\n\n"+
			"Use the tools at your disposal to act on their request.\n"+
			"You may wish to create a step-by-step plan for more complicated requests.\n\n"+
			"If you cannot provide an answer, say only \"FAIL\".\n"+
			"If you have the answer, say only \"DONE\".", goal)
}

// RecursiveSolver attempts a goal by re-prompting a fresh ChatSession each
// iteration, emitting lifecycle events as it goes, until the response
// contains a word-boundary "done"/"fail" token, max iterations is reached,
// or the 300-second overall timeout expires.
type RecursiveSolver struct {
	broker        *llm.Broker
	tools         []llm.Tool
	maxIterations int
	systemPrompt  string
	logger        *zap.Logger

	Emitter *EventEmitter
}

type RecursiveSolverBuilder struct {
	broker        *llm.Broker
	tools         []llm.Tool
	maxIterations int
	systemPrompt  string
	logger        *zap.Logger
}

func NewRecursiveSolverBuilder(broker *llm.Broker) *RecursiveSolverBuilder {
	return &RecursiveSolverBuilder{broker: broker, maxIterations: 5}
}

func (b *RecursiveSolverBuilder) Tools(tools []llm.Tool) *RecursiveSolverBuilder {
	b.tools = tools
	return b
}

func (b *RecursiveSolverBuilder) MaxIterations(n int) *RecursiveSolverBuilder {
	b.maxIterations = n
	return b
}

func (b *RecursiveSolverBuilder) SystemPrompt(prompt string) *RecursiveSolverBuilder {
	b.systemPrompt = prompt
	return b
}

func (b *RecursiveSolverBuilder) WithLogger(logger *zap.Logger) *RecursiveSolverBuilder {
	b.logger = logger
	return b
}

func (b *RecursiveSolverBuilder) Build() *RecursiveSolver {
	systemPrompt := b.systemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSolverSystemPrompt
	}
	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecursiveSolver{
		broker:        b.broker,
		tools:         b.tools,
		maxIterations: b.maxIterations,
		systemPrompt:  systemPrompt,
		logger:        logger,
		Emitter:       NewEventEmitter(logger),
	}
}

func NewRecursiveSolver(broker *llm.Broker) *RecursiveSolver {
	return NewRecursiveSolverBuilder(broker).Build()
}

// Solve runs the event-driven problem-solving process, returning the
// eventual solution text or a timeout message after 300 seconds.
func (s *RecursiveSolver) Solve(ctx context.Context, problem string) (string, error) {
	solutionCh := make(chan string, 1)

	s.Emitter.Subscribe(func(evt Event) {
		switch evt.(type) {
		case GoalAchievedEvent, GoalFailedEvent, TimeoutEvent:
			if sol := evt.State().Solution; sol != nil {
				select {
				case solutionCh <- *sol:
				default:
				}
			}
		}
	})

	state := NewGoalState(problem, s.maxIterations)
	s.Emitter.Emit(GoalSubmittedEvent{state: state})

	safego.Go(s.logger, "recursive-solver-run", func() {
		s.run(ctx, state)
	})

	timer := time.NewTimer(solveTimeout)
	defer timer.Stop()

	select {
	case solution := <-solutionCh:
		return solution, nil
	case <-timer.C:
		return s.emitTimeout(problem), nil
	case <-ctx.Done():
		return s.emitTimeout(problem), nil
	}
}

func (s *RecursiveSolver) emitTimeout(problem string) string {
	message := "Timeout: Could not solve the problem within 300 seconds."
	state := NewGoalState(problem, s.maxIterations)
	state.Solution = &message
	state.IsComplete = true
	s.Emitter.Emit(TimeoutEvent{state: state})
	return message
}

// run drives the iteration loop. Each iteration uses a fresh ChatSession,
// mirroring the source crate's "recurse with a new session" behavior.
func (s *RecursiveSolver) run(ctx context.Context, state GoalState) {
	for {
		state.Iteration++

		response, err := s.generateResponse(ctx, iterationPrompt(state.Goal))
		if err != nil {
			s.logger.Warn("error generating response", zap.Error(err))
			msg := fmt.Sprintf("Error: %s", err)
			state.Solution = &msg
			state.IsComplete = true
			s.Emitter.Emit(GoalFailedEvent{state: state})
			return
		}

		lower := strings.ToLower(response)

		if failPattern.MatchString(lower) {
			msg := fmt.Sprintf("Failed to solve after %d iterations:\n%s", state.Iteration, response)
			state.Solution = &msg
			state.IsComplete = true
			s.Emitter.Emit(GoalFailedEvent{state: state})
			return
		}

		if donePattern.MatchString(lower) {
			state.Solution = &response
			state.IsComplete = true
			s.Emitter.Emit(GoalAchievedEvent{state: state})
			return
		}

		if state.Iteration >= state.MaxIterations {
			msg := fmt.Sprintf("Best solution after %d iterations:\n%s", state.MaxIterations, response)
			state.Solution = &msg
			state.IsComplete = true
			s.Emitter.Emit(GoalAchievedEvent{state: state})
			return
		}

		s.Emitter.Emit(IterationCompletedEvent{state: state, Response: response})
	}
}

func (s *RecursiveSolver) generateResponse(ctx context.Context, prompt string) (string, error) {
	session := llm.NewChatSessionBuilder(s.broker).
		SystemPrompt(s.systemPrompt).
		Tools(s.tools).
		Build()
	return session.Send(ctx, prompt)
}
