package solver

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/svetzal/mojentic-go/llm"
)

type scriptedTransport struct {
	mu        sync.Mutex
	responses []string
	callCount int
}

func newScriptedTransport(responses ...string) *scriptedTransport {
	return &scriptedTransport{responses: responses}
}

func (t *scriptedTransport) Complete(ctx context.Context, model string, messages []llm.Message, tools []llm.ToolDescriptor, config llm.CompletionConfig) (llm.GatewayResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.callCount
	t.callCount++
	if idx < len(t.responses) {
		return llm.GatewayResponse{Content: t.responses[idx]}, nil
	}
	return llm.GatewayResponse{Content: "default response"}, nil
}

func (t *scriptedTransport) CompleteJSON(ctx context.Context, model string, messages []llm.Message, schema any, config llm.CompletionConfig) (any, error) {
	return map[string]any{}, nil
}

func (t *scriptedTransport) CompleteStream(ctx context.Context, model string, messages []llm.Message, tools []llm.ToolDescriptor, config llm.CompletionConfig) (<-chan llm.StreamChunk, error) {
	ch := make(chan llm.StreamChunk, 1)
	close(ch)
	return ch, nil
}

func (t *scriptedTransport) ListModels(ctx context.Context) ([]string, error) { return nil, nil }

func (t *scriptedTransport) CalculateEmbeddings(ctx context.Context, text string, model *string) ([]float32, error) {
	return nil, nil
}

func TestRecursiveSolver_SolveCompletesWithDone(t *testing.T) {
	broker := llm.NewBroker("test-model", newScriptedTransport("DONE"))
	s := NewRecursiveSolver(broker)

	result, err := s.Solve(context.Background(), "Test problem")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if result != "DONE" {
		t.Fatalf("expected %q, got %q", "DONE", result)
	}
}

func TestRecursiveSolver_SolveFailsWithFail(t *testing.T) {
	broker := llm.NewBroker("test-model", newScriptedTransport("FAIL"))
	s := NewRecursiveSolver(broker)

	result, err := s.Solve(context.Background(), "Impossible problem")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if !strings.Contains(result, "Failed to solve after 1 iterations") {
		t.Fatalf("expected failure message, got %q", result)
	}
}

func TestRecursiveSolver_WordBoundaryDoesNotMatchSubstring(t *testing.T) {
	broker := llm.NewBroker("test-model", newScriptedTransport("undone", "DONE"))
	s := NewRecursiveSolverBuilder(broker).MaxIterations(5).Build()

	result, err := s.Solve(context.Background(), "Test problem")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if result != "DONE" {
		t.Fatalf("expected word-boundary match to skip %q and resolve on second iteration, got %q", "undone", result)
	}
}

func TestRecursiveSolver_StopsAtMaxIterations(t *testing.T) {
	broker := llm.NewBroker("test-model", newScriptedTransport("Step 1", "Step 2", "Step 3"))
	s := NewRecursiveSolverBuilder(broker).MaxIterations(3).Build()

	result, err := s.Solve(context.Background(), "Long problem")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if !strings.Contains(result, "Best solution after 3 iterations") {
		t.Fatalf("expected max-iteration message, got %q", result)
	}
}

func TestRecursiveSolver_EmitsLifecycleEvents(t *testing.T) {
	broker := llm.NewBroker("test-model", newScriptedTransport("Working...", "DONE"))
	s := NewRecursiveSolver(broker)

	var mu sync.Mutex
	seen := map[string]bool{}
	done := make(chan struct{}, 1)

	s.Emitter.Subscribe(func(evt Event) {
		mu.Lock()
		switch evt.(type) {
		case GoalSubmittedEvent:
			seen["submitted"] = true
		case IterationCompletedEvent:
			seen["iteration"] = true
		case GoalAchievedEvent:
			seen["achieved"] = true
			select {
			case done <- struct{}{}:
			default:
			}
		}
		mu.Unlock()
	})

	if _, err := s.Solve(context.Background(), "Test problem"); err != nil {
		t.Fatalf("solve: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for GoalAchievedEvent")
	}

	mu.Lock()
	defer mu.Unlock()
	for _, key := range []string{"submitted", "iteration", "achieved"} {
		if !seen[key] {
			t.Fatalf("expected event %q to have fired", key)
		}
	}
}

// TestRecursiveSolver_LifecycleEventOrderAndCount exercises scenario 6
// from spec §8 exactly: three successive transport responses
// ("Working...", "Still...", "DONE") must yield, in order,
// GoalSubmitted, IterationCompleted x2, GoalAchieved, with the
// GoalAchieved state reporting iteration 3. In particular,
// IterationCompleted must NOT fire on the terminal (DONE) iteration.
func TestRecursiveSolver_LifecycleEventOrderAndCount(t *testing.T) {
	broker := llm.NewBroker("test-model", newScriptedTransport("Working...", "Still...", "DONE"))
	s := NewRecursiveSolver(broker)

	var mu sync.Mutex
	var order []string
	var achievedIteration int
	done := make(chan struct{}, 1)

	s.Emitter.Subscribe(func(evt Event) {
		mu.Lock()
		switch evt.(type) {
		case GoalSubmittedEvent:
			order = append(order, "GoalSubmitted")
		case IterationCompletedEvent:
			order = append(order, "IterationCompleted")
		case GoalAchievedEvent:
			order = append(order, "GoalAchieved")
			achievedIteration = evt.State().Iteration
			select {
			case done <- struct{}{}:
			default:
			}
		case GoalFailedEvent:
			order = append(order, "GoalFailed")
		}
		mu.Unlock()
	})

	result, err := s.Solve(context.Background(), "Test problem")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if result != "DONE" {
		t.Fatalf("expected %q, got %q", "DONE", result)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for GoalAchievedEvent")
	}

	mu.Lock()
	defer mu.Unlock()

	want := []string{"GoalSubmitted", "IterationCompleted", "IterationCompleted", "GoalAchieved"}
	if len(order) != len(want) {
		t.Fatalf("event order = %v, want %v", order, want)
	}
	for i, name := range want {
		if order[i] != name {
			t.Fatalf("event order = %v, want %v", order, want)
		}
	}
	if achievedIteration != 3 {
		t.Fatalf("GoalAchieved.state.iteration = %d, want 3", achievedIteration)
	}
}

func TestIterativeSolver_SolveCompletesWithDone(t *testing.T) {
	broker := llm.NewBroker("test-model", newScriptedTransport("Working on it...", "DONE", "The answer is 42"))
	s := NewIterativeSolver(broker)

	result, err := s.Solve(context.Background(), "Test problem")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if result != "The answer is 42" {
		t.Fatalf("expected %q, got %q", "The answer is 42", result)
	}
}

func TestIterativeSolver_SubstringMatchWithoutWordBoundary(t *testing.T) {
	broker := llm.NewBroker("test-model", newScriptedTransport("I abandoned the first approach", "Task completed"))
	s := NewIterativeSolver(broker)

	result, err := s.Solve(context.Background(), "Test problem")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if result != "Task completed" {
		t.Fatalf("expected %q, got %q", "Task completed", result)
	}
}

func TestIterativeSolver_StopsAtMaxIterations(t *testing.T) {
	broker := llm.NewBroker("test-model", newScriptedTransport("Step 1", "Step 2", "Step 3", "Final summary"))
	s := NewIterativeSolverBuilder(broker).MaxIterations(3).Build()

	result, err := s.Solve(context.Background(), "Long problem")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if result != "Final summary" {
		t.Fatalf("expected %q, got %q", "Final summary", result)
	}
}
