// Package solver provides recursive and iterative problem-solving loops
// over a chat session, grounded on the source crate's
// simple_recursive_agent.rs and iterative_problem_solver.rs.
package solver

// GoalState tracks a problem-solving process through its iterations.
type GoalState struct {
	Goal          string
	Iteration     int
	MaxIterations int
	Solution      *string
	IsComplete    bool
}

// NewGoalState constructs a fresh, incomplete GoalState for goal.
func NewGoalState(goal string, maxIterations int) GoalState {
	return GoalState{Goal: goal, MaxIterations: maxIterations}
}

// Event is the base interface every solver lifecycle event satisfies.
type Event interface {
	State() GoalState
}

type GoalSubmittedEvent struct{ state GoalState }

func (e GoalSubmittedEvent) State() GoalState { return e.state }

type IterationCompletedEvent struct {
	state    GoalState
	Response string
}

func (e IterationCompletedEvent) State() GoalState { return e.state }

type GoalAchievedEvent struct{ state GoalState }

func (e GoalAchievedEvent) State() GoalState { return e.state }

type GoalFailedEvent struct{ state GoalState }

func (e GoalFailedEvent) State() GoalState { return e.state }

type TimeoutEvent struct{ state GoalState }

func (e TimeoutEvent) State() GoalState { return e.state }
