// Command mojenticctl is a small operator CLI exercising the library's
// public surface: dispatcher/aggregator fan-out, a recursive-solver run
// against the reference transport, and tracer-summary inspection. It is
// explicitly outside the core — a convenience wrapper, not a required
// consumer of the library's API.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/svetzal/mojentic-go/aggregator"
	"github.com/svetzal/mojentic-go/config"
	"github.com/svetzal/mojentic-go/event"
	"github.com/svetzal/mojentic-go/internal/obslog"
	"github.com/svetzal/mojentic-go/llm"
	"github.com/svetzal/mojentic-go/solver"
	"github.com/svetzal/mojentic-go/tool"
	"github.com/svetzal/mojentic-go/tool/builtin"
	"github.com/svetzal/mojentic-go/tracer"
	"github.com/svetzal/mojentic-go/transport/openaicompat"
)

const version = "0.1.0"

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "mojenticctl",
		Short:   "Operator CLI for the mojentic-go concurrency substrate",
		Version: version,
	}

	var configPath string
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML tunables file")

	rootCmd.AddCommand(newSolveCmd(&configPath))
	rootCmd.AddCommand(newFanoutCmd())
	rootCmd.AddCommand(newTraceCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadTunables(path string) (config.Tunables, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.NewLoader(path).Load()
}

func newSolveCmd(configPath *string) *cobra.Command {
	var model, baseURL, apiKey string
	var maxIterations int

	cmd := &cobra.Command{
		Use:   "solve [goal]",
		Short: "Drive a RecursiveSolver against a goal using the reference OpenAI-compatible transport",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tunables, err := loadTunables(*configPath)
			if err != nil {
				return err
			}
			if model == "" {
				model = tunables.DefaultModel
			}
			if maxIterations == 0 {
				maxIterations = tunables.MaxIterations
			}

			log, err := obslog.New(obslog.Config{Level: tunables.Log.Level, Format: "console", OutputPath: "stdout"})
			if err != nil {
				return fmt.Errorf("logger init: %w", err)
			}
			defer log.Sync()

			transport := openaicompat.New(openaicompat.Config{APIKey: apiKey, BaseURL: baseURL, Logger: log})
			broker := llm.NewBroker(model, transport, llm.WithBrokerLogger(log))

			tr := tracer.NewDefaultSystem()

			cwd, err := os.Getwd()
			if err != nil {
				return err
			}

			registry := tool.NewRegistry()
			registry.Register(builtin.NewCurrentDateTimeTool())
			registry.Register(builtin.NewReadFileTool(cwd))

			s := solver.NewRecursiveSolverBuilder(broker).
				Tools(registry.All()).
				MaxIterations(maxIterations).
				WithLogger(log).
				Build()

			s.Emitter.Subscribe(func(evt solver.Event) {
				state := evt.State()
				fmt.Println(headingStyle.Render(fmt.Sprintf("[%T]", evt)) + " " +
					dimStyle.Render(fmt.Sprintf("iteration=%d/%d", state.Iteration, state.MaxIterations)))
			})

			ctx, cancel := context.WithTimeout(cmd.Context(), tunables.SolverTimeout)
			defer cancel()

			result, err := s.Solve(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Println(headingStyle.Render("Result:"), result)
			fmt.Println(dimStyle.Render(fmt.Sprintf("traced events: %d", tr.Len())))
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "model name (overrides config default_model)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "OpenAI-compatible base URL (e.g. http://localhost:11434/v1)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key for the completion endpoint")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "overrides config max_iterations")
	return cmd
}

// researchStarted and researchFinished are toy event types standing in
// for two independent producers (e.g. a web-search agent and a
// file-search agent) that must both report in before a composite
// result is ready.
type researchStarted struct{ event.BaseEvent }

func (researchStarted) Type() string        { return "demo.ResearchStarted" }
func (e *researchStarted) Clone() event.Event { c := *e; return &c }

type researchFinished struct {
	event.BaseEvent
	Summary string
}

func (researchFinished) Type() string         { return "demo.ResearchFinished" }
func (e *researchFinished) Clone() event.Event { c := *e; return &c }

func newFanoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fanout",
		Short: "Demonstrate Dispatcher fan-out plus an Aggregator join across two producers",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := obslog.Nop()
			router := event.NewRouter()
			agg := aggregator.NewAggregator([]string{"demo.ResearchStarted", "demo.ResearchFinished"}, aggregator.WithLogger(log))
			router.AddRoute("demo.ResearchStarted", agg)
			router.AddRoute("demo.ResearchFinished", agg)

			dispatcher := event.NewDispatcher(router, event.WithLogger(log))
			if err := dispatcher.Start(); err != nil {
				return err
			}
			defer dispatcher.Stop()

			correlationID := "mojenticctl-demo"
			started := &researchStarted{BaseEvent: event.NewBaseEvent("mojenticctl")}
			started.SetCorrelationID(correlationID)
			dispatcher.Dispatch(started)

			go func() {
				finished := &researchFinished{
					BaseEvent: event.NewBaseEvent("mojenticctl"),
					Summary:   "3 sources found",
				}
				finished.SetCorrelationID(correlationID)
				dispatcher.Dispatch(finished)
			}()

			ctx := cmd.Context()
			joined, err := agg.Wait(ctx, correlationID, 2*time.Second)
			if err != nil {
				return err
			}

			fmt.Println(headingStyle.Render(fmt.Sprintf("joined %d events for correlation %s:", len(joined), correlationID)))
			for _, evt := range joined {
				fmt.Println(dimStyle.Render("- "), evt.Type())
			}
			return nil
		},
	}
}

func newTraceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trace-demo",
		Short: "Record a few tracer events and print summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			tr := tracer.NewDefaultSystem()
			source := "mojenticctl"
			correlationID := "demo"
			tr.RecordLlmCall("gpt-4o-mini", nil, 1.0, nil, source, correlationID)
			tr.RecordLlmResponse("gpt-4o-mini", "hello", nil, nil, source, correlationID)

			for _, summary := range tr.GetLastNSummaries(10, nil) {
				fmt.Println(dimStyle.Render("- "), summary)
			}
			fmt.Println(headingStyle.Render(fmt.Sprintf("%d events recorded", tr.Len())))
			return nil
		},
	}
}
