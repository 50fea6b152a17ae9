package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/chromacheck/chromacheck/internal/observer"
	"github.com/chromacheck/chromacheck/internal/plate"
	"github.com/chromacheck/chromacheck/internal/session"
	"github.com/chromacheck/chromacheck/internal/store"
)

var (
	runTrials      int
	runRatio       float64
	runKind        string
	runDeficiency  string
	runSeverity    float64
	runInteractive bool
	runPreview     bool
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a baseline screening session",
		Long: `Run a baseline screening session: a deterministic sequence of
confusion-axis and control plates, scored into per-category accuracy and a
severity classification.

By default responses come from a simulated subject with a configurable
deficiency; pass --interactive to answer the plates yourself.

Examples:
  # Simulated deutan subject, reproducible session
  chromacheck run --seed abc --deficiency deutan --severity 0.8

  # Answer the plates yourself in the terminal
  chromacheck run --interactive

  # Persist the result
  chromacheck run --db results.db`,
		RunE: runRun,
	}

	cmd.Flags().IntVar(&runTrials, "trials", 16, "number of plates in the session")
	cmd.Flags().Float64Var(&runRatio, "ratio", 0.625, "fraction of confusion-axis plates")
	cmd.Flags().StringVar(&runKind, "kind", "glyph", "target kind (glyph, shape)")
	cmd.Flags().StringVar(&runDeficiency, "deficiency", "deutan", "simulated deficiency (none, deutan, protan)")
	cmd.Flags().Float64Var(&runSeverity, "severity", 0.7, "simulated deficiency severity in [0,1]")
	cmd.Flags().BoolVarP(&runInteractive, "interactive", "i", false, "answer plates yourself instead of simulating")
	cmd.Flags().BoolVar(&runPreview, "preview", false, "render each plate before the (simulated) answer")

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	log := newLogger()
	seed := sessionSeed()

	plates, err := plate.GenerateSequence(plate.SequenceRequest{
		Total:                 runTrials,
		CategoryRatio:         runRatio,
		Seed:                  seed,
		ProgressiveDifficulty: true,
		TargetKind:            plate.TargetKind(runKind),
	})
	if err != nil {
		return err
	}

	seq := session.NewSequencer(session.ModeBaseline, log)
	if err := seq.Start(plates); err != nil {
		return err
	}

	var res *session.Result
	if runInteractive {
		res, err = runInteractiveSession(cmd, seq)
	} else {
		sim := observer.NewSimulated(seed+":observer", observer.Deficiency(runDeficiency), runSeverity)
		res, err = driveSession(cmd, seq, sim, runPreview)
	}
	if err != nil {
		return err
	}

	printResult(cmd, seed, res)
	return persistSession(log, res)
}

// responder supplies one answer per plate. Satisfied by the simulated
// observer; the interactive path reads from stdin instead.
type responder interface {
	Respond(p *plate.Plate) session.Response
}

// driveSession feeds every trial to a responder.
func driveSession(cmd *cobra.Command, seq *session.Sequencer, r responder, preview bool) (*session.Result, error) {
	for seq.State() == session.StateAwaitingResponse {
		p, err := seq.Current()
		if err != nil {
			return nil, err
		}
		if preview {
			renderPlate(cmd.OutOrStdout(), p)
		}
		if err := seq.Record(r.Respond(p)); err != nil {
			return nil, err
		}
	}
	return seq.Result()
}

// runInteractiveSession renders each plate and reads answers from stdin.
// An empty answer skips the trial.
func runInteractiveSession(cmd *cobra.Command, seq *session.Sequencer) (*session.Result, error) {
	reader := bufio.NewScanner(os.Stdin)
	for seq.State() == session.StateAwaitingResponse {
		p, err := seq.Current()
		if err != nil {
			return nil, err
		}
		renderPlate(cmd.OutOrStdout(), p)
		fmt.Fprint(cmd.OutOrStdout(), "What do you see? (enter to skip): ")

		started := time.Now()
		if !reader.Scan() {
			// Input closed: abort at the response boundary and keep what we have.
			return seq.Abort(), nil
		}
		answer := strings.TrimSpace(reader.Text())
		if answer == "" {
			err = seq.Skip()
		} else {
			err = seq.Record(session.Response{
				Value:  answer,
				TimeMs: int(time.Since(started).Milliseconds()),
			})
		}
		if err != nil {
			return nil, err
		}
	}
	return seq.Result()
}

// printResult writes the session summary.
func printResult(cmd *cobra.Command, seed string, res *session.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nSession %s (seed %s)\n", res.ID, seed)
	for _, cat := range []plate.Category{plate.CategoryDeutan, plate.CategoryControl} {
		sc := res.Scores[cat]
		fmt.Fprintf(out, "  %-8s %2d/%2d  (%d%%)\n", cat, sc.Correct, sc.Total, sc.Percentage)
	}
	if res.MeanResponseMs > 0 {
		fmt.Fprintf(out, "  timing   mean %.0fms, stddev %.0fms\n", res.MeanResponseMs, res.StdDevResponseMs)
	}
	sev := res.Severity
	fmt.Fprintf(out, "  severity %d/100 → %s (confidence %.2f)\n", sev.Value, sev.Bucket, sev.Confidence)
	fmt.Fprintf(out, "  %s\n", sev.Description)
	if !res.Completed {
		fmt.Fprintln(out, "  (session aborted before completion; scores are partial)")
	}
}

// persistSession saves the result when a database path was given.
func persistSession(log hclog.Logger, res *session.Result) error {
	if flagDB == "" {
		return nil
	}
	st, err := store.Open(flagDB)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.SaveSession(res); err != nil {
		return err
	}
	log.Debug("session saved", "id", res.ID, "db", flagDB)
	return nil
}

// sessionSeed returns the --seed flag, or a fresh random seed.
func sessionSeed() string {
	if flagSeed != "" {
		return flagSeed
	}
	return uuid.New().String()
}
