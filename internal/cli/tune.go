package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chromacheck/chromacheck/internal/filter"
	"github.com/chromacheck/chromacheck/internal/observer"
	"github.com/chromacheck/chromacheck/internal/plate"
	"github.com/chromacheck/chromacheck/internal/session"
	"github.com/chromacheck/chromacheck/internal/store"
	"github.com/chromacheck/chromacheck/internal/tuner"
)

var (
	tuneRounds     int
	tunePlates     int
	tuneStall      int
	tuneStrength   float64
	tuneDeficiency string
	tuneSeverity   float64
	tuneJSON       bool
)

func newTuneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "Search for filter parameters that improve discrimination",
		Long: `Run a baseline session, then a bounded hill-climbing search over the
colour-correction filter's parameter space, scoring each candidate on freshly
generated confusion-axis plates. The best parameters found are validated with
a second, non-adaptive session.

The whole run is deterministic for a fixed --seed: the same plates, the same
search trajectory, the same outcome.

Examples:
  chromacheck tune --seed abc --deficiency deutan --severity 0.8
  chromacheck tune --rounds 8 --round-plates 10 --db results.db`,
		RunE: runTune,
	}

	cmd.Flags().IntVar(&tuneRounds, "rounds", 5, "round budget for the search")
	cmd.Flags().IntVar(&tunePlates, "round-plates", 5, "plates evaluated per round")
	cmd.Flags().IntVar(&tuneStall, "stall-limit", 2, "rounds without improvement before stopping")
	cmd.Flags().Float64Var(&tuneStrength, "strength", 1.0, "filter application strength in [0,1]")
	cmd.Flags().StringVar(&tuneDeficiency, "deficiency", "deutan", "simulated deficiency (deutan, protan)")
	cmd.Flags().Float64Var(&tuneSeverity, "severity", 0.7, "simulated deficiency severity in [0,1]")
	cmd.Flags().BoolVar(&tuneJSON, "json", false, "print the tuning outcome as JSON")

	return cmd
}

func runTune(cmd *cobra.Command, args []string) error {
	log := newLogger()
	out := cmd.OutOrStdout()
	seed := sessionSeed()

	sim := observer.NewSimulated(seed+":observer", observer.Deficiency(tuneDeficiency), tuneSeverity)

	// Baseline pass: establishes the severity bucket and the score to beat.
	plates, err := plate.GenerateSequence(plate.SequenceRequest{
		Total:                 16,
		CategoryRatio:         0.625,
		Seed:                  seed,
		ProgressiveDifficulty: true,
	})
	if err != nil {
		return err
	}
	seq := session.NewSequencer(session.ModeBaseline, log)
	if err := seq.Start(plates); err != nil {
		return err
	}
	baseline, err := driveSession(cmd, seq, sim, false)
	if err != nil {
		return err
	}
	baselineScore := baseline.Scores[plate.CategoryDeutan].Percentage
	fmt.Fprintf(out, "Baseline: %s (%d/100), confusion accuracy %d%%\n",
		baseline.Severity.Bucket, baseline.Severity.Value, baselineScore)

	if baseline.Severity.Bucket == session.BucketInconclusive {
		return fmt.Errorf("baseline inconclusive (control accuracy %d%% below 50%%); not tuning", baseline.Severity.ControlScore)
	}

	// Adaptive search.
	t := tuner.New(filter.NewSpace(), tuner.Config{
		Rounds:         tuneRounds,
		PlatesPerRound: tunePlates,
		StallLimit:     tuneStall,
		Strength:       tuneStrength,
	}, seed, log)

	outcome, err := t.Run(baseline.Severity.Bucket, baselineScore, sim)
	if err != nil {
		return err
	}

	for _, r := range outcome.History {
		fmt.Fprintf(out, "  round %d: score %d%%  hueShift=%+.0f sat=%+.2f contrast=%+.2f\n",
			r.Number, r.Score, r.Params.HueShift, r.Params.Saturation, r.Params.Contrast)
	}
	fmt.Fprintf(out, "Best: %d%% (baseline %d%%) after %d rounds\n",
		outcome.BestScore, outcome.BaselineScore, outcome.Rounds)

	// Validation pass with the winning parameters, non-adaptively.
	validation, err := t.Validate(outcome.BestParams, 16, 0.625, sim)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Validation: confusion accuracy %d%% → %s\n",
		validation.Scores[plate.CategoryDeutan].Percentage, validation.Severity.Bucket)

	if tuneJSON {
		payload, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(payload))
	}

	if flagDB != "" {
		st, err := store.Open(flagDB)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.SaveSession(baseline); err != nil {
			return err
		}
		if err := st.SaveSession(validation); err != nil {
			return err
		}
		id, err := st.SaveTuning(baseline.ID, outcome)
		if err != nil {
			return err
		}
		log.Debug("tuning run saved", "id", id, "db", flagDB)
	}
	return nil
}
