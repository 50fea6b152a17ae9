package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/chromacheck/chromacheck/internal/colour"
	"github.com/chromacheck/chromacheck/internal/filter"
	"github.com/chromacheck/chromacheck/internal/plate"
)

var (
	plateCategory string
	plateDiff     string
	plateKind     string
	plateGrid     int
	plateAnswer   bool
	plateHueShift float64
)

func newPlateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plate",
		Short: "Generate and preview a single test plate",
		Long: `Generate one plate deterministically from the seed and render it as
coloured blocks in the terminal. Useful for inspecting palettes, difficulty
levels, and the effect of filter parameters.

Examples:
  chromacheck plate --seed abc --category deutan --difficulty hard
  chromacheck plate --seed abc --hue-shift 25 --answer`,
		RunE: runPlate,
	}

	cmd.Flags().StringVar(&plateCategory, "category", "deutan", "plate category (deutan, control)")
	cmd.Flags().StringVar(&plateDiff, "difficulty", "medium", "difficulty (easy, medium, hard)")
	cmd.Flags().StringVar(&plateKind, "kind", "glyph", "target kind (glyph, shape)")
	cmd.Flags().IntVar(&plateGrid, "grid", 0, "grid resolution (default fits the terminal)")
	cmd.Flags().BoolVar(&plateAnswer, "answer", false, "print the hidden target")
	cmd.Flags().Float64Var(&plateHueShift, "hue-shift", 0, "apply a hue-shift filter before rendering")

	return cmd
}

func runPlate(cmd *cobra.Command, args []string) error {
	req := plate.Request{
		Seed:       sessionSeed(),
		Category:   plate.Category(plateCategory),
		Difficulty: plate.Difficulty(plateDiff),
		TargetKind: plate.TargetKind(plateKind),
		GridSize:   plateGrid,
	}
	if req.GridSize == 0 {
		req.GridSize = fitGrid()
	}
	if plateHueShift != 0 {
		req.Filter = &filter.Parameters{HueShift: plateHueShift}
	}

	p, err := plate.Generate(req)
	if err != nil {
		return err
	}

	renderPlate(cmd.OutOrStdout(), p)
	if plateAnswer {
		fmt.Fprintf(cmd.OutOrStdout(), "target: %s %q (%s, %s) %s\n",
			p.Target.Kind, p.Target.Value, p.Category, p.Difficulty,
			colour.Swatch(colour.HSLToRGB(p.TargetColour), 2))
	}
	return nil
}

// renderPlate draws the plate as 24-bit ANSI background blocks, two columns
// per cell so tiles come out roughly square.
func renderPlate(w io.Writer, p *plate.Plate) {
	for y := 0; y < p.GridSize; y++ {
		for x := 0; x < p.GridSize; x++ {
			fmt.Fprint(w, colour.Block(p.Cells[y*p.GridSize+x].Base, 2))
		}
		fmt.Fprintln(w)
	}
}

// fitGrid picks a grid resolution that fits the terminal width, falling back
// to the default when stdout is not a terminal.
func fitGrid() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return plate.DefaultGridSize
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return plate.DefaultGridSize
	}
	grid := width / 2
	if grid > plate.DefaultGridSize {
		grid = plate.DefaultGridSize
	}
	if grid < 8 {
		grid = 8
	}
	return grid
}
