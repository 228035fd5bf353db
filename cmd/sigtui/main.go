//go:build sigtui

// Command sigtui is an interactive signature browser: load a disassembly
// listing, pick an anchor, and watch the generator's ranked candidates
// update live. Excluded from the default build; compile with -tags sigtui.
package main

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lookbusy1344/sig-forge/sig/analyzer"
	"github.com/lookbusy1344/sig-forge/sig/generator"
	"github.com/lookbusy1344/sig-forge/sig/parser"
	"github.com/lookbusy1344/sig-forge/sig/smartanalyzer"
	"github.com/lookbusy1344/sig-forge/sig/types"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: sigtui <disassembly-file>")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1]) // #nosec G304 -- user-supplied CLI argument
	if err != nil {
		fmt.Fprintf(os.Stderr, "sigtui: %v\n", err)
		os.Exit(1)
	}

	result, err := parser.Parse(string(data), parser.FormatAuto)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sigtui: %v\n", err)
		os.Exit(1)
	}

	browser := newBrowser(analyzer.AnalyzeAll(result.Instructions))
	if err := browser.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "sigtui: %v\n", err)
		os.Exit(1)
	}
}

// browser is the TUI's state and view tree: an instruction-listing pane, a
// signature-candidates pane, and a status line.
type browser struct {
	app *tview.Application

	instructions []types.Instruction

	mainLayout     *tview.Flex
	instructionsList *tview.List
	signaturesView *tview.TextView
	statusView     *tview.TextView
}

func newBrowser(instrs []types.Instruction) *browser {
	b := &browser{
		app:          tview.NewApplication(),
		instructions: instrs,
	}
	b.initializeViews()
	b.buildLayout()
	b.setupKeyBindings()
	b.populateInstructions()
	return b
}

func (b *browser) initializeViews() {
	b.instructionsList = tview.NewList().ShowSecondaryText(false)
	b.instructionsList.SetBorder(true).SetTitle(" Instructions ")

	b.signaturesView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	b.signaturesView.SetBorder(true).SetTitle(" Candidates ")

	b.statusView = tview.NewTextView().SetDynamicColors(true)
	b.statusView.SetBorder(true).SetTitle(" Status ")
}

func (b *browser) buildLayout() {
	content := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(b.instructionsList, 0, 1, true).
		AddItem(b.signaturesView, 0, 2, false)

	b.mainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(content, 0, 5, true).
		AddItem(b.statusView, 3, 0, false)
}

func (b *browser) setupKeyBindings() {
	b.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC || event.Key() == tcell.KeyEscape {
			b.app.Stop()
			return nil
		}
		return event
	})
}

func (b *browser) populateInstructions() {
	report := smartanalyzer.Analyze(b.instructions, len(b.instructions))
	b.statusView.SetText(report.Summary)

	ranked := make(map[int]float64, len(report.Scores))
	for _, s := range report.Scores {
		ranked[s.Index] = s.CompositeScore
	}

	for i, inst := range b.instructions {
		idx := i
		label := fmt.Sprintf("%s  %-8s %-20s (score %.0f)", inst.Address, inst.Mnemonic, inst.OperandsNormalized, ranked[i])
		b.instructionsList.AddItem(label, "", 0, func() {
			b.showCandidates(idx)
		})
	}
}

func (b *browser) showCandidates(anchorIdx int) {
	opts := generator.DefaultOptions()
	res, err := generator.Generate(b.instructions, generator.Targets(fmt.Sprintf("idx@%d", anchorIdx)), generator.StrategyBalanced, opts)
	if err != nil {
		b.signaturesView.SetText(fmt.Sprintf("[red]error: %v", err))
		return
	}

	var text string
	for _, id := range []string{fmt.Sprintf("idx@%d", anchorIdx)} {
		for _, sig := range res.Signatures[id] {
			text += fmt.Sprintf("%s\n  uniqueness=%.3f stability=%s\n\n", sig.Pattern, sig.UniquenessScore, sig.Stability)
		}
	}
	if text == "" {
		text = "(no signatures for this anchor)"
	}
	b.signaturesView.SetText(text)
}

func (b *browser) Run() error {
	return b.app.SetRoot(b.mainLayout, true).SetFocus(b.instructionsList).Run()
}
