package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"vidlingo/internal/pipeline"
)

// stageProgress renders pipeline progress. Terminals get a single bar for
// the whole run; other writers get one line per stage.
type stageProgress struct {
	mu      sync.Mutex
	out     io.Writer
	bar     *progressbar.ProgressBar
	current pipeline.State
}

func newStageProgress(out io.Writer, interactive bool) *stageProgress {
	p := &stageProgress{out: out}
	if interactive {
		p.bar = progressbar.NewOptions(100,
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetWidth(30),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetDescription(pipeline.StateIdle.Label()),
		)
	}
	return p
}

func (p *stageProgress) observer() pipeline.Observer {
	return pipeline.ObserverFuncs{
		State: p.onState,
		Progress: func(state pipeline.State, percent float64, message string) {
			p.onProgress(state, percent)
		},
	}
}

func (p *stageProgress) onState(state pipeline.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if state == p.current {
		return
	}
	p.current = state
	index := stageIndex(state)
	if index < 0 {
		return
	}
	if p.bar == nil {
		fmt.Fprintf(p.out, "[%d/%d] %s\n", index+1, len(pipeline.ProcessingStates), state.Label())
		return
	}
	p.bar.Describe(fmt.Sprintf("[%d/%d] %-20s", index+1, len(pipeline.ProcessingStates), state.Label()))
	_ = p.bar.Set(overallPercent(state, 0))
}

func (p *stageProgress) onProgress(state pipeline.State, percent float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil || stageIndex(state) < 0 {
		return
	}
	_ = p.bar.Set(overallPercent(state, percent))
}

func (p *stageProgress) finish(success bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		return
	}
	if success {
		_ = p.bar.Finish()
		return
	}
	_ = p.bar.Clear()
}

func stageIndex(state pipeline.State) int {
	for i, s := range pipeline.ProcessingStates {
		if s == state {
			return i
		}
	}
	return -1
}

// overallPercent folds a stage-local percentage into the whole run.
func overallPercent(state pipeline.State, percent float64) int {
	index := stageIndex(state)
	if index < 0 {
		return 0
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	total := float64(len(pipeline.ProcessingStates))
	return int((float64(index) + percent/100) / total * 100)
}
