// Package tui is the live watch view: a small bubbletea program that
// mirrors the polling session's snapshots while it runs in the
// background.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/irskep/cimonitor/internal/model"
	"github.com/irskep/cimonitor/internal/ui"
	"github.com/irskep/cimonitor/internal/watch"
)

type snapshotMsg model.Snapshot

type retryMsg struct {
	job     string
	attempt int
}

type eventMsg string

type doneMsg struct {
	res watch.Result
	err error
}

type Model struct {
	target string
	spin   spinner.Model

	snap    model.Snapshot
	haveRun bool
	events  []string

	done     bool
	detached bool
	outcome  model.Outcome
}

func newModel(target string) Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(ui.StyleInfo))
	return Model{target: target, spin: sp}
}

func (m Model) Init() tea.Cmd {
	return m.spin.Tick
}

func (m *Model) pushEvent(ev string) {
	m.events = append(m.events, ev)
	if len(m.events) > 5 {
		m.events = m.events[len(m.events)-5:]
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, ui.Keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, ui.Keys.Detach):
			// The session keeps polling headless; the final report is
			// still printed when it finishes.
			m.detached = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case snapshotMsg:
		m.snap = model.Snapshot(msg)
		m.haveRun = m.snap.Run.ID != 0
		return m, nil

	case retryMsg:
		m.pushEvent(fmt.Sprintf("retrying %s (attempt %d)", msg.job, msg.attempt))
		return m, nil

	case eventMsg:
		m.pushEvent(string(msg))
		return m, nil

	case doneMsg:
		m.done = true
		m.outcome = msg.res.Outcome
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(ui.StyleHeader.Render("watching " + m.target))
	b.WriteString("\n\n")

	if !m.haveRun {
		b.WriteString(m.spin.View())
		b.WriteString(ui.StyleMuted.Render(" waiting for a workflow run..."))
		b.WriteString("\n")
		return b.String()
	}

	run := m.snap.Run
	b.WriteString(fmt.Sprintf("%s (run #%d, attempt %d)\n\n", run.Name, run.RunNumber, run.RunAttempt))

	for _, j := range m.snap.Jobs {
		c := string(j.Conclusion)
		if c == "" {
			c = string(j.Status)
		}
		b.WriteString(fmt.Sprintf("  %s %s %s\n", ui.StatusIcon(c), j.Name, ui.ConclusionStyle(c).Render(c)))
	}

	for _, ev := range m.events {
		b.WriteString(ui.StyleWarning.Render("  " + ev))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(ui.ConclusionStyle(string(m.outcome)).Render("finished: " + string(m.outcome)))
	} else {
		b.WriteString(m.spin.View())
		b.WriteString(ui.StyleMuted.Render(" polling... (q to detach)"))
	}
	b.WriteString("\n")

	return b.String()
}

// Watch runs the session through start while displaying live status.
// The session must run under the ctx handed to start: quitting the view
// cancels it, while detaching lets it finish without the display. The
// session's result is returned either way.
func Watch(ctx context.Context, target string, start func(context.Context, watch.Hooks) (watch.Result, error), opts ...tea.ProgramOption) (watch.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(target), append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)

	type sessionResult struct {
		res watch.Result
		err error
	}
	resCh := make(chan sessionResult, 1)

	go func() {
		hooks := watch.Hooks{
			OnPoll:  func(s model.Snapshot) { p.Send(snapshotMsg(s)) },
			OnRetry: func(j model.Job, attempt int) { p.Send(retryMsg{job: j.Name, attempt: attempt}) },
			OnRetryError: func(j model.Job, err error) {
				p.Send(eventMsg(fmt.Sprintf("retry of %s failed: %v", j.Name, err)))
			},
		}
		res, err := start(ctx, hooks)
		resCh <- sessionResult{res, err}
		p.Send(doneMsg{res, err})
	}()

	finalModel, err := p.Run()
	if err != nil && ctx.Err() == nil {
		// The view failing should not kill the session silently; cancel
		// and surface whatever it produced.
		cancel()
		out := <-resCh
		if out.err != nil {
			return out.res, out.err
		}
		return out.res, err
	}

	if m, ok := finalModel.(Model); ok && m.detached {
		out := <-resCh
		return out.res, out.err
	}

	cancel()
	out := <-resCh
	return out.res, out.err
}
