package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bekirdag/gridview/internal/companies"
)

type companiesLoadedMsg struct {
	companies []companies.Company
	elapsed   time.Duration
}

type fetchFailedMsg struct {
	err error
}

// fetchManager runs one list request at a time. A reload requested while a
// fetch is in flight runs once that fetch finishes, and repeated requests
// collapse into that one reload.
type fetchManager struct {
	source  companies.Source
	timeout time.Duration
	running bool
	pending bool
}

func newFetchManager(source companies.Source, timeout time.Duration) *fetchManager {
	if timeout <= 0 {
		timeout = companies.DefaultTimeout
	}
	return &fetchManager{source: source, timeout: timeout}
}

func (fm *fetchManager) Running() bool { return fm.running }

// Request starts a fetch, or queues one behind the running fetch.
func (fm *fetchManager) Request() tea.Cmd {
	if fm.running {
		fm.pending = true
		return nil
	}
	return fm.start()
}

// Done records the end of the running fetch and starts the queued one, if any.
func (fm *fetchManager) Done() tea.Cmd {
	fm.running = false
	if fm.pending {
		fm.pending = false
		return fm.start()
	}
	return nil
}

func (fm *fetchManager) start() tea.Cmd {
	fm.running = true
	ch := make(chan tea.Msg, 1)
	go runFetch(fm.source, fm.timeout, ch)
	return waitForFetchMsg(ch)
}

func runFetch(source companies.Source, timeout time.Duration, ch chan<- tea.Msg) {
	defer close(ch)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	list, err := source.List(ctx)
	if err != nil {
		ch <- fetchFailedMsg{err: err}
		return
	}
	ch <- companiesLoadedMsg{companies: list, elapsed: time.Since(start)}
}

func waitForFetchMsg(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
