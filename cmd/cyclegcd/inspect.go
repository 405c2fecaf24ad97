// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package main

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vireolabs/cyclegc/internal/graphquery"
	"github.com/vireolabs/cyclegc/pkg/cyclegc"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Browse a demo graph's nodes interactively and trigger manual collections",
	RunE:  runInspect,
}

var (
	colorStyle = map[string]lipgloss.Style{
		"black":  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		"gray":   lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		"white":  lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		"purple": lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		"green":  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"red":    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
	headerStyle = lipgloss.NewStyle().Bold(true)
)

// inspectModel is a bubbletea Model over a single demo Context: each 'd'
// press destroys the selected node's external reference, each 'c' press
// runs collect_cycles after a huh confirmation, and the viewport always
// reflects the current root buffer and live node set.
type inspectModel struct {
	ctx      *cyclegc.Context
	handles  map[uint64]cyclegc.Handle[*tracked]
	order    []uint64
	selected int
	viewport viewport.Model
	status   string
}

func newInspectModel(ctx *cyclegc.Context, handles map[uint64]cyclegc.Handle[*tracked]) inspectModel {
	ids := make([]uint64, 0, len(handles))
	for id := range handles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	vp := viewport.New(100, 20)
	m := inspectModel{ctx: ctx, handles: handles, order: ids, viewport: vp}
	m.refresh()
	return m
}

func (m inspectModel) Init() tea.Cmd { return nil }

func (m *inspectModel) refresh() {
	q := graphquery.NewQuerier(m.ctx)
	roots := q.Roots()
	rootSet := make(map[uint64]bool, len(roots))
	for _, r := range roots {
		rootSet[r.ID] = true
	}

	var body string
	body += headerStyle.Render(fmt.Sprintf("root buffer: %d node(s)", len(roots))) + "\n\n"
	for i, id := range m.order {
		node, ok := m.ctx.Lookup(id)
		line := fmt.Sprintf("[%d]", id)
		if !ok {
			line += " freed"
		} else {
			style := colorStyle[node.ColorOf().String()]
			line += " " + style.Render(fmt.Sprintf("%-6s count=%d", node.ColorOf().String(), node.Count()))
			if rootSet[id] {
				line += "  (buffered root)"
			}
		}
		if i == m.selected {
			line = "> " + line
		} else {
			line = "  " + line
		}
		body += line + "\n"
	}
	body += "\n" + m.status
	m.viewport.SetContent(body)
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.order)-1 {
				m.selected++
			}
		case "d":
			id := m.order[m.selected]
			if h, ok := m.handles[id]; ok {
				h.Destroy()
				delete(m.handles, id)
				m.status = fmt.Sprintf("dropped external handle to node %d", id)
			}
		case "c":
			var confirmed bool
			confirm := huh.NewConfirm().
				Title("Run collect_cycles now?").
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed)
			_ = huh.NewForm(huh.NewGroup(confirm)).Run()
			if confirmed {
				before := m.ctx.RootBufferLen()
				m.ctx.CollectCycles()
				m.status = fmt.Sprintf("collect_cycles ran: root buffer %d -> %d", before, m.ctx.RootBufferLen())
			}
		}
	}
	m.refresh()
	return m, nil
}

func (m inspectModel) View() string {
	return m.viewport.View() + "\n\nup/down: select  d: drop handle  c: collect_cycles  q: quit\n"
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := cyclegc.NewContext()
	ctx.SetAutoCollect(false)

	handles := make(map[uint64]cyclegc.Handle[*tracked])
	noopPrint := func(string, ...any) {}

	a := newTracked(ctx, "A", noopPrint)
	b := newTracked(ctx, "B", noopPrint)
	c := newTracked(ctx, "C", noopPrint)
	a.AddChild(b.Copy().Node())
	b.AddChild(c.Copy().Node())
	c.AddChild(a.Copy().Node())

	handles[a.Node().ID()] = a
	handles[b.Node().ID()] = b
	handles[c.Node().ID()] = c

	model := newInspectModel(ctx, handles)
	_, err := tea.NewProgram(model).Run()
	return err
}
