// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vireolabs/cyclegc/pkg/cyclegc"
)

var demoCmd = &cobra.Command{
	Use:       "demo [scenario]",
	Short:     "Run one of the collector's literal test scenarios (S1-S6) against a real Context",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"S1", "S2", "S3", "S4", "S5", "S6"},
	RunE:      runDemo,
}

// tracked is the demo payload: it prints when destroyed and when the
// collector calls it, rather than silently logging to a slice the way
// the library's own tests do.
type tracked struct {
	name  string
	print func(format string, args ...any)
}

func (t *tracked) OnDestroy() {
	t.print("destructor called: %s", t.name)
}

func newTracked(ctx *cyclegc.Context, name string, print func(string, ...any)) cyclegc.Handle[*tracked] {
	return cyclegc.Allocate(ctx, &tracked{name: name, print: print})
}

func runDemo(cmd *cobra.Command, args []string) error {
	scenario := args[0]

	style := lipgloss.NewStyle()
	if colorEnabled() {
		style = style.Foreground(lipgloss.Color("10"))
	}
	print := func(format string, a ...any) {
		fmt.Println(style.Render(fmt.Sprintf(format, a...)))
	}

	ctx := cyclegc.NewContext()
	ctx.SetAutoCollect(false)

	reportRoots := func(label string) {
		print("root buffer size after %s: %d", label, ctx.RootBufferLen())
	}

	switch scenario {
	case "S1":
		n1 := newTracked(ctx, "N1", print)
		n2 := newTracked(ctx, "N2", print)
		n3 := newTracked(ctx, "N3", print)
		n1.AddChild(n2.Node())
		n2.AddChild(n3.Node())
		n3.Destroy()
		n2.Destroy()
		n1.Destroy()
		reportRoots("drops")

	case "S2":
		a := newTracked(ctx, "A", print)
		b := newTracked(ctx, "B", print)
		a.AddChild(b.Copy().Node())
		b.AddChild(a.Copy().Node())
		a.Destroy()
		b.Destroy()
		reportRoots("drops, before collect_cycles")
		ctx.CollectCycles()
		reportRoots("collect_cycles")

	case "S3":
		a := newTracked(ctx, "A", print)
		b := newTracked(ctx, "B", print)
		a.AddChild(b.Copy().Node())
		b.AddChild(a.Copy().Node())
		b.Destroy()
		ctx.CollectCycles()
		print("A's surviving external Handle rescued the cycle (A.count=%d, B.count=%d)", a.Node().Count(), b.Node().Count())
		reportRoots("collect_cycles")

	case "S4":
		r := newTracked(ctx, "R", print)
		w := r.Downgrade()
		r.Destroy()
		_, ok := w.Upgrade()
		print("weak upgrade after drop succeeded: %t", ok)

	case "S5":
		a := newTracked(ctx, "A", print)
		b := newTracked(ctx, "B", print)
		c := newTracked(ctx, "C", print)
		d := newTracked(ctx, "D", print)
		a.AddChild(b.Copy().Node())
		b.AddChild(a.Copy().Node())
		c.AddChild(d.Copy().Node())
		d.AddChild(c.Copy().Node())
		a.Destroy()
		b.Destroy()
		c.Destroy()
		d.Destroy()
		ctx.CollectCycles()
		reportRoots("collect_cycles")

	case "S6":
		a := newTracked(ctx, "A", print)
		b := newTracked(ctx, "B", print)
		c := newTracked(ctx, "C", print)
		a.AddChild(b.Copy().Node())
		b.AddChild(c.Copy().Node())
		c.AddChild(a.Copy().Node())
		a.Destroy()
		b.Destroy()
		ctx.CollectCycles()
		print("first collect_cycles freed nothing; C's external Handle still rescues the cycle")
		c.Destroy()
		ctx.CollectCycles()
		reportRoots("second collect_cycles")

	default:
		fmt.Fprintf(os.Stderr, "unknown scenario %q; valid scenarios are S1-S6\n", scenario)
		os.Exit(exitError)
	}

	return nil
}
