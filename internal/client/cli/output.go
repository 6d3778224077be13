package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/aussiebroadwan/reels/pkg/session/domain"
	"github.com/aussiebroadwan/reels/pkg/session/route"
)

type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) *printer { return &printer{w: w} }

func (p *printer) Info(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) Success(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(p.w, format+"\n", args...)
}

func (p *printer) Warn(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(p.w, format+"\n", args...)
}

// Decision prints the decision kind coloured by how far along the user is.
func (p *printer) Decision(d domain.AuthDecision) {
	c := color.New(color.FgRed, color.Bold)
	switch d.Kind {
	case domain.AuthenticatedComplete:
		c = color.New(color.FgGreen, color.Bold)
	case domain.AuthenticatedIncomplete:
		c = color.New(color.FgYellow, color.Bold)
	}
	fmt.Fprintf(p.w, "decision: %s\n", c.Sprint(d.Kind))

	if d.Authenticated() {
		p.Info("  email:   %s", orDash(d.Profile.Email))
		p.Info("  name:    %s", orDash(d.Profile.Name))
	}
}

// Route is the navigator the shell reports resets through.
func (p *printer) Route(to route.Route, params route.Params) {
	color.New(color.FgCyan).Fprintf(p.w, "route: %s\n", to)
	if params.ConsumeFlag(route.ParamShowRegistrationModal) {
		p.Warn("profile incomplete: finish it with `reelsctl register`")
	}
}

// Table renders key/value rows.
func (p *printer) Table(header []string, rows [][]string) error {
	table := tablewriter.NewTable(p.w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
	)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
