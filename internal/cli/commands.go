package cli

import (
	"errors"
	"fmt"
	"html"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sakif/applytrack/internal/model"
	"github.com/sakif/applytrack/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	p := tea.NewProgram(tui.NewModel(ctx.Ctx, ctx.Store), tea.WithAltScreen(), tea.WithContext(ctx.Ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}

type ListCmd struct {
	Query string `short:"q" help:"Only show companies whose name contains this text (case-insensitive)."`
}

func (c *ListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Refresh(ctx.Ctx); err != nil {
		return err
	}

	records := ctx.Store.DerivedView(c.Query)
	if len(records) == 0 {
		fmt.Fprintln(ctx.Out, "No applications found.")
		return nil
	}
	fmt.Fprintln(ctx.Out, tui.RenderTable(records, -1))
	return nil
}

type AddCmd struct {
	Name     string `arg:"" help:"Company name."`
	Comments string `short:"c" help:"Free-form notes."`
}

func (c *AddCmd) Run(ctx *Context) error {
	company, err := ctx.Store.AddRecord(ctx.Ctx, c.Name, c.Comments)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Added %s (%s)\n", html.UnescapeString(company.Name), company.ID)
	return nil
}

type EditCmd struct {
	ID       string  `arg:"" help:"Application id."`
	Name     *string `short:"n" help:"New company name."`
	Rejected bool    `xor:"status" help:"Mark as rejected."`
	Pending  bool    `xor:"status" help:"Mark as pending."`
	Comments *string `short:"c" help:"Replace the comments."`
}

// errNotListed is returned when the id is not in the server's list.
var errNotListed = errors.New("no application with that id")

// Run sends a full update: flags left unset keep the record's current
// values, read from a fresh list.
func (c *EditCmd) Run(ctx *Context) error {
	if err := ctx.Store.Refresh(ctx.Ctx); err != nil {
		return err
	}

	current, ok := find(ctx.Store.Records(), c.ID)
	if !ok {
		return fmt.Errorf("%w: %s", errNotListed, c.ID)
	}

	name := html.UnescapeString(current.Name)
	if c.Name != nil {
		name = *c.Name
	}
	comments := current.Comments
	if c.Comments != nil {
		comments = *c.Comments
	}
	rejected := current.Rejected
	switch {
	case c.Rejected:
		rejected = true
	case c.Pending:
		rejected = false
	}

	company, err := ctx.Store.EditRecord(ctx.Ctx, c.ID, name, rejected, comments)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Updated %s: %s\n", html.UnescapeString(company.Name), company.Status())
	return nil
}

type RmCmd struct {
	ID string `arg:"" help:"Application id."`
}

func (c *RmCmd) Run(ctx *Context) error {
	company, err := ctx.Store.RemoveRecord(ctx.Ctx, c.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Deleted %s\n", html.UnescapeString(company.Name))
	return nil
}

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *Context) error {
	if err := ctx.Store.Refresh(ctx.Ctx); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Applied: %d\nRejection: %s\n", len(ctx.Store.Records()), ctx.Store.RejectionDisplay())
	return nil
}

func find(records []model.Company, id string) (model.Company, bool) {
	for _, c := range records {
		if c.ID == id {
			return c, true
		}
	}
	return model.Company{}, false
}
