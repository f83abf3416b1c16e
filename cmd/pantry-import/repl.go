package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
	"github.com/joseph-ayodele/pantry-tracker/internal/review"
)

const helpText = `commands:
  list                  show staged rows
  toggle N              select or deselect row N
  all                   select all rows, or deselect all when every row is selected
  edit N FIELD VALUE    set name|brand|quantity|unit|location|category|notes|price
  dup N                 duplicate row N
  rm N                  remove row N
  add                   append a blank row
  commit                add the selected rows to the kitchen
  quit                  leave without committing`

// CommitFunc persists the reviewed rows and reports how many were added.
type CommitFunc func(ctx context.Context, rows []entity.CommitRow) (int, error)

var errQuit = errors.New("quit")

type repl struct {
	sess   *review.Session
	out    io.Writer
	commit CommitFunc
}

// Run reads commands from in until quit, a successful commit, or EOF.
func (r *repl) Run(ctx context.Context, in io.Reader) error {
	r.list()
	fmt.Fprintln(r.out, `type "help" for commands`)
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		err := r.exec(ctx, sc.Text())
		switch {
		case errors.Is(err, errQuit):
			return nil
		case err != nil:
			fmt.Fprintln(r.out, "error:", message(err))
		}
	}
}

func (r *repl) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "help", "?":
		fmt.Fprintln(r.out, helpText)
		return nil
	case "list", "ls":
		r.list()
		return nil
	case "all":
		r.sess.ToggleSelectAll()
		r.list()
		return nil
	case "add":
		r.sess.AddBlankRow()
		r.list()
		return nil
	case "quit", "exit", "q":
		return errQuit
	case "commit":
		return r.doCommit(ctx)
	}

	if len(args) == 0 {
		return common.ValidationErrorf("unknown command %q", cmd)
	}
	id, err := r.rowID(args[0])
	if err != nil {
		return err
	}
	switch cmd {
	case "toggle", "t":
		err = r.sess.ToggleSelect(id)
	case "dup":
		_, err = r.sess.DuplicateRow(id)
	case "rm":
		err = r.sess.RemoveRow(id)
	case "edit", "e":
		if len(args) < 3 {
			return common.ValidationErrorf("usage: edit N FIELD VALUE")
		}
		if err = r.sess.StartEdit(id); err == nil {
			err = r.sess.UpdateField(id, args[1], strings.Join(args[2:], " "))
			_ = r.sess.StopEdit(id)
		}
	default:
		return common.ValidationErrorf("unknown command %q", cmd)
	}
	if err != nil {
		return err
	}
	r.list()
	return nil
}

func (r *repl) doCommit(ctx context.Context) error {
	n, err := r.commit(ctx, r.sess.CommitRows())
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "added %d item(s)\n", n)
	return errQuit
}

// rowID maps a 1-based row number to its staged id.
func (r *repl) rowID(arg string) (string, error) {
	n, err := strconv.Atoi(arg)
	rows := r.sess.Rows()
	if err != nil || n < 1 || n > len(rows) {
		return "", common.ValidationErrorf("row must be between 1 and %d", len(rows))
	}
	return rows[n-1].ID, nil
}

func (r *repl) list() {
	rows := r.sess.Rows()
	if len(rows) == 0 {
		fmt.Fprintln(r.out, "(no rows)")
		return
	}
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSEL\tNAME\tBRAND\tQTY\tUNIT\tLOCATION\tCATEGORY\tPRICE")
	for i, row := range rows {
		sel := "[ ]"
		if row.Selected {
			sel = "[x]"
		}
		price := "-"
		if row.Price != nil {
			price = row.Price.String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			i+1, sel, orDash(row.Name), optional(row.Brand), row.Quantity, row.Unit, row.Location, optional(row.Category), price)
	}
	_ = tw.Flush()
	fmt.Fprintf(r.out, "%d of %d selected, total %s\n", r.sess.SelectedCount(), r.sess.Len(), r.sess.TotalValue().StringFixed(2))
}

func optional(s *string) string {
	if s == nil {
		return "-"
	}
	return orDash(*s)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func message(err error) string {
	var ae *common.AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}
