package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
	"github.com/joseph-ayodele/pantry-tracker/internal/review"
)

func candidates() []entity.CandidateItem {
	return []entity.CandidateItem{
		{Name: "Tomatoes", Quantity: 1, Unit: "kg", Location: "Pantry", Status: "Fresh"},
		{Name: "Milk", Quantity: 1, Unit: "l", Location: "Fridge", Status: "Fresh"},
	}
}

func newREPL(committed *[]entity.CommitRow) (*repl, *bytes.Buffer) {
	var out bytes.Buffer
	return &repl{
		sess: review.NewSession(candidates()),
		out:  &out,
		commit: func(_ context.Context, rows []entity.CommitRow) (int, error) {
			*committed = rows
			n := 0
			for _, r := range rows {
				if r.Selected {
					n++
				}
			}
			return n, nil
		},
	}, &out
}

func TestREPLDeselectAndCommit(t *testing.T) {
	var committed []entity.CommitRow
	r, out := newREPL(&committed)

	err := r.Run(context.Background(), strings.NewReader("toggle 2\nedit 1 quantity 3\ncommit\nlist\n"))
	require.NoError(t, err)

	require.Len(t, committed, 2)
	assert.True(t, committed[0].Selected)
	assert.Equal(t, 3, committed[0].Quantity)
	assert.False(t, committed[1].Selected)
	assert.Contains(t, out.String(), "added 1 item(s)")
}

func TestREPLEditingCommands(t *testing.T) {
	var committed []entity.CommitRow
	r, out := newREPL(&committed)
	ctx := context.Background()

	require.NoError(t, r.exec(ctx, "dup 1"))
	require.Equal(t, 3, r.sess.Len())
	assert.Equal(t, "Tomatoes", r.sess.Rows()[1].Name)

	require.NoError(t, r.exec(ctx, "rm 2"))
	require.NoError(t, r.exec(ctx, "add"))
	rows := r.sess.Rows()
	require.Len(t, rows, 3)
	assert.Empty(t, rows[2].Name)

	require.NoError(t, r.exec(ctx, "edit 3 name Basmati Rice"))
	require.NoError(t, r.exec(ctx, "edit 3 price 120"))
	last := r.sess.Rows()[2]
	assert.Equal(t, "Basmati Rice", last.Name)
	require.NotNil(t, last.Price)
	assert.Equal(t, "120", last.Price.String())
	assert.False(t, last.IsEditing)

	require.NoError(t, r.exec(ctx, "all"))
	assert.Equal(t, 0, r.sess.SelectedCount())
	require.NoError(t, r.exec(ctx, "all"))
	assert.Equal(t, 3, r.sess.SelectedCount())
	assert.Contains(t, out.String(), "3 of 3 selected")
}

func TestREPLRejectsBadInput(t *testing.T) {
	var committed []entity.CommitRow
	r, _ := newREPL(&committed)
	ctx := context.Background()

	for _, line := range []string{"toggle 9", "toggle x", "edit 1 colour red", "edit 1 quantity many", "edit 1", "frobnicate 1", "frobnicate"} {
		err := r.exec(ctx, line)
		require.Error(t, err, line)
		assert.ErrorIs(t, err, common.ErrValidation, line)
	}
	assert.NoError(t, r.exec(ctx, "   "))
	assert.ErrorIs(t, r.exec(ctx, "quit"), errQuit)
	assert.Nil(t, committed)
}
