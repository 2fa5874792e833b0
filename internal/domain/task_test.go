package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeTask_OnlyCompletedKeepsOtherFields(t *testing.T) {
	current := Task{ID: 7, OwnerID: 3, Title: "buy milk", Description: "2 litres", Completed: false}

	next, err := MergeTask(current, TaskPatch{
		Title:     Some("buy milk"),
		Completed: Some(true),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), next.ID)
	assert.Equal(t, int64(3), next.OwnerID)
	assert.Equal(t, "buy milk", next.Title)
	assert.Equal(t, "2 litres", next.Description)
	assert.True(t, next.Completed)
}

func TestMergeTask_ExplicitEmptyDescriptionClears(t *testing.T) {
	current := Task{Title: "a", Description: "old"}

	next, err := MergeTask(current, TaskPatch{Title: Some("a"), Description: Some("")})
	require.NoError(t, err)
	assert.Equal(t, "", next.Description)
}

func TestMergeTask_DoesNotMutateCurrent(t *testing.T) {
	current := Task{Title: "a", Description: "d", Completed: true}

	_, err := MergeTask(current, TaskPatch{Text: Some("b"), Completed: Some(false)})
	require.NoError(t, err)
	assert.Equal(t, Task{Title: "a", Description: "d", Completed: true}, current)
}

func TestResolveTitle(t *testing.T) {
	tests := []struct {
		name    string
		patch   TaskPatch
		want    string
		wantErr bool
	}{
		{name: "title only", patch: TaskPatch{Title: Some("t")}, want: "t"},
		{name: "text only", patch: TaskPatch{Text: Some("x")}, want: "x"},
		{name: "title preferred", patch: TaskPatch{Title: Some("t"), Text: Some("x")}, want: "t"},
		{name: "blank title falls back to text", patch: TaskPatch{Title: Some("  "), Text: Some("x")}, want: "x"},
		{name: "neither", patch: TaskPatch{}, wantErr: true},
		{name: "both blank", patch: TaskPatch{Title: Some(""), Text: Some(" ")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.patch.ResolveTitle()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMergeTask_NoTitleIsValidationError(t *testing.T) {
	_, err := MergeTask(Task{Title: "a"}, TaskPatch{Completed: Some(true)})
	assert.ErrorIs(t, err, ErrValidation)
}
