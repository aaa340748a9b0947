package algorithms

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDueDate(t *testing.T) {
	exit := date(2025, 6, 30)

	due := DueDate(&exit, 14)
	require.NotNil(t, due)
	assert.Equal(t, date(2025, 6, 16), *due)

	// crosses a month boundary
	due = DueDate(&exit, 45)
	require.NotNil(t, due)
	assert.Equal(t, date(2025, 5, 16), *due)

	due = DueDate(&exit, 0)
	require.NotNil(t, due)
	assert.Equal(t, exit, *due)

	assert.Nil(t, DueDate(nil, 14))
}

func TestDueDate_IgnoresTimeOfDay(t *testing.T) {
	exit := time.Date(2025, 6, 30, 23, 30, 0, 0, time.UTC)
	due := DueDate(&exit, 14)
	require.NotNil(t, due)
	assert.Equal(t, date(2025, 6, 16), *due)
}

func TestGenerateTasks_WithoutExitDate(t *testing.T) {
	batch := GenerateTasks([]TaskSpec{{Title: "Return keys", DaysBeforeExit: 1}}, nil)

	require.Len(t, batch.Tasks, 1)
	assert.Empty(t, batch.Failures)
	assert.Nil(t, batch.Tasks[0].DueDate)
	assert.True(t, batch.Tasks[0].Mandatory)
	assert.Equal(t, "pending", batch.Tasks[0].Status)
}

func TestGenerateTasks_PartialFailure(t *testing.T) {
	exit := date(2025, 6, 30)
	specs := []TaskSpec{
		{Title: "Book final cleaning", DaysBeforeExit: 14},
		{Title: "Repaint walls", DaysBeforeExit: 30},
		{Title: "   ", DaysBeforeExit: 7},
		{Title: "Schedule handover", DaysBeforeExit: 3},
		{Title: "Return keys", DaysBeforeExit: 0},
	}

	batch := GenerateTasks(specs, &exit)

	assert.Len(t, batch.Tasks, 4)
	require.Len(t, batch.Failures, 1)
	assert.Equal(t, 2, batch.Failures[0].Index)
	assert.Equal(t, ErrEmptyTaskTitle.Error(), batch.Failures[0].Reason)

	assert.Equal(t, "Book final cleaning", batch.Tasks[0].Title)
	assert.Equal(t, date(2025, 6, 16), *batch.Tasks[0].DueDate)
	assert.Equal(t, "Return keys", batch.Tasks[3].Title)
}

func TestGenerateTasks_ItemValidation(t *testing.T) {
	specs := []TaskSpec{
		{Title: strings.Repeat("x", MaxTaskTitleLength+1), DaysBeforeExit: 1},
		{Title: "Negative offset", DaysBeforeExit: -2},
		{Title: "Far future", DaysBeforeExit: MaxDaysBeforeExit + 1},
		{Title: "  Trimmed  ", DaysBeforeExit: 1},
	}

	batch := GenerateTasks(specs, nil)

	require.Len(t, batch.Tasks, 1)
	assert.Equal(t, "Trimmed", batch.Tasks[0].Title)
	require.Len(t, batch.Failures, 3)
	assert.Equal(t, ErrTaskTitleTooLong.Error(), batch.Failures[0].Reason)
	assert.Equal(t, ErrInvalidOffset.Error(), batch.Failures[1].Reason)
	assert.Equal(t, ErrInvalidOffset.Error(), batch.Failures[2].Reason)
}

func TestGenerateTasks_Empty(t *testing.T) {
	batch := GenerateTasks(nil, nil)
	assert.Empty(t, batch.Tasks)
	assert.Empty(t, batch.Failures)
}

func TestSplitObligations(t *testing.T) {
	checked := SplitObligations([]string{" Reinigen ", "", strings.Repeat("ü", MaxTaskTitleLength+1), "Maler"})

	assert.Equal(t, []string{"Reinigen", "Maler"}, checked.Kept)
	assert.Equal(t, []int{0, 3}, checked.Positions)
	require.Len(t, checked.Failures, 2)
	assert.Equal(t, 1, checked.Failures[0].Index)
	assert.Equal(t, ErrEmptyObligation.Error(), checked.Failures[0].Reason)
	assert.Equal(t, 2, checked.Failures[1].Index)
	assert.Equal(t, ErrObligationTooLong.Error(), checked.Failures[1].Reason)
	assert.Equal(t, 80, len([]rune(checked.Failures[1].Title)))

	// exactly at the limit is fine
	assert.Len(t, SplitObligations([]string{strings.Repeat("ü", MaxTaskTitleLength)}).Kept, 1)
}

func TestObligationBatch_Remap(t *testing.T) {
	checked := SplitObligations([]string{"a", "", "b", "c"})
	specs := []TaskSpec{
		{Title: "a", DaysBeforeExit: 1},
		{Title: "b", DaysBeforeExit: -1},
		{Title: "c", DaysBeforeExit: 1},
	}

	batch := checked.Remap(GenerateTasks(specs, nil), len(specs))
	require.Len(t, batch.Tasks, 2)
	assert.Equal(t, 0, batch.Tasks[0].Index)
	assert.Equal(t, 3, batch.Tasks[1].Index)
	require.Len(t, batch.Failures, 1)
	assert.Equal(t, 2, batch.Failures[0].Index)

	// the extractor split one obligation into several specs: indices stay spec-relative
	more := append(specs, TaskSpec{Title: "d", DaysBeforeExit: 1})
	batch = checked.Remap(GenerateTasks(more, nil), len(more))
	assert.Equal(t, 1, batch.Failures[0].Index)
}
