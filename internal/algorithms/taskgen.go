package algorithms

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTaskTitleLength = 255
	MaxDaysBeforeExit  = 3650
)

var (
	ErrEmptyTaskTitle   = errors.New("task title is empty")
	ErrTaskTitleTooLong = fmt.Errorf("task title longer than %d characters", MaxTaskTitleLength)
	ErrInvalidOffset    = fmt.Errorf("days_before_exit must be between 0 and %d", MaxDaysBeforeExit)

	ErrEmptyObligation   = errors.New("obligation is empty")
	ErrObligationTooLong = fmt.Errorf("obligation longer than %d characters", MaxTaskTitleLength)
)

// TaskSpec is one obligation turned into a task by the extractor.
type TaskSpec struct {
	Title          string `json:"title"`
	DaysBeforeExit int    `json:"days_before_exit"`
}

type GeneratedTask struct {
	// Index - позиция исходного элемента в пакете
	Index     int
	Title     string
	DueDate   *time.Time
	Mandatory bool
	Status    string
}

type ItemFailure struct {
	Index  int    `json:"index"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

type TaskBatch struct {
	Tasks    []GeneratedTask
	Failures []ItemFailure
}

// DueDate derives the deadline from the earliest exit date. Without an exit
// date the task has no deadline.
func DueDate(earliestExit *time.Time, daysBeforeExit int) *time.Time {
	if earliestExit == nil {
		return nil
	}
	e := earliestExit.UTC()
	d := time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -daysBeforeExit)
	return &d
}

// GenerateTasks converts every spec independently; a bad item is reported
// and the rest of the batch still goes through.
func GenerateTasks(specs []TaskSpec, earliestExit *time.Time) TaskBatch {
	batch := TaskBatch{Tasks: make([]GeneratedTask, 0, len(specs))}
	for i, s := range specs {
		title := strings.TrimSpace(s.Title)
		if err := validateTaskSpec(title, s.DaysBeforeExit); err != nil {
			batch.Failures = append(batch.Failures, ItemFailure{Index: i, Title: s.Title, Reason: err.Error()})
			continue
		}
		batch.Tasks = append(batch.Tasks, GeneratedTask{
			Index:     i,
			Title:     title,
			DueDate:   DueDate(earliestExit, s.DaysBeforeExit),
			Mandatory: true,
			Status:    "pending",
		})
	}
	return batch
}

// ObligationBatch - обязательства, прошедшие проверку, и отбракованные.
// Kept[i] стоит на позиции Positions[i] исходного списка.
type ObligationBatch struct {
	Kept      []string
	Positions []int
	Failures  []ItemFailure
}

// SplitObligations checks every obligation on its own, so one blank or
// oversized line never rejects the whole batch.
func SplitObligations(obligations []string) ObligationBatch {
	var out ObligationBatch
	for i, raw := range obligations {
		o := strings.TrimSpace(raw)
		var err error
		switch {
		case o == "":
			err = ErrEmptyObligation
		case utf8.RuneCountInString(o) > MaxTaskTitleLength:
			err = ErrObligationTooLong
		}
		if err != nil {
			out.Failures = append(out.Failures, ItemFailure{Index: i, Title: truncateRunes(raw, 80), Reason: err.Error()})
			continue
		}
		out.Kept = append(out.Kept, o)
		out.Positions = append(out.Positions, i)
	}
	return out
}

// Remap translates batch indices back to positions of the original
// obligations. It only applies when the extractor produced one spec per
// kept obligation; otherwise indices stay relative to the specs.
func (b ObligationBatch) Remap(batch TaskBatch, specCount int) TaskBatch {
	if specCount != len(b.Positions) {
		return batch
	}
	for i := range batch.Tasks {
		batch.Tasks[i].Index = b.Positions[batch.Tasks[i].Index]
	}
	for i := range batch.Failures {
		batch.Failures[i].Index = b.Positions[batch.Failures[i].Index]
	}
	return batch
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func validateTaskSpec(title string, days int) error {
	if title == "" {
		return ErrEmptyTaskTitle
	}
	if utf8.RuneCountInString(title) > MaxTaskTitleLength {
		return ErrTaskTitleTooLong
	}
	if days < 0 || days > MaxDaysBeforeExit {
		return ErrInvalidOffset
	}
	return nil
}
