package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"elephant/app"
	"elephant/model"
)

func listsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lists",
		Short: "Show all checklists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printChecklists(cmd.OutOrStdout(), openStore())
			return nil
		},
	}
}

func tasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks [checklist]",
		Short: "Show the tasks of a checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := openStore()
			list, err := findChecklist(s, args[0])
			if err != nil {
				return err
			}
			printTasks(cmd.OutOrStdout(), list)
			return nil
		},
	}
}

func addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [checklist] [title]",
		Short: "Append a task to a checklist",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := openStore()
			list, err := findChecklist(s, args[0])
			if err != nil {
				return err
			}
			title := strings.Join(args[1:], " ")
			if list.ID == s.WellnessListID() {
				task, err := s.AddWellnessActivity(title)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %q to %s\n", task.Title, model.WellnessPoolName)
				return nil
			}
			task, err := s.AddTask(list.ID, title, list.ID == s.WellnessPoolID())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q to %s\n", task.Title, list.Name)
			return nil
		},
	}
}

func doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done [checklist] [task]",
		Short: "Toggle completion of a task by title or position",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := openStore()
			list, err := findChecklist(s, args[0])
			if err != nil {
				return err
			}
			taskID, err := findTask(list, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			if list.ID != s.WellnessListID() {
				task, err := s.ToggleTask(list.ID, taskID)
				if err != nil {
					return err
				}
				printToggle(cmd.OutOrStdout(), task)
				return nil
			}

			task, rot, err := s.ToggleWellnessTask(taskID)
			if err != nil {
				return err
			}
			printToggle(cmd.OutOrStdout(), task)
			if rot.Pending() {
				// No one is watching the list here, so rotate right away.
				rotateNow(cmd.OutOrStdout(), cmd.ErrOrStderr(), s, rot)
			}
			return nil
		},
	}
}

func rolloverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollover",
		Short: "Clear completed tasks if a new day has started",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed := openStore().RotateDailyCompletedTasks()
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d completed tasks\n", removed)
			return nil
		},
	}
}

func printToggle(w io.Writer, task model.Task) {
	state := "open"
	if task.IsCompleted {
		state = "done"
	}
	fmt.Fprintf(w, "%s: %s\n", task.Title, state)
}

// rotateNow applies r. The completion is already saved, so a failed
// replacement is reported as a warning rather than an error.
func rotateNow(out, errOut io.Writer, s *app.Store, r app.Rotation) {
	next, err := s.ApplyRotation(r)
	if err != nil {
		fmt.Fprintf(errOut, "Warning: wellness task not replaced: %v\n", err)
		return
	}
	fmt.Fprintf(out, "New wellness task: %s\n", next.Title)
}

func printChecklists(w io.Writer, s *app.Store) {
	for _, l := range s.Checklists() {
		done := 0
		for _, t := range l.Tasks {
			if t.IsCompleted {
				done++
			}
		}
		marker := " "
		if !l.CanDelete {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-28s %d/%d\n", marker, l.Name, done, len(l.Tasks))
	}
}

func printTasks(w io.Writer, list model.Checklist) {
	fmt.Fprintln(w, list.Name)
	fmt.Fprintln(w, strings.Repeat("=", len([]rune(list.Name))))
	if len(list.Tasks) == 0 {
		fmt.Fprintln(w, "  (empty)")
		return
	}
	for i, t := range list.Tasks {
		check := "[ ]"
		if t.IsCompleted {
			check = "[x]"
		}
		fmt.Fprintf(w, "%2d. %s %s\n", i+1, check, t.Title)
	}
}

// findChecklist matches by id or by case-insensitive name.
func findChecklist(s *app.Store, ref string) (model.Checklist, error) {
	ref = strings.TrimSpace(ref)
	if id, err := uuid.Parse(ref); err == nil {
		return s.Checklist(id)
	}
	for _, l := range s.Checklists() {
		if strings.EqualFold(l.Name, ref) {
			return l, nil
		}
	}
	return model.Checklist{}, fmt.Errorf("%w: %q", app.ErrChecklistNotFound, ref)
}

// findTask matches by 1-based position, id, or case-insensitive title.
func findTask(list model.Checklist, ref string) (uuid.UUID, error) {
	ref = strings.TrimSpace(ref)
	if pos, err := strconv.Atoi(ref); err == nil {
		if pos < 1 || pos > len(list.Tasks) {
			return uuid.Nil, fmt.Errorf("%w: position %d", app.ErrTaskNotFound, pos)
		}
		return list.Tasks[pos-1].ID, nil
	}
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	for _, t := range list.Tasks {
		if strings.EqualFold(t.Title, ref) {
			return t.ID, nil
		}
	}
	return uuid.Nil, fmt.Errorf("%w: %q", app.ErrTaskNotFound, ref)
}
