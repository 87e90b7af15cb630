package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var tookFlag time.Duration

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Work with active tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active tasks in their manual order",
	RunE:  runTasksList,
}

var tasksCompleteCmd = &cobra.Command{
	Use:   "complete <task-id>",
	Short: "Retire a task as completed",
	Long: `Retire a task as completed. A deadline that already passed records
the completion as out of deadline instead of successful.`,
	Args: cobra.ExactArgs(1),
	RunE: runTasksComplete,
}

var tasksFailCmd = &cobra.Command{
	Use:   "fail <task-id>",
	Short: "Retire a task as failed",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksFail,
}

var tasksReorderCmd = &cobra.Command{
	Use:   "reorder <task-id>...",
	Short: "Re-rank the active tasks",
	Long: `Re-rank the owner's active tasks to the given order. The ids must
list every active task exactly once.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTasksReorder,
}

func init() {
	tasksCompleteCmd.Flags().DurationVar(&tookFlag, "took", 0, "time the task actually took (e.g. 1h30m)")
	tasksFailCmd.Flags().DurationVar(&tookFlag, "took", 0, "time spent before giving up")

	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksCompleteCmd)
	tasksCmd.AddCommand(tasksFailCmd)
	tasksCmd.AddCommand(tasksReorderCmd)
}

func runTasksList(cmd *cobra.Command, args []string) error {
	ownerID, err := owner()
	if err != nil {
		return err
	}
	tracker, st, err := openTracker()
	if err != nil {
		return err
	}
	defer st.Close()

	tasks, err := tracker.OrderedTasks(cmd.Context(), ownerID)
	if err != nil {
		return err
	}
	for _, task := range tasks {
		line := []string{task.ID.String(), task.Name}
		if task.Deadline != nil {
			line = append(line, "due "+task.Deadline.Format("2006-01-02"))
		}
		cmd.Printf("%2d. %s\n", task.Order, strings.Join(line, "  "))
	}
	return nil
}

func runTasksComplete(cmd *cobra.Command, args []string) error {
	ownerID, err := owner()
	if err != nil {
		return err
	}
	tracker, st, err := openTracker()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := tracker.CompleteTask(cmd.Context(), ownerID, args[0], tookFlag); err != nil {
		return err
	}
	cmd.Println("Task completed")
	return nil
}

func runTasksFail(cmd *cobra.Command, args []string) error {
	ownerID, err := owner()
	if err != nil {
		return err
	}
	tracker, st, err := openTracker()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := tracker.FailTask(cmd.Context(), ownerID, args[0], tookFlag); err != nil {
		return err
	}
	cmd.Println("Task failed")
	return nil
}

func runTasksReorder(cmd *cobra.Command, args []string) error {
	ownerID, err := owner()
	if err != nil {
		return err
	}
	tracker, st, err := openTracker()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := tracker.Reorder(cmd.Context(), ownerID, args); err != nil {
		return err
	}
	cmd.Println("Tasks reordered")
	return nil
}
