package cli

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"taskline/internal/lifecycle"
)

var (
	categoryDescription string
	categoryColor       string
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Work with task categories",
}

var categoriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the categories visible to the owner",
	RunE:  runCategoriesList,
}

var categoriesCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a custom category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoriesCreate,
}

var categoriesDeleteCmd = &cobra.Command{
	Use:   "delete <category-id>",
	Short: "Delete a custom category and its tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoriesDelete,
}

func init() {
	categoriesCreateCmd.Flags().StringVar(&categoryDescription, "description", "", "category description")
	categoriesCreateCmd.Flags().StringVar(&categoryColor, "color", "", "hex color like #36a2eb (random when empty)")

	categoriesCmd.AddCommand(categoriesListCmd)
	categoriesCmd.AddCommand(categoriesCreateCmd)
	categoriesCmd.AddCommand(categoriesDeleteCmd)
}

func runCategoriesList(cmd *cobra.Command, args []string) error {
	ownerID, err := owner()
	if err != nil {
		return err
	}
	tracker, st, err := openTracker()
	if err != nil {
		return err
	}
	defer st.Close()

	cats, err := tracker.Categories(cmd.Context(), ownerID)
	if err != nil {
		return err
	}
	for _, cat := range cats {
		kind := "system"
		if cat.IsCustom {
			kind = "custom"
		}
		cmd.Printf("%s  %-20s %-6s %s\n", cat.ID, cat.Name, kind, cat.Color)
	}
	return nil
}

func runCategoriesCreate(cmd *cobra.Command, args []string) error {
	ownerID, err := owner()
	if err != nil {
		return err
	}
	tracker, st, err := openTracker()
	if err != nil {
		return err
	}
	defer st.Close()

	color := categoryColor
	if color == "" {
		color = tracker.Lifecycle.RandomColor()
	}
	cat, err := tracker.Lifecycle.CreateCategory(cmd.Context(), ownerID, lifecycle.CategoryInput{
		Name:        args[0],
		Description: categoryDescription,
		Color:       color,
	})
	if err != nil {
		return err
	}
	cmd.Printf("Created category %s (%s)\n", cat.Name, cat.ID)
	return nil
}

func runCategoriesDelete(cmd *cobra.Command, args []string) error {
	ownerID, err := owner()
	if err != nil {
		return err
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return err
	}
	tracker, st, err := openTracker()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := tracker.Lifecycle.DeleteCategory(cmd.Context(), ownerID, id); err != nil {
		return err
	}
	cmd.Println("Category deleted")
	return nil
}
