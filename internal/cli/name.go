package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskforge/transmute/internal/app"
	"github.com/taskforge/transmute/internal/usecase"
)

// newNameCommand creates the name command, which previews the branch a task would get.
func newNameCommand(c *app.Container) *cobra.Command {
	var (
		in     usecase.PreviewBranchNameInput
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "name",
		Short: "Preview the branch name for a task",
		Long: `Run the branch naming engine without touching git.

Uses the opencode server when AI naming is configured, otherwise the
deterministic <type>/<id>-<title> name.`,
		Example: `  transmute name --id T-42 --title "Add OAuth login"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireContainer(c); err != nil {
				return err
			}

			out, err := c.PreviewBranchNameUseCase().Execute(cmd.Context(), in)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			_, _ = fmt.Fprintf(w, "branch:   %s\n", out.Branch)
			_, _ = fmt.Fprintf(w, "worktree: %s\n", out.WorktreePath)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&in.TaskID, "id", "", "Task identifier")
	cmd.Flags().StringVar(&in.Description, "description", "", "Task description (used by AI naming)")
	cmd.Flags().StringVar(&in.Type, "type", "", "Branch type hint")
	cmd.Flags().StringVar(&in.Slug, "slug", "", "Branch slug to use instead of deriving one")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}
