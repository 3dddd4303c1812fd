package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-tracker/pkg/core/model"
)

// addRequesterFlag registers the --as flag naming the admin performing the change
func addRequesterFlag(cmd *cobra.Command) {
	cmd.Flags().String("as", "", "Email of the admin performing this action (required)")
	cmd.MarkFlagRequired("as")
}

// ListUsersCmd creates the listUsers command
func ListUsersCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listUsers",
		Short: "List everyone in the user directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			requester, _ := cmd.Flags().GetString("as")

			users, err := app.Access.List(app.Ctx, requester)
			if err != nil {
				return err
			}

			fmt.Printf("\nFound %d users:\n\n", len(users))
			for _, u := range users {
				sheet := ""
				if u.VolunteerSheetName != "" {
					sheet = fmt.Sprintf(" [Sheet: %s]", u.VolunteerSheetName)
				}
				fmt.Printf("- %s (%s) - %s%s\n", u.Name, u.Email, u.Role, sheet)
			}

			return nil
		},
	}

	addRequesterFlag(cmd)

	return cmd
}

// AddUserCmd creates the addUser command
func AddUserCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addUser <email> <name>",
		Short: "Add a user to the directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			requester, _ := cmd.Flags().GetString("as")
			role, _ := cmd.Flags().GetString("role")
			sheet, _ := cmd.Flags().GetString("sheet")

			app.Logger.Debug("addUser command",
				zap.String("email", args[0]),
				zap.String("role", role))

			if err := app.Access.Create(app.Ctx, requester, args[0], args[1], model.Role(role), sheet); err != nil {
				return err
			}

			fmt.Printf("\n✓ Added %s (%s) as %s\n\n", args[1], args[0], role)
			return nil
		},
	}

	addRequesterFlag(cmd)
	cmd.Flags().String("role", string(model.RoleVolunteer), `Role: "admin" or "volunteer"`)
	cmd.Flags().String("sheet", "", "Name of the volunteer's attendance sheet")

	return cmd
}

// DeleteUserCmd creates the deleteUser command
func DeleteUserCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deleteUser <email>",
		Short: "Remove a user from the directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requester, _ := cmd.Flags().GetString("as")

			if err := app.Access.Delete(app.Ctx, requester, args[0]); err != nil {
				return err
			}

			fmt.Printf("\n✓ Deleted %s\n\n", args[0])
			return nil
		},
	}

	addRequesterFlag(cmd)

	return cmd
}

// SetRoleCmd creates the setRole command
func SetRoleCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setRole <email> <role>",
		Short: "Change a user's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			requester, _ := cmd.Flags().GetString("as")

			if err := app.Access.UpdateRole(app.Ctx, requester, args[0], model.Role(args[1])); err != nil {
				return err
			}

			fmt.Printf("\n✓ %s is now %s\n\n", args[0], args[1])
			return nil
		},
	}

	addRequesterFlag(cmd)

	return cmd
}
