package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// VolunteerDataCmd creates the volunteerData command
func VolunteerDataCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "volunteerData <volunteer_name>",
		Short: "Show a volunteer's attendance and supervision records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			asJSON, _ := cmd.Flags().GetBool("json")

			app.Logger.Debug("volunteerData command", zap.String("volunteer", name))

			if asJSON {
				payload, err := app.VolunteerData.GetAllData(app.Ctx, name)
				if err != nil {
					return err
				}
				fmt.Println(payload)
				return nil
			}

			data, err := app.VolunteerData.Aggregate(app.Ctx, name)
			if err != nil {
				return err
			}

			fmt.Printf("\nAttendance for %s (%d entries)\n\n", name, len(data.Attendance))
			if len(data.Attendance) > 0 {
				fmt.Printf("%-12s %-8s %-16s %-7s %-10s %s\n", "Date", "Time", "Duty", "Hours", "From", "Remarks")
				fmt.Println(strings.Repeat("-", 72))
				for _, rec := range data.Attendance {
					fmt.Printf("%-12s %-8s %-16s %-7s %-10s %s\n",
						rec.Date, rec.Time, rec.Duty, rec.Hours, rec.Location, rec.Remarks)
				}
			}

			fmt.Printf("\nSupervision for %s (%d entries)\n\n", name, len(data.Supervision))
			if len(data.Supervision) > 0 {
				fmt.Printf("%-12s %-20s %-7s %s\n", "Date", "Supervisor", "Hours", "Remark")
				fmt.Println(strings.Repeat("-", 60))
				for _, rec := range data.Supervision {
					fmt.Printf("%-12s %-20s %-7s %s\n", rec.Date, rec.SupervisorName, rec.TimeInHrs, rec.Remark)
				}
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Print the cached getAllData payload instead of a table")

	return cmd
}

// HoursSummaryCmd creates the hoursSummary command
func HoursSummaryCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hoursSummary <volunteer_name>",
		Short: "Total the hours a volunteer has logged, by duty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			summary, err := app.VolunteerData.SummarizeHours(app.Ctx, args[0])
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}

			fmt.Printf("\nHours logged by %s\n\n", summary.Volunteer)
			fmt.Printf("%-24s %8s %8s\n", "Duty", "Entries", "Hours")
			fmt.Println(strings.Repeat("-", 42))
			for _, d := range summary.ByDuty {
				duty := d.Duty
				if duty == "" {
					duty = "(none)"
				}
				fmt.Printf("%-24s %8d %8s\n", duty, d.Entries, d.Hours.StringFixed(2))
			}
			fmt.Println(strings.Repeat("-", 42))
			fmt.Printf("%-24s %17s\n", "Attendance total", summary.AttendanceHours.StringFixed(2))
			fmt.Printf("%-24s %17s\n", "Supervision total", summary.SupervisionHours.StringFixed(2))

			if summary.Unparsed > 0 {
				fmt.Printf("\n%d entries had hours that could not be read and were skipped\n", summary.Unparsed)
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Print the summary as JSON")

	return cmd
}
