package commands

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/lk2023060901/coursesize-backend/internal/cli/output"
	"github.com/lk2023060901/coursesize-backend/internal/coursesize/biz"
	"github.com/spf13/cobra"
)

var (
	reportCategory int64
	reportFormat   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the course size report",
	Example: `  coursesize report
  coursesize report --category 3
  coursesize report --format csv > export_csv.csv`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().Int64Var(&reportCategory, "category", 0, "limit the report to a category subtree (0 = all courses)")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "o", "table", "output format: table, json, csv")
}

func runReport(cmd *cobra.Command, _ []string) error {
	format, err := output.ParseFormat(reportFormat)
	if err != nil {
		return err
	}

	app, cleanup, err := bootstrap(true)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := app.Report.Generate(cmd.Context(), biz.ReportRequest{CategoryID: reportCategory})
	if err != nil {
		return err
	}

	printer := output.NewPrinter(cmd.OutOrStdout(), format)
	if format == output.FormatJSON {
		return printer.Print(report)
	}
	return printReport(printer, report)
}

// reportView adapts a report to the table and CSV printers.
type reportView struct {
	*biz.Report
}

func (v reportView) Headers() []string {
	return biz.ExportHeader
}

func (v reportView) Rows() [][]string {
	rows := make([][]string, 0, len(v.Courses)+1)
	for _, c := range v.Courses {
		rows = append(rows, []string{c.ShortName, c.CategoryName, c.RawSize, c.BackupSize})
	}
	return append(rows, []string{"Total", "", v.Totals.RawSize, v.Totals.BackupSize})
}

func (v reportView) CSVRows() [][]string {
	return v.ExportRows()
}

func printReport(p *output.Printer, report *biz.Report) error {
	if err := p.Print(reportView{report}); err != nil {
		return err
	}
	if p.Format() != output.FormatTable {
		return nil
	}
	if report.EmptyCoursesHidden {
		p.Println("\nCourses without stored files are hidden.")
	}
	if !report.ShowSiteSummary {
		return nil
	}

	p.Println()
	if err := output.KeyValues(p.Writer(), siteSummary(report)); err != nil {
		return err
	}

	if len(report.Users) == 0 {
		return nil
	}
	p.Println()
	users := output.NewTableData("User", "Disk usage")
	for _, u := range report.Users {
		users.AddRow(u.DisplayName, u.RawSize)
	}
	return output.PrintTable(p.Writer(), users)
}

func siteSummary(report *biz.Report) [][2]string {
	var pairs [][2]string
	if report.System != nil {
		pairs = append(pairs,
			[2]string{"System usage", report.System.RawSize},
			[2]string{"System backups", report.System.BackupSize},
		)
	}
	if u := report.SiteUsage; u != nil {
		pairs = append(pairs, [2]string{"Site data", fmt.Sprintf("%s (updated %s)", u.Size, humanize.Time(u.LastUpdated))})
	}
	if report.StorageSizeLimit != "" {
		pairs = append(pairs, [2]string{"Storage limit", report.StorageSizeLimit})
	}
	pairs = append(pairs, [2]string{"Contexts", strconv.Itoa(report.Contexts)})
	return pairs
}

