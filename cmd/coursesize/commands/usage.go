package commands

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lk2023060901/coursesize-backend/internal/cli/output"
	"github.com/lk2023060901/coursesize-backend/internal/coursesize/biz"
	"github.com/spf13/cobra"
)

var (
	usageRefresh bool
	usageFormat  string
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Print the site data directory size",
	Long: `Print the total size of the site data directory. The cached figure is
used while it is younger than usage_cache.interval; --refresh measures the
directory again and stores the result.`,
	RunE: runUsage,
}

func init() {
	usageCmd.Flags().BoolVar(&usageRefresh, "refresh", false, "ignore the cached value and rescan")
	usageCmd.Flags().StringVarP(&usageFormat, "format", "o", "table", "output format: table, json")
}

func runUsage(cmd *cobra.Command, _ []string) error {
	format, err := output.ParseFormat(usageFormat)
	if err != nil {
		return err
	}

	app, cleanup, err := bootstrap(true)
	if err != nil {
		return err
	}
	defer cleanup()

	var usage *biz.SiteUsage
	if usageRefresh {
		usage, err = app.SiteUsage.ForceRefresh(cmd.Context(), time.Now())
	} else {
		usage, err = app.SiteUsage.GetTotalUsage(cmd.Context(), time.Now())
	}
	if err != nil {
		return err
	}

	p := output.NewPrinter(cmd.OutOrStdout(), format)
	if format != output.FormatTable {
		return p.Print(usage)
	}
	return output.KeyValues(p.Writer(), usagePairs(usage, app.SiteUsage.RefreshInterval()))
}

func usagePairs(u *biz.SiteUsage, interval time.Duration) [][2]string {
	source := "measured now"
	if u.Cached {
		source = "cached"
	}
	return [][2]string{
		{"Site data", u.Size},
		{"Bytes", humanize.Comma(u.Bytes)},
		{"Updated", u.LastUpdated.Format(time.RFC3339) + " (" + humanize.Time(u.LastUpdated) + ")"},
		{"Source", source},
		{"Refresh interval", interval.String()},
	}
}
