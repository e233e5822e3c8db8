package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/lk2023060901/coursesize-backend/internal/cli/output"
	"github.com/lk2023060901/coursesize-backend/internal/coursesize/biz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *biz.Report {
	return &biz.Report{
		Courses: []biz.CourseRow{
			{CourseID: 2, ShortName: "MATH", CategoryName: "Science", RawSize: "1,201MB", BackupSize: "3MB"},
		},
		Totals:          biz.TotalsRow{RawSize: "1,201MB", BackupSize: "3MB"},
		ShowSiteSummary: true,
		System:          &biz.SystemUsage{RawSize: "5MB", BackupSize: "0MB"},
		Users:           []biz.UserRow{{UserID: 7, DisplayName: "Ada Lovelace", RawSize: "2MB"}},
		Contexts:        12,
	}
}

func TestPrintReport(t *testing.T) {
	t.Run("csv is the export form", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printReport(output.NewPrinter(&buf, output.FormatCSV), sampleReport()))
		assert.Equal(t, "Course,Category,Disk usage,Backup usage\nMATH,Science,1201MB,3MB\n\nTotal,,1201MB,3MB\n", buf.String())
	})

	t.Run("table includes site summary", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printReport(output.NewPrinter(&buf, output.FormatTable), sampleReport()))
		out := buf.String()
		assert.Contains(t, out, "1,201MB")
		assert.Contains(t, out, "System usage")
		assert.Contains(t, out, "Ada Lovelace")
	})

	t.Run("category report has no summary", func(t *testing.T) {
		r := sampleReport()
		r.ShowSiteSummary = false
		var buf bytes.Buffer
		require.NoError(t, printReport(output.NewPrinter(&buf, output.FormatTable), r))
		assert.NotContains(t, buf.String(), "System usage")
		assert.NotContains(t, buf.String(), "Ada Lovelace")
	})
}

func TestUsagePairs(t *testing.T) {
	u := &biz.SiteUsage{Bytes: 1234567, Size: "2MB", LastUpdated: time.Now(), Cached: true}
	pairs := usagePairs(u, 24*time.Hour)
	assert.Equal(t, [2]string{"Site data", "2MB"}, pairs[0])
	assert.Equal(t, [2]string{"Bytes", "1,234,567"}, pairs[1])
	assert.Equal(t, [2]string{"Source", "cached"}, pairs[3])
	assert.Equal(t, [2]string{"Refresh interval", "24h0m0s"}, pairs[4])
}

func TestRootCommand(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "report", "usage", "version"} {
		assert.True(t, names[want], want)
	}

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "coursesize dev")
}
