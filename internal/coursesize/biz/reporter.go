package biz

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// DefaultNumberOfUsers is the size of the user ranking when unset.
const DefaultNumberOfUsers = 10

// ExportHeader is the first row of the flat export.
var ExportHeader = []string{"Course", "Category", "Disk usage", "Backup usage"}

// CourseRow is one line of the course table.
type CourseRow struct {
	CourseID     int64  `json:"course_id"`
	ShortName    string `json:"short_name"`
	FullName     string `json:"full_name"`
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name"`
	RawBytes     int64  `json:"raw_bytes"`
	BackupBytes  int64  `json:"backup_bytes"`
	RawSize      string `json:"raw_size"`
	BackupSize   string `json:"backup_size"`
	Empty        bool   `json:"empty,omitempty"`
}

// TotalsRow sums the non-empty course rows.
type TotalsRow struct {
	RawBytes    int64  `json:"raw_bytes"`
	BackupBytes int64  `json:"backup_bytes"`
	RawSize     string `json:"raw_size"`
	BackupSize  string `json:"backup_size"`
}

// UserRow is one line of the user ranking.
type UserRow struct {
	UserID      int64  `json:"user_id"`
	DisplayName string `json:"display_name"`
	RawBytes    int64  `json:"raw_bytes"`
	RawSize     string `json:"raw_size"`
}

// FormatMegabytes renders bytes as whole decimal megabytes, rounded up,
// with thousands separators: 1 -> "1MB", 1000001 -> "2MB".
func FormatMegabytes(bytes int64) string {
	if bytes <= 0 {
		return "0MB"
	}
	return humanize.Comma((bytes+999_999)/1_000_000) + "MB"
}

// BuildCourseRows joins the aggregate with course metadata. Courses
// missing from courses are skipped. Rows are ordered by raw bytes
// descending, then course id. With showEmpty, in-scope courses that have
// no stored files follow in id order; they do not count towards totals.
func BuildCourseRows(agg *Aggregate, courses map[int64]*Course, showEmpty bool) ([]CourseRow, TotalsRow) {
	rows := make([]CourseRow, 0, len(courses))
	var totals TotalsRow

	if agg != nil {
		for id, t := range agg.Courses {
			c, ok := courses[id]
			if !ok {
				continue
			}
			rows = append(rows, newCourseRow(c, t.RawBytes, t.BackupBytes, false))
			totals.RawBytes += t.RawBytes
			totals.BackupBytes += t.BackupBytes
		}
	}
	slices.SortFunc(rows, func(a, b CourseRow) int {
		if a.RawBytes != b.RawBytes {
			return cmp.Compare(b.RawBytes, a.RawBytes)
		}
		return cmp.Compare(a.CourseID, b.CourseID)
	})

	if showEmpty {
		var empty []CourseRow
		for id, c := range courses {
			if agg != nil {
				if _, ok := agg.Courses[id]; ok {
					continue
				}
			}
			empty = append(empty, newCourseRow(c, 0, 0, true))
		}
		slices.SortFunc(empty, func(a, b CourseRow) int {
			return cmp.Compare(a.CourseID, b.CourseID)
		})
		rows = append(rows, empty...)
	}

	totals.RawSize = FormatMegabytes(totals.RawBytes)
	totals.BackupSize = FormatMegabytes(totals.BackupBytes)
	return rows, totals
}

func newCourseRow(c *Course, raw, backup int64, empty bool) CourseRow {
	return CourseRow{
		CourseID:     c.ID,
		ShortName:    c.ShortName,
		FullName:     c.FullName,
		CategoryID:   c.CategoryID,
		CategoryName: c.CategoryName,
		RawBytes:     raw,
		BackupBytes:  backup,
		RawSize:      FormatMegabytes(raw),
		BackupSize:   FormatMegabytes(backup),
		Empty:        empty,
	}
}

// TopUsers returns up to n user ids ordered by raw bytes descending,
// ties by id. n <= 0 selects DefaultNumberOfUsers.
func TopUsers(users UserAggregate, n int) []int64 {
	if n <= 0 {
		n = DefaultNumberOfUsers
	}
	ids := make([]int64, 0, len(users))
	for id := range users {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b int64) int {
		if users[a].RawBytes != users[b].RawBytes {
			return cmp.Compare(users[b].RawBytes, users[a].RawBytes)
		}
		return cmp.Compare(a, b)
	})
	if len(ids) > n {
		ids = ids[:n]
	}
	return ids
}

// BuildUserRows renders the ranking produced by TopUsers.
func BuildUserRows(users UserAggregate, ranked []int64, names map[int64]string) []UserRow {
	rows := make([]UserRow, 0, len(ranked))
	for _, id := range ranked {
		t, ok := users[id]
		if !ok {
			continue
		}
		name := names[id]
		if name == "" {
			name = "user #" + strconv.FormatInt(id, 10)
		}
		rows = append(rows, UserRow{
			UserID:      id,
			DisplayName: name,
			RawBytes:    t.RawBytes,
			RawSize:     FormatMegabytes(t.RawBytes),
		})
	}
	return rows
}

// ExportRows flattens the course table for CSV: header, one line per
// row, a blank line, then the totals. Sizes carry no thousands separators.
func ExportRows(rows []CourseRow, totals TotalsRow) [][]string {
	out := make([][]string, 0, len(rows)+3)
	out = append(out, ExportHeader)
	for _, r := range rows {
		out = append(out, []string{r.ShortName, r.CategoryName, stripCommas(r.RawSize), stripCommas(r.BackupSize)})
	}
	out = append(out, []string{})
	out = append(out, []string{"Total", "", stripCommas(totals.RawSize), stripCommas(totals.BackupSize)})
	return out
}

func stripCommas(s string) string {
	return strings.ReplaceAll(s, ",", "")
}
