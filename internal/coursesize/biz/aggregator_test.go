package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ctxAt(id int64, level ContextLevel, instance int64, raw, backup int64, path ...int64) *Context {
	return &Context{ID: id, Level: level, InstanceID: instance, Path: path, RawBytes: raw, BackupBytes: backup}
}

func sampleIndex() *CourseIndex {
	ci := NewCourseIndex()
	ci.Add(20, 2) // course 2 in context 20
	ci.Add(30, 3)
	return ci
}

func TestAggregator_AncestorResolution(t *testing.T) {
	tests := []struct {
		name       string
		path       []int64
		wantCourse int64 // 0 means system bucket
	}{
		{name: "direct child of course", path: []int64{1, 5, 20, 100}, wantCourse: 2},
		{name: "nearest known course wins", path: []int64{1, 7, 20, 9, 101}, wantCourse: 2},
		{name: "nested course contexts", path: []int64{1, 20, 30, 102}, wantCourse: 3},
		{name: "no course ancestor", path: []int64{1, 5, 9, 103}, wantCourse: 0},
		{name: "self is ignored", path: []int64{1, 20}, wantCourse: 0},
		{name: "single element path", path: []int64{104}, wantCourse: 0},
		{name: "empty path", path: nil, wantCourse: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAggregator(sampleIndex(), false)
			require.NoError(t, a.Add(ctxAt(999, LevelModule, 1, 700, 70, tt.path...)))

			agg, users := a.Result()
			assert.Empty(t, users)
			if tt.wantCourse == 0 {
				assert.Equal(t, Totals{RawBytes: 700, BackupBytes: 70}, agg.System)
				assert.Empty(t, agg.Courses)
				return
			}
			require.Contains(t, agg.Courses, tt.wantCourse)
			assert.Equal(t, &Totals{RawBytes: 700, BackupBytes: 70}, agg.Courses[tt.wantCourse])
			assert.Equal(t, Totals{}, agg.System)
		})
	}
}

func TestAggregator_Levels(t *testing.T) {
	a := NewAggregator(sampleIndex(), false)
	input := []*Context{
		ctxAt(1, LevelSystem, 0, 10, 1, 1),
		ctxAt(4, LevelCategory, 5, 20, 2, 1, 4),
		ctxAt(40, LevelUser, 77, 300, 30, 1, 40),
		ctxAt(41, LevelUser, 77, 5, 0, 1, 41),
		ctxAt(20, LevelCourse, 2, 1000, 100, 1, 4, 20),
		ctxAt(25, LevelCourse, 9, 50, 0, 1, 4, 25),
		ctxAt(200, LevelBlock, 0, 7, 0, 1, 4, 20, 200),
	}
	for _, c := range input {
		require.NoError(t, a.Add(c))
	}

	agg, users := a.Result()
	assert.Equal(t, len(input), a.Contexts())
	// last system or category context replaces the bucket
	assert.Equal(t, Totals{RawBytes: 20, BackupBytes: 2}, agg.System)
	assert.Equal(t, &Totals{RawBytes: 1007, BackupBytes: 100}, agg.Courses[2])
	// course 9 is outside the index but still aggregated
	assert.Equal(t, &Totals{RawBytes: 50}, agg.Courses[9])
	assert.Equal(t, &Totals{RawBytes: 305, BackupBytes: 30}, users[77])
}

func TestAggregator_AccumulateSystemContexts(t *testing.T) {
	a := NewAggregator(nil, true)
	require.NoError(t, a.Add(ctxAt(1, LevelSystem, 0, 10, 1, 1)))
	require.NoError(t, a.Add(ctxAt(4, LevelCategory, 5, 20, 2, 1, 4)))
	require.NoError(t, a.Add(ctxAt(9, LevelModule, 3, 30, 3, 1, 4, 8, 9)))

	agg, _ := a.Result()
	assert.Equal(t, Totals{RawBytes: 60, BackupBytes: 6}, agg.System)
}

func TestAggregator_Conservation(t *testing.T) {
	// without system or category contexts nothing is overwritten, so every
	// byte in must show up exactly once in the output
	input := []*Context{
		ctxAt(20, LevelCourse, 2, 1000, 10, 1, 4, 20),
		ctxAt(30, LevelCourse, 3, 3, 3, 1, 4, 20, 30),
		ctxAt(40, LevelUser, 77, 300, 30, 1, 40),
		ctxAt(41, LevelUser, 78, 1, 1, 1, 41),
		ctxAt(100, LevelModule, 1, 11, 0, 1, 4, 20, 100),
		ctxAt(101, LevelModule, 2, 13, 5, 1, 4, 20, 30, 101),
		ctxAt(102, LevelModule, 3, 17, 7, 1, 4, 102),
		ctxAt(103, LevelBlock, 0, 19, 0, 1, 41, 103),
		ctxAt(104, LevelModule, 4, 23, 1, 1, 6, 66, 104),
	}

	for _, accumulate := range []bool{false, true} {
		a := NewAggregator(sampleIndex(), accumulate)
		var wantRaw, wantBackup int64
		for _, c := range input {
			wantRaw += c.RawBytes
			wantBackup += c.BackupBytes
			require.NoError(t, a.Add(c))
		}

		agg, users := a.Result()
		gotRaw, gotBackup := agg.System.RawBytes, agg.System.BackupBytes
		for _, tot := range agg.Courses {
			gotRaw += tot.RawBytes
			gotBackup += tot.BackupBytes
		}
		for _, tot := range users {
			gotRaw += tot.RawBytes
			gotBackup += tot.BackupBytes
		}
		assert.Equal(t, wantRaw, gotRaw)
		assert.Equal(t, wantBackup, gotBackup)
	}
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		in      string
		want    []int64
		wantErr bool
	}{
		{in: "/1", want: []int64{1}},
		{in: "/1/3/45", want: []int64{1, 3, 45}},
		{in: "", wantErr: true},
		{in: "/", wantErr: true},
		{in: "1/3", wantErr: true},
		{in: "/1//3", wantErr: true},
		{in: "/1/x", wantErr: true},
		{in: "/1/-4", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePath(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, FormatPath(got))
		})
	}
}

func TestCourseIndex(t *testing.T) {
	ci := NewCourseIndex()
	assert.Zero(t, ci.Len())
	assert.Empty(t, ci.CourseIDs())

	ci.Add(31, 8)
	ci.Add(12, 3)
	id, ok := ci.CourseForContext(31)
	assert.True(t, ok)
	assert.Equal(t, int64(8), id)
	_, ok = ci.CourseForContext(8)
	assert.False(t, ok)
	assert.True(t, ci.Contains(3))
	assert.Equal(t, []int64{3, 8}, ci.CourseIDs())
}
