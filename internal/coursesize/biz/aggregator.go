package biz

// Totals is a pair of byte counters.
type Totals struct {
	RawBytes    int64
	BackupBytes int64
}

func (t *Totals) add(raw, backup int64) {
	t.RawBytes += raw
	t.BackupBytes += backup
}

// Aggregate is the per-course rollup plus the site-level bucket for
// storage that belongs to no in-scope course.
type Aggregate struct {
	Courses map[int64]*Totals
	System  Totals
}

// UserAggregate holds storage of user contexts keyed by user id.
type UserAggregate map[int64]*Totals

// Aggregator folds a stream of contexts into course and user totals.
// It is not safe for concurrent use.
type Aggregator struct {
	index            *CourseIndex
	accumulateSystem bool

	agg      *Aggregate
	users    UserAggregate
	contexts int
}

// NewAggregator returns an aggregator scoped to index. With
// accumulateSystem false, each system or category context replaces the
// system bucket instead of adding to it.
func NewAggregator(index *CourseIndex, accumulateSystem bool) *Aggregator {
	if index == nil {
		index = NewCourseIndex()
	}
	return &Aggregator{
		index:            index,
		accumulateSystem: accumulateSystem,
		agg:              &Aggregate{Courses: make(map[int64]*Totals)},
		users:            make(UserAggregate),
	}
}

// Add attributes one context. Contexts must arrive in depth order.
func (a *Aggregator) Add(c *Context) error {
	a.contexts++

	switch c.Level {
	case LevelUser:
		a.userTotals(c.InstanceID).add(c.RawBytes, c.BackupBytes)
		return nil

	case LevelCourse:
		// out-of-scope courses are kept here and dropped when rows are built
		a.courseTotals(c.InstanceID).add(c.RawBytes, c.BackupBytes)
		return nil

	case LevelSystem, LevelCategory:
		if a.accumulateSystem {
			a.agg.System.add(c.RawBytes, c.BackupBytes)
		} else {
			a.agg.System = Totals{RawBytes: c.RawBytes, BackupBytes: c.BackupBytes}
		}
		return nil
	}

	// walk up from the parent, nearest ancestor first
	for i := len(c.Path) - 2; i >= 0; i-- {
		if courseID, ok := a.index.CourseForContext(c.Path[i]); ok {
			a.courseTotals(courseID).add(c.RawBytes, c.BackupBytes)
			return nil
		}
	}
	a.agg.System.add(c.RawBytes, c.BackupBytes)
	return nil
}

// Result returns the course and user rollups built so far.
func (a *Aggregator) Result() (*Aggregate, UserAggregate) {
	return a.agg, a.users
}

// Contexts returns the number of contexts added.
func (a *Aggregator) Contexts() int {
	return a.contexts
}

func (a *Aggregator) courseTotals(id int64) *Totals {
	t, ok := a.agg.Courses[id]
	if !ok {
		t = &Totals{}
		a.agg.Courses[id] = t
	}
	return t
}

func (a *Aggregator) userTotals(id int64) *Totals {
	t, ok := a.users[id]
	if !ok {
		t = &Totals{}
		a.users[id] = t
	}
	return t
}
