package biz

import (
	"context"
	"errors"
	"sync"
	"time"
)

type fakeStore struct {
	mu      sync.Mutex
	usage   *SiteUsage
	loadErr error
	saveErr error
	saves   int
}

func (s *fakeStore) Load(context.Context) (*SiteUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.usage == nil {
		return nil, nil
	}
	u := *s.usage
	return &u, nil
}

func (s *fakeStore) Save(_ context.Context, u *SiteUsage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	cp := *u
	s.usage = &cp
	return nil
}

type fakeScanner struct {
	total int64
	err   error
	scans int
}

func (s *fakeScanner) Name() string { return "fake" }

func (s *fakeScanner) TotalSize(context.Context) (int64, error) {
	s.scans++
	return s.total, s.err
}

type fakeContexts struct {
	contexts []*Context
	err      error
}

func (f *fakeContexts) ForEachContext(_ context.Context, fn func(*Context) error) error {
	if f.err != nil {
		return f.err
	}
	for _, c := range f.contexts {
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

type fakeCourses struct {
	categories map[int64]*Category
	courses    map[int64]*Course
	// course id -> context id
	contextOf map[int64]int64
	metaCalls int
}

func (f *fakeCourses) Category(_ context.Context, id int64) (*Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

func (f *fakeCourses) Categories(context.Context) ([]*Category, error) {
	out := make([]*Category, 0, len(f.categories))
	for id := int64(1); id <= int64(len(f.categories)); id++ {
		if c, ok := f.categories[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCourses) CourseIndex(_ context.Context, categoryID int64) (*CourseIndex, error) {
	ci := NewCourseIndex()
	for id, c := range f.courses {
		if categoryID != 0 && c.CategoryID != categoryID {
			continue
		}
		ci.Add(f.contextOf[id], id)
	}
	return ci, nil
}

func (f *fakeCourses) CourseMetadata(_ context.Context, ids []int64) (map[int64]*Course, error) {
	f.metaCalls++
	out := make(map[int64]*Course, len(ids))
	for _, id := range ids {
		if c, ok := f.courses[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

type fakeUsers map[int64]string

func (f fakeUsers) DisplayNames(_ context.Context, ids []int64) (map[int64]string, error) {
	out := make(map[int64]string)
	for _, id := range ids {
		if n, ok := f[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

type observed struct {
	scope    string
	contexts int
	err      error
}

type fakeObserver struct {
	reports []observed
	scans   []error
	usage   []int64
}

func (o *fakeObserver) ObserveReport(scope string, _ time.Duration, contexts int, err error) {
	o.reports = append(o.reports, observed{scope: scope, contexts: contexts, err: err})
}

func (o *fakeObserver) SetSiteUsage(bytes int64, _ time.Time) { o.usage = append(o.usage, bytes) }

func (o *fakeObserver) ObserveScan(err error) { o.scans = append(o.scans, err) }

var errBoom = errors.New("boom")
