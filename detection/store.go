package detection

import (
	"fmt"

	"go-aduan/types"
)

// ReportStore owns the reports that clusters refer to by id. Clusters never
// embed reports; members are resolved here.
type ReportStore struct {
	reports []types.Report
	index   map[string]int
}

func NewReportStore(reports ...types.Report) *ReportStore {
	s := &ReportStore{index: make(map[string]int, len(reports))}
	for _, r := range reports {
		s.Add(r)
	}
	return s
}

// Add stores r, replacing any report with the same id.
func (s *ReportStore) Add(r types.Report) {
	if i, ok := s.index[r.ID]; ok {
		s.reports[i] = r
		return
	}
	s.index[r.ID] = len(s.reports)
	s.reports = append(s.reports, r)
}

func (s *ReportStore) Get(id string) (types.Report, bool) {
	if s == nil {
		return types.Report{}, false
	}
	i, ok := s.index[id]
	if !ok {
		return types.Report{}, false
	}
	return s.reports[i], true
}

// Resolve returns the reports for ids in order. Every id must be present.
func (s *ReportStore) Resolve(ids []string) ([]types.Report, error) {
	out := make([]types.Report, 0, len(ids))
	for _, id := range ids {
		r, ok := s.Get(id)
		if !ok {
			return nil, fmt.Errorf("report %q: %w", id, types.ErrMissingMember)
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *ReportStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.reports)
}

// Reports returns a copy of every stored report in insertion order.
func (s *ReportStore) Reports() []types.Report {
	if s == nil {
		return nil
	}
	return append([]types.Report(nil), s.reports...)
}

// Clone returns an independent copy. A nil store clones to an empty one.
func (s *ReportStore) Clone() *ReportStore {
	if s == nil {
		return NewReportStore()
	}
	out := &ReportStore{
		reports: append([]types.Report(nil), s.reports...),
		index:   make(map[string]int, len(s.index)),
	}
	for id, i := range s.index {
		out.index[id] = i
	}
	return out
}
