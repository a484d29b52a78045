package reports

import "github.com/scholaris/scholaris/internal/reports/domain"

// The report payload types live in the leaf package reports/domain so
// that reports/export can share them without importing this package
// (which imports export for the handler). The aliases keep the
// reports.* names as the canonical API.

// BranchOverview aggregates headline counts for one branch.
type BranchOverview = domain.BranchOverview

// AttendanceSummary breaks down attendance marks for a branch within a
// date range. Rate is present+late over all marks.
type AttendanceSummary = domain.AttendanceSummary

// GradeBand is one letter band of the course distribution.
type GradeBand = domain.GradeBand

// GradeDistribution summarises scores for one course and term.
type GradeDistribution = domain.GradeDistribution
