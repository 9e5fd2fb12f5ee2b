package models

type VisitStatus string

const (
	VisitPending    VisitStatus = "pending"
	VisitReady      VisitStatus = "ready"
	VisitConsulting VisitStatus = "consulting"
	VisitLabPending VisitStatus = "lab_pending"
	VisitCompleted  VisitStatus = "completed"
	VisitCancelled  VisitStatus = "cancelled"
)

var visitTransitions = map[VisitStatus][]VisitStatus{
	VisitPending:    {VisitReady, VisitCancelled},
	VisitReady:      {VisitConsulting, VisitCancelled},
	VisitConsulting: {VisitLabPending, VisitCompleted},
	VisitLabPending: {VisitConsulting, VisitCompleted},
}

func (s VisitStatus) Valid() bool {
	switch s {
	case VisitPending, VisitReady, VisitConsulting, VisitLabPending, VisitCompleted, VisitCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s VisitStatus) Terminal() bool {
	return s == VisitCompleted || s == VisitCancelled
}

// CanTransition reports whether a visit may move from one status to another.
func CanTransition(from, to VisitStatus) bool {
	for _, next := range visitTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OpenVisitStatuses are the statuses of visits still in progress.
var OpenVisitStatuses = []VisitStatus{VisitPending, VisitReady, VisitConsulting, VisitLabPending}
