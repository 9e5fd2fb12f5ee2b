package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]VisitStatus{
		{VisitPending, VisitReady},
		{VisitPending, VisitCancelled},
		{VisitReady, VisitConsulting},
		{VisitReady, VisitCancelled},
		{VisitConsulting, VisitLabPending},
		{VisitConsulting, VisitCompleted},
		{VisitLabPending, VisitConsulting},
		{VisitLabPending, VisitCompleted},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	rejected := [][2]VisitStatus{
		{VisitPending, VisitConsulting},
		{VisitPending, VisitCompleted},
		{VisitReady, VisitLabPending},
		{VisitConsulting, VisitCancelled},
		{VisitCompleted, VisitPending},
		{VisitCancelled, VisitReady},
		{VisitReady, VisitReady},
	}
	for _, tr := range rejected {
		assert.False(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}
}

func TestVisitStatusValid(t *testing.T) {
	assert.True(t, VisitLabPending.Valid())
	assert.False(t, VisitStatus("triage").Valid())
	assert.True(t, VisitCancelled.Terminal())
	assert.False(t, VisitConsulting.Terminal())
}

func TestDashboardPath(t *testing.T) {
	p, ok := DashboardPath(RoleLabTech)
	assert.True(t, ok)
	assert.Equal(t, "/api/labs/dashboard", p)

	p, ok = DashboardPath("janitor")
	assert.False(t, ok)
	assert.Equal(t, HomePath, p)
	assert.False(t, ValidRole("janitor"))
}

func TestBillStatusFor(t *testing.T) {
	assert.Equal(t, BillStatusPaid, BillStatusFor(100, 100))
	assert.Equal(t, BillStatusPaid, BillStatusFor(100, 120))
	assert.Equal(t, BillStatusPartiallyPaid, BillStatusFor(100, 40))
	assert.Equal(t, BillStatusPending, BillStatusFor(100, 0))
}
