package reconcile_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/syncbridge/pkg/reconcile"
)

var base = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestDecideLocalWins(t *testing.T) {
	// Local changed at T, remote at T-10h, last sync T-1h: only the
	// local side is a candidate.
	local := base
	remote := base.Add(-10 * time.Hour)
	lastSync := base.Add(-1 * time.Hour)

	got := reconcile.Decide(remote, local, lastSync, 0, reconcile.DefaultGuardWindow)
	assert.Equal(t, reconcile.DirectionLocalWins, got)
}

func TestDecideRemoteWins(t *testing.T) {
	local := base.Add(-10 * time.Hour)
	remote := base
	lastSync := base.Add(-1 * time.Hour)

	got := reconcile.Decide(remote, local, lastSync, 0, reconcile.DefaultGuardWindow)
	assert.Equal(t, reconcile.DirectionRemoteWins, got)
}

func TestDecideNeitherChanged(t *testing.T) {
	local := base.Add(-2 * time.Hour)
	remote := base.Add(-2 * time.Hour)
	lastSync := base.Add(-1 * time.Hour)

	got := reconcile.Decide(remote, local, lastSync, 0, reconcile.DefaultGuardWindow)
	assert.Equal(t, reconcile.DirectionNone, got)
}

func TestDecideBothChangedLaterAdjustedWins(t *testing.T) {
	lastSync := base.Add(-1 * time.Hour)

	// Local edited after the remote edit.
	got := reconcile.Decide(base.Add(-10*time.Minute), base, lastSync, 0, reconcile.DefaultGuardWindow)
	assert.Equal(t, reconcile.DirectionLocalWins, got)

	// Remote edited after the local edit.
	got = reconcile.Decide(base, base.Add(-10*time.Minute), lastSync, 0, reconcile.DefaultGuardWindow)
	assert.Equal(t, reconcile.DirectionRemoteWins, got)
}

func TestDecideTieFavorsRemote(t *testing.T) {
	lastSync := base.Add(-1 * time.Hour)
	got := reconcile.Decide(base, base, lastSync, 0, reconcile.DefaultGuardWindow)
	assert.Equal(t, reconcile.DirectionRemoteWins, got)
}

func TestDecideClockOffsetAppliesToRemoteOnly(t *testing.T) {
	lastSync := base.Add(-1 * time.Hour)

	// Remote clock runs 5h behind: a remote edit stamped T-4h happened
	// at T+1h adjusted and beats a local edit at T.
	remote := base.Add(-4 * time.Hour)
	got := reconcile.Decide(remote, base, lastSync, 5*time.Hour, reconcile.DefaultGuardWindow)
	assert.Equal(t, reconcile.DirectionRemoteWins, got)

	// Without the offset the same remote stamp is stale.
	got = reconcile.Decide(remote, base, lastSync, 0, reconcile.DefaultGuardWindow)
	assert.Equal(t, reconcile.DirectionLocalWins, got)
}

func TestDecideGuardWindowAdmitsRecentRemote(t *testing.T) {
	// Remote stamp sits just before lastSync; the guard window keeps it
	// a candidate so clock imprecision cannot hide a real edit.
	lastSync := base
	remote := base.Add(-2 * time.Minute)
	local := base.Add(-10 * time.Hour)

	got := reconcile.Decide(remote, local, lastSync, 0, reconcile.DefaultGuardWindow)
	assert.Equal(t, reconcile.DirectionRemoteWins, got)

	// Outside the window it is not.
	remote = base.Add(-20 * time.Minute)
	got = reconcile.Decide(remote, local, lastSync, 0, reconcile.DefaultGuardWindow)
	assert.Equal(t, reconcile.DirectionNone, got)
}

func TestChangesOnlyKeepsDifferences(t *testing.T) {
	c := reconcile.NewChanges()
	c.Set("System.Title", "same", "same")
	c.Set("System.State", "Active", "Resolved")
	c.Set("Priority", 2, 2)

	assert.True(t, c.Dirty())
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []string{"System.State"}, c.Fields())

	v, ok := c.Get("System.State")
	assert.True(t, ok)
	assert.Equal(t, "Resolved", v)
}

func TestChangesAllEqualNotDirty(t *testing.T) {
	c := reconcile.NewChanges()
	c.Set("a", "x", "x")
	c.Set("b", 1, 1)
	c.Set("c", nil, nil)

	assert.False(t, c.Dirty())
	assert.Equal(t, "no changes", c.String())
}

func TestChangesNumericCoercion(t *testing.T) {
	// Generic field maps read numbers back as float64.
	c := reconcile.NewChanges()
	c.Set("rank", float64(3), 3)
	assert.False(t, c.Dirty())

	c.Set("rank", float64(3), 4)
	assert.True(t, c.Dirty())
}

func TestChangesNilToValueIsDirty(t *testing.T) {
	c := reconcile.NewChanges()
	c.Set("owner", nil, "ada")
	assert.True(t, c.Dirty())
}

func TestChangesApplyOrder(t *testing.T) {
	c := reconcile.NewChanges()
	c.Set("b", 1, 2)
	c.Set("a", 1, 2)
	c.Force("c", 9)

	var seen []string
	c.Apply(func(field string, _ any) { seen = append(seen, field) })
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}
