package roles

import (
	"testing"

	"github.com/sjperalta/workpermit-api/internal/config"
	"github.com/sjperalta/workpermit-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func testTables() config.RoleTables {
	return config.RoleTables{
		EHSEmails:          []string{"ehs@plant.test", "ehs.backup@plant.test"},
		DepartmentManagers: map[string]string{"Maintenance": "ops.maint@plant.test"},
		AreaSupervisors: map[string]string{
			"Production Manager": "prod@plant.test",
			"Warehouse Lead":     "PROD@plant.test",
		},
		AdminEmails: []string{"root@plant.test"},
		Applicants:  []config.Applicant{{Name: "Wang", Email: "wang@plant.test"}},
	}
}

func TestResolve_CaseInsensitiveAndTrimmed(t *testing.T) {
	r := NewResolver(testTables())

	roles := r.Resolve("  EHS@Plant.Test ")
	assert.True(t, roles.IsEHS())
	assert.False(t, roles.IsAdmin())
	assert.False(t, roles.IsOperationsManager())
	assert.Equal(t, "ehs@plant.test", roles.Email)

	assert.True(t, r.Resolve("ehs.backup@plant.test").IsEHS())
}

func TestResolve_EmptyEmailHasNoCapabilities(t *testing.T) {
	r := NewResolver(config.RoleTables{})
	roles := r.Resolve("   ")

	assert.False(t, roles.CanSubmit())
	assert.False(t, roles.IsEHS())
	assert.False(t, roles.CanSuperviseArea("anything"))
}

func TestResolve_AreaSupervisorKeyedByNamedRole(t *testing.T) {
	r := NewResolver(testTables())
	roles := r.Resolve("prod@plant.test")

	assert.True(t, roles.Has(CapAreaSupervisor))
	assert.True(t, roles.CanSuperviseArea("Production Manager"))
	assert.True(t, roles.CanSuperviseArea("production  manager"))
	assert.True(t, roles.CanSuperviseArea("Warehouse Lead"))
	assert.False(t, roles.CanSuperviseArea("Safety Officer"))
	assert.Equal(t, []string{"Production Manager", "Warehouse Lead"}, roles.AreaSupervisorFor())

	other := r.Resolve("ehs@plant.test")
	assert.False(t, other.CanSuperviseArea("Production Manager"))
}

func TestResolve_AdminExpandsToEveryCapability(t *testing.T) {
	r := NewResolver(testTables())
	admin := r.Resolve("Root@plant.test")

	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.CanSubmit())
	assert.True(t, admin.IsEHS())
	assert.True(t, admin.IsOperationsManager())
	assert.True(t, admin.CanSuperviseArea("Unconfigured Role"))

	for _, s := range []models.Status{models.StatusPendingAreaSupervisor, models.StatusPendingEHS, models.StatusPendingManager} {
		assert.True(t, admin.CanApprove(s, "Production Manager"), s.String())
	}
	assert.False(t, admin.CanApprove(models.StatusApproved, ""))
}

func TestResolve_CanSubmit(t *testing.T) {
	r := NewResolver(testTables())
	assert.True(t, r.Resolve("wang@plant.test").CanSubmit())
	assert.False(t, r.Resolve("stranger@plant.test").CanSubmit())

	open := NewResolver(config.RoleTables{})
	assert.True(t, open.Resolve("stranger@plant.test").CanSubmit())
}

func TestResolve_OperationsManager(t *testing.T) {
	r := NewResolver(testTables())
	assert.True(t, r.Resolve("ops.maint@plant.test").IsOperationsManager())

	tables := testTables()
	tables.OperationsManagerEmail = "ops@plant.test"
	r = NewResolver(tables)
	assert.True(t, r.Resolve("ops@plant.test").IsOperationsManager())
	assert.True(t, r.Resolve("ops.maint@plant.test").IsOperationsManager())
}

func TestCanApprove_RequiresStageCapability(t *testing.T) {
	r := NewResolver(testTables())
	ehs := r.Resolve("ehs@plant.test")
	prod := r.Resolve("prod@plant.test")
	ops := r.Resolve("ops.maint@plant.test")

	assert.True(t, ehs.CanApprove(models.StatusPendingEHS, ""))
	assert.False(t, ehs.CanApprove(models.StatusPendingManager, ""))
	assert.False(t, ehs.CanApprove(models.StatusPendingAreaSupervisor, "Production Manager"))

	assert.True(t, prod.CanApprove(models.StatusPendingAreaSupervisor, "Production Manager"))
	assert.False(t, prod.CanApprove(models.StatusPendingAreaSupervisor, "Safety Officer"))
	assert.False(t, prod.CanApprove(models.StatusPendingEHS, ""))

	assert.True(t, ops.CanApprove(models.StatusPendingManager, ""))
	assert.False(t, ops.CanApprove(models.StatusPendingEHS, ""))
}

func TestLookups(t *testing.T) {
	tables := testTables()
	r := NewResolver(tables)

	email, ok := r.AreaSupervisorEmail("production manager")
	assert.True(t, ok)
	assert.Equal(t, "prod@plant.test", email)

	_, ok = r.AreaSupervisorEmail("Nobody")
	assert.False(t, ok)

	email, ok = r.EHSManagerEmail()
	assert.True(t, ok)
	assert.Equal(t, "ehs@plant.test", email)

	email, ok = r.OperationsManagerEmail("maintenance")
	assert.True(t, ok)
	assert.Equal(t, "ops.maint@plant.test", email)

	_, ok = r.OperationsManagerEmail("Logistics")
	assert.False(t, ok)

	tables.OperationsManagerEmail = "ops@plant.test"
	email, ok = NewResolver(tables).OperationsManagerEmail("Logistics")
	assert.True(t, ok)
	assert.Equal(t, "ops@plant.test", email)

	_, ok = NewResolver(config.RoleTables{}).EHSManagerEmail()
	assert.False(t, ok)

	applicants := r.Applicants()
	assert.Len(t, applicants, 1)
	applicants[0].Name = "mutated"
	assert.Equal(t, "Wang", r.Applicants()[0].Name)
}
