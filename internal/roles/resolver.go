// Package roles maps an authenticated email to the approval capabilities it holds.
package roles

import (
	"sort"
	"strings"

	"github.com/sjperalta/workpermit-api/internal/config"
	"github.com/sjperalta/workpermit-api/internal/models"
)

// Capability is a single permission in the approval workflow
type Capability uint8

const (
	CapSubmit Capability = 1 << iota
	CapEHS
	CapAreaSupervisor
	CapOperationsManager
	CapAdmin

	capAll = CapSubmit | CapEHS | CapAreaSupervisor | CapOperationsManager | CapAdmin
)

// Roles is the resolved capability set of one actor
type Roles struct {
	Email string
	caps  Capability
	// areas maps normalized area supervisor role names to their configured spelling; all is set for admins
	areas map[string]string
	all   bool
}

// Has reports whether the actor holds c
func (r Roles) Has(c Capability) bool {
	return r.caps&c == c
}

func (r Roles) CanSubmit() bool           { return r.Has(CapSubmit) }
func (r Roles) IsEHS() bool               { return r.Has(CapEHS) }
func (r Roles) IsOperationsManager() bool { return r.Has(CapOperationsManager) }
func (r Roles) IsAdmin() bool             { return r.Has(CapAdmin) }

// CanSuperviseArea reports whether the actor may act for the named area supervisor role
func (r Roles) CanSuperviseArea(name string) bool {
	if r.all {
		return true
	}
	_, ok := r.areas[normalizeKey(name)]
	return ok
}

// AreaSupervisorFor lists the configured named roles the actor supervises, sorted
func (r Roles) AreaSupervisorFor() []string {
	out := make([]string, 0, len(r.areas))
	for _, name := range r.areas {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CanApprove reports whether the actor holds the capability required at status s.
// areaName is the application's declared area supervisor role.
func (r Roles) CanApprove(s models.Status, areaName string) bool {
	switch s {
	case models.StatusPendingAreaSupervisor:
		return r.Has(CapAreaSupervisor) && r.CanSuperviseArea(areaName)
	case models.StatusPendingEHS:
		return r.IsEHS()
	case models.StatusPendingManager:
		return r.IsOperationsManager()
	}
	return false
}

// Resolver answers role questions against an immutable configuration snapshot
type Resolver struct {
	ehs              []string
	ehsSet           map[string]struct{}
	opsManager       string
	departments      map[string]string
	departmentEmails map[string]struct{}
	areas            map[string]string
	areaNames        map[string]string
	admins           map[string]struct{}
	applicants       []config.Applicant
	applicantSet     map[string]struct{}
}

// NewResolver builds a resolver from the given tables. The tables are copied.
func NewResolver(t config.RoleTables) *Resolver {
	r := &Resolver{
		ehsSet:           make(map[string]struct{}),
		opsManager:       strings.TrimSpace(t.OperationsManagerEmail),
		departments:      make(map[string]string),
		departmentEmails: make(map[string]struct{}),
		areas:            make(map[string]string),
		areaNames:        make(map[string]string),
		admins:           make(map[string]struct{}),
		applicantSet:     make(map[string]struct{}),
	}

	for _, e := range t.EHSEmails {
		if e = strings.TrimSpace(e); e != "" {
			r.ehs = append(r.ehs, e)
			r.ehsSet[models.NormalizeEmail(e)] = struct{}{}
		}
	}
	for dept, e := range t.DepartmentManagers {
		r.departments[normalizeKey(dept)] = strings.TrimSpace(e)
		r.departmentEmails[models.NormalizeEmail(e)] = struct{}{}
	}
	if r.opsManager != "" {
		r.departmentEmails[models.NormalizeEmail(r.opsManager)] = struct{}{}
	}
	for name, e := range t.AreaSupervisors {
		key := normalizeKey(name)
		r.areas[key] = strings.TrimSpace(e)
		r.areaNames[key] = strings.TrimSpace(name)
	}
	for _, e := range t.AdminEmails {
		if e = models.NormalizeEmail(e); e != "" {
			r.admins[e] = struct{}{}
		}
	}
	for _, a := range t.Applicants {
		r.applicants = append(r.applicants, a)
		r.applicantSet[models.NormalizeEmail(a.Email)] = struct{}{}
	}

	return r
}

// Resolve returns the capability set of email. An empty email resolves to nothing.
func (r *Resolver) Resolve(email string) Roles {
	email = models.NormalizeEmail(email)
	roles := Roles{Email: email, areas: map[string]string{}}
	if email == "" {
		return roles
	}

	if _, ok := r.admins[email]; ok {
		roles.caps = capAll
		roles.all = true
		for key, name := range r.areaNames {
			roles.areas[key] = name
		}
		return roles
	}

	if len(r.applicantSet) == 0 {
		roles.caps |= CapSubmit
	} else if _, ok := r.applicantSet[email]; ok {
		roles.caps |= CapSubmit
	}
	if _, ok := r.ehsSet[email]; ok {
		roles.caps |= CapEHS
	}
	if _, ok := r.departmentEmails[email]; ok {
		roles.caps |= CapOperationsManager
	}
	for key, e := range r.areas {
		if models.NormalizeEmail(e) == email {
			roles.areas[key] = r.areaNames[key]
		}
	}
	if len(roles.areas) > 0 {
		roles.caps |= CapAreaSupervisor
	}

	return roles
}

// AreaSupervisorEmail resolves the email configured for a named area supervisor role
func (r *Resolver) AreaSupervisorEmail(name string) (string, bool) {
	e, ok := r.areas[normalizeKey(name)]
	return e, ok && e != ""
}

// EHSManagerEmail returns the address that receives EHS notifications
func (r *Resolver) EHSManagerEmail() (string, bool) {
	if len(r.ehs) == 0 {
		return "", false
	}
	return r.ehs[0], true
}

// OperationsManagerEmail resolves the final-stage approver for a department.
// OPERATIONS_MANAGER_EMAIL overrides the per-department table.
func (r *Resolver) OperationsManagerEmail(department string) (string, bool) {
	if r.opsManager != "" {
		return r.opsManager, true
	}
	e, ok := r.departments[normalizeKey(department)]
	return e, ok && e != ""
}

// Applicants returns the configured applicant picker entries
func (r *Resolver) Applicants() []config.Applicant {
	out := make([]config.Applicant, len(r.applicants))
	copy(out, r.applicants)
	return out
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
