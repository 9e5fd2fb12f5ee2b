package models

const (
	RoleDoctor     = "doctor"
	RolePatient    = "patient"
	RoleCashier    = "cashier"
	RoleManager    = "manager"
	RoleStaff      = "staff"
	RolePharmacist = "pharmacist"
	RoleLabTech    = "lab_tech"
	RoleNurse      = "nurse"
)

var dashboards = map[string]string{
	RoleDoctor:     "/api/doctors/dashboard",
	RolePatient:    "/api/patients/dashboard",
	RoleCashier:    "/api/cashier/dashboard",
	RoleManager:    "/api/manager/dashboard",
	RoleStaff:      "/api/staff/dashboard",
	RolePharmacist: "/api/pharmacy/dashboard",
	RoleLabTech:    "/api/labs/dashboard",
	RoleNurse:      "/api/nurses/dashboard",
}

// HomePath is where users without a recognised role are sent.
const HomePath = "/"

func ValidRole(role string) bool {
	_, ok := dashboards[role]
	return ok
}

// DashboardPath returns the landing endpoint for a role.
func DashboardPath(role string) (string, bool) {
	p, ok := dashboards[role]
	if !ok {
		return HomePath, false
	}
	return p, true
}
