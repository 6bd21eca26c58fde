package model

import "fmt"

// Role identifies the kind of user a connection or notification belongs to.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleDoctor       Role = "DOCTOR"
	RoleNurse        Role = "NURSE"
	RolePatient      Role = "PATIENT"
	RoleOPDManager   Role = "OPD_MANAGER"
	RoleMedicalStore Role = "MEDICAL_STORE"
	RoleTechnician   Role = "TECHNICIAN"
)

var knownRoles = map[Role]struct{}{
	RoleAdmin:        {},
	RoleDoctor:       {},
	RoleNurse:        {},
	RolePatient:      {},
	RoleOPDManager:   {},
	RoleMedicalStore: {},
	RoleTechnician:   {},
}

// ParseRole validates a raw role string against the known set.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := knownRoles[r]; !ok {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	_, ok := knownRoles[r]
	return ok
}
