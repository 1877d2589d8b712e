package model

// Persona identifies which of the two fixed operator roles a session is
// authenticated as. Each persona has its own target domain and its own way
// of narrowing the session to an organizational scope.
type Persona string

const (
	PersonaOfficeManager Persona = "office_manager"
	PersonaShiftManager  Persona = "shift_manager"
)

// Valid reports whether p is one of the known personas.
func (p Persona) Valid() bool {
	return p == PersonaOfficeManager || p == PersonaShiftManager
}

// RoleID is the platform's numeric identifier for an operator role.
type RoleID int

const (
	RoleShiftManager  RoleID = 3
	RoleOfficeManager RoleID = 7
	RoleAccountant    RoleID = 16
)

// RoleShiftManagerName is the role literal the shift-manager domain expects
// in its SetRole request body.
const RoleShiftManagerName = "ShiftManager"
