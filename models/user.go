package models

const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// Field names of a user credential document.
const (
	FieldUsername   = "username"
	FieldPassword   = "password"
	FieldRole       = "tipo"
	FieldFirstName  = "nombre"
	FieldLastName   = "apellido"
	FieldNationalID = "cedula"
	FieldTravelDate = "fecha_viaje"
)

// User is the signed-in identity. The password is never carried here.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Role       string `json:"role"` // admin, client
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	NationalID string `json:"national_id,omitempty"`
	TravelDate string `json:"travel_date,omitempty"`
}

// IsAdmin is the access gate for mutating promotion commands. It is a UI
// gate only; the stores enforce their own rules.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func UserFromDocument(d Document) User {
	role := RoleClient
	if d.String(FieldRole) == RoleAdmin {
		role = RoleAdmin
	}
	return User{
		ID:         d.ID,
		Username:   d.String(FieldUsername),
		Role:       role,
		FirstName:  d.String(FieldFirstName),
		LastName:   d.String(FieldLastName),
		NationalID: d.String(FieldNationalID),
		TravelDate: d.String(FieldTravelDate),
	}
}
