package domain

// User is the identity the Logic layer passes to session creation.
// ID is UnpersistedID until the record has been stored.
type User struct {
	ID        int
	Email     string
	FirstName string
	LastName  string
}

// LoginRequest is the POST /login payload. Pointer fields distinguish
// an absent key from an empty value, which map to different errors.
type LoginRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// RegisterRequest is the full-registration POST /register payload.
// Field names follow the public wire format.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

// DashboardRequest is the POST /dashboard payload.
type DashboardRequest struct {
	Token *string `json:"token"`
}

// SessionResponse is the success envelope for login and registration.
type SessionResponse struct {
	UserID int    `json:"userId"`
	IP     string `json:"ip"`
	Token  string `json:"token"`
}

// ContactResponse is a contact as rendered on the dashboard.
type ContactResponse struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// DashboardResponse is the success envelope for the dashboard.
type DashboardResponse struct {
	Status   string            `json:"status"`
	Contacts []ContactResponse `json:"contacts"`
}
