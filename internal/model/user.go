package model

// User is a single entry of the demo user list.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	City  string `json:"city"`
}

// NewUser carries the fields of a user that has not been assigned an identifier yet.
type NewUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	City  string `json:"city"`
}

// WithID completes the user with the given identifier.
func (n NewUser) WithID(id int) User {
	return User{
		ID:    id,
		Name:  n.Name,
		Email: n.Email,
		City:  n.City,
	}
}
