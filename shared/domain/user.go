package domain

// User is a sign-up record. Email and phone are intended to be unique among
// users; the store does not enforce it, the directory pre-checks before writes.
type User struct {
	Id                    UserId   `json:"id"`
	Name                  string   `json:"name"`
	Email                 Email    `json:"email"`
	Phone                 Phone    `json:"phone"`
	States                []string `json:"states"`
	CongressionalDistrict string   `json:"congressionalDistrict"`
}

// UserInput is the full mutable state of a user. Updates replace every field.
type UserInput struct {
	Name                  string
	Email                 Email
	Phone                 Phone
	States                []string
	CongressionalDistrict string
}

// Contact identifies a user by email and/or phone. At least one must be set.
type Contact struct {
	Email Email
	Phone Phone
}

func (c Contact) Empty() bool {
	return c.Email == "" && c.Phone == ""
}

// Uniqueness reports which contact fields already belong to another user.
type Uniqueness struct {
	EmailTaken bool
	PhoneTaken bool
}

func (u Uniqueness) Conflicting() bool {
	return u.EmailTaken || u.PhoneTaken
}
