package model

// AdminUsername is the built-in administrator identity. It is never stored
// as an Employee record.
const AdminUsername = "admin"

// Employee is a non-admin login credential. The password is kept in
// plaintext, matching the record files already in use on shop floors.
type Employee struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
