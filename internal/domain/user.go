package domain

// User is the domain model for registered users. Users both raise tickets
// and form the pool the assignment rotation draws from.
type User struct {
	ID       int64
	Username string
}
