package dto

// RegisterUserRequest payload for POST /user.
type RegisterUserRequest struct {
	Username string `json:"username"`
}

// DeleteUserRequest payload for DELETE /user.
type DeleteUserRequest struct {
	UserID int64 `json:"user_id"`
}

// UserResponse is the wire representation of a user.
type UserResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}
