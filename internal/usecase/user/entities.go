package user

import "time"

type RegisterInput struct {
	Name  string
	Email string
	Role  string
}

type UserDTO struct {
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	AccountStatus string    `json:"account_status"`
	CreatedAt     time.Time `json:"created_at"`
}
