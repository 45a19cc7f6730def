package user

import "time"

// User is the persisted credential record. The password hash is stored but
// never serialized back to clients.
type User struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	UserName     string    `json:"userName" bson:"userName"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	ShopNames    []string  `json:"shopNames" bson:"shopNames"`
	CreatedAt    time.Time `json:"created_at" bson:"createdAt"`
}

type SignupRequest struct {
	UserName  string   `json:"userName"`
	Password  string   `json:"password"`
	ShopNames []string `json:"shopNames"`
}

type SigninRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type Session struct {
	User      *User
	Token     string
	ExpiresAt time.Time
}
