package events

const (
	TypeSignup       = "signup"
	TypeSignin       = "signin"
	TypeSigninFailed = "signin_failed"
	TypeLogout       = "logout"
)

type AuthEvent struct {
	Type      string
	UserID    string
	UserName  string
	Timestamp int64
	IP        string
	UserAgent string
}
