package dto

// SignUpForm carries the registration form fields.
type SignUpForm struct {
	FirstName       string `form:"firstname"`
	LastName        string `form:"lastname"`
	Username        string `form:"username"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confpassword"`
	Admin           bool   `form:"admin"`
}

// LoginForm carries the credential submission.
type LoginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// MemberUpForm carries the upgrade code submission.
type MemberUpForm struct {
	Code string `form:"memberstat"`
}

// MessageForm carries a new feed message.
type MessageForm struct {
	Body string `form:"message"`
}

// DeleteForm names the message to delete.
type DeleteForm struct {
	MessageID string `form:"messageid"`
}
