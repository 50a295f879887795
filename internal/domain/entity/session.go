package entity

// Session is the server-side session state kept in Redis. It mirrors the
// normalized identity the auth middleware puts into the request context, so
// the session path and the token path resolve to the same shape.
type Session struct {
	ID     string `json:"id"`
	UserID uint   `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}
