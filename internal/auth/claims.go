package auth

// UserClaims identifies the caller of a request. Every row the service reads
// or writes is scoped to UserID.
type UserClaims interface {
	UserID() string
	Source() string
}

type JWTClaims struct {
	UserUUID  string
	TokenID   string
	ExpiresAt int64
}

func (c *JWTClaims) UserID() string { return c.UserUUID }
func (c *JWTClaims) Source() string { return "JWT" }
