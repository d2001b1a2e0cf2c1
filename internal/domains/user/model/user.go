package model

import (
	"errors"
	"fmt"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

// User is the authenticated submitter. Authentication itself lives outside
// this service; only identity and profile are read here.
type User struct {
	ID        int64       `json:"id" db:"id"`
	Email     string      `json:"email" db:"email"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	Profile   UserProfile `json:"profile"`
}

type UserProfile struct {
	ID          int64   `json:"id" db:"id"`
	UserID      int64   `json:"user_id" db:"user_id"`
	ORCID       *string `json:"orcid" db:"orcid"`
	Affiliation *string `json:"affiliation" db:"affiliation"`
	Name        string  `json:"name" db:"name"`
	Surname     string  `json:"surname" db:"surname"`
}

// DisplayName is the "Surname, Name" form used for authorship.
func (p UserProfile) DisplayName() string {
	return fmt.Sprintf("%s, %s", p.Surname, p.Name)
}
