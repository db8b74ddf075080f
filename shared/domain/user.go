package domain

import "time"

type User struct {
	Id        UserId
	Username  Username
	Name      string
	Bio       string
	Image     string
	Onboarded bool
	Threads   Ids // authored threads in creation order, append only
	CreatedAt time.Time
}

type UserProfileData struct {
	Id       UserId
	Username Username
	Name     string
	Bio      string
	Image    string
}

// Author is the projection of a User attached to a populated thread.
type Author struct {
	Id       UserId   `json:"id"`
	Username Username `json:"username,omitempty"`
	Name     string   `json:"name"`
	Bio      string   `json:"bio,omitempty"`
	Image    string   `json:"image"`
}

// Summary is the restricted projection used for replies.
func (u *User) Summary() *Author {
	return &Author{Id: u.Id, Name: u.Name, Image: u.Image}
}

// Profile is the full projection used for root thread authors.
func (u *User) Profile() *Author {
	return &Author{Id: u.Id, Username: u.Username, Name: u.Name, Bio: u.Bio, Image: u.Image}
}
