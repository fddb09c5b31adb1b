package models

type User struct {
	ID        int64  `db:"id" json:"id"`
	Username  string `db:"username" json:"username"`
	AvatarURL string `db:"avatar_url" json:"avatarUrl"`
}

type Profile struct {
	User
	Friends   int `json:"friends"`
	Followers int `json:"followers"`
	Following int `json:"following"`
}
