package model

type User struct {
	ID            string `json:"id"`
	Account       string `json:"account"`
	Email         string `json:"email"`
	PasswordHash  string `json:"-"`
	EmailVerified int    `json:"email_verified"`
	GithubID      string `json:"github_id,omitempty"`
	GithubLogin   string `json:"github_login,omitempty"`
	Ctime         int64  `json:"ctime"`
	Mtime         int64  `json:"mtime"`
}
