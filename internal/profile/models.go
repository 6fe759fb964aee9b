package profile

import "time"

type Profile struct {
	UserID     string       `json:"user_id"`
	Status     string       `json:"status"`
	Company    string       `json:"company"`
	Website    string       `json:"website"`
	Location   string       `json:"location"`
	Bio        string       `json:"bio"`
	GithubUser string       `json:"github_username"`
	Skills     []string     `json:"skills"`
	Social     SocialLinks  `json:"social"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
	Owner      *UserSummary `json:"owner,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

type SocialLinks struct {
	Youtube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Linkedin  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

type Experience struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description"`
}

type Education struct {
	ID           string     `json:"id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"field_of_study"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description"`
}

// UserSummary is the owner information hydrated onto a profile with an
// explicit second read, instead of a database join.
type UserSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}
