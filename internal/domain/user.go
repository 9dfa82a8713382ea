package domain

// User is an operator signed in through GitHub.
type User struct {
	ID          string `json:"id"`
	GitHubID    int64  `json:"githubId"`
	DisplayName string `json:"displayName"`
	// GitHubAccessToken is used for the issue proxy and never serialised.
	GitHubAccessToken string   `json:"-"`
	Feeds             []string `json:"feeds"`
}

// Issue is a GitHub issue to open on behalf of a user.
type Issue struct {
	Owner string
	Repo  string
	Title string
	Body  string
}
