package botchat

// Workspace is a chat-platform workspace the user belongs to.
type Workspace struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	WorkspaceType string `json:"workspace_type"` // "personal" or "team"
	RoleType      string `json:"role_type"`      // "owner", "admin", "member"
}

// Personal reports whether this is the user's personal workspace.
func (w Workspace) Personal() bool { return w.WorkspaceType == "personal" }

// Owned reports whether the caller owns the workspace. Listings are
// filtered to owned workspaces because only those expose the user's bots.
func (w Workspace) Owned() bool { return w.RoleType == "owner" }

// Bot is a published chat bot within a workspace.
type Bot struct {
	ID          string `json:"bot_id"`
	Name        string `json:"bot_name"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url"`
}

// Conversation is a server-side chat session bound to a bot.
type Conversation struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"created_at"`
}

// envelope is the platform's uniform response wrapper. A non-zero Code is
// an application-level error even on HTTP 200.
type envelope[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data T      `json:"data"`
}

type workspacePage struct {
	Workspaces []Workspace `json:"workspaces"`
	HasMore    bool        `json:"has_more"`
}

type botPage struct {
	Items   []Bot `json:"items"`
	HasMore bool  `json:"has_more"`
}
