package cmd

// User is a platform user as seen by commands.
type User struct {
	ID        string
	Username  string
	AvatarURL string
	Bot       bool
}

// TargetMessage is the message a message context-menu command was opened on.
type TargetMessage struct {
	ID        string
	ChannelID string
	Author    User
	Content   string
}
