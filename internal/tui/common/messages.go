package common

import "github.com/amberpine/flicker/internal/metadata"

// ServerSelectedMsg is emitted when the user picks a playback server
type ServerSelectedMsg struct {
	Index int
}

// UnlockSubmittedMsg carries a password attempt for a locked server
type UnlockSubmittedMsg struct {
	Index    int
	Password string
}

// SeasonSelectedMsg is emitted when the user picks a season
type SeasonSelectedMsg struct {
	Season int
}

// EpisodeSelectedMsg is emitted when the user picks an episode
type EpisodeSelectedMsg struct {
	Episode int
}

// EpisodesLoadedMsg delivers a fetched episode list together with the
// request generation it answers
type EpisodesLoadedMsg struct {
	Gen      int
	Episodes []metadata.Episode
	Err      error
}

// BootstrapDoneMsg signals that title details and seasons are loaded
type BootstrapDoneMsg struct{}

// PlaybackOpenedMsg reports the outcome of handing the embed URL to the
// system browser
type PlaybackOpenedMsg struct {
	Err error
}

// StatusMsg shows a transient line in the footer
type StatusMsg struct {
	Text string
}

// HistorySelectedMsg is emitted when the user resumes a title from the
// continue-watching list
type HistorySelectedMsg struct {
	ContentID   string
	ContentType string
	Season      int
	Episode     int
}
