package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/amberpine/flicker/internal/metadata"
	"github.com/amberpine/flicker/internal/servers"
	"github.com/amberpine/flicker/internal/store"
	"github.com/amberpine/flicker/pkg/types"
)

// Metadata is the external collaborator consulted for title details,
// season lists and episode lists
type Metadata interface {
	GetDetails(ctx context.Context, contentType types.ContentType, id string) (*metadata.Details, error)
	GetSeasons(ctx context.Context, id string) ([]metadata.Season, error)
	GetEpisodes(ctx context.Context, id string, season int) ([]metadata.Episode, error)
}

// TrackerState is the episode picker's state for series content
type TrackerState int

const (
	// StateUninitialized means the session has not resolved a season yet
	StateUninitialized TrackerState = iota
	// StateSeasonSelected means an episode list fetch is pending for the
	// current season; the picker suspends, the player does not
	StateSeasonSelected
	// StateEpisodeListReady means the current season's episodes are loaded
	StateEpisodeListReady
)

// Frame describes the embedded player to mount: the resolved URL and the
// iframe sandbox token list (empty means unsandboxed)
type Frame struct {
	URL     string
	Sandbox []string
}

// sandboxTokens is the exact capability set granted to sandboxed embeds
var sandboxTokens = []string{
	"allow-scripts",
	"allow-same-origin",
	"allow-forms",
	"allow-presentation",
}

var (
	// ErrServerLocked means the selected server needs a password first
	ErrServerLocked = errors.New("server is locked")
	// ErrWrongPassword means the unlock attempt did not match
	ErrWrongPassword = errors.New("incorrect password")
	// ErrUnsupportedTitle means the active server's URL rule cannot play
	// the requested content type
	ErrUnsupportedTitle = errors.New("server cannot play this title")
)

// Options configures a new playback session
type Options struct {
	ContentType types.ContentType
	ContentID   string

	// Optional deep-link state; zero means unset
	Season      int
	Episode     int
	ServerIndex int

	Registry *servers.Registry
	Gate     *servers.Gate
	Metadata Metadata
	Store    *store.Store
	Logger   *slog.Logger
}

// Session is the playback state for one title on the watch view. It is
// created on navigation to the view and discarded on navigation away, and
// is driven from a single event loop: methods are not safe for concurrent
// use.
type Session struct {
	id          string
	contentType types.ContentType
	contentID   string

	registry *servers.Registry
	gate     *servers.Gate
	meta     Metadata
	store    *store.Store
	logger   *slog.Logger

	activeServer   int
	season         int
	episode        int
	sandboxEnabled bool
	playerStarted  bool
	frame          *Frame

	// deepLinked marks season/episode as externally supplied, so the
	// first episode-list commit must not reset the episode to 1
	deepLinked bool

	title        string
	posterPath   string
	backdropPath string
	overview     string

	seasons  []metadata.Season
	episodes []metadata.Episode
	state    TrackerState

	// fetchGen guards episode-list commits: only the response matching
	// the newest request generation is applied (last-request-wins)
	fetchGen int

	prefs store.Preferences
}

// New creates a session for the given title. Fails when the registry is
// empty (fatal configuration error) or when the requested initial server
// is still locked.
func New(opts Options) (*Session, error) {
	if opts.Registry == nil || opts.Registry.Len() == 0 {
		return nil, servers.ErrNoServers
	}
	if opts.ContentID == "" {
		return nil, fmt.Errorf("content id is required")
	}
	if opts.ContentType != types.ContentMovie && opts.ContentType != types.ContentTV {
		return nil, fmt.Errorf("invalid content type: %q", opts.ContentType)
	}
	if opts.Gate == nil {
		return nil, fmt.Errorf("server gate is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	srv, err := opts.Registry.ByIndex(opts.ServerIndex)
	if err != nil {
		return nil, err
	}
	if opts.Gate.RequiresUnlock(srv) {
		return nil, ErrServerLocked
	}

	s := &Session{
		id:             uuid.NewString(),
		contentType:    opts.ContentType,
		contentID:      opts.ContentID,
		registry:       opts.Registry,
		gate:           opts.Gate,
		meta:           opts.Metadata,
		store:          opts.Store,
		activeServer:   opts.ServerIndex,
		sandboxEnabled: srv.HasSandboxSupport,
		state:          StateUninitialized,
	}
	s.logger = logger.With("session", s.id[:8], "id", s.contentID, "type", s.contentType)

	if opts.Store != nil {
		s.prefs = opts.Store.Preferences()
	}

	if s.contentType == types.ContentTV {
		s.seedSeasonEpisode(opts.Season, opts.Episode)
	}

	return s, nil
}

// seedSeasonEpisode resolves the initial season/episode: an explicit deep
// link wins, then the persisted watch history, then defaults filled in at
// bootstrap from the first reported season.
func (s *Session) seedSeasonEpisode(season, episode int) {
	if season > 0 {
		s.season = season
		s.episode = 1
		if episode > 0 {
			s.episode = episode
			s.deepLinked = true
		}
		return
	}

	if s.store != nil {
		if entry, ok := s.store.HistoryFor(s.contentID); ok && entry.LastSeason > 0 {
			s.season = entry.LastSeason
			s.episode = entry.LastEpisode
			if s.episode < 1 {
				s.episode = 1
			}
			return
		}
	}
}

// Bootstrap fetches title details and (for series) the season list.
// Metadata failures degrade to empty state and are logged, never
// returned: the view renders what it has and the user can retry.
func (s *Session) Bootstrap(ctx context.Context) {
	if s.meta == nil {
		return
	}

	details, err := s.meta.GetDetails(ctx, s.contentType, s.contentID)
	if err != nil {
		s.logger.Warn("failed to fetch title details", "error", err)
	} else if details != nil {
		s.title = details.Title
		s.posterPath = details.PosterPath
		s.backdropPath = details.BackdropPath
		s.overview = details.Overview
	}

	if s.contentType != types.ContentTV {
		return
	}

	seasons, err := s.meta.GetSeasons(ctx, s.contentID)
	if err != nil {
		s.logger.Warn("failed to fetch season list", "error", err)
		seasons = nil
	}
	s.seasons = seasons

	if s.season == 0 {
		if len(seasons) > 0 {
			s.season = seasons[0].Number
		} else {
			s.season = 1
		}
		s.episode = 1
	}
	s.state = StateSeasonSelected
}

// BeginEpisodeLoad opens a new episode-list request generation for the
// current season and returns the token the eventual commit must present
func (s *Session) BeginEpisodeLoad() (gen int, season int) {
	s.fetchGen++
	s.state = StateSeasonSelected
	return s.fetchGen, s.season
}

// CommitEpisodes applies a fetched episode list if it still matches the
// newest request generation. Stale responses are discarded silently; a
// fetch error degrades to an empty list while the season selection is
// preserved for retry.
func (s *Session) CommitEpisodes(gen int, episodes []metadata.Episode, err error) bool {
	if gen != s.fetchGen {
		s.logger.Debug("discarding stale episode list", "gen", gen, "current", s.fetchGen)
		return false
	}

	if err != nil {
		s.logger.Warn("failed to fetch episode list", "season", s.season, "error", err)
		episodes = nil
	}

	s.episodes = episodes
	s.state = StateEpisodeListReady
	s.deepLinked = false

	// Never let an out-of-range episode survive a season change
	if len(episodes) > 0 && !containsEpisode(episodes, s.episode) {
		s.episode = 1
	}

	return true
}

// FetchEpisodes retrieves the episode list for a season without touching
// session state. Safe to call off the event loop; the result goes back
// through CommitEpisodes on the loop.
func (s *Session) FetchEpisodes(ctx context.Context, season int) ([]metadata.Episode, error) {
	if s.meta == nil {
		return nil, nil
	}
	return s.meta.GetEpisodes(ctx, s.contentID, season)
}

// LoadEpisodes fetches and commits the current season's episode list in
// one step, for callers without an async dispatch loop
func (s *Session) LoadEpisodes(ctx context.Context) {
	gen, season := s.BeginEpisodeLoad()
	episodes, err := s.FetchEpisodes(ctx, season)
	s.CommitEpisodes(gen, episodes, err)
}

// SelectServer switches the active playback source. A locked server
// short-circuits with ErrServerLocked so the view can raise the password
// challenge. Any switch tears down the mounted player: playback never
// silently continues from the previous source.
func (s *Session) SelectServer(index int) error {
	srv, err := s.registry.ByIndex(index)
	if err != nil {
		return err
	}
	if index == s.activeServer {
		return nil
	}
	if s.gate.RequiresUnlock(srv) {
		return ErrServerLocked
	}

	s.activeServer = index
	s.sandboxEnabled = srv.HasSandboxSupport
	s.invalidatePlayback()
	s.logger.Info("switched server", "server", srv.Name)
	return nil
}

// UnlockServer checks the password for a locked server, persists the
// unlock on success, and completes the switch
func (s *Session) UnlockServer(index int, password string) error {
	srv, err := s.registry.ByIndex(index)
	if err != nil {
		return err
	}
	if !s.gate.CheckPassword(srv, password) {
		return ErrWrongPassword
	}
	s.gate.RecordUnlock(srv)
	return s.SelectServer(index)
}

// SelectSeason switches the current season. The episode resets to 1 and
// the mounted player is torn down; the caller loads the new episode list.
func (s *Session) SelectSeason(season int) {
	if season == s.season && s.state != StateUninitialized {
		return
	}
	s.season = season
	s.episode = 1
	s.deepLinked = false
	s.state = StateSeasonSelected
	s.invalidatePlayback()
}

// SelectEpisode switches the current episode and tears down the mounted
// player
func (s *Session) SelectEpisode(episode int) error {
	if episode < 1 {
		return fmt.Errorf("invalid episode number: %d", episode)
	}
	if len(s.episodes) > 0 && !containsEpisode(s.episodes, episode) {
		return fmt.Errorf("episode %d not in season %d", episode, s.season)
	}
	if episode == s.episode {
		return nil
	}
	s.episode = episode
	s.invalidatePlayback()
	return nil
}

// ToggleSandbox flips the sandbox flag. A mounted player is torn down so
// the new policy applies on the next mount.
func (s *Session) ToggleSandbox() {
	s.sandboxEnabled = !s.sandboxEnabled
	s.invalidatePlayback()
}

// StartPlayback resolves the embed URL for the active server and mounts
// the player frame. This is the only place playerStarted becomes true,
// and the only place watch history is written.
func (s *Session) StartPlayback() (*Frame, error) {
	srv, err := s.registry.ByIndex(s.activeServer)
	if err != nil {
		return nil, err
	}
	if s.gate.RequiresUnlock(srv) {
		return nil, ErrServerLocked
	}

	embedURL, ok := servers.Resolve(srv, s.contentType, s.contentID, s.season, s.episode)
	if !ok {
		return nil, ErrUnsupportedTitle
	}

	// The previous frame is always unmounted before a new one exists;
	// two frames never overlap for the same session slot
	s.frame = nil

	frame := &Frame{URL: embedURL}
	if s.sandboxEnabled && srv.HasSandboxSupport {
		frame.Sandbox = append([]string(nil), sandboxTokens...)
	}

	s.frame = frame
	s.playerStarted = true
	s.recordHistory()
	s.logger.Info("playback started", "server", srv.Name, "season", s.season, "episode", s.episode)

	return frame, nil
}

// StopPlayback unmounts the player frame
func (s *Session) StopPlayback() {
	s.invalidatePlayback()
}

// EmbedURL resolves the active server's embed URL without mounting a
// frame, e.g. for copying to the clipboard
func (s *Session) EmbedURL() (string, bool) {
	srv, err := s.registry.ByIndex(s.activeServer)
	if err != nil {
		return "", false
	}
	return servers.Resolve(srv, s.contentType, s.contentID, s.season, s.episode)
}

// invalidatePlayback is the teardown side effect of every server, season,
// episode or sandbox change
func (s *Session) invalidatePlayback() {
	s.playerStarted = false
	s.frame = nil
}

// recordHistory upserts the continue-watching entry for this title
func (s *Session) recordHistory() {
	if s.store == nil {
		return
	}

	title := s.title
	if title == "" {
		title = s.contentID
	}

	entry := store.HistoryEntry{
		ContentID:    s.contentID,
		ContentType:  s.contentType.String(),
		Title:        title,
		PosterPath:   s.posterPath,
		BackdropPath: s.backdropPath,
	}
	if s.contentType == types.ContentTV {
		entry.LastSeason = s.season
		entry.LastEpisode = s.episode
		entry.TotalSeasons = len(s.seasons)
	}

	s.store.UpsertHistory(entry)
}

// ID returns the session's correlation id
func (s *Session) ID() string { return s.id }

// ContentType returns the title's content type
func (s *Session) ContentType() types.ContentType { return s.contentType }

// ContentID returns the title's external id
func (s *Session) ContentID() string { return s.contentID }

// Title returns the display title once details are loaded
func (s *Session) Title() string { return s.title }

// Overview returns the title synopsis once details are loaded
func (s *Session) Overview() string { return s.overview }

// State returns the episode tracker state
func (s *Session) State() TrackerState { return s.state }

// Season returns the current season number
func (s *Session) Season() int { return s.season }

// Episode returns the current episode number
func (s *Session) Episode() int { return s.episode }

// Seasons returns the loaded season list
func (s *Session) Seasons() []metadata.Season { return s.seasons }

// Episodes returns the loaded episode list for the current season
func (s *Session) Episodes() []metadata.Episode { return s.episodes }

// ActiveServer returns the active server descriptor and its index
func (s *Session) ActiveServer() (servers.ServerDescriptor, int) {
	srv, _ := s.registry.ByIndex(s.activeServer)
	return srv, s.activeServer
}

// Servers returns the full server catalog in registry order
func (s *Session) Servers() []servers.ServerDescriptor {
	return s.registry.All()
}

// ServerUnlocked reports whether the server at the index is selectable
// without a password challenge
func (s *Session) ServerUnlocked(index int) bool {
	srv, err := s.registry.ByIndex(index)
	if err != nil {
		return false
	}
	return !s.gate.RequiresUnlock(srv)
}

// PlayerStarted reports whether a player frame is mounted
func (s *Session) PlayerStarted() bool { return s.playerStarted }

// Frame returns the mounted player frame, or nil
func (s *Session) Frame() *Frame { return s.frame }

// SandboxEnabled reports the current sandbox flag
func (s *Session) SandboxEnabled() bool { return s.sandboxEnabled }

// Preferences returns the preference snapshot read at session start
func (s *Session) Preferences() store.Preferences { return s.prefs }

func containsEpisode(episodes []metadata.Episode, number int) bool {
	for _, ep := range episodes {
		if ep.Number == number {
			return true
		}
	}
	return false
}
