package metadata

// Details is the content-detail document for one title
type Details struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Overview     string   `json:"overview"`
	PosterPath   string   `json:"poster_path"`
	BackdropPath string   `json:"backdrop_path"`
	ReleaseDate  string   `json:"release_date"`
	Genres       []string `json:"genres"`
	Seasons      []Season `json:"seasons"`
}

// Season describes one season of a series
type Season struct {
	Number       int    `json:"season_number"`
	Name         string `json:"name"`
	EpisodeCount int    `json:"episode_count"`
}

// Episode describes one episode within a season
type Episode struct {
	Number    int    `json:"episode_number"`
	Season    int    `json:"season_number"`
	Name      string `json:"name"`
	Overview  string `json:"overview"`
	StillPath string `json:"still_path"`
	Runtime   int    `json:"runtime"`
	AirDate   string `json:"air_date"`
}

type seasonsResponse struct {
	Seasons []Season `json:"seasons"`
}

type episodesResponse struct {
	Episodes []Episode `json:"episodes"`
}

// ErrorResponse is the backend's error envelope
type ErrorResponse struct {
	Error string `json:"error"`
}
