package spotify

// Profile contains the fields of a Spotify user profile the frontend uses.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Country     string `json:"country,omitempty"`
	Product     string `json:"product,omitempty"`
	Followers   uint   `json:"followers"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Artist is a listened-to artist with its genre tags. An artist may carry
// zero or many genres.
type Artist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

// Track is a track with the metadata the dashboard and search views render.
// Artist is the primary (first-listed) artist, matching what the frontend
// displays.
type Track struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	ImageURL   string `json:"image,omitempty"`
	PreviewURL string `json:"preview,omitempty"`
	SpotifyURL string `json:"spotifyUrl,omitempty"`
}

// AudioFeature holds the per-track audio analysis values used by the
// analytics engine. All values are fractions in [0, 1].
type AudioFeature struct {
	Valence      float64 `json:"valence"`
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
	Acousticness float64 `json:"acousticness"`
}
