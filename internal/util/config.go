package util

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// AlbumSource describes one curated album CSV and the columns to read from it
type AlbumSource struct {
	Name         string `mapstructure:"name"`
	Path         string `mapstructure:"path"`
	ArtistColumn string `mapstructure:"artist_column"`
	AlbumColumn  string `mapstructure:"album_column"`
}

// TracklistConfig configures the fetch stage
type TracklistConfig struct {
	URLs      []string      `mapstructure:"urls"`
	Output    string        `mapstructure:"output"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
	Attempts  int           `mapstructure:"attempts"`
}

// AlbumsConfig configures the merge stage and the album populate stage
type AlbumsConfig struct {
	Sources   []AlbumSource `mapstructure:"sources"`
	Output    string        `mapstructure:"output"`
	Overrides string        `mapstructure:"overrides"`
}

// NarrativeConfig configures the track populate stage
type NarrativeConfig struct {
	MaleCSV      string `mapstructure:"male_csv"`
	FemaleJSON   string `mapstructure:"female_json"`
	TracklistCSV string `mapstructure:"tracklist_csv"`
}

// Config is the full pipeline configuration
type Config struct {
	DB        string          `mapstructure:"db"`
	Artifacts string          `mapstructure:"artifacts"`
	Tracklist TracklistConfig `mapstructure:"tracklist"`
	Albums    AlbumsConfig    `mapstructure:"albums"`
	Narrative NarrativeConfig `mapstructure:"narrative"`
}

// DefaultAlbumSources are the two curated lists merged by default
func DefaultAlbumSources() []AlbumSource {
	return []AlbumSource{
		{
			Name:         "canon",
			Path:         "data/tracklists/canon_electronic_artists_albums.csv",
			ArtistColumn: "Artist Name",
			AlbumColumn:  "Seminal Electronic Album",
		},
		{
			Name:         "heck",
			Path:         "data/tracklists/HeckTheDJ_albums.csv",
			ArtistColumn: "Artist Name",
			AlbumColumn:  "Best-Known Album",
		},
	}
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("db", "data/audio_narrative_database.sqlite")
	v.SetDefault("artifacts", "artifacts")
	v.SetDefault("tracklist.urls", []string{
		"https://www.2manybootlegs.com/radio-shows/hank-the-dj/hank-the-dj-1/",
		"https://www.2manybootlegs.com/radio-shows/hank-the-dj/hank-the-dj-2/",
	})
	v.SetDefault("tracklist.output", "data/tracklists/2manybootlegs_tracks.csv")
	v.SetDefault("tracklist.timeout", 30*time.Second)
	v.SetDefault("tracklist.user_agent", "ndb-tracklist-fetcher/1.0")
	v.SetDefault("tracklist.attempts", 3)
	v.SetDefault("albums.output", "data/processed/merged_album_list.csv")
	v.SetDefault("narrative.male_csv", "data/male_narrative_selection.csv")
	v.SetDefault("narrative.female_json", "data/female_narrative_selection.json")
}

// LoadConfig decodes v into a Config, filling album sources when none are set
func LoadConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if len(cfg.Albums.Sources) == 0 {
		cfg.Albums.Sources = DefaultAlbumSources()
	}
	for i, src := range cfg.Albums.Sources {
		if src.Path == "" || src.ArtistColumn == "" || src.AlbumColumn == "" {
			return nil, fmt.Errorf("%w: albums.sources[%d] needs path, artist_column and album_column",
				ErrInvalidConfig, i)
		}
		if src.Name == "" {
			cfg.Albums.Sources[i].Name = src.Path
		}
	}
	if cfg.DB == "" {
		return nil, fmt.Errorf("%w: db path is empty", ErrInvalidConfig)
	}

	return cfg, nil
}
