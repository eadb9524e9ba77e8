// Package config loads service settings from .env, an optional YAML file and
// environment variables, in that order of precedence (env wins).
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go-aduan/types"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port      string `yaml:"port"`
	ClientURL string `yaml:"client_url"`

	OpenAIAPIKey               string `yaml:"openai_api_key"`
	FirebaseCredentials        string `yaml:"firebase_credentials"`
	NaturalLanguageCredentials string `yaml:"natural_language_credentials"`
	MapsAPIKey                 string `yaml:"maps_api_key"`
	MapsRegion                 string `yaml:"maps_region"`
	MLModelURL                 string `yaml:"ml_model_url"`

	BlueskyHost         string   `yaml:"bluesky_host"`
	FeedURIs            []string `yaml:"feed_uris"`
	IngestSchedule      string   `yaml:"ingest_schedule"`
	MaintenanceSchedule string   `yaml:"maintenance_schedule"`

	Clustering types.ClusteringConfig `yaml:"clustering"`
}

// Load reads the configuration. A missing .env or config file is not an
// error; an unparsable one is.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := Config{Clustering: types.DefaultClusteringConfig()}

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("error parsing %s: %w", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	envOverride(&cfg.Port, "PORT")
	envOverride(&cfg.ClientURL, "CLIENT_URL")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.FirebaseCredentials, "FIREBASE_CREDENTIALS")
	envOverride(&cfg.NaturalLanguageCredentials, "NATURAL_LANGUAGE_CREDENTIALS")
	envOverride(&cfg.MapsAPIKey, "MAPS_CREDENTIALS")
	envOverride(&cfg.MLModelURL, "ML_MODEL_URL")
	envOverride(&cfg.BlueskyHost, "BLUESKY_HOST")
	envOverride(&cfg.IngestSchedule, "INGEST_SCHEDULE")
	envOverride(&cfg.MaintenanceSchedule, "MAINTENANCE_SCHEDULE")
	if uris := os.Getenv("FEED_URIS"); uris != "" {
		cfg.FeedURIs = splitList(uris)
	}

	var errs []error
	errs = append(errs,
		envOverrideFloat(&cfg.Clustering.MaxDistanceKm, "CLUSTER_MAX_DISTANCE_KM"),
		envOverrideInt(&cfg.Clustering.MinSubmissions, "CLUSTER_MIN_SUBMISSIONS"),
		envOverrideFloat(&cfg.Clustering.SemanticSimilarityThreshold, "CLUSTER_SIMILARITY_THRESHOLD"),
		envOverrideFloat(&cfg.Clustering.TemporalWindowHours, "CLUSTER_TEMPORAL_WINDOW_HOURS"),
	)
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.MapsRegion == "" {
		cfg.MapsRegion = "id"
	}
	if cfg.IngestSchedule == "" {
		cfg.IngestSchedule = "*/10 * * * *"
	}
	if cfg.MaintenanceSchedule == "" {
		cfg.MaintenanceSchedule = "5-59/15 * * * *"
	}

	if err := cfg.Clustering.Validate(); err != nil {
		return Config{}, fmt.Errorf("clustering config: %w", err)
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideFloat(field *float64, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}
