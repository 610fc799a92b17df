package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPPort        = "8080"
	defaultPlatformType    = "github"
	defaultGitHubCoreTeam  = "core"
	defaultGitHubMaintTeam = "maintainers"
	defaultProfileBaseURL  = "https://github.com/"
	defaultDBHost          = "postgres"
	defaultDBPort          = "5432"
	defaultDBUser          = "approval"
	defaultDBPassword      = "approval"
	defaultDBName          = "approval"
	defaultDBSSLMode       = "disable"
	defaultDBMaxConns      = 4
)

type Config struct {
	HTTP     HTTPConfig
	Platform PlatformConfig
	Status   StatusConfig
}

type HTTPConfig struct {
	Addr string
}

type PlatformConfig struct {
	Type       string
	RosterFile string
	GitHub     GitHubConfig
	Postgres   PostgresConfig
}

type GitHubConfig struct {
	Token          string
	APIURL         string
	Owner          string
	Repo           string
	Org            string
	CoreTeam       string
	MaintainerTeam string
	WebhookSecret  string
}

type StatusConfig struct {
	ProfileBaseURL string
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

// LoadDotEnv reads a .env file into the process environment when one exists.
// Variables already set win over the file.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("no .env file", "path", path)
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func Load() Config {
	port := getenvDefault("HTTP_PORT", defaultHTTPPort)

	owner := os.Getenv("GITHUB_OWNER")
	gh := GitHubConfig{
		Token:          os.Getenv("GITHUB_TOKEN"),
		APIURL:         os.Getenv("GITHUB_API_URL"),
		Owner:          owner,
		Repo:           os.Getenv("GITHUB_REPO"),
		Org:            getenvDefault("GITHUB_ORG", owner),
		CoreTeam:       getenvDefault("GITHUB_CORE_TEAM", defaultGitHubCoreTeam),
		MaintainerTeam: getenvDefault("GITHUB_MAINTAINER_TEAM", defaultGitHubMaintTeam),
		WebhookSecret:  os.Getenv("GITHUB_WEBHOOK_SECRET"),
	}

	pg := PostgresConfig{
		Host:     getenvDefault("DB_HOST", defaultDBHost),
		Port:     getenvDefault("DB_PORT", defaultDBPort),
		User:     getenvDefault("DB_USER", defaultDBUser),
		Password: getenvDefault("DB_PASSWORD", defaultDBPassword),
		DBName:   getenvDefault("DB_NAME", defaultDBName),
		SSLMode:  getenvDefault("DB_SSL_MODE", defaultDBSSLMode),
		MaxConns: int32(getenvInt("DB_MAX_CONNS", defaultDBMaxConns)),
	}

	return Config{
		HTTP: HTTPConfig{
			Addr: fmt.Sprintf(":%s", port),
		},
		Platform: PlatformConfig{
			Type:       getenvDefault("PLATFORM_TYPE", defaultPlatformType),
			RosterFile: os.Getenv("ROSTER_FILE"),
			GitHub:     gh,
			Postgres:   pg,
		},
		Status: StatusConfig{
			ProfileBaseURL: getenvDefault("PROFILE_BASE_URL", defaultProfileBaseURL),
		},
	}
}

func (g GitHubConfig) Validate() error {
	if g.Owner == "" {
		return errors.New("GITHUB_OWNER is required")
	}
	if g.Repo == "" {
		return errors.New("GITHUB_REPO is required")
	}
	if g.WebhookSecret == "" {
		return errors.New("GITHUB_WEBHOOK_SECRET is required")
	}
	return nil
}

func getenvDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getenvInt(key string, def int) int {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return i
}
