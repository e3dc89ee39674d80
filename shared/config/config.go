package config

import (
	"fmt"
	"os"
	"path"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StoreNocoDB   = "nocodb"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	App      App      `yaml:"app"`
	Store    Store    `yaml:"store"`
	NocoDB   NocoDB   `yaml:"nocodb"`
	Pg       Pg       `yaml:"pg"`
	Tables   Tables   `yaml:"tables"`
	Links    Links    `yaml:"links"`
	Cache    Cache    `yaml:"cache"`
	Email    Email    `yaml:"email"`
	Features Features `yaml:"features"`
	CSRF     CSRF     `yaml:"csrf"`
}

type App struct {
	BaseURL  string `yaml:"base_url"`
	Env      string `yaml:"env"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

func (a App) IsProduction() bool  { return a.Env == EnvProduction }
func (a App) IsDevelopment() bool { return a.Env == EnvDevelopment }

type Store struct {
	Backend string `yaml:"backend"`
}

type NocoDB struct {
	BaseURL  string        `yaml:"base_url"`
	APIToken string        `yaml:"api_token"`
	Timeout  time.Duration `yaml:"timeout"`
}

func (n NocoDB) Enabled() bool {
	return n.BaseURL != "" && n.APIToken != ""
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

func (p Pg) Enabled() bool {
	return p.Host != "" && p.Dbname != ""
}

// TableRef identifies one table (and optionally a view) in the record store.
type TableRef struct {
	TableID string `yaml:"table_id"`
	ViewID  string `yaml:"view_id"`
}

func (t TableRef) Enabled() bool { return t.TableID != "" }

type Tables struct {
	Users          TableRef `yaml:"users"`
	PresignedLinks TableRef `yaml:"presigned_links"`
	CMS            TableRef `yaml:"cms"`
}

type Links struct {
	TTL time.Duration `yaml:"ttl"`
}

type Cache struct {
	// CMSTTL is how long CMS rows are served from memory. Zero disables caching.
	CMSTTL time.Duration `yaml:"cms_ttl"`
}

type Email struct {
	SMTPServer string        `yaml:"smtp_server"`
	SMTPPort   int           `yaml:"smtp_port"`
	Username   string        `yaml:"username"`
	Password   string        `yaml:"password"`
	SenderName string        `yaml:"sender_name"`
	Timeout    time.Duration `yaml:"timeout"`
}

func (e Email) Enabled() bool {
	return e.SMTPServer != "" && e.Username != ""
}

type Features struct {
	WhatsappLink   string `yaml:"whatsapp_link"`
	GeocodioAPIKey string `yaml:"geocodio_api_key"`
}

func (f Features) GeocodingEnabled() bool { return f.GeocodioAPIKey != "" }

type CSRF struct {
	SecureCookies bool `yaml:"secure_cookies"`
}

// StoreEnabled reports whether the configured backend has what it needs to
// connect.
func (c *Config) StoreEnabled() bool {
	switch c.Store.Backend {
	case StoreMemory:
		return true
	case StorePostgres:
		return c.Pg.Enabled()
	default:
		return c.NocoDB.Enabled()
	}
}

// Validate returns configuration problems worth a warning. None of them stop
// the process: features that lack their settings run in a disabled mode.
func (c *Config) Validate() []string {
	var problems []string
	switch c.Store.Backend {
	case StoreNocoDB, StorePostgres, StoreMemory:
	default:
		problems = append(problems, fmt.Sprintf("store: unknown backend %q", c.Store.Backend))
	}
	if !c.StoreEnabled() {
		problems = append(problems, fmt.Sprintf("store: %s credentials missing, data operations will fail", c.Store.Backend))
	}
	if c.Store.Backend != StoreMemory {
		if !c.Tables.Users.Enabled() {
			problems = append(problems, "tables: users table_id missing")
		}
		if !c.Tables.PresignedLinks.Enabled() {
			problems = append(problems, "tables: presigned_links table_id missing")
		}
		if c.Tables.CMS.Enabled() && !c.StoreEnabled() {
			problems = append(problems, "tables: cms table set without store credentials")
		}
	}
	if c.App.BaseURL == "" {
		problems = append(problems, "app: base_url missing, update links will be relative")
	}
	if c.Links.TTL <= 0 {
		problems = append(problems, "links: ttl must be positive")
	}
	return problems
}

func defaults() Config {
	return Config{
		App:    App{Env: EnvDevelopment, Port: 8080, LogLevel: "info"},
		Store:  Store{Backend: StoreNocoDB},
		NocoDB: NocoDB{Timeout: 10 * time.Second},
		Pg:     Pg{Port: 5432},
		Links:  Links{TTL: 24 * time.Hour},
		Email:  Email{SMTPPort: 587, SenderName: "AJD", Timeout: 10 * time.Second},
	}
}

func loadPath(configPath string, output interface{}, required bool) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if required {
			return fmt.Errorf("config file does not exist: %s", configPath)
		}
		return nil
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("can't read config file %s: %w", configPath, err)
	}
	if err := yaml.Unmarshal(configFile, output); err != nil {
		return fmt.Errorf("can't unmarshal config file %s: %w", configPath, err)
	}
	return nil
}

// Load reads public.yaml, then private.yaml if present, then applies
// environment variables named component__variable (e.g. nocodb__api_token).
func Load(configFolder string) (*Config, error) {
	cfg := defaults()
	cacheSet := false
	if err := loadPath(path.Join(configFolder, "public.yaml"), &cfg, true); err != nil {
		return nil, err
	}
	if err := loadPath(path.Join(configFolder, "private.yaml"), &cfg, false); err != nil {
		return nil, err
	}
	if err := overlayEnv(&cfg, os.LookupEnv, &cacheSet); err != nil {
		return nil, err
	}
	cfg.finish(cacheSet)
	return &cfg, nil
}

func MustLoad(configFolder string) *Config {
	cfg, err := Load(configFolder)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) finish(cacheSetByEnv bool) {
	c.App.BaseURL = strings.TrimRight(c.App.BaseURL, "/")
	c.NocoDB.BaseURL = strings.TrimRight(c.NocoDB.BaseURL, "/")
	if c.Cache.CMSTTL == 0 && !cacheSetByEnv && c.App.IsProduction() {
		c.Cache.CMSTTL = time.Hour
	}
	c.CSRF.SecureCookies = !c.App.IsDevelopment()
}

// overlayEnv walks the two-level config tree and sets every field whose
// component__variable variable exists, in lower or upper case.
func overlayEnv(cfg *Config, lookup func(string) (string, bool), cacheSet *bool) error {
	root := reflect.ValueOf(cfg).Elem()
	for i := 0; i < root.NumField(); i++ {
		component := yamlName(root.Type().Field(i))
		group := root.Field(i)
		for j := 0; j < group.NumField(); j++ {
			variable := yamlName(group.Type().Field(j))
			if variable == "" {
				continue
			}
			name := component + "__" + variable
			val, ok := lookup(name)
			if !ok {
				val, ok = lookup(strings.ToUpper(name))
			}
			if !ok {
				continue
			}
			if err := setField(group.Field(j), val); err != nil {
				return fmt.Errorf("env %s: %w", name, err)
			}
			if name == "cache__cms_ttl" {
				*cacheSet = true
			}
		}
	}
	return nil
}

func yamlName(f reflect.StructField) string {
	return strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
}

var durationType = reflect.TypeOf(time.Duration(0))

func setField(f reflect.Value, val string) error {
	switch {
	case f.Type() == durationType:
		d, err := time.ParseDuration(val)
		if err != nil {
			return err
		}
		f.SetInt(int64(d))
	case f.Kind() == reflect.String:
		f.SetString(val)
	case f.Kind() == reflect.Int:
		n, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		f.SetInt(int64(n))
	case f.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return err
		}
		f.SetBool(b)
	case f.Kind() == reflect.Struct:
		// TableRef: the variable sets the table id.
		if id := f.FieldByName("TableID"); id.IsValid() {
			id.SetString(val)
			return nil
		}
		return fmt.Errorf("unsupported field type %s", f.Type())
	default:
		return fmt.Errorf("unsupported field type %s", f.Type())
	}
	return nil
}
