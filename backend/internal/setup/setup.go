package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/Serubin/AJD-Site/backend/internal/handler"
	"github.com/Serubin/AJD-Site/backend/internal/service"
	"github.com/Serubin/AJD-Site/backend/internal/storage/dao"
	"github.com/Serubin/AJD-Site/backend/internal/storage/nocodb"
	"github.com/Serubin/AJD-Site/backend/internal/storage/pg"
	rs "github.com/Serubin/AJD-Site/backend/internal/storage/recordstore"
	"github.com/Serubin/AJD-Site/backend/internal/utils/email"
	"github.com/Serubin/AJD-Site/backend/internal/utils/geocodio"
	"github.com/Serubin/AJD-Site/backend/internal/utils/markdown"
	"github.com/Serubin/AJD-Site/shared/config"
	"github.com/Serubin/AJD-Site/shared/logger"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config  *config.Config
	Handler *handler.Handler
	cleanup []func() error
}

// Close releases store connections.
func (d *Dependencies) Close() error {
	var firstErr error
	for _, fn := range d.cleanup {
		if err := fn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Tables are the three record store tables the backend uses.
type Tables struct {
	Users rs.Table
	Links rs.Table
	CMS   rs.Table // nil when CMS is not configured
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	deps := &Dependencies{Config: cfg}
	tables, err := openTables(ctx, cfg, deps)
	if err != nil {
		return nil, err
	}
	deps.Handler = Build(cfg, tables, email.New(&cfg.Email))
	return deps, nil
}

type buildOptions struct {
	now func() time.Time
}

// Option adjusts Build.
type Option func(*buildOptions)

// WithClock makes link expiry read time from now instead of the wall clock.
func WithClock(now func() time.Time) Option {
	return func(o *buildOptions) { o.now = now }
}

// Build wires services and the handler over already opened tables.
func Build(cfg *config.Config, tables Tables, mailer email.Sender, opts ...Option) *handler.Handler {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	usersDAO := dao.NewUsers(tables.Users)
	users := service.NewUsers(usersDAO)
	links := service.NewLinks(dao.NewLinks(tables.Links), users, mailer, service.LinksConfig{
		BaseURL: cfg.App.BaseURL,
		TTL:     cfg.Links.TTL,
		Now:     o.now,
	})

	var cms service.ContentStorage
	if tables.CMS != nil {
		cms = dao.NewCMS(rs.Cached(tables.CMS, "cms", cfg.Cache.CMSTTL))
	}
	content := service.NewContent(cms, markdown.New())

	var geocoder service.Geocoder
	if cfg.Features.GeocodingEnabled() {
		geocoder = geocodio.New(cfg.Features.GeocodioAPIKey)
	}
	district := service.NewDistrict(geocoder)

	return handler.New(users, links, content, district, usersDAO, cfg)
}

func openTables(ctx context.Context, cfg *config.Config, deps *Dependencies) (Tables, error) {
	log := logger.Component("setup")
	if !cfg.StoreEnabled() {
		log.Warn("record store not configured, data endpoints will answer 503", "backend", cfg.Store.Backend)
		return Tables{
			Users: rs.Unconfigured{Name: "users"},
			Links: rs.Unconfigured{Name: "presigned_links"},
		}, nil
	}

	var open func(config.TableRef) rs.Table
	switch cfg.Store.Backend {
	case config.StoreMemory:
		log.Warn("using in-memory record store, data is lost on restart")
		return Tables{Users: rs.NewMemory(), Links: rs.NewMemory(), CMS: rs.NewMemory()}, nil
	case config.StorePostgres:
		storage, err := pg.New(ctx, cfg.Pg)
		if err != nil {
			return Tables{}, fmt.Errorf("open postgres store: %w", err)
		}
		deps.cleanup = append(deps.cleanup, storage.Cleanup)
		open = func(ref config.TableRef) rs.Table { return storage.Table(ref) }
	case config.StoreNocoDB:
		client := nocodb.New(cfg.NocoDB)
		open = func(ref config.TableRef) rs.Table { return client.Table(ref) }
	default:
		return Tables{}, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	table := func(name string, ref config.TableRef) rs.Table {
		if !ref.Enabled() {
			return rs.Unconfigured{Name: name}
		}
		return open(ref)
	}
	tables := Tables{
		Users: table("users", cfg.Tables.Users),
		Links: table("presigned_links", cfg.Tables.PresignedLinks),
	}
	if cfg.Tables.CMS.Enabled() {
		tables.CMS = open(cfg.Tables.CMS)
	}
	return tables, nil
}
