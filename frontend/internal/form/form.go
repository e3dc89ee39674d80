// Package form drives the get-involved form: debounced contact lookups,
// the link-sent short circuit for existing users, validation and submission.
package form

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Serubin/AJD-Site/shared/api"
	"github.com/Serubin/AJD-Site/shared/domain"
	"github.com/Serubin/AJD-Site/shared/logger"
	"github.com/Serubin/AJD-Site/shared/phone"
)

const DefaultDebounce = 400 * time.Millisecond

type State int

const (
	Idle State = iota
	Debounced
	LookingUp
	Found
	Submitting
	Success
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Debounced:
		return "debounced"
	case LookingUp:
		return "looking_up"
	case Found:
		return "found"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return "unknown"
}

type Mode int

const (
	Create Mode = iota
	Update
)

var (
	ErrLinkSent = errors.New("form: an update link was sent, submission is disabled")
	ErrBusy     = errors.New("form: a submission is in progress")
	ErrDone     = errors.New("form: already submitted")
	ErrClosed   = errors.New("form: closed")
)

// Backend is the part of the API the form talks to.
type Backend interface {
	LookupUser(ctx context.Context, c domain.Contact) (bool, error)
	RequestUpdateLink(ctx context.Context, c domain.Contact) error
	CreateUser(ctx context.Context, req api.UserRequest) (domain.User, error)
	UpdateViaLink(ctx context.Context, slug string, req api.UserRequest) (domain.User, error)
}

// Fields is what the visitor has typed.
type Fields struct {
	Name                  string
	Email                 string
	PhoneCountryCode      string
	PhoneNational         string
	States                []string
	CongressionalDistrict string
}

// Phone is the canonical phone, or "" when none or an incomplete one is typed.
func (f Fields) Phone() string {
	return phone.ToCanonical(f.PhoneCountryCode, f.PhoneNational)
}

func (f Fields) contact() domain.Contact {
	return domain.Contact{Email: strings.TrimSpace(f.Email), Phone: f.Phone()}
}

func (f Fields) request() api.UserRequest {
	return api.UserRequest{
		Name:                  strings.TrimSpace(f.Name),
		Email:                 strings.TrimSpace(f.Email),
		Phone:                 f.Phone(),
		States:                f.States,
		CongressionalDistrict: f.CongressionalDistrict,
	}
}

// ValidationErrors maps field names to messages.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	return "form: invalid fields"
}

// Validate is the client side gate every submission passes before any
// network call.
func Validate(f Fields) ValidationErrors {
	errs := ValidationErrors{}
	if strings.TrimSpace(f.Name) == "" {
		errs["name"] = "Name is required"
	}
	if strings.TrimSpace(f.Email) == "" {
		errs["email"] = "Email is required"
	}
	code := phone.Digits(f.PhoneCountryCode)
	if (code == "" || code == phone.DefaultCountryCode) && phone.Digits(f.PhoneNational) != "" && f.Phone() == "" {
		errs["phone"] = "Enter a valid 10-digit number"
	}
	if len(f.States) == 0 {
		errs["states"] = "At least one state is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

type Config struct {
	Mode     Mode
	Slug     string // update mode only
	Initial  Fields
	Debounce time.Duration
	// OnStateChange is called with the lock held; it must not call back into
	// the Controller.
	OnStateChange func(State)
}

// Controller is safe for concurrent use. Lookups run on timer goroutines and
// never overlap; results of lookups made for superseded input are dropped.
type Controller struct {
	backend Backend
	cfg     Config

	mu     sync.Mutex
	fields Fields
	state  State
	err    error
	gen    uint64
	timer  *time.Timer
	closed bool

	lookupMu sync.Mutex
	inflight sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(backend Backend, cfg Config) *Controller {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Initial.PhoneCountryCode == "" {
		cfg.Initial.PhoneCountryCode = phone.DefaultCountryCode
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		backend: backend,
		cfg:     cfg,
		fields:  cfg.Initial,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err is the error that put the form in the Error state.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Controller) Fields() Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.fields
	f.States = append([]string(nil), f.States...)
	return f
}

// setState must be called with mu held.
func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	c.state = s
	if c.cfg.OnStateChange != nil {
		c.cfg.OnStateChange(s)
	}
}

// locked reports whether input no longer changes anything. Must be called
// with mu held.
func (c *Controller) locked() bool {
	return c.closed || c.state == Found || c.state == Submitting || c.state == Success
}

func (c *Controller) SetName(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.locked() {
		c.fields.Name = v
	}
}

func (c *Controller) SetStates(states []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.locked() {
		c.fields.States = append([]string(nil), states...)
	}
}

func (c *Controller) SetCongressionalDistrict(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.locked() {
		c.fields.CongressionalDistrict = v
	}
}

func (c *Controller) SetEmail(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked() {
		return
	}
	c.fields.Email = v
	c.scheduleLocked()
}

func (c *Controller) SetPhone(countryCode, national string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked() {
		return
	}
	c.fields.PhoneCountryCode = countryCode
	c.fields.PhoneNational = national
	c.scheduleLocked()
}

// scheduleLocked replaces any pending lookup with one for the current
// fields, due after the debounce window.
func (c *Controller) scheduleLocked() {
	if c.cfg.Mode != Create {
		return
	}
	gen := c.supersedeLocked()
	c.inflight.Add(1)
	c.timer = time.AfterFunc(c.cfg.Debounce, func() {
		defer c.inflight.Done()
		c.lookup(gen)
	})
	c.setState(Debounced)
}

// supersedeLocked cancels the pending lookup, if any, and starts a new
// generation.
func (c *Controller) supersedeLocked() uint64 {
	if c.timer != nil {
		if c.timer.Stop() {
			c.inflight.Done()
		}
		c.timer = nil
	}
	c.gen++
	return c.gen
}

// Blur runs the lookup for the current fields now instead of waiting for
// the debounce window. It returns once the lookup has finished.
func (c *Controller) Blur() {
	c.mu.Lock()
	if c.locked() || c.cfg.Mode != Create {
		c.mu.Unlock()
		return
	}
	gen := c.supersedeLocked()
	c.inflight.Add(1)
	c.mu.Unlock()

	defer c.inflight.Done()
	c.lookup(gen)
}

func (c *Controller) lookup(gen uint64) {
	c.lookupMu.Lock()
	defer c.lookupMu.Unlock()

	c.mu.Lock()
	if gen != c.gen || c.locked() {
		c.mu.Unlock()
		return
	}
	contact := c.fields.contact()
	if contact.Empty() {
		c.setState(Idle)
		c.mu.Unlock()
		return
	}
	c.setState(LookingUp)
	c.mu.Unlock()

	log := logger.Component("form")
	found, err := c.backend.LookupUser(c.ctx, contact)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.locked() {
		return
	}
	if err != nil {
		// the visitor can still sign up normally
		log.Debug("lookup failed", "error", err)
		c.setState(Idle)
		return
	}
	if !found {
		c.setState(Idle)
		return
	}

	c.mu.Unlock()
	err = c.backend.RequestUpdateLink(c.ctx, contact)
	c.mu.Lock()
	// the contact may have been edited while the link was requested
	if gen != c.gen || c.locked() {
		return
	}
	if err != nil {
		log.Warn("failed to request update link", "error", err)
		c.err = err
		c.setState(Error)
		return
	}
	c.supersedeLocked()
	c.setState(Found)
}

// Submit validates the fields and creates the user, or updates it through
// the presigned link in update mode.
func (c *Controller) Submit(ctx context.Context) (domain.User, error) {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return domain.User{}, ErrClosed
	case c.state == Found:
		c.mu.Unlock()
		return domain.User{}, ErrLinkSent
	case c.state == Submitting:
		c.mu.Unlock()
		return domain.User{}, ErrBusy
	case c.state == Success:
		c.mu.Unlock()
		return domain.User{}, ErrDone
	}
	if errs := Validate(c.fields); errs != nil {
		c.mu.Unlock()
		return domain.User{}, errs
	}
	c.supersedeLocked()
	req := c.fields.request()
	update := c.cfg.Mode == Update && c.cfg.Slug != ""
	c.err = nil
	c.setState(Submitting)
	c.mu.Unlock()

	var (
		user domain.User
		err  error
	)
	if update {
		user, err = c.backend.UpdateViaLink(ctx, c.cfg.Slug, req)
	} else {
		user, err = c.backend.CreateUser(ctx, req)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.err = err
		c.setState(Error)
		return domain.User{}, err
	}
	c.setState(Success)
	return user, nil
}

// Close cancels pending and running lookups and waits for them to return.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.supersedeLocked()
	c.mu.Unlock()

	c.cancel()
	c.inflight.Wait()
}
