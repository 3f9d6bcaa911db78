// directory/ldap.go
package directory

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"go.uber.org/zap"
)

// LDAPConn is the part of *ldap.Conn the resolver needs.
type LDAPConn interface {
	Bind(username, password string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	SetTimeout(d time.Duration)
	Close() error
}

type LDAPConfig struct {
	URL          string
	BindDN       string
	BindPassword string
	BaseDN       string
	IDField      string // e.g. employeeID
	NameAttr     string // e.g. name or displayName
	Timeout      time.Duration
}

// LDAPResolver queries the directory over LDAP instead of PowerShell, for
// hosts that are not domain-joined Windows machines.
type LDAPResolver struct {
	cfg  LDAPConfig
	Dial func(ctx context.Context) (LDAPConn, error)
	Log  *zap.Logger
}

func NewLDAPResolver(cfg LDAPConfig, log *zap.Logger) *LDAPResolver {
	if cfg.IDField == "" {
		cfg.IDField = "employeeID"
	}
	if cfg.NameAttr == "" {
		cfg.NameAttr = "name"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	r := &LDAPResolver{cfg: cfg, Log: log}
	r.Dial = r.dial
	return r
}

func (r *LDAPResolver) dial(ctx context.Context) (LDAPConn, error) {
	d := &net.Dialer{Timeout: r.cfg.Timeout}
	if deadline, ok := ctx.Deadline(); ok {
		d.Deadline = deadline
	}
	conn, err := ldap.DialURL(r.cfg.URL, ldap.DialWithDialer(d))
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Filter builds the search filter for id. The id is escaped.
func (r *LDAPResolver) Filter(id string) string {
	return fmt.Sprintf("(%s=%s)", r.cfg.IDField, ldap.EscapeFilter(id))
}

func (r *LDAPResolver) Resolve(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", ErrNoIdentifier
	}

	type result struct {
		name string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		name, err := r.lookup(ctx, id)
		done <- result{name, err}
	}()

	select {
	case <-ctx.Done():
		r.Log.Warn("directory: ldap lookup timed out", zap.String("id", id))
		return "", ErrTimeout
	case res := <-done:
		return res.name, res.err
	}
}

func (r *LDAPResolver) lookup(ctx context.Context, id string) (string, error) {
	conn, err := r.Dial(ctx)
	if err != nil {
		return "", r.classify(id, "dial", err)
	}
	defer func() { _ = conn.Close() }()

	timeout := r.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	conn.SetTimeout(timeout)

	if r.cfg.BindDN != "" {
		if err := conn.Bind(r.cfg.BindDN, r.cfg.BindPassword); err != nil {
			return "", r.classify(id, "bind", err)
		}
	}

	req := ldap.NewSearchRequest(
		r.cfg.BaseDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases,
		2, int(r.cfg.Timeout/time.Second), false,
		r.Filter(id),
		[]string{r.cfg.NameAttr},
		nil,
	)
	res, err := conn.Search(req)
	if err != nil && !ldap.IsErrorWithCode(err, ldap.LDAPResultSizeLimitExceeded) {
		return "", r.classify(id, "search", err)
	}
	if res == nil || len(res.Entries) == 0 {
		r.Log.Info("directory: no user found", zap.String("id", id))
		return "", &NotFoundError{ID: id}
	}

	name := strings.TrimSpace(res.Entries[0].GetAttributeValue(r.cfg.NameAttr))
	if name == "" {
		r.Log.Warn("directory: user has no name attribute",
			zap.String("id", id), zap.String("dn", res.Entries[0].DN))
		return "", ErrMalformed
	}
	r.Log.Debug("directory: found user", zap.String("id", id), zap.String("name", name))
	return name, nil
}

func (r *LDAPResolver) classify(id, phase string, err error) error {
	var netErr net.Error
	switch {
	case ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject):
		r.Log.Info("directory: no user found", zap.String("id", id))
		return &NotFoundError{ID: id}
	case ldap.IsErrorWithCode(err, ldap.LDAPResultTimeLimitExceeded),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		r.Log.Warn("directory: ldap timed out", zap.String("id", id), zap.String("phase", phase), zap.Error(err))
		return ErrTimeout
	default:
		r.Log.Warn("directory: ldap failed", zap.String("id", id), zap.String("phase", phase), zap.Error(err))
		return ErrBackend
	}
}
