// directory/powershell.go
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Runner executes name with args and returns stdout. Swappable in tests.
type Runner func(ctx context.Context, name string, args ...string) (stdout []byte, err error)

// PowerShellResolver shells out to Get-ADUser on the domain-joined host.
type PowerShellResolver struct {
	Path    string // powershell.exe
	IDField string // AD attribute matched against the scanned id, e.g. EmployeeID
	Run     Runner
	Log     *zap.Logger
}

// safeID keeps scanned ids from escaping the -Filter string.
var safeID = regexp.MustCompile(`^[A-Za-z0-9._@-]+$`)

func NewPowerShellResolver(path, idField string, log *zap.Logger) *PowerShellResolver {
	if path == "" {
		path = "powershell.exe"
	}
	if idField == "" {
		idField = "EmployeeID"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PowerShellResolver{Path: path, IDField: idField, Run: execRunner, Log: log}
}

func (p *PowerShellResolver) Command(id string) string {
	return fmt.Sprintf(
		`Get-ADUser -Filter '%s -eq "%s"' | Select-Object Name | ConvertTo-Json`,
		p.IDField, id,
	)
}

func (p *PowerShellResolver) Resolve(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", ErrNoIdentifier
	}
	if !safeID.MatchString(id) {
		p.Log.Warn("directory: rejected id with unsafe characters", zap.String("id", id))
		return "", &NotFoundError{ID: id}
	}

	out, err := p.Run(ctx, p.Path, "-NoProfile", "-NonInteractive", "-Command", p.Command(id))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			p.Log.Warn("directory: lookup timed out", zap.String("id", id))
			return "", ErrTimeout
		}
		if ctx.Err() != nil {
			p.Log.Info("directory: lookup cancelled", zap.String("id", id))
			return "", ErrUnknown
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			p.Log.Warn("directory: powershell failed",
				zap.String("id", id),
				zap.Int("exit_code", exitErr.ExitCode()),
				zap.ByteString("stderr", exitErr.Stderr))
			return "", ErrBackend
		}
		p.Log.Error("directory: unexpected lookup error", zap.String("id", id), zap.Error(err))
		return "", ErrUnknown
	}

	name, err := parseADUser(out)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			p.Log.Info("directory: no user found", zap.String("id", id))
			return "", &NotFoundError{ID: id}
		}
		p.Log.Warn("directory: bad lookup output", zap.String("id", id), zap.Error(err))
		return "", err
	}
	p.Log.Debug("directory: found user", zap.String("id", id), zap.String("name", name))
	return name, nil
}

type adUser struct {
	Name *string `json:"Name"`
}

// parseADUser reads ConvertTo-Json output: nothing, one object or an array.
func parseADUser(out []byte) (string, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return "", ErrNotFound
	}

	var user adUser
	if out[0] == '[' {
		var users []adUser
		if err := json.Unmarshal(out, &users); err != nil {
			return "", ErrUnknown
		}
		if len(users) == 0 {
			return "", ErrNotFound
		}
		user = users[0]
	} else if err := json.Unmarshal(out, &user); err != nil {
		return "", ErrUnknown
	}

	if user.Name == nil || strings.TrimSpace(*user.Name) == "" {
		return "", ErrMalformed
	}
	return strings.TrimSpace(*user.Name), nil
}

// waitDelay bounds how long Output waits for pipes after the process is killed.
const waitDelay = 2 * time.Second

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay
	return cmd.Output()
}
