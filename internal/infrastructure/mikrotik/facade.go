// Package mikrotik translates domain operations (secrets, active sessions,
// address lists, system info) into RouterOS API commands against a single
// connected device. It carries no retry logic; retry policy belongs to the
// caller.
package mikrotik

import (
	"context"
	"errors"
	"strconv"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/routeros"
	"go.uber.org/zap"
)

// ErrNotConnected indicates a facade call without an open device session.
// This is a programming error, not a recoverable condition.
var ErrNotConnected = errors.New("mikrotik: not connected")

// ErrNotFound indicates the referenced secret or session does not exist on
// the device. Naturally idempotent operations (remove, disable, disconnect)
// never return it; they report success-with-no-op instead.
var ErrNotFound = errors.New("mikrotik: not found")

// Runner is the protocol surface the facade drives. *routeros.Conn
// satisfies it; tests substitute a scripted fake.
type Runner interface {
	Run(ctx context.Context, path string, words ...string) ([]*routeros.Row, error)
	Close() error
	Connected() bool
}

// Session binds the facade to one device connection at a time
type Session struct {
	conn Runner
	log  *zap.Logger
}

// NewSession wraps an already-connected Runner
func NewSession(conn Runner, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{conn: conn, log: log}
}

// Connect dials and logs into a device, returning a ready facade session
func Connect(ctx context.Context, cfg routeros.Config, log *zap.Logger) (*Session, error) {
	conn, err := routeros.Dial(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewSession(conn, log), nil
}

// Close releases the underlying connection; safe to call repeatedly
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *Session) ensure() error {
	if s.conn == nil || !s.conn.Connected() {
		return ErrNotConnected
	}
	return nil
}

// SecretInput describes a PPP secret to create
type SecretInput struct {
	Username      string
	Password      string
	Service       string // defaults to pppoe
	Profile       string // defaults to default
	LocalAddress  string
	RemoteAddress string
	Comment       string
}

// SecretUpdate carries optional PPP secret changes; nil fields are untouched
type SecretUpdate struct {
	Password *string
	Profile  *string
	Disabled *bool
	Comment  *string
}

// FindSecret returns the PPP secret row for username, or ErrNotFound
func (s *Session) FindSecret(ctx context.Context, username string) (*routeros.Row, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	rows, err := s.conn.Run(ctx, "/ppp/secret/print", routeros.Query("name", username))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// CreateSecret adds a PPP secret
func (s *Session) CreateSecret(ctx context.Context, in SecretInput) error {
	if err := s.ensure(); err != nil {
		return err
	}

	service := in.Service
	if service == "" {
		service = "pppoe"
	}
	profile := in.Profile
	if profile == "" {
		profile = "default"
	}

	words := []string{
		routeros.Attr("name", in.Username),
		routeros.Attr("password", in.Password),
		routeros.Attr("service", service),
		routeros.Attr("profile", profile),
	}
	if in.LocalAddress != "" {
		words = append(words, routeros.Attr("local-address", in.LocalAddress))
	}
	if in.RemoteAddress != "" {
		words = append(words, routeros.Attr("remote-address", in.RemoteAddress))
	}
	if in.Comment != "" {
		words = append(words, routeros.Attr("comment", in.Comment))
	}

	_, err := s.conn.Run(ctx, "/ppp/secret/add", words...)
	return err
}

// UpdateSecret applies the given changes to an existing secret
func (s *Session) UpdateSecret(ctx context.Context, username string, update SecretUpdate) error {
	secret, err := s.FindSecret(ctx, username)
	if err != nil {
		return err
	}

	words := []string{routeros.Attr(".id", secret.ID())}
	if update.Password != nil {
		words = append(words, routeros.Attr("password", *update.Password))
	}
	if update.Profile != nil {
		words = append(words, routeros.Attr("profile", *update.Profile))
	}
	if update.Disabled != nil {
		words = append(words, routeros.Attr("disabled", yesNo(*update.Disabled)))
	}
	if update.Comment != nil {
		words = append(words, routeros.Attr("comment", *update.Comment))
	}

	_, err = s.conn.Run(ctx, "/ppp/secret/set", words...)
	return err
}

// DeleteSecret removes a secret; a missing secret is a no-op
func (s *Session) DeleteSecret(ctx context.Context, username string) error {
	secret, err := s.FindSecret(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.conn.Run(ctx, "/ppp/secret/remove", routeros.Attr(".id", secret.ID()))
	return err
}

// EnableSecret re-enables a disabled secret
func (s *Session) EnableSecret(ctx context.Context, username string) error {
	disabled := false
	return s.UpdateSecret(ctx, username, SecretUpdate{Disabled: &disabled})
}

// DisableSecret disables a secret; a missing secret is a no-op
func (s *Session) DisableSecret(ctx context.Context, username string) error {
	disabled := true
	err := s.UpdateSecret(ctx, username, SecretUpdate{Disabled: &disabled})
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// ChangeProfile swaps the secret's PPP profile (bandwidth/policy change)
func (s *Session) ChangeProfile(ctx context.Context, username, profile string) error {
	return s.UpdateSecret(ctx, username, SecretUpdate{Profile: &profile})
}

// FindActive returns the active PPP session row for username, or ErrNotFound
func (s *Session) FindActive(ctx context.Context, username string) (*routeros.Row, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	rows, err := s.conn.Run(ctx, "/ppp/active/print", routeros.Query("name", username))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// DisconnectSession force-disconnects the user's active PPP session so the
// next reconnect picks up changed secrets or profiles. No active session is
// reported as success.
func (s *Session) DisconnectSession(ctx context.Context, username string) error {
	active, err := s.FindActive(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.conn.Run(ctx, "/ppp/active/remove", routeros.Attr(".id", active.ID()))
	return err
}

// AddressListContains reports whether (list, address) exists in the firewall
// address list.
func (s *Session) AddressListContains(ctx context.Context, list, address string) (bool, error) {
	rows, err := s.addressListEntries(ctx, list, address)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// AddressListAdd puts address on the named list. The (list, address) pair is
// checked first so repeated adds stay idempotent.
func (s *Session) AddressListAdd(ctx context.Context, list, address, comment string) error {
	existing, err := s.addressListEntries(ctx, list, address)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		s.log.Debug("address already listed", zap.String("list", list), zap.String("address", address))
		return nil
	}

	words := []string{
		routeros.Attr("list", list),
		routeros.Attr("address", address),
	}
	if comment != "" {
		words = append(words, routeros.Attr("comment", comment))
	}

	_, err = s.conn.Run(ctx, "/ip/firewall/address-list/add", words...)
	return err
}

// AddressListRemove deletes every entry matching (list, address). Duplicates
// are removed one by one; a missing entry is a no-op.
func (s *Session) AddressListRemove(ctx context.Context, list, address string) error {
	entries, err := s.addressListEntries(ctx, list, address)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if _, err := s.conn.Run(ctx, "/ip/firewall/address-list/remove", routeros.Attr(".id", entry.ID())); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) addressListEntries(ctx context.Context, list, address string) ([]*routeros.Row, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	return s.conn.Run(ctx, "/ip/firewall/address-list/print",
		routeros.Query("list", list),
		routeros.Query("address", address),
	)
}

// Info is the merged identity/resource/routerboard snapshot of a device.
// Optional fields default rather than failing the whole read.
type Info struct {
	Identity     string
	Version      string
	Uptime       string
	CPULoad      int
	FreeMemory   uint64
	TotalMemory  uint64
	Architecture string
	BoardName    string
	Model        string
	SerialNumber string
}

// MemoryUsagePercent derives used-memory percentage, 0 when unknown
func (i Info) MemoryUsagePercent() int {
	if i.TotalMemory == 0 {
		return 0
	}
	used := i.TotalMemory - i.FreeMemory
	return int(float64(used)/float64(i.TotalMemory)*100 + 0.5)
}

// SystemInfo reads identity and resource data. The routerboard print is
// absent on CHR instances; its trap is tolerated and the fields default.
func (s *Session) SystemInfo(ctx context.Context) (Info, error) {
	if err := s.ensure(); err != nil {
		return Info{}, err
	}

	info := Info{
		Identity:     "Unknown",
		Version:      "Unknown",
		Uptime:       "Unknown",
		Architecture: "Unknown",
		BoardName:    "Unknown",
		Model:        "Unknown",
		SerialNumber: "Unknown",
	}

	identity, err := s.conn.Run(ctx, "/system/identity/print")
	if err != nil {
		return Info{}, err
	}
	if len(identity) > 0 {
		info.Identity = identity[0].GetOr("name", info.Identity)
	}

	resource, err := s.conn.Run(ctx, "/system/resource/print")
	if err != nil {
		return Info{}, err
	}
	if len(resource) > 0 {
		row := resource[0]
		info.Version = row.GetOr("version", info.Version)
		info.Uptime = row.GetOr("uptime", info.Uptime)
		info.Architecture = row.GetOr("architecture-name", info.Architecture)
		info.BoardName = row.GetOr("board-name", info.BoardName)
		info.CPULoad = atoiOr(row.Get("cpu-load"), 0)
		info.FreeMemory = atouOr(row.Get("free-memory"), 0)
		info.TotalMemory = atouOr(row.Get("total-memory"), 0)
	}

	board, err := s.conn.Run(ctx, "/system/routerboard/print")
	if err != nil {
		var trap *routeros.TrapError
		if !errors.As(err, &trap) {
			return Info{}, err
		}
	} else if len(board) > 0 {
		info.Model = board[0].GetOr("model", info.Model)
		info.SerialNumber = board[0].GetOr("serial-number", info.SerialNumber)
	}

	return info, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func atouOr(s string, def uint64) uint64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return def
	}
	return v
}
