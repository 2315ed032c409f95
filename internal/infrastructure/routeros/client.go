package routeros

import (
	"bufio"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
)

// DefaultPort is the plaintext API port
const DefaultPort = 8728

// DefaultTimeout bounds connect and every read/write when none is configured
const DefaultTimeout = 10 * time.Second

// Config holds connection parameters for one device
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// Conn owns one TCP socket to one device. The protocol is strictly
// request/response with no pipelining: one outstanding command at a time,
// and a Conn must not be shared between goroutines.
type Conn struct {
	conn    net.Conn
	r       *bufio.Reader
	timeout time.Duration
	log     *zap.Logger
	broken  bool
	closed  bool
}

// Dial opens the TCP socket and performs the login handshake. The modern
// plaintext exchange is attempted first; a =ret= challenge in the reply
// falls back to the MD5 challenge/response of pre-6.43 devices.
func Dial(ctx context.Context, cfg Config) (*Conn, error) {
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", port))
	dialer := net.Dialer{Timeout: timeout}
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &ConnError{Op: "dial " + addr, Err: err}
	}

	c := &Conn{
		conn:    netConn,
		r:       bufio.NewReader(netConn),
		timeout: timeout,
		log:     log,
	}

	if err := c.login(ctx, cfg.Username, cfg.Password); err != nil {
		_ = c.Close()
		return nil, err
	}

	c.log.Debug("connected", zap.String("addr", addr))
	return c, nil
}

// Run sends one command sentence and reads the reply until !done or !fatal.
// The first word is the command path; additional words are passed through
// verbatim (use Attr and Query to build them). A !trap in the reply returns
// a *TrapError and leaves the connection usable; socket errors and !fatal
// invalidate it.
func (c *Conn) Run(ctx context.Context, path string, words ...string) ([]*Row, error) {
	rep, err := c.exchange(ctx, append([]string{path}, words...))
	if err != nil {
		return nil, err
	}
	if len(rep.traps) > 0 {
		return rep.rows, joinTraps(rep.traps)
	}
	return rep.rows, nil
}

// joinTraps folds every !trap of one reply into a single error; a reply can
// carry several (one per failed item on batch verbs).
func joinTraps(traps []*TrapError) error {
	if len(traps) == 1 {
		return traps[0]
	}
	errs := make([]error, len(traps))
	for i, t := range traps {
		errs[i] = t
	}
	return errors.Join(errs...)
}

// Close shuts the socket down. It is idempotent and safe on an
// already-closed connection.
func (c *Conn) Close() error {
	if c.closed || c.conn == nil {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// Connected reports whether the connection is open and has not seen a
// connection-level error.
func (c *Conn) Connected() bool {
	return c.conn != nil && !c.closed && !c.broken
}

func (c *Conn) login(ctx context.Context, username, password string) error {
	rep, err := c.exchange(ctx, []string{"/login", Attr("name", username), Attr("password", password)})
	if err != nil {
		return err
	}
	if len(rep.traps) > 0 {
		return fmt.Errorf("%w: %s", ErrLoginFailed, rep.traps[0].Message)
	}

	// Pre-6.43 devices answer the first /login with a challenge instead of
	// completing it.
	challenge, ok := rep.done.Lookup("ret")
	if !ok {
		return nil
	}

	challengeBytes, err := hex.DecodeString(challenge)
	if err != nil {
		return fmt.Errorf("%w: malformed challenge %q", ErrLoginFailed, challenge)
	}

	sum := md5.New()
	sum.Write([]byte{0})
	sum.Write([]byte(password))
	sum.Write(challengeBytes)
	response := "00" + hex.EncodeToString(sum.Sum(nil))

	rep, err = c.exchange(ctx, []string{"/login", Attr("name", username), Attr("response", response)})
	if err != nil {
		return err
	}
	if len(rep.traps) > 0 {
		return fmt.Errorf("%w: %s", ErrLoginFailed, rep.traps[0].Message)
	}
	return nil
}

// exchange performs one request/response cycle: write the sentence, then
// read words across sentences until the terminator of a !done or !fatal
// sentence.
func (c *Conn) exchange(ctx context.Context, sentence []string) (*reply, error) {
	if !c.Connected() {
		return nil, ErrNotConnected
	}

	if err := c.writeSentence(ctx, sentence); err != nil {
		c.broken = true
		return nil, err
	}

	words, err := c.readReply(ctx)
	if err != nil {
		c.broken = true
		return nil, err
	}

	rep := parseReply(words)
	if rep.fatal != "" || containsWord(words, markerFatal) {
		c.broken = true
		return nil, &ConnError{Op: "command", Err: &FatalError{Reason: rep.fatal}}
	}
	return rep, nil
}

func (c *Conn) writeSentence(ctx context.Context, sentence []string) error {
	buf := make([]byte, 0, 64)
	for _, w := range sentence {
		buf = appendWord(buf, w)
		c.log.Debug("tx", zap.String("word", w))
	}
	buf = appendLength(buf, 0) // end of sentence

	if err := c.setDeadline(ctx); err != nil {
		return &ConnError{Op: "write", Err: err}
	}
	if _, err := c.conn.Write(buf); err != nil {
		return &ConnError{Op: "write", Err: err}
	}
	return nil
}

func (c *Conn) readReply(ctx context.Context) ([]string, error) {
	var words []string
	terminal := false

	for {
		if err := c.setDeadline(ctx); err != nil {
			return nil, &ConnError{Op: "read", Err: err}
		}
		w, err := readWord(c.r)
		if err != nil {
			return nil, &ConnError{Op: "read", Err: err}
		}

		if w == "" { // sentence boundary
			if terminal {
				return words, nil
			}
			continue
		}

		c.log.Debug("rx", zap.String("word", w))
		words = append(words, w)

		if w == markerDone || w == markerFatal {
			terminal = true
		}
	}
}

// setDeadline bounds the next socket operation by the configured timeout,
// tightened by the context deadline when that is earlier.
func (c *Conn) setDeadline(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return c.conn.SetDeadline(deadline)
}

func containsWord(words []string, want string) bool {
	for _, w := range words {
		if w == want {
			return true
		}
	}
	return false
}
