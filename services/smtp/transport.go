package smtp

import (
	"crypto/tls"
	"net"
	"net/smtp"
	"time"

	"github.com/pkg/errors"

	"github.com/mailfleet/mailfleet/internal/enum"
)

// Fixed transport timeouts. Not caller-adjustable: an unresponsive SMTP
// server must never hold a request beyond these bounds.
const (
	dialTimeout     = 10 * time.Second
	greetingTimeout = 10 * time.Second
	idleTimeout     = 10 * time.Second
)

// timeoutConn bumps the socket deadline on every read and write, so a peer
// that goes quiet mid-transaction trips idleTimeout rather than blocking.
type timeoutConn struct {
	net.Conn
	timeout time.Duration
}

func (c *timeoutConn) Read(b []byte) (int, error) {
	if err := c.Conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(b)
}

func (c *timeoutConn) Write(b []byte) (int, error) {
	if err := c.Conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(b)
}

// Session is a single-use SMTP client session. Sessions are not pooled:
// each send opens its own, keeping credentials isolated between companies.
type Session struct {
	client *smtp.Client
	host   string
}

// OpenSession dials the profile's server and completes greeting, TLS setup
// and authentication. The returned session must be closed by the caller.
func OpenSession(profile *ConnectionProfile) (*Session, error) {
	raw, err := net.DialTimeout("tcp", profile.Address(), dialTimeout)
	if err != nil {
		return nil, deliveryError(KindConnectionFailed, errors.Wrap(err, "failed to connect to SMTP server"))
	}

	conn := net.Conn(&timeoutConn{Conn: raw, timeout: idleTimeout})

	tlsConfig := &tls.Config{
		ServerName:         profile.Host,
		InsecureSkipVerify: !profile.VerifyCert,
	}

	if profile.Security == enum.EmailSecuritySSL {
		conn = tls.Client(conn, tlsConfig)
	}

	// The greeting is the first server read after connect.
	if err := raw.SetDeadline(time.Now().Add(greetingTimeout)); err != nil {
		raw.Close()
		return nil, deliveryError(KindConnectionFailed, err)
	}

	client, err := smtp.NewClient(conn, profile.Host)
	if err != nil {
		raw.Close()
		return nil, deliveryError(KindConnectionFailed, errors.Wrap(err, "SMTP greeting failed"))
	}

	if profile.Security == enum.EmailSecurityStartTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				client.Close()
				return nil, deliveryError(KindConnectionFailed, errors.Wrap(err, "failed to start TLS"))
			}
		}
	}

	if profile.Username != "" {
		auth := smtp.PlainAuth("", profile.Username, profile.Password, profile.Host)
		if err := client.Auth(auth); err != nil {
			client.Close()
			return nil, deliveryError(KindAuthenticationFailed, errors.Wrap(err, "SMTP authentication failed"))
		}
	}

	return &Session{client: client, host: profile.Host}, nil
}

// Close quits the session politely, falling back to a hard close.
func (s *Session) Close() error {
	if err := s.client.Quit(); err != nil {
		return s.client.Close()
	}
	return nil
}
