package smtp

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyssareba/flika-app-sub001/internal/config"
	"github.com/lyssareba/flika-app-sub001/internal/lib/sl"
)

func TestTransport_GetSMTPUser(t *testing.T) {
	tr := NewTransport(config.SMTP{SMTPUser: "noreply@flika.app"}, sl.Discard())
	assert.Equal(t, "noreply@flika.app", tr.GetSMTPUser())
}

func TestTransport_ConnectRefused(t *testing.T) {
	// занимаем порт и сразу освобождаем, чтобы соединение было отклонено
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	tr := NewTransport(config.SMTP{SMTPHost: host, SMTPPort: port}, sl.Discard())
	_, err = tr.Connect()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp.Connect")
}

func TestTransport_NoStartTLS(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 512)
		_, _ = conn.Write([]byte("220 localhost ESMTP\r\n"))
		if _, err := conn.Read(buf); err != nil {
			return
		}
		_, _ = conn.Write([]byte("250 localhost\r\n"))
		_, _ = conn.Read(buf)
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	tr := NewTransport(config.SMTP{SMTPHost: host, SMTPPort: port}, sl.Discard())
	_, err = tr.Connect()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoStartTLS)
}

var _ TransportInterface = (*Transport)(nil)
