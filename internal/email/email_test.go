package email

import (
	"bufio"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSender_Disabled(t *testing.T) {
	s := NewSender(Config{})

	assert.False(t, s.Enabled())
	assert.NoError(t, s.Send("alice@example.com", "hi", "body"))
}

func TestBuildMessage(t *testing.T) {
	s := NewSender(Config{Host: "smtp.example.com", From: "noreply@agora.example"})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	msg := s.buildMessage("alice@example.com", "Your account has been suspended", "Reason: spam\n", now)

	assert.Contains(t, msg, "From: Agora <noreply@agora.example>\r\n")
	assert.Contains(t, msg, "To: alice@example.com\r\n")
	assert.Contains(t, msg, "Subject: Your account has been suspended\r\n")
	assert.Contains(t, msg, "Date: Sun, 01 Mar 2026 12:00:00 +0000\r\n")
	assert.Contains(t, msg, "@agora.example>\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nReason: spam\n"))
}

func TestBuildMessage_StripsHeaderInjection(t *testing.T) {
	s := NewSender(Config{Host: "smtp.example.com", From: "noreply@agora.example", FromName: "Agora Mods"})

	msg := s.buildMessage("alice@example.com", "hello\r\nBcc: mallory@example.com", "body", time.Now())

	assert.Contains(t, msg, "From: Agora Mods <noreply@agora.example>")
	assert.Contains(t, msg, "Subject: helloBcc: mallory@example.com\r\n")
	assert.NotContains(t, msg, "\r\nBcc:")
}

// fakeSMTP accepts one plaintext session and returns the DATA payload.
func fakeSMTP(t *testing.T) (addr string, data <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	out := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		reply := func(s string) { conn.Write([]byte(s + "\r\n")) }
		reply("220 localhost ESMTP")

		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				reply("250 localhost")
			case strings.HasPrefix(cmd, "MAIL"), strings.HasPrefix(cmd, "RCPT"):
				reply("250 OK")
			case cmd == "DATA":
				reply("354 End data with <CR><LF>.<CR><LF>")
				var sb strings.Builder
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if l == ".\r\n" {
						break
					}
					sb.WriteString(l)
				}
				out <- sb.String()
				reply("250 OK")
			case cmd == "QUIT":
				reply("221 Bye")
				return
			default:
				reply("502 Not implemented")
			}
		}
	}()
	return ln.Addr().String(), out
}

func TestSender_Send(t *testing.T) {
	addr, data := fakeSMTP(t)
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	s := NewSender(Config{Host: host, Port: port, From: "noreply@agora.example"})
	require.NoError(t, s.Send("alice@example.com", "Suspended", "Reason: spam"))

	select {
	case msg := <-data:
		assert.Contains(t, msg, "To: alice@example.com")
		assert.Contains(t, msg, "Reason: spam")
	case <-time.After(5 * time.Second):
		t.Fatal("no message delivered")
	}
}
