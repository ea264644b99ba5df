package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"time"
)

// probeTimeout bounds the whole SOCKS5 probe.
const probeTimeout = 2 * time.Second

const (
	socks5Version     = 0x05
	socks5AuthNone    = 0x00
	socks5CmdConnect  = 0x01
	socks5AddrDomain  = 0x03
	socks5ProbeTarget = "leadcrawl-probe.invalid"
)

// CheckProxy performs a SOCKS5 handshake and a CONNECT request against the
// proxy at addr. Any CONNECT reply counts as success: the target does not
// exist, so a refusal from the proxy still proves it is proxying.
func CheckProxy(ctx context.Context, addr string) ProxyStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return ProxyStatusCannotConnect
	}

	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return ProxyStatusCannotConnect
	}
	greeting := make([]byte, 2)
	if _, err := io.ReadFull(conn, greeting); err != nil {
		return readFailure(err)
	}
	if greeting[0] != socks5Version || greeting[1] != socks5AuthNone {
		return ProxyStatusWrongType
	}

	req := []byte{socks5Version, socks5CmdConnect, 0x00, socks5AddrDomain, byte(len(socks5ProbeTarget))}
	req = append(req, socks5ProbeTarget...)
	req = append(req, 0x00, 80)
	if _, err := conn.Write(req); err != nil {
		return ProxyStatusCannotConnect
	}
	reply := make([]byte, 4)
	if _, err := io.ReadFull(conn, reply); err != nil {
		return readFailure(err)
	}
	if reply[0] != socks5Version {
		return ProxyStatusWrongType
	}
	return ProxyStatusOK
}

func readFailure(err error) ProxyStatus {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return ProxyStatusTimeout
	}
	return ProxyStatusWrongType
}
