package sockutil

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/netkitio/sockutil/internal/sockapi"
)

// InvalidSock is the descriptor returned by factories that failed. Nothing
// in this package ever operates on it.
const InvalidSock = -1

// DefaultBacklog is the listen queue depth used when the caller passes a
// non-positive backlog.
const DefaultBacklog = 1024

// WildcardIP binds every local interface. An empty local address is treated
// the same way.
const WildcardIP = "0.0.0.0"

// Connect creates a TCP socket and initiates a connection to host:port.
// Equivalent to ConnectContext with the background context.
func Connect(host string, port uint16, async bool, localIP string, localPort uint16) (int, error) {
	return ConnectContext(context.Background(), host, port, async, localIP, localPort)
}

// ConnectContext creates a TCP socket, optionally binds it to
// localIP:localPort (skipped for the wildcard address and port zero), and
// initiates a connection to host:port. The context bounds name resolution
// only; the connect itself is never given a deadline here.
//
// With async set the socket is switched to non-blocking before the handshake
// starts, and an in-progress connect counts as success: the caller polls
// completion with GetSockError once the descriptor turns writable. Without
// async the call blocks until the handshake settles.
//
// On any failure after socket creation the descriptor is closed before the
// error is returned; a failed Connect never leaks.
func ConnectContext(ctx context.Context, host string, port uint16, async bool, localIP string, localPort uint16) (int, error) {
	dest, err := GetDomainIPContext(ctx, host, port)
	if err != nil {
		return InvalidSock, err
	}

	sock, err := sockapi.NewTCP()
	if err != nil {
		return InvalidSock, sysError("create socket", "tcp", err)
	}

	if !isWildcard(localIP) || localPort != 0 {
		if err := BindSock(sock, localIP, localPort); err != nil {
			_ = sockapi.Close(sock)
			return InvalidSock, err
		}
	}

	if async {
		if err := sockapi.SetNonblock(sock, true); err != nil {
			_ = sockapi.Close(sock)
			return InvalidSock, sysError("configure socket", "non-blocking", err)
		}
	}

	err = sockapi.Connect(sock, dest.Addr().As4(), dest.Port())
	if err != nil && !(async && sockapi.ConnectInProgress(err)) {
		_ = sockapi.Close(sock)
		Logger().Warn("connect failed",
			zap.String("dest", dest.String()), zap.Error(err))
		return InvalidSock, sysError("connect socket", dest.String(), err)
	}

	Logger().Debug("connect initiated",
		zap.String("dest", dest.String()), zap.Int("sock", sock), zap.Bool("async", async))
	return sock, nil
}

// Listen creates a TCP listener on localIP:port with the given backlog
// (non-positive falls back to DefaultBacklog). Address reuse is applied
// before the bind so a restarted listener does not wait out TIME_WAIT. On
// failure the partially built descriptor is closed.
func Listen(port uint16, localIP string, backlog int) (int, error) {
	sock, err := sockapi.NewTCP()
	if err != nil {
		return InvalidSock, sysError("create socket", "tcp", err)
	}

	if err := SetReuseable(sock, true); err != nil {
		_ = sockapi.Close(sock)
		return InvalidSock, err
	}

	if err := BindSock(sock, localIP, port); err != nil {
		_ = sockapi.Close(sock)
		return InvalidSock, err
	}

	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	if err := sockapi.Listen(sock, backlog); err != nil {
		_ = sockapi.Close(sock)
		Logger().Warn("listen failed",
			zap.String("addr", fmt.Sprintf("%s:%d", localIP, port)), zap.Error(err))
		return InvalidSock, sysError("listen socket", fmt.Sprintf("%s:%d", localIP, port), err)
	}

	Logger().Debug("listener ready",
		zap.String("addr", fmt.Sprintf("%s:%d", localIP, port)), zap.Int("sock", sock))
	return sock, nil
}

// BindUDPSock creates a UDP socket bound to localIP:port. Port zero asks the
// kernel for an ephemeral port, readable afterwards with GetLocalPort. On
// failure the partially built descriptor is closed.
func BindUDPSock(port uint16, localIP string) (int, error) {
	sock, err := sockapi.NewUDP()
	if err != nil {
		return InvalidSock, sysError("create socket", "udp", err)
	}

	if err := BindSock(sock, localIP, port); err != nil {
		_ = sockapi.Close(sock)
		return InvalidSock, err
	}
	return sock, nil
}

// BindSock binds an existing descriptor to localIP:port. The wildcard
// address (or an empty string) binds every interface; a hostname resolves
// through the same path as GetDomainIP. The descriptor is left open on
// failure, the caller owns it.
func BindSock(sock int, localIP string, port uint16) error {
	host := localIP
	if host == "" {
		host = WildcardIP
	}
	local, err := GetDomainIP(host, port)
	if err != nil {
		return err
	}
	if err := sockapi.Bind(sock, local.Addr().As4(), local.Port()); err != nil {
		Logger().Warn("bind failed",
			zap.String("addr", local.String()), zap.Int("sock", sock), zap.Error(err))
		return sysError("bind socket", local.String(), err)
	}
	return nil
}

// Close releases a descriptor produced by Connect, Listen, or BindUDPSock.
// Closing InvalidSock is a no-op, so factory results can be closed without a
// prior check.
func Close(sock int) error {
	if sock == InvalidSock {
		return nil
	}
	if err := sockapi.Close(sock); err != nil {
		return sysError("close socket", "", err)
	}
	return nil
}

func isWildcard(ip string) bool {
	return ip == "" || ip == WildcardIP
}
