// Package sockutil is a cross-platform socket-operations utility layer: a
// flat set of stateless calls that create, configure, and introspect IPv4
// sockets and local network interfaces on top of the operating system's
// native socket API. POSIX and Winsock differences live behind one internal
// capability layer selected at build time; callers see a single surface on
// both.
//
// # What this package is
//
// Every operation here is a single idempotent call against a caller-owned
// descriptor (a plain int). The package holds no socket state, runs no
// goroutines, and owns no lifecycle: the factory calls Connect, Listen, and
// BindUDPSock hand a freshly created descriptor to the caller, and from then
// on the caller closes it (Close is provided for portability). Higher-level
// concerns (pollers, buffered connections, framing, retry policy) belong to
// the layers that consume these primitives, not here.
//
// The operations fall into four groups:
//
//   - Connection establishment: Connect, Listen, BindUDPSock, BindSock.
//   - Option configuration: SetNoDelay, SetKeepAlive, SetRecvBuf,
//     SetReuseable, SetCloseWait, SetNoBlocked, and the rest of the
//     Set* family, plus GetSockError.
//   - Multicast management: SetMultiTTL, SetMultiIF, SetMultiLOOP,
//     JoinMultiAddr, LeaveMultiAddr, and the source-filtered variants.
//   - Introspection: GetDomainIP, GetInterfaceList, GetDefaultLocalIP,
//     GetLocalIP/Port, GetPeerIP/Port, InetNtoa, the GetIfr* interface
//     attribute queries, and InSameLAN.
//
// # Conventions
//
// Factories return a non-negative descriptor or InvalidSock (-1) together
// with an error; a factory that fails after creating a descriptor closes it
// before returning, so a failed call never leaks. String lookups return the
// empty string when nothing was found. IPv4 addresses are dotted-decimal
// literals everywhere, with "0.0.0.0" (WildcardIP) meaning any local
// interface and port 0 requesting an OS-assigned ephemeral port. Hostname
// parameters resolve through the system resolver with a small TTL cache in
// front (SetDNSCacheTTL).
//
// Failures are *Error values carrying the operation, a Kind (resolve,
// system, not_found, unsupported), and the platform error code as a
// syscall.Errno, so no side-channel errno inspection is needed:
//
//	sock, err := sockutil.Connect("example.com", 80, true, "", 0)
//	if err != nil {
//		var serr *sockutil.Error
//		if errors.As(err, &serr) && serr.Kind == sockutil.KindResolve {
//			// name lookup failed, nothing was created
//		}
//		return err
//	}
//	defer sockutil.Close(sock)
//
// # Concurrency
//
// All calls are synchronous and return quickly; only hostname resolution can
// block, and the Context variants bound it. Distinct descriptors may be used
// from different goroutines freely. The package never guards an individual
// descriptor: two goroutines configuring the same socket race exactly as the
// underlying OS calls would.
package sockutil
