package probe

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"os"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

const echoData = "pingtap"

// ICMPPinger sends ICMP echo requests using raw sockets.
type ICMPPinger struct {
	id      int
	timeout time.Duration
}

// NewICMPPinger initializes a pinger with a process-scoped identifier.
func NewICMPPinger() *ICMPPinger {
	return &ICMPPinger{id: os.Getpid() & 0xffff, timeout: DefaultTimeout}
}

// Measure sends one ICMP echo request and waits for the matching reply.
func (p *ICMPPinger) Measure(ctx context.Context, target string) Result {
	if err := ctx.Err(); err != nil {
		return failed(KindTimeout, "ping canceled: %v", err)
	}

	ip, ipNet, err := resolveIP(target)
	if err != nil {
		return failed(KindNetworkError, "%v", err)
	}

	network, protocol, requestType, replyType := icmpSettings(ipNet)
	conn, err := icmp.ListenPacket(network, "")
	if err != nil {
		return listenFailed(err)
	}
	defer conn.Close()

	seq := rand.Intn(1 << 16)
	msg := icmp.Message{
		Type: requestType,
		Code: 0,
		Body: &icmp.Echo{
			ID:   p.id,
			Seq:  seq,
			Data: []byte(echoData),
		},
	}

	payload, err := msg.Marshal(nil)
	if err != nil {
		return failed(KindExternalToolError, "icmp marshal: %v", err)
	}

	if err := conn.SetDeadline(effectiveDeadline(ctx, p.timeout)); err != nil {
		return failed(KindNetworkError, "%v", err)
	}

	start := time.Now()
	if _, err := conn.WriteTo(payload, ip); err != nil {
		return failed(KindNetworkError, "%v", err)
	}

	buf := make([]byte, 1500)
	for {
		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return failed(KindTimeout, "no echo reply within %s", p.timeout)
			}
			return failed(KindNetworkError, "%v", err)
		}
		if peer == nil {
			continue
		}

		reply, err := icmp.ParseMessage(protocol, buf[:n])
		if err != nil || reply.Type != replyType {
			continue
		}
		body, ok := reply.Body.(*icmp.Echo)
		if !ok || body.ID != p.id || body.Seq != seq {
			continue
		}

		elapsed := time.Since(start)
		return succeeded(float64(elapsed.Microseconds()) / 1000)
	}
}

// listenFailed keeps err as the cause so FallbackPinger can spot permission problems.
func listenFailed(err error) Result {
	return Result{Err: &Error{Kind: KindNetworkError, Message: fmt.Sprintf("icmp listen: %v", err), cause: err}}
}

func resolveIP(addr string) (*net.IPAddr, net.IP, error) {
	ipAddr, err := net.ResolveIPAddr("ip", addr)
	if err != nil {
		return nil, nil, err
	}
	if ipAddr.IP == nil {
		return nil, nil, fmt.Errorf("invalid IP address: %s", addr)
	}
	return ipAddr, ipAddr.IP, nil
}

func icmpSettings(ip net.IP) (network string, protocol int, requestType icmp.Type, replyType icmp.Type) {
	if ip.To4() != nil {
		return "ip4:icmp", ipv4.ICMPTypeEcho.Protocol(), ipv4.ICMPTypeEcho, ipv4.ICMPTypeEchoReply
	}
	return "ip6:ipv6-icmp", ipv6.ICMPTypeEchoRequest.Protocol(), ipv6.ICMPTypeEchoRequest, ipv6.ICMPTypeEchoReply
}

func effectiveDeadline(ctx context.Context, timeout time.Duration) time.Time {
	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		return ctxDeadline
	}
	return deadline
}
