package probe

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/miekg/dns"
)

const fallbackResolver = "8.8.8.8:53"

// DNSProber times one A query for the target against a resolver.
type DNSProber struct {
	resolver string
	timeout  time.Duration
}

// NewDNSProber queries resolver, or the system resolver when it is empty.
func NewDNSProber(resolver string) *DNSProber {
	if resolver == "" {
		resolver = SystemResolver()
	}
	return &DNSProber{resolver: resolver, timeout: DefaultTimeout}
}

// SystemResolver returns the first nameserver from /etc/resolv.conf.
func SystemResolver() string {
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(conf.Servers) == 0 {
		return fallbackResolver
	}
	return net.JoinHostPort(conf.Servers[0], conf.Port)
}

func (d *DNSProber) Measure(ctx context.Context, target string) Result {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	client := &dns.Client{Timeout: d.timeout}
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(target), dns.TypeA)

	resp, rtt, err := client.ExchangeContext(ctx, msg, d.resolver)
	if err != nil {
		var netErr net.Error
		if deadlineExceeded(ctx, err) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return failed(KindTimeout, "no answer from %s within %s", d.resolver, d.timeout)
		}
		return failed(KindNetworkError, "%v", err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return failed(KindResolveError, "%s answered %s for %s", d.resolver, dns.RcodeToString[resp.Rcode], target)
	}
	return succeeded(float64(rtt.Microseconds()) / 1000)
}
