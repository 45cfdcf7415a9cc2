package security

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"testing"
)

type fakeResolver struct {
	ips map[string][]net.IPAddr
	err error
}

func (f *fakeResolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ips[host], nil
}

func addrs(ips ...string) []net.IPAddr {
	out := make([]net.IPAddr, 0, len(ips))
	for _, s := range ips {
		out = append(out, net.IPAddr{IP: net.ParseIP(s)})
	}
	return out
}

func TestIsBlockedIP(t *testing.T) {
	initBlockedNets()
	if initErr != nil {
		t.Fatalf("init: %v", initErr)
	}

	tests := []struct {
		ip      string
		blocked bool
	}{
		{"127.0.0.1", true},
		{"10.1.2.3", true},
		{"172.16.0.1", true},
		{"192.168.1.1", true},
		{"169.254.169.254", true}, // AWS metadata
		{"100.64.0.1", true},
		{"::1", true},
		{"fe80::1", true},
		{"93.184.216.34", false},
		{"8.8.8.8", false},
		{"2606:4700::1111", false},
	}
	for _, tt := range tests {
		if got := isBlockedIP(net.ParseIP(tt.ip)); got != tt.blocked {
			t.Errorf("isBlockedIP(%s) = %v, want %v", tt.ip, got, tt.blocked)
		}
	}
}

func TestSafeDialContextBlocksIPLiteral(t *testing.T) {
	st, err := NewSafeTransport(nil)
	if err != nil {
		t.Fatalf("NewSafeTransport: %v", err)
	}

	_, err = st.safeDialContext(context.Background(), "tcp", "169.254.169.254:80")
	if !errors.Is(err, ErrBlockedIP) {
		t.Errorf("err = %v, want ErrBlockedIP", err)
	}
}

func TestSafeDialContextBlocksResolvedPrivateIP(t *testing.T) {
	st, err := NewSafeTransport(nil)
	if err != nil {
		t.Fatalf("NewSafeTransport: %v", err)
	}
	// One public address mixed with a private one must still fail.
	st.Resolver = &fakeResolver{ips: map[string][]net.IPAddr{
		"evil.example.com": addrs("93.184.216.34", "10.0.0.5"),
	}}

	_, err = st.safeDialContext(context.Background(), "tcp", "evil.example.com:443")
	if !errors.Is(err, ErrBlockedIP) {
		t.Errorf("err = %v, want ErrBlockedIP", err)
	}
}

func TestSafeDialContextDNSFailure(t *testing.T) {
	st, err := NewSafeTransport(nil)
	if err != nil {
		t.Fatalf("NewSafeTransport: %v", err)
	}
	st.Resolver = &fakeResolver{err: errors.New("nxdomain")}

	_, err = st.safeDialContext(context.Background(), "tcp", "nosuch.example.com:443")
	if !errors.Is(err, ErrDNSFailed) {
		t.Errorf("err = %v, want ErrDNSFailed", err)
	}
}

func TestSafeDialContextEmptyResolution(t *testing.T) {
	st, err := NewSafeTransport(nil)
	if err != nil {
		t.Fatalf("NewSafeTransport: %v", err)
	}
	st.Resolver = &fakeResolver{ips: map[string][]net.IPAddr{}}

	_, err = st.safeDialContext(context.Background(), "tcp", "empty.example.com:443")
	if !errors.Is(err, ErrDNSFailed) {
		t.Errorf("err = %v, want ErrDNSFailed", err)
	}
}

func TestCheckRedirect(t *testing.T) {
	resolver := &fakeResolver{ips: map[string][]net.IPAddr{
		"safe.example.com":  addrs("93.184.216.34"),
		"inner.example.com": addrs("192.168.0.10"),
	}}
	check := CheckRedirect(3, resolver)

	mkReq := func(raw string) *http.Request {
		u, err := url.Parse(raw)
		if err != nil {
			t.Fatalf("parse %s: %v", raw, err)
		}
		return (&http.Request{URL: u}).WithContext(context.Background())
	}

	t.Run("limit", func(t *testing.T) {
		via := make([]*http.Request, 3)
		err := check(mkReq("https://safe.example.com/x"), via)
		if !errors.Is(err, ErrTooManyRedirects) {
			t.Errorf("err = %v, want ErrTooManyRedirects", err)
		}
	})

	t.Run("blocked ip literal", func(t *testing.T) {
		err := check(mkReq("http://169.254.169.254/latest/meta-data"), nil)
		if !errors.Is(err, ErrBlockedIP) {
			t.Errorf("err = %v, want ErrBlockedIP", err)
		}
	})

	t.Run("blocked resolved host", func(t *testing.T) {
		err := check(mkReq("https://inner.example.com/"), nil)
		if !errors.Is(err, ErrBlockedIP) {
			t.Errorf("err = %v, want ErrBlockedIP", err)
		}
	})

	t.Run("safe host passes", func(t *testing.T) {
		if err := check(mkReq("https://safe.example.com/"), nil); err != nil {
			t.Errorf("err = %v, want nil", err)
		}
	})
}

func TestNewSafeHTTPClient(t *testing.T) {
	client, err := NewSafeHTTPClient(0, 3)
	if err != nil {
		t.Fatalf("NewSafeHTTPClient: %v", err)
	}
	if _, ok := client.Transport.(*SafeTransport); !ok {
		t.Errorf("transport type = %T, want *SafeTransport", client.Transport)
	}
	if client.CheckRedirect == nil {
		t.Error("redirect check not installed")
	}
}
