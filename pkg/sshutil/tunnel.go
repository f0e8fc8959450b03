package sshutil

import (
	"context"
	"net"
	"sync"
)

// Dialer opens connections, possibly through an intermediate hop.
// *Tunnel satisfies it, as does *net.Dialer.
type Dialer interface {
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

// Tunnel forwards TCP connections through one shared SSH connection to Host.
// The connection is opened lazily on first use and reopened once if it has
// dropped.
type Tunnel struct {
	Host    string
	Options Options

	mu     sync.Mutex
	client *Client

	// dial is swapped in tests.
	dial func(ctx context.Context, host string, opts Options) (*Client, error)
}

// NewTunnel returns a tunnel through host. Nothing is dialed yet.
func NewTunnel(host string, opts Options) *Tunnel {
	return &Tunnel{Host: host, Options: opts, dial: Dial}
}

// DialContext opens addr from the far side of the SSH connection.
func (t *Tunnel) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	client, err := t.connect(ctx)
	if err != nil {
		return nil, err
	}

	conn, err := client.DialContext(ctx, network, addr)
	if err == nil {
		return conn, nil
	}

	// The SSH connection may have gone away underneath us; retry once fresh.
	t.drop(client)
	client, err2 := t.connect(ctx)
	if err2 != nil {
		return nil, err
	}
	return client.DialContext(ctx, network, addr)
}

// Close shuts down the SSH connection, if any.
func (t *Tunnel) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}

func (t *Tunnel) connect(ctx context.Context) (*Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client != nil {
		return t.client, nil
	}
	dial := t.dial
	if dial == nil {
		dial = Dial
	}
	client, err := dial(ctx, t.Host, t.Options)
	if err != nil {
		return nil, err
	}
	t.client = client
	return client, nil
}

func (t *Tunnel) drop(stale *Client) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == stale {
		_ = t.client.Close()
		t.client = nil
	}
}
