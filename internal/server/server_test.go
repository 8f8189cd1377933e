package server

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/devraj-nair/kvcask/internal/client"
	"github.com/devraj-nair/kvcask/internal/engine"
	"github.com/devraj-nair/kvcask/internal/kverrors"
	"github.com/devraj-nair/kvcask/internal/pool"
)

func startTestServer(t *testing.T) (addr string, shutdown func()) {
	t.Helper()

	eng, err := engine.Open(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("engine.Open() error = %v", err)
	}

	p, err := pool.NewSharedQueuePool(4)
	if err != nil {
		t.Fatalf("NewSharedQueuePool() error = %v", err)
	}

	srv := New(eng, p)
	if err := srv.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	go srv.Serve()

	return srv.Addr().String(), func() {
		srv.Close()
		p.Close()
		eng.Close()
	}
}

func TestServerGetSetRemoveRoundTrip(t *testing.T) {
	addr, shutdown := startTestServer(t)
	defer shutdown()

	if err := client.Set("a", "1", addr); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, ok, err := client.Get("a", addr)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok || value != "1" {
		t.Fatalf("Get() = (%q, %v), want (\"1\", true)", value, ok)
	}

	if _, ok, _ := client.Get("missing", addr); ok {
		t.Fatal("Get() of missing key should report ok=false")
	}

	if err := client.Remove("a", addr); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok, _ := client.Get("a", addr); ok {
		t.Fatal("Get() after Remove() should report ok=false")
	}

	err = client.Remove("a", addr)
	if !errors.Is(err, kverrors.ErrKeyNotFound) {
		t.Fatalf("Remove() of already-removed key error = %v, want KeyNotFound", err)
	}
}

func TestServerConcurrentClientsDisjointKeys(t *testing.T) {
	addr, shutdown := startTestServer(t)
	defer shutdown()

	const clients = 8
	const opsPerClient = 50

	var wg sync.WaitGroup
	wg.Add(clients)
	for c := 0; c < clients; c++ {
		c := c
		go func() {
			defer wg.Done()
			key := clientKey(c)
			for i := 0; i < opsPerClient; i++ {
				if err := client.Set(key, clientValue(c, i), addr); err != nil {
					t.Errorf("client %d: Set() error = %v", c, err)
					return
				}
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for concurrent clients")
	}

	for c := 0; c < clients; c++ {
		value, ok, err := client.Get(clientKey(c), addr)
		if err != nil || !ok {
			t.Fatalf("client %d: Get() = (%q, %v, %v)", c, value, ok, err)
		}
		want := clientValue(c, opsPerClient-1)
		if value != want {
			t.Fatalf("client %d: Get() = %q, want last write %q", c, value, want)
		}
	}
}

func clientKey(id int) string {
	return "client-" + string(rune('0'+id))
}

func clientValue(id, i int) string {
	return string(rune('0'+id)) + "-value-" + string(rune('0'+i%10)) + "-" + string(rune('a'+i/10))
}
