package push

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeConn struct {
	mu     sync.Mutex
	msgs   [][]byte
	closed bool
	err    error
	block  chan struct{}
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, data)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) messages() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.msgs...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPushReachesOnlyAddressedUser(t *testing.T) {
	r := NewRegistry(4, nil)
	alice1, alice2, bob := &fakeConn{}, &fakeConn{}, &fakeConn{}
	r.Connect("alice", alice1)
	r.Connect("alice", alice2)
	r.Connect("bob", bob)

	if n := r.Push("alice", map[string]int{"unread_count": 3}); n != 2 {
		t.Fatalf("delivered to %d connections, want 2", n)
	}
	waitFor(t, func() bool { return len(alice1.messages()) == 1 && len(alice2.messages()) == 1 })

	var got map[string]int
	if err := json.Unmarshal(alice1.messages()[0], &got); err != nil || got["unread_count"] != 3 {
		t.Errorf("payload = %s, %v", alice1.messages()[0], err)
	}
	time.Sleep(20 * time.Millisecond)
	if len(bob.messages()) != 0 {
		t.Error("bob received alice's push")
	}
	if n := r.Push("nobody", "x"); n != 0 {
		t.Errorf("push to offline user delivered %d", n)
	}
}

func TestDisconnect(t *testing.T) {
	r := NewRegistry(4, nil)
	conn := &fakeConn{}
	c := r.Connect("alice", conn)

	r.Disconnect(c)
	r.Disconnect(c)
	<-c.Done()

	if r.Count("alice") != 0 {
		t.Errorf("count = %d after disconnect", r.Count("alice"))
	}
	conn.mu.Lock()
	closed := conn.closed
	conn.mu.Unlock()
	if !closed {
		t.Error("connection was not closed")
	}
	if n := r.Push("alice", "late"); n != 0 {
		t.Errorf("push after disconnect delivered %d", n)
	}
}

func TestSlowClientDropsInsteadOfBlocking(t *testing.T) {
	r := NewRegistry(2, nil)
	block := make(chan struct{})
	r.Connect("alice", &fakeConn{block: block})

	done := make(chan int)
	go func() {
		total := 0
		for i := 0; i < 10; i++ {
			total += r.Push("alice", i)
		}
		done <- total
	}()

	select {
	case total := <-done:
		// the writer may hold one message while the buffer holds two more
		if total > 3 {
			t.Errorf("accepted %d messages with a buffer of 2", total)
		}
	case <-time.After(time.Second):
		t.Fatal("Push blocked on a slow client")
	}
	close(block)
	r.Close()
}

func TestWriteErrorDisconnects(t *testing.T) {
	r := NewRegistry(4, nil)
	c := r.Connect("alice", &fakeConn{err: errors.New("broken pipe")})

	r.Push("alice", "hello")
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("client not torn down after write error")
	}
	waitFor(t, func() bool { return r.Count("alice") == 0 })
}
