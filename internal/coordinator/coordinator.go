package coordinator

import (
	"fmt"
	"net"
	"sync"
	"time"

	pdxerrors "github.com/standardbeagle/pulsedex/internal/errors"
)

// WorkerState tracks one dispatched worker's liveness.
type WorkerState struct {
	ID       string
	Type     string
	Shard    int
	Stage    string
	LastBeat time.Time
	Done     bool
}

// RestartFunc re-dispatches the worker identified by id after a heartbeat
// timeout (§5). Returning an error aborts the stage.
type RestartFunc func(id string) error

// Coordinator listens for worker heartbeat datagrams (§5/§6), enforces
// max_process_num on concurrent dispatch, and restarts workers that miss
// their heartbeat deadline.
type Coordinator struct {
	conn            *net.UDPConn
	heartbeatTimeout time.Duration
	maxProcessNum   int

	mu      sync.Mutex
	workers map[string]*WorkerState
	inUse   int
	queue   []func()

	restart RestartFunc

	closeOnce sync.Once
	done      chan struct{}
}

// New binds a UDP listener on port (0 picks an ephemeral port — callers
// read back the bound address via Addr()) and returns a Coordinator ready
// to Serve.
func New(port int, heartbeatTimeout time.Duration, maxProcessNum int, restart RestartFunc) (*Coordinator, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port})
	if err != nil {
		return nil, fmt.Errorf("coordinator: listen udp: %w", err)
	}
	return &Coordinator{
		conn:             conn,
		heartbeatTimeout: heartbeatTimeout,
		maxProcessNum:    maxProcessNum,
		workers:          make(map[string]*WorkerState),
		restart:          restart,
		done:             make(chan struct{}),
	}, nil
}

// Addr returns the coordinator's bound UDP address.
func (c *Coordinator) Addr() *net.UDPAddr {
	return c.conn.LocalAddr().(*net.UDPAddr)
}

// Register admits a worker under the max_process_num bound (§5: "enforces
// an upper bound max_process_num on concurrent workers; excess assignments
// queue"). ready is invoked immediately if a slot is free, or once one
// frees up via Finish.
func (c *Coordinator) Register(id, stage string, shard int, ready func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.workers[id] = &WorkerState{ID: id, Stage: stage, Shard: shard, LastBeat: time.Now()}

	if c.inUse < c.maxProcessNum {
		c.inUse++
		ready()
		return
	}
	c.queue = append(c.queue, ready)
}

// Finish marks a worker done and admits the next queued worker, if any.
func (c *Coordinator) Finish(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if w, ok := c.workers[id]; ok {
		w.Done = true
	}
	c.admitNextLocked()
}

func (c *Coordinator) admitNextLocked() {
	if len(c.queue) == 0 {
		c.inUse--
		if c.inUse < 0 {
			c.inUse = 0
		}
		return
	}
	next := c.queue[0]
	c.queue = c.queue[1:]
	next()
}

// Serve reads heartbeat datagrams until Close is called, updating worker
// liveness and invoking Finish for "f <id>" messages. Run this in its own
// goroutine; pair with a ticker loop (see MonitorTimeouts) to catch workers
// that stop sending heartbeats entirely.
func (c *Coordinator) Serve() error {
	buf := make([]byte, 512)
	for {
		n, _, err := c.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-c.done:
				return nil
			default:
				return fmt.Errorf("coordinator: read udp: %w", err)
			}
		}

		msg := ParseMessage(string(buf[:n]))
		switch msg.Kind {
		case MessageAlive:
			c.touch(msg.WorkerID)
		case MessageFinished:
			c.Finish(msg.WorkerID)
		}
	}
}

func (c *Coordinator) touch(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w, ok := c.workers[id]; ok {
		w.LastBeat = time.Now()
	}
}

// MonitorTimeouts polls every checkInterval and restarts (via RestartFunc)
// any registered, not-yet-done worker whose last heartbeat is older than
// heartbeatTimeout (§5 "timeout triggers restart"). It returns when Close is
// called.
func (c *Coordinator) MonitorTimeouts(checkInterval time.Duration) error {
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return nil
		case now := <-ticker.C:
			if err := c.sweepTimeouts(now); err != nil {
				return err
			}
		}
	}
}

func (c *Coordinator) sweepTimeouts(now time.Time) error {
	c.mu.Lock()
	var timedOut []*WorkerState
	for _, w := range c.workers {
		if w.Done {
			continue
		}
		if now.Sub(w.LastBeat) > c.heartbeatTimeout {
			timedOut = append(timedOut, w)
		}
	}
	c.mu.Unlock()

	for _, w := range timedOut {
		willRestart := c.restart != nil
		timeoutErr := pdxerrors.NewWorkerTimeout(w.Stage, w.Shard, w.LastBeat, c.heartbeatTimeout, willRestart)
		if !willRestart {
			return timeoutErr
		}
		w.LastBeat = now
		if err := c.restart(w.ID); err != nil {
			return fmt.Errorf("coordinator: restart worker %s: %w", w.ID, err)
		}
	}
	return nil
}

// Close stops Serve and MonitorTimeouts and releases the UDP socket.
func (c *Coordinator) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}
