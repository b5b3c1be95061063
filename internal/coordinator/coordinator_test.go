package coordinator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain verifies Serve and MonitorTimeouts, the two goroutines
// cmd/pulsedex's coordinate command spawns, actually exit on Close rather
// than leaking once the process keeps running past any single test.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestParseMessageAlive(t *testing.T) {
	msg := ParseMessage("a worker-7 merge")
	assert.Equal(t, MessageAlive, msg.Kind)
	assert.Equal(t, "worker-7", msg.WorkerID)
	assert.Equal(t, "merge", msg.WorkerType)
}

func TestParseMessageAliveWithoutType(t *testing.T) {
	msg := ParseMessage("a worker-7")
	assert.Equal(t, MessageAlive, msg.Kind)
	assert.Equal(t, "worker-7", msg.WorkerID)
	assert.Empty(t, msg.WorkerType)
}

func TestParseMessageFinished(t *testing.T) {
	msg := ParseMessage("f worker-7")
	assert.Equal(t, MessageFinished, msg.Kind)
	assert.Equal(t, "worker-7", msg.WorkerID)
}

func TestParseMessageNotify(t *testing.T) {
	msg := ParseMessage("Notify")
	assert.Equal(t, MessageNotify, msg.Kind)
}

func TestParseMessageUnknown(t *testing.T) {
	msg := ParseMessage("garbage")
	assert.Equal(t, MessageUnknown, msg.Kind)
}

func TestFormatRoundTrip(t *testing.T) {
	assert.Equal(t, "a w1 merge", FormatAlive("w1", "merge"))
	assert.Equal(t, "a w1", FormatAlive("w1", ""))
	assert.Equal(t, "f w1", FormatFinished("w1"))
	assert.Equal(t, "Notify", FormatNotify())

	msg := ParseMessage(FormatAlive("w1", "merge"))
	assert.Equal(t, "w1", msg.WorkerID)
	assert.Equal(t, "merge", msg.WorkerType)
}

func TestWorkerCommandCommandLineRendersNullForOptionals(t *testing.T) {
	cmd := WorkerCommand{
		StageBinary:  "hitlist_build",
		Shard:        3,
		KeyClientNum: 4,
		MapClientNum: 2,
		RequestType:  "map",
		DataHandler:  "",
		WorkDir:      "/var/pulsedex/work",
		DataDir:      "/var/pulsedex/data",
		DivStart:     0,
		DivEnd:       99,
		MaxKeyBytes:  256,
		MaxMapBytes:  512,
		ListenPort:   9100,
		DataType:     "hitlist",
	}

	line := cmd.CommandLine()
	assert.Equal(t,
		"hitlist_build Index 3 4 2 map NULL /var/pulsedex/work /var/pulsedex/data 0 99 256 512 9100 NULL NULL hitlist",
		line)
}

func TestWorkerCommandCommandLineRendersOptionals(t *testing.T) {
	offset := int64(4096)
	tuple := int64(64)
	cmd := WorkerCommand{
		StageBinary:  "sortedhits_build",
		RequestType:  "reduce",
		DataHandler:  "hit_merge",
		WorkDir:      "w",
		DataDir:      "d",
		FileByteOffset: &offset,
		TupleBytes:     &tuple,
		DataType:       "sortedhits",
	}

	line := cmd.CommandLine()
	assert.Contains(t, line, "hit_merge")
	assert.Contains(t, line, "4096")
	assert.Contains(t, line, "64")
	assert.NotContains(t, line, "NULL NULL")

	binary, args := cmd.Args()
	assert.Equal(t, "sortedhits_build", binary)
	assert.Equal(t, "Index", args[0])
}

func TestCoordinatorRegisterQueuesBeyondMaxProcessNum(t *testing.T) {
	c, err := New(0, time.Minute, 2, nil)
	require.NoError(t, err)
	defer c.Close()

	var admitted []string
	admit := func(id string) func() {
		return func() { admitted = append(admitted, id) }
	}

	c.Register("w1", "map", 0, admit("w1"))
	c.Register("w2", "map", 1, admit("w2"))
	c.Register("w3", "map", 2, admit("w3"))

	require.Equal(t, []string{"w1", "w2"}, admitted)

	c.Finish("w1")
	require.Equal(t, []string{"w1", "w2", "w3"}, admitted)
}

func TestCoordinatorSweepTimeoutsRestartsStaleWorkers(t *testing.T) {
	var restarted []string
	c, err := New(0, 10*time.Millisecond, 4, func(id string) error {
		restarted = append(restarted, id)
		return nil
	})
	require.NoError(t, err)
	defer c.Close()

	c.Register("w1", "reduce", 0, func() {})
	c.workers["w1"].LastBeat = time.Now().Add(-time.Hour)

	require.NoError(t, c.sweepTimeouts(time.Now()))
	assert.Equal(t, []string{"w1"}, restarted)
}

func TestCoordinatorSweepTimeoutsFatalWithoutRestartFunc(t *testing.T) {
	c, err := New(0, 10*time.Millisecond, 4, nil)
	require.NoError(t, err)
	defer c.Close()

	c.Register("w1", "reduce", 0, func() {})
	c.workers["w1"].LastBeat = time.Now().Add(-time.Hour)

	err = c.sweepTimeouts(time.Now())
	require.Error(t, err)
}

func TestCoordinatorSweepTimeoutsSkipsFinishedWorkers(t *testing.T) {
	var restarted []string
	c, err := New(0, 10*time.Millisecond, 4, func(id string) error {
		restarted = append(restarted, id)
		return nil
	})
	require.NoError(t, err)
	defer c.Close()

	c.Register("w1", "reduce", 0, func() {})
	c.workers["w1"].LastBeat = time.Now().Add(-time.Hour)
	c.Finish("w1")

	require.NoError(t, c.sweepTimeouts(time.Now()))
	assert.Empty(t, restarted)
}

// TestCoordinatorServeAndMonitorTimeoutsExitOnClose drives both
// goroutines cmd/pulsedex's coordinate command spawns (Serve and
// MonitorTimeouts) and asserts Close
// unblocks both before the test returns; goleak's TestMain check would
// otherwise catch a leaked ReadFromUDP or ticker loop at binary exit.
func TestCoordinatorServeAndMonitorTimeoutsExitOnClose(t *testing.T) {
	var restarted []string
	c, err := New(0, time.Hour, 4, func(id string) error {
		restarted = append(restarted, id)
		return nil
	})
	require.NoError(t, err)

	serveErr := make(chan error, 1)
	go func() { serveErr <- c.Serve() }()

	monitorErr := make(chan error, 1)
	go func() { monitorErr <- c.MonitorTimeouts(time.Millisecond) }()

	c.Register("w1", "reduce", 0, func() {})
	require.NoError(t, c.Close())

	require.NoError(t, <-serveErr)
	require.NoError(t, <-monitorErr)
	assert.Empty(t, restarted)
}
