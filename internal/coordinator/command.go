package coordinator

import (
	"fmt"
	"strconv"
	"strings"
)

// WorkerCommand is the set of arguments the coordinator hands a stage
// binary (§6 "Worker command line"). Optional int64 fields use a pointer so
// a nil value renders as the literal "NULL" token the original protocol
// expects for a missing optional.
type WorkerCommand struct {
	StageBinary    string
	Shard          int
	KeyClientNum   int
	MapClientNum   int
	RequestType    string
	DataHandler    string // empty renders as "NULL"
	WorkDir        string
	DataDir        string
	DivStart       int
	DivEnd         int
	MaxKeyBytes    int
	MaxMapBytes    int
	ListenPort     int
	FileByteOffset *int64
	TupleBytes     *int64
	DataType       string
}

// CommandLine renders the worker invocation exactly as §6 specifies:
//
//	<stage_binary> Index <shard_id> <key_client_num> <map_client_num>
//	<request_type> <data_handler_name> <work_dir> <data_dir> <div_start>
//	<div_end> <max_key_bytes> <max_map_bytes> <listen_port>
//	<file_byte_offset> <tuple_bytes> <data_type>
func (c WorkerCommand) CommandLine() string {
	handler := c.DataHandler
	if handler == "" {
		handler = "NULL"
	}

	fields := []string{
		c.StageBinary,
		"Index",
		strconv.Itoa(c.Shard),
		strconv.Itoa(c.KeyClientNum),
		strconv.Itoa(c.MapClientNum),
		c.RequestType,
		handler,
		c.WorkDir,
		c.DataDir,
		strconv.Itoa(c.DivStart),
		strconv.Itoa(c.DivEnd),
		strconv.Itoa(c.MaxKeyBytes),
		strconv.Itoa(c.MaxMapBytes),
		strconv.Itoa(c.ListenPort),
		optionalInt64(c.FileByteOffset),
		optionalInt64(c.TupleBytes),
		c.DataType,
	}
	return strings.Join(fields, " ")
}

// Args is CommandLine split the way os/exec.Command wants them: the binary
// as argv[0], everything else as the argument list.
func (c WorkerCommand) Args() (string, []string) {
	fields := strings.Fields(c.CommandLine())
	return fields[0], fields[1:]
}

func optionalInt64(v *int64) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%d", *v)
}
