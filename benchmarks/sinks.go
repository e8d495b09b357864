package benchmarks

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/zeu5/tabular-rl/sinks"
	"github.com/zeu5/tabular-rl/types"
)

// recorder holds the sinks of a command
type recorder struct {
	Sink   types.MetricsSink
	Memory *types.MemorySink
	close  []func() error
}

// newRecorder always keeps the scalars in memory, and also writes them to
// the save folder, redis and the HTTP server when configured
func newRecorder(ctx context.Context, config *FileConfig, out io.Writer) (*recorder, error) {
	memory := types.NewMemorySink()
	r := &recorder{
		Memory: memory,
		close:  make([]func() error, 0),
	}
	all := types.MultiSink{memory}

	if config.Save != "" {
		jsonl, err := sinks.NewJSONLSink(path.Join(config.Save, "scalars.jsonl"))
		if err != nil {
			return nil, err
		}
		all = append(all, jsonl)
	}
	if config.Redis.Addr != "" {
		redisSink := sinks.NewRedisSink(ctx, &config.Redis)
		if err := redisSink.Ping(); err != nil {
			fmt.Fprintf(out, "warning: redis at %s unreachable: %s\n", config.Redis.Addr, err)
		}
		all = append(all, redisSink)
		r.close = append(r.close, redisSink.Close)
	}
	if config.Serve != "" {
		server := sinks.NewServer(ctx, config.Serve, memory)
		if err := server.Start(); err != nil {
			r.Close()
			return nil, err
		}
		fmt.Fprintf(out, "Serving scalars at http://%s/scalars\n", server.Addr)
	}
	r.Sink = all
	return r, nil
}

func (r *recorder) Close() {
	for _, c := range r.close {
		c()
	}
}
