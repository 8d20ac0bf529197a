package admin

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/arl/statsviz"
	"github.com/shirou/gopsutil/v3/process"

	"riichi-server/internal/logx"
)

const sampleInterval = 5 * time.Second

// Sampler periodically logs process CPU/RSS and goroutine counts, per
// §4.11 — strictly observability, grounded on the game/gate/connector
// services' shared gopsutil sampling loop.
type Sampler struct {
	proc *process.Process
}

func NewSampler() (*Sampler, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &Sampler{proc: p}, nil
}

// Run samples until ctx is cancelled.
func (s *Sampler) Run(ctx context.Context) {
	ticker := time.NewTicker(sampleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sample()
		}
	}
}

func (s *Sampler) sample() {
	cpu, err := s.proc.CPUPercent()
	if err != nil {
		logx.Debug("admin: cpu sample failed: %v", err)
		return
	}
	mem, err := s.proc.MemoryInfo()
	if err != nil {
		logx.Debug("admin: mem sample failed: %v", err)
		return
	}
	logx.Debug("admin: cpu=%.1f%% rss=%dKB goroutines=%d", cpu, mem.RSS/1024, runtime.NumGoroutine())
}

// ServeStatsviz mounts the live runtime dashboard at /debug/statsviz on
// addr, blocking until the listener errors. Call in its own goroutine.
func ServeStatsviz(addr string) error {
	mux := http.NewServeMux()
	srv, err := statsviz.NewServer()
	if err != nil {
		return err
	}
	mux.Handle("/debug/statsviz/", srv.Index())
	mux.HandleFunc("/debug/statsviz/ws", srv.Ws())
	return http.ListenAndServe(addr, mux)
}
