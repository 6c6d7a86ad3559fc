package process

import (
	"fmt"
	"os/exec"
	"sync"
	"time"
)

// ExecBroker runs processes through a launcher prefix such as "sudo -n" or
// "runas /user:Administrator". Processes are tracked by a broker-local id.
type ExecBroker struct {
	Prefix []string
	Sink   LineSink

	mu     sync.Mutex
	nextID ProcessID
	procs  map[ProcessID]*DirectAdapter
}

// NewExecBroker creates a broker that prepends prefix to every command.
func NewExecBroker(prefix []string, sink LineSink) *ExecBroker {
	return &ExecBroker{
		Prefix: prefix,
		Sink:   sink,
		procs:  make(map[ProcessID]*DirectAdapter),
	}
}

func (b *ExecBroker) Start(spec Spec) (ProcessID, error) {
	argv := append(append([]string{}, b.Prefix...), spec.Path)
	argv = append(argv, spec.Args...)

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		cmd.Env = spec.Env
	}

	sink := b.Sink
	if spec.Sink != nil {
		sink = spec.Sink
	}
	adapter := NewDirectAdapter(cmd, sink)
	if err := adapter.Start(); err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.procs[b.nextID] = adapter
	return b.nextID, nil
}

func (b *ExecBroker) Wait(id ProcessID, timeout time.Duration) (bool, int, error) {
	p, err := b.lookup(id)
	if err != nil {
		return false, -1, err
	}
	if !p.WaitForExit(timeout) {
		return false, -1, nil
	}
	return true, p.ExitCode(), nil
}

func (b *ExecBroker) Terminate(id ProcessID) error {
	p, err := b.lookup(id)
	if err != nil {
		return err
	}
	return p.Kill()
}

func (b *ExecBroker) Release(id ProcessID) error {
	b.mu.Lock()
	p, ok := b.procs[id]
	delete(b.procs, id)
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown process id %d", id)
	}
	return p.Close()
}

func (b *ExecBroker) lookup(id ProcessID) (*DirectAdapter, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.procs[id]
	if !ok {
		return nil, fmt.Errorf("unknown process id %d", id)
	}
	return p, nil
}
