package sim

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/foundry-sim/foundry-sim/sim/flow"
)

// MachineState is the simplified ISA-88 aligned machine state.
type MachineState string

const (
	StateIdle    MachineState = "Idle"
	StateRunning MachineState = "Running"
	StateStopped MachineState = "Stopped"
	StateFaulted MachineState = "Faulted"
)

// Fault codes shared across machine types. Machine-specific codes start
// at 200 (e.g. 201 over-temperature on thermal machines).
const (
	FaultNone            = 0
	FaultNotEnabled      = 101
	FaultPreStartFailed  = 102
	FaultOverTemperature = 201
)

// Machine is the contract every plant machine implements. A machine is
// owned by the engine's machine collection and is mutated only by its
// own Tick and by the orchestrator through queue push/pop and command
// calls.
type Machine interface {
	ID() string
	Name() string
	State() MachineState
	Enabled() bool
	SetEnabled(enabled bool)
	FaultCode() int
	ProcessedCount() int

	CurrentItem() string
	QueueIn() *MaterialQueue
	QueueOut() *MaterialQueue

	// Idle reports whether the machine can accept new work: nothing in
	// flight and an empty input queue. This is the only FSM-adjacent
	// predicate the orchestrator may consult.
	Idle() bool

	HandleStartCommand() bool
	HandleStopCommand() bool
	HandleResetCommand() bool
	ForceSafeState()
	SetCommand(name string, value bool)
	SetTag(name string, value TagValue)

	Tick(dt float64) error
	Tags() TagMap

	SetDispatcher(d *flow.Dispatcher)
}

// device is the machine-specific half of the framework. Base drives the
// FSM and calls into the device for pre-start checks, fault detection,
// running logic, tags, and the lifecycle hooks.
type device interface {
	preStartChecks() bool
	detectFault() bool
	deviceFaultCode() int
	runningLogic(dt float64) error
	deviceTags(tags TagMap)

	// deviceCommand handles edge-triggered commands beyond
	// start/stop/reset (trigger, pour_request, ...).
	deviceCommand(name string)

	// deviceSetTag handles non-boolean external tag writes (setpoints).
	// Unknown or read-only tags are ignored.
	deviceSetTag(name string, v TagValue)

	onStart()
	onStop()
	onReset()
	onSafeStop()
}

// baseDevice provides no-op defaults for the optional device hooks.
type baseDevice struct{}

func (baseDevice) preStartChecks() bool          { return true }
func (baseDevice) detectFault() bool             { return false }
func (baseDevice) deviceFaultCode() int          { return FaultNone }
func (baseDevice) deviceTags(TagMap)             {}
func (baseDevice) deviceCommand(string)          {}
func (baseDevice) deviceSetTag(string, TagValue) {}
func (baseDevice) onStart()                      {}
func (baseDevice) onStop()                       {}
func (baseDevice) onReset()                      {}
func (baseDevice) onSafeStop()                   {}

// Base implements the machine state machine shared by every machine:
// enable-gated start, command-driven transitions, fault latching, and
// cyclic tag publishing. Concrete machines embed *Base and register
// themselves as the device.
//
// State machine:
//
//	IDLE --start, enabled && pre-start ok--> RUNNING
//	IDLE --start, disabled or pre-start fail--> FAULTED (101 / 102)
//	RUNNING --stop--> STOPPED
//	RUNNING --fault detected--> FAULTED
//	STOPPED/FAULTED --reset--> IDLE
//
// Nothing but reset exits FAULTED.
type Base struct {
	id        string
	name      string
	cycleTime float64

	state          MachineState
	enabled        bool
	faultCode      int
	processedCount int

	queueIn     MaterialQueue
	queueOut    MaterialQueue
	currentItem string
	progress    float64 // 0-100 % of the current cycle

	// Edge-triggered commands latch here and are consumed exactly once,
	// at the top of the next Tick. External writers therefore never
	// race a tick in progress.
	pendingOrder []string
	pending      map[string]bool

	dispatcher *flow.Dispatcher
	dev        device
}

// newBase validates configuration and wires the device half.
func newBase(id, name string, cycleTime float64, dev device) (*Base, error) {
	if id == "" {
		return nil, fmt.Errorf("machine id must not be empty")
	}
	if cycleTime <= 0 {
		return nil, fmt.Errorf("machine %s: cycle time must be positive, got %g", id, cycleTime)
	}
	return &Base{
		id:        id,
		name:      name,
		cycleTime: cycleTime,
		state:     StateIdle,
		pending:   make(map[string]bool),
		dev:       dev,
	}, nil
}

func (b *Base) ID() string               { return b.id }
func (b *Base) Name() string             { return b.name }
func (b *Base) State() MachineState      { return b.state }
func (b *Base) Enabled() bool            { return b.enabled }
func (b *Base) SetEnabled(e bool)        { b.enabled = e }
func (b *Base) FaultCode() int           { return b.faultCode }
func (b *Base) ProcessedCount() int      { return b.processedCount }
func (b *Base) CurrentItem() string      { return b.currentItem }
func (b *Base) QueueIn() *MaterialQueue  { return &b.queueIn }
func (b *Base) QueueOut() *MaterialQueue { return &b.queueOut }

// Idle reports whether the machine can accept new work.
func (b *Base) Idle() bool {
	return b.currentItem == "" && b.queueIn.Len() == 0
}

// SetDispatcher wires the event dispatcher. Called by the engine during
// machine registration; machines without a dispatcher simply emit
// nothing (unit-test setups).
func (b *Base) SetDispatcher(d *flow.Dispatcher) {
	b.dispatcher = d
}

// emit publishes a production event for this machine.
func (b *Base) emit(t flow.EventType, data map[string]string) {
	if b.dispatcher == nil {
		return
	}
	b.dispatcher.Emit(flow.Event{Type: t, DeviceID: b.id, Data: data})
}

// HandleStartCommand drives IDLE -> RUNNING. Start while disabled
// faults with code 101, a failed pre-start check with code 102.
func (b *Base) HandleStartCommand() bool {
	if b.state != StateIdle {
		return false
	}
	if !b.enabled {
		b.faultCode = FaultNotEnabled
		b.state = StateFaulted
		logrus.Warnf("%s: start rejected, machine not enabled", b.id)
		return false
	}
	if !b.dev.preStartChecks() {
		b.faultCode = FaultPreStartFailed
		b.state = StateFaulted
		logrus.Warnf("%s: start rejected, pre-start checks failed", b.id)
		return false
	}
	b.state = StateRunning
	b.dev.onStart()
	return true
}

// HandleStopCommand drives RUNNING -> STOPPED.
func (b *Base) HandleStopCommand() bool {
	if b.state != StateRunning {
		return false
	}
	b.state = StateStopped
	b.dev.onStop()
	return true
}

// HandleResetCommand drives STOPPED/FAULTED -> IDLE, clearing the fault
// code. Reset is the only way out of FAULTED.
func (b *Base) HandleResetCommand() bool {
	if b.state != StateStopped && b.state != StateFaulted {
		return false
	}
	b.faultCode = FaultNone
	b.state = StateIdle
	b.dev.onReset()
	return true
}

// ForceSafeState is invoked by supervisory shutdown: RUNNING machines
// drop to STOPPED unconditionally and the safe-stop hook runs.
func (b *Base) ForceSafeState() {
	if b.state == StateRunning {
		b.state = StateStopped
	}
	b.dev.onSafeStop()
}

// SetCommand latches an edge-triggered command. A false value is
// ignored; a true value is buffered in a single slot per command name
// and consumed exactly once at the top of the next Tick.
func (b *Base) SetCommand(name string, value bool) {
	if !value {
		return
	}
	if !b.pending[name] {
		b.pending[name] = true
		b.pendingOrder = append(b.pendingOrder, name)
	}
}

// SetTag applies an external tag write. Boolean writes are treated as
// edge-triggered commands and go through the latch; other kinds are
// offered to the device as setpoint writes. The machine-ID prefix on
// fully qualified names is stripped first.
func (b *Base) SetTag(name string, value TagValue) {
	name = strings.TrimPrefix(name, b.id+".")
	if value.Kind == TagBool {
		b.SetCommand(name, value.Bool)
		return
	}
	b.dev.deviceSetTag(name, value)
}

// consumeCommands dispatches and clears the latched commands in the
// order they arrived.
func (b *Base) consumeCommands() {
	if len(b.pendingOrder) == 0 {
		return
	}
	order := b.pendingOrder
	b.pendingOrder = nil
	for _, name := range order {
		delete(b.pending, name)
		switch name {
		case "start":
			b.HandleStartCommand()
		case "stop":
			b.HandleStopCommand()
		case "reset":
			b.HandleResetCommand()
		default:
			b.dev.deviceCommand(name)
		}
	}
}

// Tick advances the machine by one scan. Latched commands are consumed
// first; while RUNNING, fault detection runs before the device logic
// and a detected fault ends the tick immediately.
func (b *Base) Tick(dt float64) error {
	b.consumeCommands()

	if b.state == StateRunning && b.dev.detectFault() {
		b.faultCode = b.dev.deviceFaultCode()
		b.state = StateFaulted
		logrus.Warnf("%s: fault %d detected", b.id, b.faultCode)
		return nil
	}

	if b.state == StateRunning {
		return b.dev.runningLogic(dt)
	}
	return nil
}

// Tags exposes the machine state for the SCADA boundary. Called every
// scan regardless of state; has no side effects.
func (b *Base) Tags() TagMap {
	tags := TagMap{
		b.id + ".state":           StringTag(string(b.state)),
		b.id + ".enabled":         BoolTag(b.enabled),
		b.id + ".fault_code":      IntTag(int64(b.faultCode)),
		b.id + ".processed_count": IntTag(int64(b.processedCount)),
	}
	b.dev.deviceTags(tags)
	return tags
}

// loadNextItem moves the oldest queued part into the work position.
// Returns false when the input queue is starved.
func (b *Base) loadNextItem() bool {
	if b.queueIn.Len() == 0 {
		return false
	}
	b.currentItem = b.queueIn.Pop()
	b.progress = 0
	return true
}

// finishItem completes the in-flight part: it moves to the output
// queue, the processed counter increments, and progress rewinds.
func (b *Base) finishItem() string {
	item := b.currentItem
	b.queueOut.Push(item)
	b.currentItem = ""
	b.processedCount++
	b.progress = 0
	return item
}
