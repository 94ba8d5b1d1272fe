package manager

// Event represents a manager lifecycle event.
// Minimal and stable: name + model name and optional fields via key/values.
type Event struct {
	Name   string
	Model  string
	Fields map[string]any
}

// Event names.
const (
	EventProvisionStart = "provision_start"
	EventProvisionDone  = "provision_done"
	EventLoadStart      = "load_start"
	EventLoadReady      = "load_ready"
	EventLoadError      = "load_error"
	EventClassifyError  = "classify_error"
	EventCloseStart     = "close_start"
	EventCloseTimeout   = "close_timeout"
	EventCloseDone      = "close_done"
)

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

func (m *Manager) publish(name string, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	m.publisher.Publish(Event{Name: name, Model: m.ModelName(), Fields: fields})
}
