package notify

import "sync"

// MemoryNotifier records notifications in memory. Used by the engine
// tests and by dashboards that poll instead of push.
type MemoryNotifier struct {
	mu     sync.Mutex
	active map[string]Notification
	all    []Notification
}

// NewMemoryNotifier creates an in-memory notifier.
func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{active: make(map[string]Notification)}
}

func (n *MemoryNotifier) Show(notif Notification) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if notif.ID == "" {
		notif.ID = NewID()
	}
	n.active[notif.ID] = notif
	n.all = append(n.all, notif)
	return notif.ID
}

func (n *MemoryNotifier) Success(title, message string) string {
	return n.Show(Notification{Title: title, Message: message, Type: TypeSuccess})
}

func (n *MemoryNotifier) Error(title, message string, actions ...Action) string {
	return n.Show(Notification{
		Title:      title,
		Message:    message,
		Type:       TypeError,
		Persistent: true,
		Actions:    actions,
	})
}

func (n *MemoryNotifier) Warning(title, message string) string {
	return n.Show(Notification{Title: title, Message: message, Type: TypeWarning})
}

func (n *MemoryNotifier) Info(title, message string) string {
	return n.Show(Notification{Title: title, Message: message, Type: TypeInfo})
}

func (n *MemoryNotifier) Dismiss(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.active, id)
}

// Active returns notifications that have not been dismissed.
func (n *MemoryNotifier) Active() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, 0, len(n.active))
	for _, notif := range n.active {
		out = append(out, notif)
	}
	return out
}

// All returns every notification shown, in order.
func (n *MemoryNotifier) All() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.all))
	copy(out, n.all)
	return out
}
