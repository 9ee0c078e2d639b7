package notify

import "log/slog"

// LogNotifier writes notifications to the structured log. It is the
// production default when no UI layer is attached to the engine.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier creates a slog-backed notifier.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Show(notif Notification) string {
	if notif.ID == "" {
		notif.ID = NewID()
	}

	attrs := []any{"title", notif.Title, "id", notif.ID}
	if notif.Persistent {
		attrs = append(attrs, "persistent", true)
	}
	for _, a := range notif.Actions {
		attrs = append(attrs, "action", a.ID)
	}

	switch notif.Type {
	case TypeError:
		n.log.Error(notif.Message, attrs...)
	case TypeWarning:
		n.log.Warn(notif.Message, attrs...)
	default:
		n.log.Info(notif.Message, attrs...)
	}
	return notif.ID
}

func (n *LogNotifier) Success(title, message string) string {
	return n.Show(Notification{Title: title, Message: message, Type: TypeSuccess})
}

func (n *LogNotifier) Error(title, message string, actions ...Action) string {
	return n.Show(Notification{
		Title:      title,
		Message:    message,
		Type:       TypeError,
		Persistent: true,
		Actions:    actions,
	})
}

func (n *LogNotifier) Warning(title, message string) string {
	return n.Show(Notification{Title: title, Message: message, Type: TypeWarning})
}

func (n *LogNotifier) Info(title, message string) string {
	return n.Show(Notification{Title: title, Message: message, Type: TypeInfo})
}

func (n *LogNotifier) Dismiss(id string) {}
