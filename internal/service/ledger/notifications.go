package ledger

import "github.com/mamadbah2/gelateria/internal/domain/models"

const maxNotifications = 10

// notify prepends a notification, keeping the most recent ten. Must hold l.mu.
func (l *Ledger) notify(severity models.Severity, message string) {
	n := models.Notification{
		ID:        l.newID(),
		Message:   message,
		Severity:  severity,
		CreatedAt: l.now(),
	}
	l.notifications = append([]models.Notification{n}, l.notifications...)
	if len(l.notifications) > maxNotifications {
		l.notifications = l.notifications[:maxNotifications]
	}
}

// Notify records an operator-facing message outside of a ledger operation.
func (l *Ledger) Notify(severity models.Severity, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notify(severity, message)
}

// Notifications returns current notifications, newest first.
func (l *Ledger) Notifications() []models.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Notification{}, l.notifications...)
}

// DismissNotification removes a notification. It reports whether one was removed.
func (l *Ledger) DismissNotification(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, n := range l.notifications {
		if n.ID == id {
			l.notifications = append(l.notifications[:i], l.notifications[i+1:]...)
			return true
		}
	}
	return false
}
