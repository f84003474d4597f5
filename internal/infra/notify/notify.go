// Package notify sends desktop notifications through beeep.
package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/taskforge/transmute/internal/domain"
)

// Ensure Notifier implements domain.Notifier interface.
var _ domain.Notifier = (*Notifier)(nil)

// Notifier delivers notifications on macOS, Linux and Windows.
type Notifier struct {
	log    domain.Logger
	notify func(title, message string, icon any) error
}

// New creates a Notifier.
func New(log domain.Logger) *Notifier {
	if log == nil {
		log = domain.NopLogger{}
	}
	return &Notifier{log: log, notify: beeep.Notify}
}

// Notify sends a notification. beeep picks the platform default icon.
func (n *Notifier) Notify(title, message string) error {
	n.log.Debug("", "notify", fmt.Sprintf("sending notification title=%q", title))
	if err := n.notify(title, message, ""); err != nil {
		n.log.Warn("", "notify", fmt.Sprintf("notification failed: %v", err))
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}
