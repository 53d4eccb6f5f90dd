package navigation

import (
	"log"
	"sync"
)

// Screen names the pipeline can request transitions to. The pipeline does
// not own the navigation topology; it only asks for transitions by name.
const (
	ScreenHome        = "Home"
	ScreenVideoRecord = "VideoRecordPage"
	ScreenThankYou    = "ThankYouPage"
	ScreenNoInternet  = "NoInternet"
)

// Navigator receives transition requests from the pipeline
type Navigator interface {
	NavigateTo(screen string)
}

// LogNavigator records requested transitions and logs them; the CLI reads
// the current screen to decide what to show next.
type LogNavigator struct {
	mu      sync.Mutex
	current string
	history []string
}

func NewLogNavigator() *LogNavigator {
	return &LogNavigator{current: ScreenHome}
}

// NavigateTo records a transition request
func (n *LogNavigator) NavigateTo(screen string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	log.Printf("Navigating to %s", screen)
	n.current = screen
	n.history = append(n.history, screen)
}

// Current returns the most recently requested screen
func (n *LogNavigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// History returns a copy of all requested transitions in order
func (n *LogNavigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	history := make([]string, len(n.history))
	copy(history, n.history)
	return history
}
