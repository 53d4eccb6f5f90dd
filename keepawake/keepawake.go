package keepawake

import (
	"log"
	"os/exec"
	"sync"
)

// Lock keeps the machine from idling or sleeping while a recording session
// is in progress. Acquire and Release are safe to call in any order and any
// number of times; the underlying inhibitor is released exactly once.
type Lock interface {
	Acquire()
	Release()
}

// InhibitLock implements Lock with a systemd-inhibit child process. When
// systemd-inhibit is unavailable the lock degrades to a no-op.
type InhibitLock struct {
	mu          sync.Mutex
	cmd         *exec.Cmd
	releaseOnce *sync.Once
}

func NewInhibitLock() *InhibitLock {
	return &InhibitLock{}
}

// Acquire starts the inhibitor. Acquiring an already-held lock is a no-op.
func (l *InhibitLock) Acquire() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cmd != nil {
		return
	}

	if _, err := exec.LookPath("systemd-inhibit"); err != nil {
		log.Println("systemd-inhibit not available, recording without keep-awake")
		return
	}

	cmd := exec.Command("systemd-inhibit",
		"--what=idle:sleep",
		"--who=feedback-capture",
		"--why=Recording testimonial video",
		"sleep", "infinity")
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to acquire keep-awake lock: %v", err)
		return
	}

	l.cmd = cmd
	l.releaseOnce = &sync.Once{}
	log.Println("Keep-awake lock acquired")
}

// Release stops the inhibitor. Releasing an unheld or already-released lock
// is a no-op.
func (l *InhibitLock) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cmd == nil {
		return
	}

	cmd := l.cmd
	l.releaseOnce.Do(func() {
		if err := cmd.Process.Kill(); err != nil {
			log.Printf("Failed to release keep-awake lock: %v", err)
		}
		go cmd.Wait() // Reap the child
		log.Println("Keep-awake lock released")
	})
	l.cmd = nil
}

// NopLock is a Lock that does nothing; used in tests
type NopLock struct{}

func (NopLock) Acquire() {}
func (NopLock) Release() {}
