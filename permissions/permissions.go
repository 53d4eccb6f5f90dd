package permissions

import (
	"context"
	"log"
	"os"
)

// Checker reports whether capture may start. Both camera and microphone
// access are required; recording never starts without the grant.
type Checker interface {
	RequestCameraAndMicrophone(ctx context.Context) (bool, error)
}

// DeviceNodeChecker implements Checker by verifying the device nodes exist
// and are accessible
type DeviceNodeChecker struct {
	CameraDevice string // e.g., "/dev/video0"
	AudioDevice  string // e.g., "/dev/snd"; empty skips the microphone check
}

func NewDeviceNodeChecker(cameraDevice string) *DeviceNodeChecker {
	return &DeviceNodeChecker{
		CameraDevice: cameraDevice,
		AudioDevice:  "/dev/snd",
	}
}

// RequestCameraAndMicrophone checks both devices; both must be present
func (c *DeviceNodeChecker) RequestCameraAndMicrophone(ctx context.Context) (bool, error) {
	if c.CameraDevice != "" {
		if _, err := os.Stat(c.CameraDevice); err != nil {
			log.Printf("Camera device %s not accessible: %v", c.CameraDevice, err)
			return false, nil
		}
	}
	if c.AudioDevice != "" {
		if _, err := os.Stat(c.AudioDevice); err != nil {
			log.Printf("Audio device %s not accessible: %v", c.AudioDevice, err)
			return false, nil
		}
	}
	return true, nil
}

// StaticChecker always answers with a fixed grant; used in tests and the
// --test CLI mode
type StaticChecker struct {
	Granted bool
}

func (c *StaticChecker) RequestCameraAndMicrophone(ctx context.Context) (bool, error) {
	return c.Granted, nil
}
