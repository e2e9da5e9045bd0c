package mpv

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/sarpt/mpv-music-api/pkg/bridge"
)

const (
	deviceLogPrefix = "mpv.Device#"

	deviceChangesSize = 16
	maxVolume         = 100
)

// DeviceConfig controls the Device.
type DeviceConfig struct {
	ErrWriter io.Writer
	Manager   *Manager
}

// Device plays audio sources with mpv, exposing the player controls expected by the bridge.
type Device struct {
	entryID    int
	errLog     *log.Logger
	manager    *Manager
	source     string
	sourceLock *sync.RWMutex
}

// NewDevice returns Device controlling mpv through the provided manager.
func NewDevice(cfg DeviceConfig) *Device {
	return &Device{
		errLog:     log.New(cfg.ErrWriter, deviceLogPrefix, log.LstdFlags),
		manager:    cfg.Manager,
		sourceLock: &sync.RWMutex{},
	}
}

// Load replaces the currently played file with the source.
func (d *Device) Load(source string) error {
	entryID, err := d.manager.LoadFile(source, false)
	if err != nil {
		return fmt.Errorf("could not load '%s': %w", source, err)
	}

	d.sourceLock.Lock()
	defer d.sourceLock.Unlock()

	d.source = source
	d.entryID = entryID
	return nil
}

func (d *Device) Play() error {
	return d.manager.ChangePause(false)
}

func (d *Device) Pause() error {
	return d.manager.ChangePause(true)
}

// Position returns the current playback time in seconds.
func (d *Device) Position() (float64, error) {
	return d.floatProperty(PlaybackTimeProperty)
}

func (d *Device) Seek(position float64) error {
	return d.manager.Seek(position)
}

// Volume returns the volume in range of 0 to 1.
func (d *Device) Volume() (float64, error) {
	volume, err := d.floatProperty(VolumeProperty)

	return volume / maxVolume, err
}

// SetVolume sets the volume provided in range of 0 to 1.
func (d *Device) SetVolume(volume float64) error {
	_, err := d.manager.SetProperty(VolumeProperty, volume*maxVolume)

	return err
}

// Source returns the last loaded source, or an empty string after the source has been played to the end
// or mpv failed to play it.
func (d *Device) Source() string {
	d.sourceLock.RLock()
	defer d.sourceLock.RUnlock()

	return d.source
}

// Subscribe translates playback time changes and files finished or failed by mpv into device events.
func (d *Device) Subscribe(events chan<- bridge.Event) (func(), error) {
	propertyChanges := make(chan ObservePropertyResponse, deviceChangesSize)
	subscriptionID, err := d.manager.SubscribeToProperty(PlaybackTimeProperty, propertyChanges)
	if err != nil {
		return nil, fmt.Errorf("could not observe '%s' property: %w", PlaybackTimeProperty, err)
	}

	endFileEvents := make(chan EventResponse, deviceChangesSize)
	eventID := d.manager.SubscribeToEvent(EndFileEvent, endFileEvents)

	done := make(chan struct{})
	go d.translate(propertyChanges, endFileEvents, events, done)

	return func() {
		if err := d.manager.UnobserveProperty(PlaybackTimeProperty, subscriptionID); err != nil {
			d.errLog.Printf("could not stop observing '%s' property: %s\n", PlaybackTimeProperty, err)
		}

		if err := d.manager.UnsubscribeFromEvent(eventID); err != nil {
			d.errLog.Printf("could not unsubscribe from '%s' event: %s\n", EndFileEvent, err)
		}

		close(done)
	}, nil
}

func (d *Device) translate(propertyChanges <-chan ObservePropertyResponse, endFileEvents <-chan EventResponse, events chan<- bridge.Event, done <-chan struct{}) {
	for {
		var event bridge.Event

		select {
		case change := <-propertyChanges:
			position, ok := change.Data.(float64)
			if !ok {
				continue // property is unavailable when nothing is played
			}

			event = bridge.Event{Variant: bridge.ProgressEvent, Position: position}
		case endFile := <-endFileEvents:
			if endFile.Reason != EOFReason && endFile.Reason != ErrorReason {
				continue
			}

			source, ok := d.unload(endFile.EntryID)
			if !ok {
				continue // file replaced by a later Load
			}

			if endFile.Reason == EOFReason {
				event = bridge.Event{Variant: bridge.EndedEvent, Source: source}
				break
			}

			d.errLog.Printf("mpv could not play '%s': %s\n", source, endFile.Err)
			event = bridge.Event{Variant: bridge.FailedEvent, Source: source, Err: endFile.Err}
		case <-done:
			return
		}

		select {
		case events <- event:
		case <-done:
			return
		}
	}
}

func (d *Device) floatProperty(property string) (float64, error) {
	response, err := d.manager.GetProperty(property)
	if err != nil {
		return 0, err
	}

	value, ok := response.Data.(float64)
	if !ok {
		return 0, fmt.Errorf("'%s' property is not a number: %v", property, response.Data)
	}

	return value, nil
}

// unload forgets the loaded source when the finished entry is the one loaded last.
// When mpv does not report entry ids, any finished file unloads the source.
func (d *Device) unload(entryID int) (string, bool) {
	d.sourceLock.Lock()
	defer d.sourceLock.Unlock()

	if d.source == "" {
		return "", false
	}

	if d.entryID != UnknownEntryID && entryID != UnknownEntryID && entryID != d.entryID {
		return "", false
	}

	source := d.source
	d.source = ""
	d.entryID = UnknownEntryID

	return source, true
}
