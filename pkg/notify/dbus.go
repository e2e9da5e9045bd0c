package notify

import (
	"io"
	"log"

	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
)

const (
	notificationsID     = "org.freedesktop.Notifications"
	notificationsPath   = "/org/freedesktop/Notifications"
	notifyMethod        = notificationsID + ".Notify"
	dbusNotifierPrefix  = "notify.DBus#"
	defaultExpirationMs = 5000
)

// DBus shows notifications on the desktop through the freedesktop notifications service.
type DBus struct {
	appName string
	errLog  *log.Logger
	object  dbus.BusObject
}

type DBusConfig struct {
	AppName   string
	ErrWriter io.Writer
}

// NewDBus connects to the session bus.
func NewDBus(cfg DBusConfig) (*DBus, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to session bus")
	}

	return &DBus{
		appName: cfg.AppName,
		errLog:  log.New(cfg.ErrWriter, dbusNotifierPrefix, log.LstdFlags),
		object:  conn.Object(notificationsID, notificationsPath),
	}, nil
}

// Notify sends the notification without waiting for the reply.
func (d *DBus) Notify(title string, description string) {
	call := d.object.Go(
		notifyMethod,
		dbus.FlagNoReplyExpected,
		nil,
		d.appName,
		uint32(0),
		"",
		title,
		description,
		[]string{},
		map[string]dbus.Variant{},
		int32(defaultExpirationMs),
	)
	if call.Err != nil {
		d.errLog.Println(errors.Wrap(call.Err, "failed to send notification"))
	}
}
