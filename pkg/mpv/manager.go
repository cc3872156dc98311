package mpv

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"time"
)

const (
	mpvName           = "mpv"
	idleArg           = "--idle"
	pauseArg          = "--pause"
	inputIpcServerArg = "--input-ipc-server"

	managerLogPrefix = "mpv.Manager#"
)

var (
	// ErrPropertyDataUnexpectedFormat informs about mpv returning property data of a different type than requested operation expects.
	ErrPropertyDataUnexpectedFormat = errors.New("mpv property data has unexpected format")
)

// ManagerConfig controls behaviour of the mpv manager.
type ManagerConfig struct {
	MpvSocketPath           string
	ErrWriter               io.Writer
	OutWriter               io.Writer
	SocketConnectionTimeout time.Duration
	StartMpvInstance        bool
}

// Manager handles dispatching of commands, while exposing the mpv command API as a facade.
type Manager struct {
	cd               *commandDispatcher
	errLog           *log.Logger
	mpvCmd           *exec.Cmd
	outLog           *log.Logger
	socketPath       string
	startMpvInstance bool
}

// NewManager instantiates a new command dispatcher, preparing a new Manager for use.
func NewManager(cfg ManagerConfig) *Manager {
	errLog := log.New(cfg.ErrWriter, managerLogPrefix, log.LstdFlags)
	outLog := log.New(cfg.OutWriter, managerLogPrefix, log.LstdFlags)

	cdCfg := commandDispatcherConfig{
		connectionTimeout: cfg.SocketConnectionTimeout,
		errWriter:         errLog.Writer(),
		socketPath:        cfg.MpvSocketPath,
		outWriter:         outLog.Writer(),
	}

	return &Manager{
		cd:               newCommandDispatcher(cdCfg),
		errLog:           errLog,
		outLog:           outLog,
		socketPath:       cfg.MpvSocketPath,
		startMpvInstance: cfg.StartMpvInstance,
	}
}

// ChangePause instructs mpv to change the pause state.
// Paused argument specifies whether playback should be paused or unpaused.
func (m *Manager) ChangePause(paused bool) error {
	_, err := m.SetProperty(PauseProperty, paused)

	return err
}

// Close cleans up manager's resources.
func (m *Manager) Close() {
	m.cd.Close()
}

// Duration reads duration of the currently loaded file in seconds.
func (m *Manager) Duration() (float64, error) {
	return m.floatProperty(DurationProperty)
}

// LoadFile instructs mpv to replace current playback with the file from the provided filepath.
// The file is loaded paused - playback is resumed by a separate ChangePause call.
func (m *Manager) LoadFile(filePath string) error {
	cmd := command{
		name:     loadfileCommand,
		elements: []interface{}{filePath, ReplaceValue},
	}
	_, err := m.cd.Request(cmd)
	if err != nil {
		return err
	}

	return m.ChangePause(true)
}

// PlaybackTime reads the current playback position in seconds.
func (m *Manager) PlaybackTime() (float64, error) {
	return m.floatProperty(PlaybackTimeProperty)
}

// Serve starts handling requests to and responses from mpv.
// If necessary, Serve also spawns and handles mpv process lifetime.
func (m *Manager) Serve() error {
	mpvErrors := make(chan error)
	cdErrors := make(chan error)

	if m.startMpvInstance {
		go func() {
			err := m.manageOwnMpvProcess()
			if err != nil {
				mpvErrors <- err
			}

			close(mpvErrors)
		}()
	}

	go func() {
		err := m.serveCommandDispatcher()
		if err != nil {
			cdErrors <- err
		}

		close(cdErrors)
	}()

	select {
	case err := <-mpvErrors:
		return err
	case err := <-cdErrors:
		return err
	}
}

// SetABLoop instructs mpv to loop natively between the two provided timestamps in seconds.
func (m *Manager) SetABLoop(aTime float64, bTime float64) error {
	_, err := m.SetProperty(ABLoopAProperty, aTime)
	if err != nil {
		return err
	}

	_, err = m.SetProperty(ABLoopBProperty, bTime)

	return err
}

// ClearABLoop instructs mpv to stop native A-B looping.
func (m *Manager) ClearABLoop() error {
	_, err := m.SetProperty(ABLoopAProperty, NoValue)
	if err != nil {
		return err
	}

	_, err = m.SetProperty(ABLoopBProperty, NoValue)

	return err
}

// SetSpeed instructs mpv to change the playback speed multiplier.
func (m *Manager) SetSpeed(rate float64) error {
	_, err := m.SetProperty(SpeedProperty, rate)

	return err
}

// SetProperty sets the value of a property.
// Value is of any type since various mpv commands expect different types of values.
func (m *Manager) SetProperty(property string, value interface{}) (Response, error) {
	cmd := command{
		name:     setPropertyCommand,
		elements: []interface{}{property, value},
	}

	return m.cd.Request(cmd)
}

// Stop instructs mpv to stop the playback without quitting.
func (m *Manager) Stop() error {
	cmd := command{
		name:     stopCommand,
		elements: []interface{}{},
	}
	_, err := m.cd.Request(cmd)

	return err
}

// SubscribeToProperty instructs mpv to listen on property changes and send those changes on the out channel.
func (m *Manager) SubscribeToProperty(propertyName string, out chan<- ObservePropertyResponse) (int, error) {
	return m.cd.SubscribeToProperty(propertyName, out)
}

func (m *Manager) floatProperty(property string) (float64, error) {
	cmd := command{
		name:     getPropertyCommand,
		elements: []interface{}{property},
	}

	res, err := m.cd.Request(cmd)
	if err != nil {
		return 0, err
	}

	value, ok := res.Data.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: property '%s' did not provide a number", ErrPropertyDataUnexpectedFormat, property)
	}

	return value, nil
}

func (m *Manager) startMpv() error {
	cmd := exec.Command(mpvName, idleArg, pauseArg, fmt.Sprintf("%s=%s", inputIpcServerArg, m.socketPath))
	err := cmd.Start()
	if err != nil {
		return fmt.Errorf("could not start mpv process: %w", err)
	}

	m.mpvCmd = cmd
	return nil
}

func (m *Manager) manageOwnMpvProcess() error {
	var err error
	for {
		if m.mpvCmd != nil {
			m.outLog.Println("watching for mpv process exit...")

			err = m.mpvCmd.Wait()
			if err != nil {
				return fmt.Errorf("mpv process finished with error: %w", err)
			} else {
				m.outLog.Println("mpv process finished successfully (closed by user)")
			}

			m.outLog.Println("restarting mpv process...")
		}

		err = m.startMpv()
		if err != nil {
			return fmt.Errorf("could not start mpv process due to error: %w", err)
		}
		m.outLog.Println("mpv process started")
	}
}

func (m *Manager) serveCommandDispatcher() error {
	var err error
	for {
		m.outLog.Println("connecting command dispatcher...")

		err = m.cd.Connect()
		if err != nil && !errors.Is(err, ErrConnectionInProgress) {
			return err
		}

		err = m.cd.Serve()
		if err != nil {
			return err
		}

		m.cd.Close()
	}
}
