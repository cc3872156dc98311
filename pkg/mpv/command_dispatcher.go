package mpv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"time"
)

const (
	socketType = "unix"

	resultSuccess = "success"

	propertyChangeEvent = "property-change"
)

var (
	// ErrCommandFailedResponse informs about mpv returning something other than "success" in an error field of a response.
	ErrCommandFailedResponse = errors.New("mpv response does not include success state")

	// ErrConnectionInProgress informs about failure of operation due to connection of command dispatcher being in progress.
	ErrConnectionInProgress = errors.New("command dispatcher is connected to mpv socket")

	// ErrNoPropertyObserver informs about failure of finding observer for a specified property name (most likely property is not observed).
	ErrNoPropertyObserver = errors.New("could not find observer for a provided property name")

	// ErrNoPropertySubscription informs about failure of finding observer for a specified subscription id.
	ErrNoPropertySubscription = errors.New("could not find subscription for a provided subscription id")

	newline = []byte("\n")

	commandDispatcherLogPrefix = "mpv.CommandDispatcher#"
)

// commandPayload represents command payload sent to the mpv.
type commandPayload struct {
	Command   []interface{} `json:"command"`
	RequestID int           `json:"request_id"`
}

// Response is a result of executing mpv request command.
type Response struct {
	Data interface{} `json:"data"`
}

// ObservePropertyResponse is a result of mpv emitting event with a property change.
type ObservePropertyResponse struct {
	Response
	Property string
}

// ResponsePayload holds data returned after mpv command execution through json IPC.
type ResponsePayload struct {
	Err       string      `json:"error"`
	RequestID int         `json:"request_id"`
	ID        int         `json:"id"`
	Event     string      `json:"event"`
	Name      string      `json:"name"`
	Data      interface{} `json:"data"`
}

// commandDispatcher connects to the provided socket path and handles sending commands and handling results.
type commandDispatcher struct {
	conn                       net.Conn
	connectionTimeout          time.Duration
	errLog                     *log.Logger
	listeningOnSocket          bool
	listeningOnSocketLock      *sync.RWMutex
	outLog                     *log.Logger
	propertyObservers          map[string]propertyObserver
	propertyObserversLock      *sync.RWMutex
	propertySubscriptionID     int
	propertySubscriptionIDLock *sync.Mutex
	requests                   map[int]chan ResponsePayload
	requestsLock               *sync.Mutex
	requestID                  int
	requestIDLock              *sync.Mutex
	socketPath                 string
}

type propertyObserver struct {
	responsePayloads chan ResponsePayload
	subscriptions    map[int]propertySubscriber
}

type propertySubscriber struct {
	propertyChanges chan<- ObservePropertyResponse
	done            chan bool
}

type commandDispatcherConfig struct {
	connectionTimeout time.Duration
	errWriter         io.Writer
	socketPath        string
	outWriter         io.Writer
}

// newCommandDispatcher returns a dispatcher ready to be connected to the socket.
func newCommandDispatcher(cfg commandDispatcherConfig) *commandDispatcher {
	return &commandDispatcher{
		connectionTimeout:          cfg.connectionTimeout,
		errLog:                     log.New(cfg.errWriter, commandDispatcherLogPrefix, log.LstdFlags),
		listeningOnSocket:          false,
		listeningOnSocketLock:      &sync.RWMutex{},
		outLog:                     log.New(cfg.outWriter, commandDispatcherLogPrefix, log.LstdFlags),
		propertyObservers:          make(map[string]propertyObserver),
		propertyObserversLock:      &sync.RWMutex{},
		propertySubscriptionID:     1,
		propertySubscriptionIDLock: &sync.Mutex{},
		requests:                   make(map[int]chan ResponsePayload),
		requestsLock:               &sync.Mutex{},
		requestID:                  1,
		requestIDLock:              &sync.Mutex{},
		socketPath:                 cfg.socketPath,
	}
}

// Close makes connection by ipc to the mpv closed.
func (cd *commandDispatcher) Close() {
	if cd.conn != nil {
		cd.conn.Close()
	}
}

// Connect attempts to connect to the unix socket through which dispatcher will communicate with mpv.
// When connection is already estabilished, ErrConnectionInProgress will be returned,
// as connection is an invalid operation while dispatcher is already connected.
func (cd *commandDispatcher) Connect() error {
	if cd.Connected() {
		return ErrConnectionInProgress
	}

	cd.outLog.Printf("trying to connect to mpv socket at '%s' with timeout: %f seconds\n", cd.socketPath, cd.connectionTimeout.Seconds())
	err := cd.connectToMpvSocket()
	if err != nil {
		cd.errLog.Printf("could not connect to socket due to error: %s\n", err)
		return err
	}
	cd.outLog.Printf("connected to socket at '%s'\n", cd.socketPath)

	return nil
}

// Connected informs whether commandDispatcher is ready to make requests and observe properties.
func (cd *commandDispatcher) Connected() bool {
	cd.listeningOnSocketLock.RLock()
	defer cd.listeningOnSocketLock.RUnlock()

	return cd.listeningOnSocket
}

// Dispatch sends a command with specified requestID to the mpv using socket.
// Returns error if command was not correctly dispatched.
func (cd *commandDispatcher) Dispatch(cmd command, requestID int) error {
	payload, err := prepareCommandPayload(cmd, requestID)
	if err != nil {
		return err
	}

	written, err := cd.conn.Write(payload)
	if err != nil || len(payload) != written {
		return err
	}

	return nil
}

// Request is used to send a simple request->response command that is completed after the first response from mpv comes.
func (cd *commandDispatcher) Request(cmd command) (Response, error) {
	var result Response

	requestResult := make(chan ResponsePayload, 1)

	requestID := cd.reserveRequestID()
	cd.requestsLock.Lock()
	cd.requests[requestID] = requestResult
	cd.requestsLock.Unlock()
	defer func() {
		cd.requestsLock.Lock()
		delete(cd.requests, requestID)
		cd.requestsLock.Unlock()
	}()

	err := cd.Dispatch(cmd, requestID)
	if err != nil {
		return result, err
	}

	resPayload := <-requestResult
	if !IsResultSuccess(resPayload) {
		return result, fmt.Errorf("%w: %s", ErrCommandFailedResponse, resPayload.Err)
	}

	return Response{
		Data: resPayload.Data,
	}, nil
}

// Serve instructs command dispatcher to serve communication handling with mpv through the socket -
// this involves dispatching requests and property observing.
// Property observers already registered on the dispatcher are re-requested, since either the dispatcher
// could have been reconnected (due to mpv instance closing etc.), losing all observers on the mpv side,
// or subscriptions occured before a connection was made.
func (cd *commandDispatcher) Serve() error {
	go cd.observeProperties()
	cd.outLog.Printf("listening on unix socket at '%s'\n", cd.socketPath)

	return cd.listenOnUnixSocket()
}

// SubscribeToProperty listens to property mpv events.
// Returned id is used as a key to listened property mpv events. Id should be used when unsubscribing.
// The channel provided is never closed to enable aggregation from multiple observers.
// However calling unsubscribe will ensure that command dispatcher will stop trying to send on a specified channel.
func (cd *commandDispatcher) SubscribeToProperty(propertyName string, out chan<- ObservePropertyResponse) (int, error) {
	done := make(chan bool)
	propertySubscriptionID := cd.reservePropertySubscriptionID()

	observer, ok := cd.propertyObserver(propertyName)
	if !ok {
		newObserver, err := cd.addPropertyObserver(propertyName)
		if err != nil {
			return 0, err
		}

		observer = newObserver
	}

	observer.subscriptions[propertySubscriptionID] = propertySubscriber{
		propertyChanges: out,
		done:            done,
	}
	responsePayloads := observer.responsePayloads

	go func() {
		for {
			select {
			case payload := <-responsePayloads:
				out <- ObservePropertyResponse{
					Property: propertyName,
					Response: Response{
						Data: payload.Data,
					},
				}
			case <-done:
				delete(observer.subscriptions, propertySubscriptionID)
				return
			}
		}
	}()

	return propertySubscriptionID, nil
}

// UnobserveProperty instructs command dispatcher to stop sending updates about property on specified id.
func (cd *commandDispatcher) UnobserveProperty(propertyName string, id int) error {
	observer, ok := cd.propertyObserver(propertyName)
	if !ok {
		return ErrNoPropertyObserver
	}

	propertySubscription, ok := observer.subscriptions[id]
	if !ok {
		return ErrNoPropertySubscription
	}

	propertySubscription.done <- true
	return nil
}

// addPropertyObserver creates a new observer for a specific property.
// The request to observe the property will not be made if the connection is not estabilished since it would fail,
// but the observer is added to propertyObservers map which will be used during connection to start observing properties on a new connection.
func (cd *commandDispatcher) addPropertyObserver(propertyName string) (propertyObserver, error) {
	newObserver := propertyObserver{
		responsePayloads: make(chan ResponsePayload),
		subscriptions:    make(map[int]propertySubscriber),
	}

	cd.propertyObserversLock.Lock()
	cd.propertyObservers[propertyName] = newObserver
	cd.propertyObserversLock.Unlock()

	if !cd.Connected() {
		return newObserver, nil
	}

	err := cd.observeProperty(propertyName)
	return newObserver, err
}

func (cd *commandDispatcher) connectToMpvSocket() error {
	conn, err := waitForSocketConnection(cd.socketPath, cd.connectionTimeout)
	if err != nil {
		return err
	}

	cd.conn = conn

	return nil
}

func (cd *commandDispatcher) distributeResponse(result ResponsePayload) error {
	if result.Event == propertyChangeEvent {
		observer, ok := cd.propertyObserver(result.Name)
		if !ok {
			return fmt.Errorf("property change event provided for a not observed property %s", result.Name)
		}

		observer.responsePayloads <- result

		return nil
	}

	if result.RequestID == 0 {
		return fmt.Errorf("result provided without RequestID")
	}

	cd.requestsLock.Lock()
	request, ok := cd.requests[result.RequestID]
	cd.requestsLock.Unlock()
	if !ok {
		return fmt.Errorf("result %d provided to not dispatched request", result.RequestID)
	}

	request <- result

	return nil
}

func (cd *commandDispatcher) listenOnUnixSocket() error {
	cd.setListeningOnSocket(true)
	defer cd.setListeningOnSocket(false)

	iterator := NewResponsesIterator(cd.conn)
	for {
		payload, err := iterator.Next()
		if err == io.EOF {
			cd.outLog.Println("connection closed")

			return nil
		} else if err != nil {
			cd.errLog.Printf("could not read the payload from the connection: %s\n", err)

			return err
		}

		err = cd.distributeResponse(payload)
		if err != nil {
			cd.errLog.Printf("could not distribute response: %s\n", err)
		}
	}
}

func (cd *commandDispatcher) observeProperties() {
	cd.propertyObserversLock.RLock()
	defer cd.propertyObserversLock.RUnlock()

	for propertyName := range cd.propertyObservers {
		err := cd.observeProperty(propertyName)
		if err != nil {
			cd.errLog.Printf("could not observe property '%s' due to error: %s", propertyName, err)
		}
	}
}

func (cd *commandDispatcher) observeProperty(propertyName string) error {
	requestID := cd.reserveRequestID()
	cmd := command{
		name:     observePropertyCommand,
		elements: []interface{}{requestID, propertyName},
	}
	_, err := cd.Request(cmd)

	return err
}

func (cd *commandDispatcher) propertyObserver(propertyName string) (propertyObserver, bool) {
	cd.propertyObserversLock.RLock()
	defer cd.propertyObserversLock.RUnlock()

	observer, ok := cd.propertyObservers[propertyName]
	return observer, ok
}

func (cd *commandDispatcher) reserveRequestID() int {
	cd.requestIDLock.Lock()
	defer cd.requestIDLock.Unlock()

	requestID := cd.requestID
	cd.requestID++

	return requestID
}

func (cd *commandDispatcher) reservePropertySubscriptionID() int {
	cd.propertySubscriptionIDLock.Lock()
	defer cd.propertySubscriptionIDLock.Unlock()

	propertyObserverID := cd.propertySubscriptionID
	cd.propertySubscriptionID++

	return propertyObserverID
}

func (cd *commandDispatcher) setListeningOnSocket(listening bool) {
	cd.listeningOnSocketLock.Lock()
	defer cd.listeningOnSocketLock.Unlock()

	cd.listeningOnSocket = listening
}

// IsResultSuccess returns whether the result specifies successful command execution.
func IsResultSuccess(result ResponsePayload) bool {
	return result.Err == resultSuccess
}

func waitForSocketConnection(socketPath string, timeout time.Duration) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	connection := make(chan net.Conn)
	go dialSocket(socketType, socketPath, connection)

	select {
	case conn := <-connection:
		return conn, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func dialSocket(socketType string, socketPath string, done chan<- net.Conn) {
	for {
		conn, err := net.Dial(socketType, socketPath)
		if err == nil {
			done <- conn

			return
		}

		// mpv takes a moment (up to a few seconds) to start listening on the socket, repeat until connection successful.
		time.Sleep(1 * time.Second)
	}
}

func getResponsePayload(payload []byte) (ResponsePayload, error) {
	var result ResponsePayload
	err := json.Unmarshal(payload, &result)
	if err != nil {
		return result, fmt.Errorf("could not parse the response JSON as ResponsePayload: %w", err)
	}

	return result, nil
}

func prepareCommandPayload(cmd command, requestID int) ([]byte, error) {
	var payload []byte
	cmdPayload := commandPayload{
		Command:   cmd.JSONIPCFormat(),
		RequestID: requestID,
	}

	payload, err := json.Marshal(cmdPayload)
	if err != nil {
		return payload, err
	}

	payload = append(payload, newline...)

	return payload, nil
}
