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
	socketType   = "unix"
	dialInterval = 1 * time.Second

	resultSuccess = "success"
)

var (
	// ErrCommandFailedResponse informs about mpv returning something other than "success" in an error field of a response.
	ErrCommandFailedResponse = errors.New("mpv response does not include success state")

	// ErrConnectionClosed informs about connection being closed before the response to the request arrived.
	ErrConnectionClosed = errors.New("connection to mpv socket closed before the response arrived")

	// ErrConnectionInProgress informs about failure of operation due to command dispatcher being already connected.
	ErrConnectionInProgress = errors.New("command dispatcher is connected to mpv socket")

	// ErrConnectionTimeout informs about mpv socket not accepting the connection in time.
	ErrConnectionTimeout = errors.New("could not connect to mpv socket in time")

	// ErrNotConnected informs about failure of operation due to missing connection to mpv socket.
	ErrNotConnected = errors.New("command dispatcher is not connected to mpv socket")

	// ErrNoPropertyObserver informs about failure of finding observer for a specified property name (most likely property is not observed).
	ErrNoPropertyObserver = errors.New("could not find observer for a provided property name")

	// ErrNoPropertySubscription informs about failure of finding observer for a specified subscription id.
	ErrNoPropertySubscription = errors.New("could not find subscription for a provided subscription id")

	// ErrNoEventSubscription informs about failure of finding event subscription for a specified id.
	ErrNoEventSubscription = errors.New("could not find event subscription for a provided subscription id")

	newline = []byte("\n")

	commandDispatcherLogPrefix = "mpv.CommandDispatcher#"
)

// commandPayload represents command payload sent to the mpv
type commandPayload struct {
	Command   []interface{} `json:"command"`
	RequestID int           `json:"request_id"`
}

// Response is a result of executing mpv request command.
type Response struct {
	Data interface{} `json:"data"`
}

// ObservePropertyResponse is a result of mpv emitting event with a property change
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
	Reason    string      `json:"reason"`
	FileError string      `json:"file_error"`
	EntryID   int         `json:"playlist_entry_id"`
	Data      interface{} `json:"data"`
}

// commandDispatcher connects to the provided socket path and handles sending commands and handling results
type commandDispatcher struct {
	conn                   net.Conn
	connLock               *sync.RWMutex
	connectionTimeout      time.Duration
	errLog                 *log.Logger
	eventSubscriptions     map[int]eventSubscription
	eventSubscriptionsLock *sync.RWMutex
	outLog                 *log.Logger
	propertyObservers      map[string]propertyObserver
	propertyObserversLock  *sync.RWMutex
	requests               map[int]chan ResponsePayload
	requestsLock           *sync.Mutex
	requestID              int
	requestIDLock          *sync.Mutex
	socketPath             string
	subscriptionID         int
	subscriptionIDLock     *sync.Mutex
	writeLock              *sync.Mutex
}

type propertyObserver struct {
	observeID     int
	subscriptions map[int]chan<- ObservePropertyResponse
}

type eventSubscription struct {
	event string
	out   chan<- EventResponse
}

type commandDispatcherConfig struct {
	connectionTimeout time.Duration
	errWriter         io.Writer
	socketPath        string
	outWriter         io.Writer
}

func newCommandDispatcher(cfg commandDispatcherConfig) *commandDispatcher {
	return &commandDispatcher{
		connLock:               &sync.RWMutex{},
		connectionTimeout:      cfg.connectionTimeout,
		errLog:                 log.New(cfg.errWriter, commandDispatcherLogPrefix, log.LstdFlags),
		eventSubscriptions:     make(map[int]eventSubscription),
		eventSubscriptionsLock: &sync.RWMutex{},
		outLog:                 log.New(cfg.outWriter, commandDispatcherLogPrefix, log.LstdFlags),
		propertyObservers:      make(map[string]propertyObserver),
		propertyObserversLock:  &sync.RWMutex{},
		requests:               make(map[int]chan ResponsePayload),
		requestsLock:           &sync.Mutex{},
		requestID:              1,
		requestIDLock:          &sync.Mutex{},
		socketPath:             cfg.socketPath,
		subscriptionID:         1,
		subscriptionIDLock:     &sync.Mutex{},
		writeLock:              &sync.Mutex{},
	}
}

// Close makes connection by ipc to the mpv closed.
func (cd *commandDispatcher) Close() {
	conn := cd.connection()
	if conn != nil {
		conn.Close()
	}
}

// Connect attempts to connect to the unix socket through which dispatcher will communicate with MPV.
// When connection is already estabilished, ErrConnectionInProgress will be returned.
func (cd *commandDispatcher) Connect() error {
	if cd.Connected() {
		return ErrConnectionInProgress
	}

	cd.outLog.Printf("trying to connect to mpv socket at '%s' with timeout: %f seconds\n", cd.socketPath, cd.connectionTimeout.Seconds())
	conn, err := waitForSocketConnection(cd.socketPath, cd.connectionTimeout)
	if err != nil {
		cd.errLog.Printf("could not connect to socket due to error: %s\n", err)
		return err
	}

	cd.connLock.Lock()
	cd.conn = conn
	cd.connLock.Unlock()
	cd.outLog.Printf("connected to socket at '%s'\n", cd.socketPath)

	return nil
}

// Connected informs whether commandDispatcher is ready to make requests and observe properties.
func (cd *commandDispatcher) Connected() bool {
	return cd.connection() != nil
}

// Dispatch sends a commmand with specified requestID to the mpv using socket.
func (cd *commandDispatcher) Dispatch(cmd command, requestID int) error {
	conn := cd.connection()
	if conn == nil {
		return ErrNotConnected
	}

	payload, err := prepareCommandPayload(cmd, requestID)
	if err != nil {
		return err
	}

	cd.writeLock.Lock()
	defer cd.writeLock.Unlock()

	written, err := conn.Write(payload)
	if err != nil {
		return err
	}

	if written != len(payload) {
		return fmt.Errorf("partial write of '%s' command: %d out of %d bytes", cmd.name, written, len(payload))
	}

	return nil
}

// Request is used to send simple Request->response command that is completed after the first response from mpv comes.
func (cd *commandDispatcher) Request(cmd command) (Response, error) {
	requestID := cd.reserveRequestID()
	requestResult := make(chan ResponsePayload, 1)

	cd.requestsLock.Lock()
	cd.requests[requestID] = requestResult
	cd.requestsLock.Unlock()
	defer cd.forgetRequest(requestID)

	err := cd.Dispatch(cmd, requestID)
	if err != nil {
		return Response{}, err
	}

	resPayload, ok := <-requestResult
	if !ok {
		return Response{}, ErrConnectionClosed
	}

	if !IsResultSuccess(resPayload) {
		return Response{}, fmt.Errorf("%w: '%s' returned '%s'", ErrCommandFailedResponse, cmd.name, resPayload.Err)
	}

	return Response{
		Data: resPayload.Data,
	}, nil
}

// Serve handles responses from the connected socket until the connection is closed.
// Property observers registered before the connection are requested again on the new connection.
// Property observing errors are non fatal to serving of commandDispatcher.
func (cd *commandDispatcher) Serve() error {
	conn := cd.connection()
	if conn == nil {
		return ErrNotConnected
	}

	go cd.observeProperties()
	cd.outLog.Printf("listening on unix socket at '%s'\n", cd.socketPath)

	cd.listen(conn)
	cd.disconnect()

	return nil
}

// SubscribeToProperty sends property mpv changes on out until the subscription is removed with UnobserveProperty.
// The channel provided is never closed to enable aggregation from multiple observers.
// Changes are dropped when out is not ready to receive them.
func (cd *commandDispatcher) SubscribeToProperty(propertyName string, out chan<- ObservePropertyResponse) (int, error) {
	subscriptionID := cd.reserveSubscriptionID()

	cd.propertyObserversLock.Lock()
	observer, observed := cd.propertyObservers[propertyName]
	if !observed {
		observer = propertyObserver{
			observeID:     cd.reserveSubscriptionID(),
			subscriptions: make(map[int]chan<- ObservePropertyResponse),
		}
		cd.propertyObservers[propertyName] = observer
	}
	observer.subscriptions[subscriptionID] = out
	cd.propertyObserversLock.Unlock()

	// Not connected observers are requested on the next Serve.
	if observed || !cd.Connected() {
		return subscriptionID, nil
	}

	return subscriptionID, cd.observeProperty(propertyName, observer.observeID)
}

// SubscribeToEvent sends mpv events with the provided name on out until UnsubscribeFromEvent is called with returned id.
func (cd *commandDispatcher) SubscribeToEvent(event string, out chan<- EventResponse) int {
	subscriptionID := cd.reserveSubscriptionID()

	cd.eventSubscriptionsLock.Lock()
	defer cd.eventSubscriptionsLock.Unlock()

	cd.eventSubscriptions[subscriptionID] = eventSubscription{
		event: event,
		out:   out,
	}

	return subscriptionID
}

// UnobserveProperty instructs command dispatcher to stop sending updates about property on specified id.
func (cd *commandDispatcher) UnobserveProperty(propertyName string, id int) error {
	cd.propertyObserversLock.Lock()
	observer, ok := cd.propertyObservers[propertyName]
	if !ok {
		cd.propertyObserversLock.Unlock()
		return ErrNoPropertyObserver
	}

	if _, ok := observer.subscriptions[id]; !ok {
		cd.propertyObserversLock.Unlock()
		return ErrNoPropertySubscription
	}

	delete(observer.subscriptions, id)
	lastSubscription := len(observer.subscriptions) == 0
	if lastSubscription {
		delete(cd.propertyObservers, propertyName)
	}
	cd.propertyObserversLock.Unlock()

	if !lastSubscription || !cd.Connected() {
		return nil
	}

	_, err := cd.Request(command{
		name:     unobservePropertyCommand,
		elements: []interface{}{observer.observeID},
	})

	return err
}

// UnsubscribeFromEvent stops sending events on the subscription with the specified id.
func (cd *commandDispatcher) UnsubscribeFromEvent(id int) error {
	cd.eventSubscriptionsLock.Lock()
	defer cd.eventSubscriptionsLock.Unlock()

	if _, ok := cd.eventSubscriptions[id]; !ok {
		return ErrNoEventSubscription
	}

	delete(cd.eventSubscriptions, id)
	return nil
}

func (cd *commandDispatcher) connection() net.Conn {
	cd.connLock.RLock()
	defer cd.connLock.RUnlock()

	return cd.conn
}

// disconnect forgets the connection and fails requests still waiting for the response.
func (cd *commandDispatcher) disconnect() {
	cd.connLock.Lock()
	cd.conn = nil
	cd.connLock.Unlock()

	cd.requestsLock.Lock()
	defer cd.requestsLock.Unlock()

	for id, request := range cd.requests {
		close(request)
		delete(cd.requests, id)
	}
}

func (cd *commandDispatcher) distributeResponse(result ResponsePayload) error {
	switch {
	case result.Event == propertyChangeEvent:
		return cd.distributePropertyChange(result)
	case result.Event != "":
		cd.distributeEvent(result)
		return nil
	case result.RequestID == 0:
		return fmt.Errorf("result provided without RequestID")
	}

	cd.requestsLock.Lock()
	request, ok := cd.requests[result.RequestID]
	delete(cd.requests, result.RequestID)
	cd.requestsLock.Unlock()

	if !ok {
		return fmt.Errorf("result %d provided to not dispatched request", result.RequestID)
	}

	request <- result
	return nil
}

func (cd *commandDispatcher) distributeEvent(result ResponsePayload) {
	event := EventResponse{
		Event:   result.Event,
		Reason:  result.Reason,
		Err:     result.FileError,
		EntryID: result.EntryID,
	}

	cd.eventSubscriptionsLock.RLock()
	defer cd.eventSubscriptionsLock.RUnlock()

	for _, subscription := range cd.eventSubscriptions {
		if subscription.event != result.Event {
			continue
		}

		select {
		case subscription.out <- event:
		default:
			cd.errLog.Printf("dropping '%s' event due to subscriber not receiving\n", result.Event)
		}
	}
}

func (cd *commandDispatcher) distributePropertyChange(result ResponsePayload) error {
	cd.propertyObserversLock.RLock()
	defer cd.propertyObserversLock.RUnlock()

	observer, ok := cd.propertyObservers[result.Name]
	if !ok {
		return fmt.Errorf("observe property event provided to not observed property %s", result.Name)
	}

	change := ObservePropertyResponse{
		Property: result.Name,
		Response: Response{
			Data: result.Data,
		},
	}
	for _, out := range observer.subscriptions {
		select {
		case out <- change:
		default:
			cd.errLog.Printf("dropping '%s' property change due to subscriber not receiving\n", result.Name)
		}
	}

	return nil
}

func (cd *commandDispatcher) forgetRequest(requestID int) {
	cd.requestsLock.Lock()
	defer cd.requestsLock.Unlock()

	delete(cd.requests, requestID)
}

func (cd *commandDispatcher) listen(conn net.Conn) {
	responses := NewResponsesIterator(conn)

	for {
		response, err := responses.Next()
		if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
			cd.outLog.Println("connection closed")
			return
		} else if err != nil {
			cd.errLog.Printf("could not read the payload from the connection: %s\n", err)
			return
		}

		err = cd.distributeResponse(response)
		if err != nil {
			cd.errLog.Printf("could not distribute response: %s\n", err)
		}
	}
}

func (cd *commandDispatcher) observeProperties() {
	cd.propertyObserversLock.RLock()
	observeIDs := make(map[string]int, len(cd.propertyObservers))
	for propertyName, observer := range cd.propertyObservers {
		observeIDs[propertyName] = observer.observeID
	}
	cd.propertyObserversLock.RUnlock()

	for propertyName, observeID := range observeIDs {
		err := cd.observeProperty(propertyName, observeID)
		if err != nil {
			cd.errLog.Printf("could not observe property '%s' due to error: %s\n", propertyName, err)
		}
	}
}

func (cd *commandDispatcher) observeProperty(propertyName string, observeID int) error {
	cmd := command{
		name:     observePropertyCommand,
		elements: []interface{}{observeID, propertyName},
	}
	_, err := cd.Request(cmd)

	return err
}

func (cd *commandDispatcher) reserveRequestID() int {
	cd.requestIDLock.Lock()
	defer cd.requestIDLock.Unlock()

	requestID := cd.requestID
	cd.requestID++

	return requestID
}

func (cd *commandDispatcher) reserveSubscriptionID() int {
	cd.subscriptionIDLock.Lock()
	defer cd.subscriptionIDLock.Unlock()

	subscriptionID := cd.subscriptionID
	cd.subscriptionID++

	return subscriptionID
}

// IsResultSuccess return whether returned result specifies successful command execution.
func IsResultSuccess(result ResponsePayload) bool {
	return result.Err == resultSuccess
}

func waitForSocketConnection(socketPath string, timeout time.Duration) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	connection := make(chan net.Conn)
	go dialSocket(ctx, socketPath, connection)

	select {
	case conn := <-connection:
		return conn, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s", ErrConnectionTimeout, ctx.Err())
	}
}

// dialSocket repeats dialing until the connection succeeds or ctx is done.
// mpv takes a moment (up to a few seconds) to start listening on the socket.
func dialSocket(ctx context.Context, socketPath string, done chan<- net.Conn) {
	for {
		conn, err := net.Dial(socketType, socketPath)
		if err == nil {
			select {
			case done <- conn:
			case <-ctx.Done():
				conn.Close()
			}

			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(dialInterval):
		}
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
	cmdPayload := commandPayload{
		Command:   cmd.JSONIPCFormat(),
		RequestID: requestID,
	}

	payload, err := json.Marshal(cmdPayload)
	if err != nil {
		return payload, err
	}

	return append(payload, newline...), nil
}
