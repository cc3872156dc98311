package sse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

var (
	sseEventEnd = []byte("\n\n")

	errResponseJSONCreationFailed = errors.New("could not create JSON for response")
	errClientWritingFailed        = errors.New("could not write to the client")
	errConvertToFlusherFailed     = errors.New("could not instantiate http sse flusher")
)

// ResponseWriter is used to send data through keep-alive SSE connection.
// The writer and flusher are protected by lock since multiple go routines use the same connection to send events.
type ResponseWriter struct {
	res     http.ResponseWriter
	flusher http.Flusher
	lock    *sync.Mutex
}

// Write sends data through the connection.
func (f *ResponseWriter) Write(data []byte) (int, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	n, err := f.res.Write(data)
	if err == nil {
		f.flusher.Flush()
	}

	return n, err
}

// SendChange is responsible for propagating change payload through SSE connection.
func (f *ResponseWriter) SendChange(changePayload json.Marshaler, channelVariant ChannelVariant, changeVariant string) error {
	out, err := json.Marshal(changePayload)
	if err != nil {
		return fmt.Errorf("%w: %s", errResponseJSONCreationFailed, err)
	}

	_, err = f.writeChange(out, channelVariant, changeVariant)
	return err
}

// SendEmptyChange is responsible for propagating change without any payload (without "data") through SSE connection.
func (f *ResponseWriter) SendEmptyChange(channelVariant ChannelVariant, changeVariant string) error {
	_, err := f.writeChange([]byte{}, channelVariant, changeVariant)
	return err
}

func (f *ResponseWriter) writeChange(out []byte, channelVariant ChannelVariant, changeVariant string) (int, error) {
	n, err := f.Write(formatSseEvent(channelVariant, changeVariant, out))
	if err != nil {
		return n, fmt.Errorf("writing change %s on %s channel failed: %w: %s", changeVariant, channelVariant, errClientWritingFailed, err)
	}

	return n, nil
}

func sseResponseWriter(res http.ResponseWriter) (ResponseWriter, error) {
	flusher, ok := res.(http.Flusher)
	if !ok {
		return ResponseWriter{}, errConvertToFlusherFailed
	}

	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("Content-Type", "text/event-stream")
	res.Header().Set("Access-Control-Allow-Origin", "*")

	sseFlusher := ResponseWriter{
		res:     res,
		flusher: flusher,
		lock:    &sync.Mutex{},
	}
	return sseFlusher, nil
}

func formatSseEvent(channel ChannelVariant, eventName string, data []byte) []byte {
	var out []byte

	channelEvent := fmt.Sprintf("%s.%s", channel, eventName)
	out = append(out, []byte(fmt.Sprintf("event:%s\n", channelEvent))...)

	dataEntries := bytes.Split(data, []byte("\n"))
	for _, dataEntry := range dataEntries {
		out = append(out, []byte(fmt.Sprintf("data:%s\n", dataEntry))...)
	}

	out = append(out, sseEventEnd...)
	return out
}
