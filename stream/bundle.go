// Package stream reads the entries of large FHIR Bundles without decoding the
// whole document at once.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrNotBundle is returned when the document is not a JSON object.
var ErrNotBundle = errors.New("not a bundle")

// Entry is one entry of a Bundle.
type Entry struct {
	// Index is the position of the entry in the bundle, or -1 for errors
	// that concern the bundle itself.
	Index int

	// FullURL is the fullUrl of the entry (if present)
	FullURL string

	// ResourceType is the type of resource in the entry
	ResourceType string

	// ResourceID is the id of the resource (if present)
	ResourceID string

	// Resource is the entry's resource as JSON, nil when the entry has none.
	Resource json.RawMessage

	// Error is set if the entry could not be read.
	Error error
}

// Reader streams bundle entries.
type Reader struct {
	bufferSize int
}

// NewReader creates a Reader.
func NewReader() *Reader {
	return &Reader{bufferSize: 100}
}

// WithBufferSize sets the channel buffer size.
func (r *Reader) WithBufferSize(size int) *Reader {
	if size > 0 {
		r.bufferSize = size
	}
	return r
}

// Entries emits the bundle's entries in document order. The channel is
// closed when the bundle is exhausted, on a bundle-level error, or when ctx
// ends.
func (r *Reader) Entries(ctx context.Context, src io.Reader) <-chan Entry {
	out := make(chan Entry, r.bufferSize)

	go func() {
		defer close(out)

		decoder := json.NewDecoder(src)

		token, err := decoder.Token()
		if err != nil {
			send(ctx, out, Entry{Index: -1, Error: fmt.Errorf("failed to read bundle: %w", err)})
			return
		}
		if delim, ok := token.(json.Delim); !ok || delim != '{' {
			send(ctx, out, Entry{Index: -1, Error: fmt.Errorf("%w: expected object start, got %v", ErrNotBundle, token)})
			return
		}

		for decoder.More() {
			if ctx.Err() != nil {
				trySend(out, Entry{Index: -1, Error: ctx.Err()})
				return
			}

			token, err := decoder.Token()
			if err != nil {
				send(ctx, out, Entry{Index: -1, Error: fmt.Errorf("failed to read field: %w", err)})
				return
			}
			field, _ := token.(string)

			if field == "entry" {
				readEntries(ctx, decoder, out)
				return
			}

			var skip json.RawMessage
			if err := decoder.Decode(&skip); err != nil {
				send(ctx, out, Entry{Index: -1, Error: fmt.Errorf("failed to skip field %s: %w", field, err)})
				return
			}
		}
	}()

	return out
}

func readEntries(ctx context.Context, decoder *json.Decoder, out chan<- Entry) {
	token, err := decoder.Token()
	if err != nil {
		send(ctx, out, Entry{Index: -1, Error: fmt.Errorf("failed to read entry array: %w", err)})
		return
	}
	if delim, ok := token.(json.Delim); !ok || delim != '[' {
		send(ctx, out, Entry{Index: -1, Error: fmt.Errorf("expected array start, got %v", token)})
		return
	}

	for index := 0; decoder.More(); index++ {
		if ctx.Err() != nil {
			trySend(out, Entry{Index: index, Error: ctx.Err()})
			return
		}

		var raw struct {
			FullURL  string          `json:"fullUrl"`
			Resource json.RawMessage `json:"resource"`
		}
		if err := decoder.Decode(&raw); err != nil {
			// The decoder cannot resynchronise after a syntax error.
			send(ctx, out, Entry{Index: index, Error: fmt.Errorf("failed to decode entry %d: %w", index, err)})
			return
		}

		if !send(ctx, out, describe(index, raw.FullURL, raw.Resource)) {
			return
		}
	}
}

// send delivers e unless ctx ends first. It reports whether e was sent.
func send(ctx context.Context, out chan<- Entry, e Entry) bool {
	select {
	case out <- e:
		return true
	case <-ctx.Done():
		return false
	}
}

// trySend reports the cancellation itself when a consumer still has room
// for it; a consumer that stopped reading must not block the reader.
func trySend(out chan<- Entry, e Entry) {
	select {
	case out <- e:
	default:
	}
}

func describe(index int, fullURL string, resource json.RawMessage) Entry {
	e := Entry{Index: index, FullURL: fullURL}
	if len(resource) == 0 || string(resource) == "null" {
		return e
	}
	e.Resource = resource

	var header struct {
		ResourceType string `json:"resourceType"`
		ID           string `json:"id"`
	}
	if err := json.Unmarshal(resource, &header); err != nil {
		e.Error = fmt.Errorf("entry %d: resource is not an object: %w", index, err)
		return e
	}
	e.ResourceType = header.ResourceType
	e.ResourceID = header.ID
	return e
}

// Name labels an entry for display: its fullUrl when present, otherwise
// its position.
func (e Entry) Name(source string) string {
	if e.FullURL != "" {
		return fmt.Sprintf("%s#%s", source, e.FullURL)
	}
	return fmt.Sprintf("%s#entry[%d]", source, e.Index)
}

// IsBundle reports whether data is a JSON object with resourceType Bundle.
func IsBundle(data []byte) bool {
	var header struct {
		ResourceType string `json:"resourceType"`
	}
	return json.Unmarshal(data, &header) == nil && header.ResourceType == "Bundle"
}
