package anki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultURL is where the AnkiConnect add-on listens on a stock
// install.
const DefaultURL = "http://localhost:8765"

const connectVersion = 6

// ConnectError is an error reported by AnkiConnect itself, as opposed
// to a transport failure. The usual cause is Anki not running or the
// add-on missing.
type ConnectError struct {
	Action  string
	Message string
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("ankiconnect %s: %s", e.Action, e.Message)
}

// Client talks to a running Anki instance through the AnkiConnect
// add-on. Every action is a POST of a small JSON envelope to a single
// endpoint.
type Client struct {
	url  string
	http *http.Client
}

// NewClient returns a client for the given AnkiConnect URL. An empty
// url means DefaultURL.
func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params,omitempty"`
}

// invoke performs one AnkiConnect action, decoding the result into
// out when out is non-nil. A null result with no error is valid and
// leaves out untouched.
func (c *Client) invoke(ctx context.Context, action string, params any, out any) error {
	body, err := json.Marshal(envelope{Action: action, Version: connectVersion, Params: params})
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling ankiconnect %s: %w", action, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", action, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ankiconnect %s returned %d: %s", action, resp.StatusCode, data)
	}

	var reply struct {
		Result json.RawMessage `json:"result"`
		Error  *string         `json:"error"`
	}
	if err := json.Unmarshal(data, &reply); err != nil {
		return fmt.Errorf("parsing %s response: %w", action, err)
	}
	if reply.Error != nil && *reply.Error != "" {
		return &ConnectError{Action: action, Message: *reply.Error}
	}

	if out != nil && len(reply.Result) > 0 && !bytes.Equal(reply.Result, []byte("null")) {
		if err := json.Unmarshal(reply.Result, out); err != nil {
			return fmt.Errorf("decoding %s result: %w", action, err)
		}
	}
	return nil
}

// Version returns the AnkiConnect API version, doubling as a health
// check.
func (c *Client) Version(ctx context.Context) (int, error) {
	var v int
	if err := c.invoke(ctx, "version", nil, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// DeckNames lists all deck names in the collection.
func (c *Client) DeckNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.invoke(ctx, "deckNames", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// ModelNames lists all note type names.
func (c *Client) ModelNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.invoke(ctx, "modelNames", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// ModelFieldNames lists the field names of one note type.
func (c *Client) ModelFieldNames(ctx context.Context, model string) ([]string, error) {
	var fields []string
	err := c.invoke(ctx, "modelFieldNames", map[string]any{"modelName": model}, &fields)
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// Tags lists every tag used in the collection.
func (c *Client) Tags(ctx context.Context) ([]string, error) {
	var tags []string
	if err := c.invoke(ctx, "getTags", nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// CreateDeck creates a deck and returns its id. Creating a deck that
// already exists is not an error.
func (c *Client) CreateDeck(ctx context.Context, name string) (int64, error) {
	var id int64
	if err := c.invoke(ctx, "createDeck", map[string]any{"deck": name}, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// Note is the payload for adding a note to the collection.
type Note struct {
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    map[string]string `json:"fields"`
	Tags      []string          `json:"tags"`
}

// AddNote adds a single note. A nil id with no error means the note
// was a duplicate and was not added.
func (c *Client) AddNote(ctx context.Context, n Note) (*int64, error) {
	if n.Tags == nil {
		n.Tags = []string{}
	}
	var id *int64
	if err := c.invoke(ctx, "addNote", map[string]any{"note": n}, &id); err != nil {
		return nil, err
	}
	return id, nil
}

// AddNotes adds notes in bulk. The returned slice is positional, with
// nil entries for duplicates that were skipped.
func (c *Client) AddNotes(ctx context.Context, notes []Note) ([]*int64, error) {
	for i := range notes {
		if notes[i].Tags == nil {
			notes[i].Tags = []string{}
		}
	}
	var ids []*int64
	if err := c.invoke(ctx, "addNotes", map[string]any{"notes": notes}, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// CanAddNotes reports, positionally, whether each note would pass
// duplicate detection.
func (c *Client) CanAddNotes(ctx context.Context, notes []Note) ([]bool, error) {
	for i := range notes {
		if notes[i].Tags == nil {
			notes[i].Tags = []string{}
		}
	}
	var ok []bool
	if err := c.invoke(ctx, "canAddNotes", map[string]any{"notes": notes}, &ok); err != nil {
		return nil, err
	}
	return ok, nil
}

// FindNotes searches for notes using Anki's search syntax, for
// example `deck:Spanish tag:verb`.
func (c *Client) FindNotes(ctx context.Context, query string) ([]int64, error) {
	var ids []int64
	if err := c.invoke(ctx, "findNotes", map[string]any{"query": query}, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// NoteField is one field of a note, with its display order.
type NoteField struct {
	Value string `json:"value"`
	Order int    `json:"order"`
}

// NoteInfo is the detailed view of one note.
type NoteInfo struct {
	NoteID    int64                `json:"noteId"`
	ModelName string               `json:"modelName"`
	Tags      []string             `json:"tags"`
	Fields    map[string]NoteField `json:"fields"`
}

// NotesInfo fetches detailed information for the given note ids.
func (c *Client) NotesInfo(ctx context.Context, ids []int64) ([]NoteInfo, error) {
	var notes []NoteInfo
	if err := c.invoke(ctx, "notesInfo", map[string]any{"notes": ids}, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// AddTags adds space-separated tags to existing notes.
func (c *Client) AddTags(ctx context.Context, ids []int64, tags string) error {
	return c.invoke(ctx, "addTags", map[string]any{"notes": ids, "tags": tags}, nil)
}

// Sync synchronises the local collection with AnkiWeb.
func (c *Client) Sync(ctx context.Context) error {
	return c.invoke(ctx, "sync", nil, nil)
}
