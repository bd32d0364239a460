package message

import (
	"encoding/json"
	"fmt"
)

// Update payload keys the remote service may send. Only one is present per update.
const (
	UpdateMessage           = "message"
	UpdateEditedMessage     = "edited_message"
	UpdateChannelPost       = "channel_post"
	UpdateEditedChannelPost = "edited_channel_post"
)

// ParseUpdate extracts the update_id and keeps the whole object as the raw payload. The top level
// fields are split once here so payload lookups do not decode the update again.
func ParseUpdate(raw json.RawMessage) (Update, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Update{}, fmt.Errorf("failed to decode update: %w", err)
	}

	idRaw, ok := fields["update_id"]
	if !ok || !isPresent(idRaw) {
		return Update{}, fmt.Errorf("%w: update_id", ErrMissingField)
	}

	var id int64
	if err := json.Unmarshal(idRaw, &id); err != nil {
		return Update{}, fmt.Errorf("failed to decode update_id: %w", err)
	}

	return Update{ID: id, Raw: raw, fields: fields}, nil
}

// Payload returns the value stored under key, or false when the update carries no such payload.
func (u Update) Payload(key string) (json.RawMessage, bool, error) {
	fields := u.fields
	if fields == nil {
		if err := json.Unmarshal(u.Raw, &fields); err != nil {
			return nil, false, fmt.Errorf("failed to decode update %d: %w", u.ID, err)
		}
	}

	v, ok := fields[key]
	if !ok || !isPresent(v) {
		return nil, false, nil
	}

	return v, true, nil
}
