package domain

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Entity kinds. A key is a path of (kind, id-or-name) pairs; the path prefix
// is the ancestor scope for strongly consistent reads.
const (
	KindProfile    = "Profile"
	KindConference = "Conference"
	KindSession    = "Session"
	KindSpeaker    = "Speaker"
)

// Key identifies a persisted entity. Exactly one of Name or ID is set:
// Profile and Speaker keys carry a name (user id, speaker name), Conference
// and Session keys carry an allocated integer id scoped under their parent.
type Key struct {
	Parent *Key
	Kind   string
	Name   string
	ID     int64
}

// NewNameKey returns a key identified by name under the given parent.
func NewNameKey(kind, name string, parent *Key) *Key {
	return &Key{Parent: parent, Kind: kind, Name: name}
}

// NewIDKey returns a key identified by an allocated integer id under the
// given parent.
func NewIDKey(kind string, id int64, parent *Key) *Key {
	return &Key{Parent: parent, Kind: kind, ID: id}
}

// Encode returns the opaque websafe token for the key: the escaped key path,
// URL-safe base64 encoded. Tokens round-trip through DecodeKey.
func (k *Key) Encode() string {
	segs := make([]string, 0, 2)
	for cur := k; cur != nil; cur = cur.Parent {
		var seg string
		if cur.Name != "" {
			seg = cur.Kind + ":n:" + url.QueryEscape(cur.Name)
		} else {
			seg = cur.Kind + ":i:" + strconv.FormatInt(cur.ID, 10)
		}
		segs = append([]string{seg}, segs...)
	}
	return base64.RawURLEncoding.EncodeToString([]byte(strings.Join(segs, "/")))
}

// DecodeKey parses an opaque key token back into a Key. A malformed token is
// an error; callers treat it as a lookup miss.
func DecodeKey(token string) (*Key, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("decode key token: %w", err)
	}
	var key *Key
	for _, seg := range strings.Split(string(raw), "/") {
		parts := strings.SplitN(seg, ":", 3)
		if len(parts) != 3 || parts[0] == "" {
			return nil, fmt.Errorf("malformed key segment %q", seg)
		}
		kind := parts[0]
		switch parts[1] {
		case "n":
			name, err := url.QueryUnescape(parts[2])
			if err != nil || name == "" {
				return nil, fmt.Errorf("malformed key name in segment %q", seg)
			}
			key = NewNameKey(kind, name, key)
		case "i":
			id, err := strconv.ParseInt(parts[2], 10, 64)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("malformed key id in segment %q", seg)
			}
			key = NewIDKey(kind, id, key)
		default:
			return nil, fmt.Errorf("malformed key segment %q", seg)
		}
	}
	if key == nil {
		return nil, fmt.Errorf("empty key token")
	}
	return key, nil
}

// ConferenceKeyParts extracts (organizer user id, conference id) from a
// decoded key, verifying the Profile/Conference path shape.
func ConferenceKeyParts(k *Key) (organizerID string, conferenceID int64, err error) {
	if k == nil || k.Kind != KindConference || k.ID == 0 ||
		k.Parent == nil || k.Parent.Kind != KindProfile || k.Parent.Name == "" || k.Parent.Parent != nil {
		return "", 0, fmt.Errorf("not a conference key")
	}
	return k.Parent.Name, k.ID, nil
}

// SessionKeyParts extracts the parent conference key token and the session id
// from a decoded key, verifying the path shape.
func SessionKeyParts(k *Key) (conferenceKey string, sessionID int64, err error) {
	if k == nil || k.Kind != KindSession || k.ID == 0 || k.Parent == nil {
		return "", 0, fmt.Errorf("not a session key")
	}
	if _, _, err := ConferenceKeyParts(k.Parent); err != nil {
		return "", 0, fmt.Errorf("not a session key")
	}
	return k.Parent.Encode(), k.ID, nil
}
