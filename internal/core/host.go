package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RootID is the parent id of top-level hosts. The root itself is never persisted.
const RootID = "0"

// Protocol identifies how a host is connected to.
// Folder is a structural pseudo-protocol, not a connection.
type Protocol string

const (
	ProtocolSSH     Protocol = "SSH"
	ProtocolSerial  Protocol = "Serial"
	ProtocolSFTPPty Protocol = "SFTPPty"
	ProtocolFolder  Protocol = "Folder"
)

// Protocols lists every known protocol.
func Protocols() []Protocol {
	return []Protocol{ProtocolSSH, ProtocolSerial, ProtocolSFTPPty, ProtocolFolder}
}

// ParseProtocol converts user input into a Protocol, ignoring case.
func ParseProtocol(s string) (Protocol, error) {
	for _, p := range Protocols() {
		if strings.EqualFold(string(p), s) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown protocol: %q", s)
}

func (p Protocol) String() string { return string(p) }

// Host is a connection endpoint or folder record.
// Hosts are values: edits produce a modified copy that replaces the old one.
type Host struct {
	ID         string
	Name       string
	Protocol   Protocol
	ParentID   string
	Sort       int64
	CreateDate int64 // unix millis
	UpdateDate int64 // unix millis
	Deleted    bool

	// Protocol specific payload. The tree engine never reads these.
	Address    string
	Port       int
	Username   string
	SerialPort string
	BaudRate   int
	Remark     string
	Options    map[string]string
}

// NewID returns a fresh host id.
func NewID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// NewHost creates a connection host under parentID.
func NewHost(name string, protocol Protocol, parentID string) Host {
	now := time.Now().UnixMilli()
	return Host{
		ID:         NewID(),
		Name:       name,
		Protocol:   protocol,
		ParentID:   parentID,
		Sort:       now,
		CreateDate: now,
		UpdateDate: now,
	}
}

// NewFolder creates a folder host under parentID.
func NewFolder(name, parentID string) Host {
	return NewHost(name, ProtocolFolder, parentID)
}

// Root returns the synthetic root folder.
func Root() Host {
	return Host{ID: RootID, Name: "Hosts", Protocol: ProtocolFolder}
}

// IsFolder reports whether the host is a folder.
func (h Host) IsFolder() bool { return h.Protocol == ProtocolFolder }

// IsRoot reports whether the host is the synthetic root.
func (h Host) IsRoot() bool { return h.ID == RootID }

// Clone returns a copy that shares no mutable state with h.
func (h Host) Clone() Host {
	if h.Options != nil {
		opts := make(map[string]string, len(h.Options))
		for k, v := range h.Options {
			opts[k] = v
		}
		h.Options = opts
	}
	return h
}

// Touched returns a copy with UpdateDate set to at.
func (h Host) Touched(at time.Time) Host {
	c := h.Clone()
	c.UpdateDate = at.UnixMilli()
	return c
}

// Target formats the connection target, e.g. "root@10.0.0.1:22".
func (h Host) Target() string {
	switch h.Protocol {
	case ProtocolFolder:
		return ""
	case ProtocolSerial:
		if h.BaudRate > 0 {
			return fmt.Sprintf("%s@%d", h.SerialPort, h.BaudRate)
		}
		return h.SerialPort
	}
	target := h.Address
	if h.Username != "" {
		target = h.Username + "@" + target
	}
	if h.Port > 0 {
		target = fmt.Sprintf("%s:%d", target, h.Port)
	}
	return target
}
