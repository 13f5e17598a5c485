package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/artpar/hostdeck/internal/core"
	"github.com/artpar/hostdeck/internal/hosts"
	"gopkg.in/yaml.v3"
)

// HostsFileName is the document a HostStore keeps under its base path.
const HostsFileName = "hosts.yaml"

// HostStore persists hosts as a single YAML document on disk.
// Every write rewrites the document.
type HostStore struct {
	mu     sync.RWMutex
	path   string
	hosts  map[string]core.Host
	closed bool
}

var _ hosts.Store = (*HostStore)(nil)

// NewHostStore creates a YAML-backed store in basePath, loading any existing document.
func NewHostStore(basePath string) (*HostStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create hosts directory: %w", err)
	}

	path := filepath.Join(basePath, HostsFileName)
	loaded, err := ReadDocument(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	s := &HostStore{
		path:  path,
		hosts: make(map[string]core.Host, len(loaded)),
	}
	for _, h := range loaded {
		s.hosts[h.ID] = h
	}

	return s, nil
}

// Path returns the document path.
func (s *HostStore) Path() string {
	return s.path
}

// AddOrUpdate inserts or replaces a host and rewrites the document.
func (s *HostStore) AddOrUpdate(ctx context.Context, host core.Host) error {
	if host.ID == "" {
		return hosts.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return hosts.ErrStoreClosed
	}

	prev, existed := s.hosts[host.ID]
	s.hosts[host.ID] = host.Clone()
	if err := s.flush(); err != nil {
		if existed {
			s.hosts[host.ID] = prev
		} else {
			delete(s.hosts, host.ID)
		}
		return err
	}

	return nil
}

// Get retrieves a host by ID.
func (s *HostStore) Get(ctx context.Context, id string) (core.Host, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return core.Host{}, hosts.ErrStoreClosed
	}

	h, ok := s.hosts[id]
	if !ok {
		return core.Host{}, hosts.ErrNotFound
	}
	return h.Clone(), nil
}

// List returns live hosts ordered by sort key.
func (s *HostStore) List(ctx context.Context) ([]core.Host, error) {
	return s.filter(false)
}

// ListDeleted returns soft-deleted hosts.
func (s *HostStore) ListDeleted(ctx context.Context) ([]core.Host, error) {
	return s.filter(true)
}

func (s *HostStore) filter(deleted bool) ([]core.Host, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, hosts.ErrStoreClosed
	}

	var result []core.Host
	for _, h := range s.hosts {
		if h.Deleted == deleted {
			result = append(result, h.Clone())
		}
	}
	sortHosts(result)
	return result, nil
}

// Purge removes soft-deleted hosts from the document.
func (s *HostStore) Purge(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, hosts.ErrStoreClosed
	}

	removed := make(map[string]core.Host)
	for id, h := range s.hosts {
		if h.Deleted {
			removed[id] = h
			delete(s.hosts, id)
		}
	}
	if len(removed) == 0 {
		return 0, nil
	}

	if err := s.flush(); err != nil {
		for id, h := range removed {
			s.hosts[id] = h
		}
		return 0, err
	}

	return int64(len(removed)), nil
}

// Close marks the store closed. The document is already up to date.
func (s *HostStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *HostStore) flush() error {
	all := make([]core.Host, 0, len(s.hosts))
	for _, h := range s.hosts {
		all = append(all, h)
	}
	sortHosts(all)
	return WriteDocument(s.path, all)
}

func sortHosts(list []core.Host) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Sort != list[j].Sort {
			return list[i].Sort < list[j].Sort
		}
		return list[i].ID < list[j].ID
	})
}

// Storage format types

type hostsDocument struct {
	Version int        `yaml:"version"`
	Hosts   []hostData `yaml:"hosts"`
}

type hostData struct {
	ID         string            `yaml:"id"`
	Name       string            `yaml:"name"`
	Protocol   string            `yaml:"protocol"`
	ParentID   string            `yaml:"parent_id"`
	Sort       int64             `yaml:"sort"`
	CreateDate int64             `yaml:"create_date"`
	UpdateDate int64             `yaml:"update_date"`
	Deleted    bool              `yaml:"deleted,omitempty"`
	Address    string            `yaml:"address,omitempty"`
	Port       int               `yaml:"port,omitempty"`
	Username   string            `yaml:"username,omitempty"`
	SerialPort string            `yaml:"serial_port,omitempty"`
	BaudRate   int               `yaml:"baud_rate,omitempty"`
	Remark     string            `yaml:"remark,omitempty"`
	Options    map[string]string `yaml:"options,omitempty"`
}

const documentVersion = 1

// ReadDocument loads hosts from a YAML document.
func ReadDocument(path string) ([]core.Host, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hosts file: %w", err)
	}

	var doc hostsDocument
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hosts: %w", err)
	}

	result := make([]core.Host, 0, len(doc.Hosts))
	for _, hd := range doc.Hosts {
		result = append(result, fromHostData(hd))
	}
	return result, nil
}

// WriteDocument writes hosts to a YAML document, replacing it atomically.
func WriteDocument(path string, list []core.Host) error {
	doc := hostsDocument{Version: documentVersion}
	for _, h := range list {
		doc.Hosts = append(doc.Hosts, toHostData(h))
	}

	content, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal hosts: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, 0600); err != nil {
		return fmt.Errorf("failed to write hosts file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace hosts file: %w", err)
	}

	return nil
}

// Conversion functions

func toHostData(h core.Host) hostData {
	return hostData{
		ID:         h.ID,
		Name:       h.Name,
		Protocol:   string(h.Protocol),
		ParentID:   h.ParentID,
		Sort:       h.Sort,
		CreateDate: h.CreateDate,
		UpdateDate: h.UpdateDate,
		Deleted:    h.Deleted,
		Address:    h.Address,
		Port:       h.Port,
		Username:   h.Username,
		SerialPort: h.SerialPort,
		BaudRate:   h.BaudRate,
		Remark:     h.Remark,
		Options:    h.Options,
	}
}

func fromHostData(d hostData) core.Host {
	h := core.Host{
		ID:         d.ID,
		Name:       d.Name,
		Protocol:   core.Protocol(d.Protocol),
		ParentID:   d.ParentID,
		Sort:       d.Sort,
		CreateDate: d.CreateDate,
		UpdateDate: d.UpdateDate,
		Deleted:    d.Deleted,
		Address:    d.Address,
		Port:       d.Port,
		Username:   d.Username,
		SerialPort: d.SerialPort,
		BaudRate:   d.BaudRate,
		Remark:     d.Remark,
	}
	if len(d.Options) > 0 {
		h.Options = d.Options
	}
	return h
}
