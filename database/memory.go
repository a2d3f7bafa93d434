package database

import (
	"sync"

	"github.com/jmoiron/sqlx"
)

// MemDB keeps everything in maps behind one mutex. It backs tests and tiny
// single-guild deployments where running postgres is not worth it.
type MemDB struct {
	sync.Mutex
	configs  map[string]*VoiceConfig
	channels map[string]*TempChannel
	prefixes map[string]string
}

func NewMemDatabase() *MemDB {
	return &MemDB{
		configs:  make(map[string]*VoiceConfig),
		channels: make(map[string]*TempChannel),
		prefixes: make(map[string]string),
	}
}

func (m *MemDB) GetConn() *sqlx.DB {
	return nil
}

func (m *MemDB) Close() error {
	return nil
}

func (m *MemDB) CreateVoiceConfig(vc *VoiceConfig) error {
	m.Lock()
	defer m.Unlock()
	c := *vc
	m.configs[vc.GuildID] = &c
	return nil
}

func (m *MemDB) GetVoiceConfig(gid string) (*VoiceConfig, error) {
	m.Lock()
	defer m.Unlock()
	vc, ok := m.configs[gid]
	if !ok {
		return nil, ErrNotFound
	}
	c := *vc
	return &c, nil
}

func (m *MemDB) SetVoiceInterface(gid, chID, msgID string) error {
	m.Lock()
	defer m.Unlock()
	if vc, ok := m.configs[gid]; ok {
		vc.InterfaceChannelID = chID
		vc.InterfaceMessageID = msgID
	}
	return nil
}

func (m *MemDB) DeleteVoiceConfig(gid string) error {
	m.Lock()
	defer m.Unlock()
	delete(m.configs, gid)
	return nil
}

func (m *MemDB) CreateTempChannel(tc *TempChannel) error {
	m.Lock()
	defer m.Unlock()
	c := *tc
	m.channels[tc.ChannelID] = &c
	return nil
}

func (m *MemDB) GetTempChannel(cid string) (*TempChannel, error) {
	m.Lock()
	defer m.Unlock()
	tc, ok := m.channels[cid]
	if !ok {
		return nil, ErrNotFound
	}
	c := *tc
	return &c, nil
}

func (m *MemDB) GetTempChannelsByGuild(gid string) ([]*TempChannel, error) {
	m.Lock()
	defer m.Unlock()
	var tcs []*TempChannel
	for _, tc := range m.channels {
		if tc.GuildID == gid {
			c := *tc
			tcs = append(tcs, &c)
		}
	}
	return tcs, nil
}

func (m *MemDB) SetTempChannelOwner(cid, uid string) error {
	m.Lock()
	defer m.Unlock()
	if tc, ok := m.channels[cid]; ok {
		tc.OwnerID = uid
	}
	return nil
}

func (m *MemDB) DeleteTempChannel(cid string) error {
	m.Lock()
	defer m.Unlock()
	delete(m.channels, cid)
	return nil
}

func (m *MemDB) DeleteTempChannelsByGuild(gid string) error {
	m.Lock()
	defer m.Unlock()
	for cid, tc := range m.channels {
		if tc.GuildID == gid {
			delete(m.channels, cid)
		}
	}
	return nil
}

func (m *MemDB) CountTempChannels() (int, error) {
	m.Lock()
	defer m.Unlock()
	return len(m.channels), nil
}

func (m *MemDB) GetPrefix(gid string) (string, error) {
	m.Lock()
	defer m.Unlock()
	prefix, ok := m.prefixes[gid]
	if !ok {
		return "", ErrNotFound
	}
	return prefix, nil
}

func (m *MemDB) SetPrefix(gid, prefix string) error {
	m.Lock()
	defer m.Unlock()
	m.prefixes[gid] = prefix
	return nil
}
