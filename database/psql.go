package database

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type PsqlDB struct {
	pool    *sqlx.DB
	log     *zap.Logger
	connStr string
}

func NewPSQLDatabase(c *Config) (*PsqlDB, error) {
	db := &PsqlDB{
		log:     c.Log,
		connStr: c.ConnStr,
	}

	pool, err := sqlx.Connect("postgres", db.connStr)
	if err != nil {
		db.log.Error("unable to connect to db", zap.Error(err))
		return nil, err
	}
	db.pool = pool

	for _, schema := range Schemas {
		if _, err := pool.Exec(schema); err != nil {
			return nil, err
		}
	}

	return db, nil
}

func (p *PsqlDB) GetConn() *sqlx.DB {
	return p.pool
}

func (p *PsqlDB) Close() error {
	return p.pool.Close()
}

func (p *PsqlDB) CreateVoiceConfig(vc *VoiceConfig) error {
	_, err := p.pool.Exec("INSERT INTO voice_configs VALUES($1, $2, $3, $4, $5);",
		vc.GuildID, vc.CategoryID, vc.GeneratorChannelID, vc.InterfaceChannelID, vc.InterfaceMessageID)
	return err
}

func (p *PsqlDB) GetVoiceConfig(gid string) (*VoiceConfig, error) {
	var vc VoiceConfig
	err := p.pool.Get(&vc, "SELECT * FROM voice_configs WHERE guild_id=$1;", gid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &vc, nil
}

func (p *PsqlDB) SetVoiceInterface(gid, chID, msgID string) error {
	_, err := p.pool.Exec("UPDATE voice_configs SET interface_channel_id=$1, interface_message_id=$2 WHERE guild_id=$3;",
		chID, msgID, gid)
	return err
}

func (p *PsqlDB) DeleteVoiceConfig(gid string) error {
	_, err := p.pool.Exec("DELETE FROM voice_configs WHERE guild_id=$1;", gid)
	return err
}

func (p *PsqlDB) CreateTempChannel(tc *TempChannel) error {
	_, err := p.pool.Exec("INSERT INTO temp_channels VALUES($1, $2, $3, $4);",
		tc.ChannelID, tc.GuildID, tc.OwnerID, tc.CreatedAt)
	return err
}

func (p *PsqlDB) GetTempChannel(cid string) (*TempChannel, error) {
	var tc TempChannel
	err := p.pool.Get(&tc, "SELECT * FROM temp_channels WHERE channel_id=$1;", cid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tc, nil
}

func (p *PsqlDB) GetTempChannelsByGuild(gid string) ([]*TempChannel, error) {
	var tcs []*TempChannel
	err := p.pool.Select(&tcs, "SELECT * FROM temp_channels WHERE guild_id=$1;", gid)
	if err != nil {
		return nil, err
	}
	return tcs, nil
}

func (p *PsqlDB) SetTempChannelOwner(cid, uid string) error {
	_, err := p.pool.Exec("UPDATE temp_channels SET owner_id=$1 WHERE channel_id=$2;", uid, cid)
	return err
}

func (p *PsqlDB) DeleteTempChannel(cid string) error {
	_, err := p.pool.Exec("DELETE FROM temp_channels WHERE channel_id=$1;", cid)
	return err
}

func (p *PsqlDB) DeleteTempChannelsByGuild(gid string) error {
	_, err := p.pool.Exec("DELETE FROM temp_channels WHERE guild_id=$1;", gid)
	return err
}

func (p *PsqlDB) CountTempChannels() (int, error) {
	var n int
	err := p.pool.Get(&n, "SELECT COUNT(*) FROM temp_channels;")
	return n, err
}

func (p *PsqlDB) GetPrefix(gid string) (string, error) {
	var prefix string
	err := p.pool.Get(&prefix, "SELECT prefix FROM guild_prefixes WHERE guild_id=$1;", gid)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return prefix, nil
}

func (p *PsqlDB) SetPrefix(gid, prefix string) error {
	_, err := p.pool.Exec(`
		INSERT INTO guild_prefixes VALUES($1, $2)
		ON CONFLICT (guild_id) DO UPDATE SET prefix=$2;`, gid, prefix)
	return err
}
