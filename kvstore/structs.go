package kvstore

// OwnerEntry mirrors the owning member of one temporary channel. The guild
// id rides along so a stale entry from another guild reads as a miss.
type OwnerEntry struct {
	OwnerID string
	GuildID string
}
